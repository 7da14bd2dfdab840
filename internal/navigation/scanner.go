package navigation

import (
	"bytes"
	"context"
	"errors"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"go.uber.org/zap"
)

// DefaultBufferSize is the read size used when none is configured.
const DefaultBufferSize = 64 * 1024

// ContainsText reports whether any line read from r contains term as a
// literal substring. Lines end at '\n'; a '\r' right before it is not part of
// the line. Reading stops at the first match. Content that is not valid UTF-8
// yields an error wrapping ErrInvalidEncoding.
//
// An empty term matches any non-empty content. Empty content never matches.
func ContainsText(r io.Reader, term string) (bool, error) {
	return scanText(r, []byte(term), DefaultBufferSize)
}

// scanText slides a window over the stream: the tail kept between reads is
// len(term) bytes, long enough to catch a match straddling two reads and to
// look one byte past a term ending in '\r'. A term cannot span lines unless it
// contains '\n', which is rejected upfront, so a match anywhere in the window
// is a match inside one line. Memory stays bounded by bufSize+len(term)
// whatever the file or line length.
func scanText(r io.Reader, term []byte, bufSize int) (bool, error) {
	if bytes.IndexByte(term, '\n') >= 0 {
		return false, nil
	}
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	keep := len(term)
	buf := make([]byte, bufSize)
	window := make([]byte, 0, keep+bufSize+utf8.UTFMax)
	var pending []byte
	var offset int64

	for {
		n, err := r.Read(buf)
		if n > 0 {
			text := buf[:n]
			if len(pending) > 0 {
				text = append(pending, text...)
			}

			cut := completePrefix(text)
			if !utf8.Valid(text[:cut]) {
				return false, decodeError(text[:cut], offset-int64(len(pending)))
			}
			offset += int64(n)
			pending = append([]byte(nil), text[cut:]...)

			if keep == 0 {
				if cut > 0 {
					return true, nil
				}
			} else {
				window = append(window, text[:cut]...)
				if matchInWindow(window, term, false) {
					return true, nil
				}
				if len(window) > keep {
					window = append(window[:0], window[len(window)-keep:]...)
				}
			}
		}

		if errors.Is(err, io.EOF) {
			if len(pending) > 0 {
				return false, &DecodeError{Offset: offset - int64(len(pending)), Sample: pending}
			}
			return keep > 0 && matchInWindow(window, term, true), nil
		}
		if err != nil {
			return false, err
		}
	}
}

// matchInWindow finds term in window. A term ending in '\r' followed by '\n'
// is rejected since that '\r' belongs to the line terminator; when the byte
// after such a match is not yet read the decision waits for more input.
func matchInWindow(window, term []byte, atEOF bool) bool {
	crTail := term[len(term)-1] == '\r'
	for off := 0; off < len(window); {
		i := bytes.Index(window[off:], term)
		if i < 0 {
			return false
		}
		if !crTail {
			return true
		}
		end := off + i + len(term)
		if end < len(window) {
			if window[end] != '\n' {
				return true
			}
		} else if atEOF {
			return true
		}
		off += i + 1
	}
	return false
}

// completePrefix returns the length of p without a trailing rune that is
// still incomplete and may be finished by the next read.
func completePrefix(p []byte) int {
	for i := len(p) - 1; i >= 0 && i > len(p)-utf8.UTFMax; i-- {
		if utf8.RuneStart(p[i]) {
			if utf8.FullRune(p[i:]) {
				return len(p)
			}
			return i
		}
	}
	return len(p)
}

func decodeError(text []byte, base int64) error {
	at := 0
	for at < len(text) {
		r, size := utf8.DecodeRune(text[at:])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		at += size
	}
	sample := text[at:]
	if len(sample) > maxDecodeSampleLength {
		sample = sample[:maxDecodeSampleLength]
	}
	return &DecodeError{Offset: base + int64(at), Sample: append([]byte(nil), sample...)}
}

// Scanner runs ContainsText over file snapshots and fails closed: any error
// is logged and reported as "no match".
type Scanner struct {
	source     ContentSource
	logger     *zap.Logger
	bufferSize int
	metrics    Recorder
}

// NewScanner creates a scanner reading through source.
func NewScanner(source ContentSource, logger *zap.Logger, bufferSize int) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Scanner{
		source:     source,
		logger:     logger,
		bufferSize: bufferSize,
		metrics:    nopRecorder{},
	}
}

// WithMetrics attaches a recorder.
func (s *Scanner) WithMetrics(metrics Recorder) *Scanner {
	if metrics != nil {
		s.metrics = metrics
	}
	return s
}

// FileContains reports whether the file at path contains term on any line.
func (s *Scanner) FileContains(ctx context.Context, path, term string) bool {
	snapshot, err := s.source.Open(path)
	if err != nil {
		s.logger.Warn("Content scan skipped", zap.String("path", path), zap.Error(err))
		s.metrics.ScanFailed(ScanFailureOpen)
		return false
	}
	defer func() {
		if err := snapshot.Close(); err != nil {
			s.logger.Debug("Failed to close snapshot", zap.String("path", path), zap.Error(err))
		}
	}()

	found, err := scanText(&contextReader{ctx: ctx, r: snapshot.Channel()}, []byte(term), s.bufferSize)
	if err != nil {
		s.logFailure(path, err)
		return false
	}

	s.metrics.FileScanned(found)
	return found
}

func (s *Scanner) logFailure(path string, err error) {
	var decodeErr *DecodeError
	switch {
	case errors.As(err, &decodeErr):
		fields := []zap.Field{
			zap.String("path", path),
			zap.Int64("offset", decodeErr.Offset),
		}
		if charset := guessCharset(decodeErr.Sample); charset != "" {
			fields = append(fields, zap.String("charset_guess", charset))
		}
		s.logger.Warn("Content is not valid UTF-8, treating as no match", fields...)
		s.metrics.ScanFailed(ScanFailureDecode)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.logger.Debug("Content scan cancelled", zap.String("path", path))
		s.metrics.ScanFailed(ScanFailureCancelled)
	default:
		s.logger.Warn("Content scan failed", zap.String("path", path), zap.Error(err))
		s.metrics.ScanFailed(ScanFailureRead)
	}
}

func guessCharset(sample []byte) string {
	if len(sample) == 0 {
		return ""
	}
	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil || result == nil {
		return ""
	}
	return result.Charset
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
