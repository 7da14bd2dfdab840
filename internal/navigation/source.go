package navigation

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// sniffLength is how many leading bytes are inspected to detect compression.
const sniffLength = 3072

// ContentSource yields point-in-time snapshots of a file's bytes. The scanner
// reads only through a Snapshot and never opens paths itself.
type ContentSource interface {
	Open(path string) (Snapshot, error)
}

// Snapshot is a read-only view of one file's content. It must be closed on
// every exit path.
type Snapshot interface {
	Channel() io.Reader
	Close() error
}

// LocalSource snapshots files on the local filesystem. The readable length is
// fixed when the snapshot is opened, so bytes appended during a scan are not
// observed and a concurrent truncation shows up as a short read.
type LocalSource struct {
	// Decompress makes gzip and zstd rotated logs readable as text. The
	// format is detected from content, not from the file name.
	Decompress bool
}

// Open implements ContentSource.
func (s LocalSource) Open(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat snapshot: %w", err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("open snapshot %s: is a directory", path)
	}

	limited := io.LimitReader(f, info.Size())
	if !s.Decompress {
		return &fileSnapshot{file: f, reader: limited}, nil
	}

	br := bufio.NewReaderSize(limited, sniffLength)
	head, err := br.Peek(sniffLength)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		f.Close()
		return nil, fmt.Errorf("read snapshot head: %w", err)
	}

	mtype := mimetype.Detect(head)
	switch {
	case mtype.Is("application/gzip"):
		zr, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		return &fileSnapshot{file: f, reader: zr, closeStream: zr.Close}, nil

	case mtype.Is("application/zstd"):
		zr, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open zstd stream: %w", err)
		}
		return &fileSnapshot{
			file:   f,
			reader: zr,
			closeStream: func() error {
				zr.Close()
				return nil
			},
		}, nil
	}

	return &fileSnapshot{file: f, reader: br}, nil
}

type fileSnapshot struct {
	file        *os.File
	reader      io.Reader
	closeStream func() error
}

func (s *fileSnapshot) Channel() io.Reader {
	return s.reader
}

func (s *fileSnapshot) Close() error {
	var streamErr error
	if s.closeStream != nil {
		streamErr = s.closeStream()
	}
	if err := s.file.Close(); err != nil {
		return err
	}
	return streamErr
}
