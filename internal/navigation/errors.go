package navigation

import (
	"errors"
	"fmt"
)

// ErrAccessDenied is the sentinel every access-denied failure unwraps to.
var ErrAccessDenied = errors.New("access denied")

// ErrInvalidEncoding reports file content that is not valid UTF-8.
var ErrInvalidEncoding = errors.New("content is not valid UTF-8")

const (
	reasonNotAbsolute     = "path must be absolute"
	reasonNotEnoughRights = "Not enough permissions to access file or directory"
	reasonPolicyNoReason  = "access to the path is denied"
	maxDecodeSampleLength = 512
)

// AccessDeniedError is returned when the caller may not see a path, either
// because the policy hides it or because the operating system refused access.
type AccessDeniedError struct {
	Path   string
	Reason string
}

func (e *AccessDeniedError) Error() string {
	return e.Reason
}

// Unwrap lets errors.Is match ErrAccessDenied.
func (e *AccessDeniedError) Unwrap() error {
	return ErrAccessDenied
}

// IOError wraps any other filesystem failure while listing a directory.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// DecodeError carries the offset and a sample of the first bytes that failed
// UTF-8 validation.
type DecodeError struct {
	Offset int64
	Sample []byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid UTF-8 sequence at byte %d", e.Offset)
}

func (e *DecodeError) Unwrap() error {
	return ErrInvalidEncoding
}

func denied(path, reason string) error {
	if reason == "" {
		reason = reasonPolicyNoReason
	}
	return &AccessDeniedError{Path: path, Reason: reason}
}

// IsAccessDenied reports whether err is an access-denied failure.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}
