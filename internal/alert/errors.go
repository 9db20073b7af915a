package alert

import (
	"errors"
	"fmt"
)

var (
	ErrBind   = errors.New("bind failed")
	ErrDecode = errors.New("decode failed")
)

// BindError is returned when the listening endpoint cannot be bound.
type BindError struct {
	Endpoint string
	Err      error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind %s: %v", e.Endpoint, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

func (e *BindError) Is(target error) bool { return target == ErrBind }

// DecodeError is returned when a payload is not valid text in the configured encoding.
// Offset is the position of the first offending byte, or -1 when unknown.
type DecodeError struct {
	Encoding string
	Size     int
	Offset   int
	Err      error
}

func (e *DecodeError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("decode %d bytes as %s: invalid byte at offset %d: %v", e.Size, e.Encoding, e.Offset, e.Err)
	}
	return fmt.Sprintf("decode %d bytes as %s: %v", e.Size, e.Encoding, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }
