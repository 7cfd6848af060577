package protocol

import (
	"errors"
	"fmt"
)

// ErrMalformedSequence is the sentinel for decode failures: a sequence
// matched a grammar's outer shape but carried an unparseable field.
var ErrMalformedSequence = errors.New("malformed mouse sequence")

// DecodeError describes a sequence that matched a grammar but could not
// be decoded. It is distinct from "not a mouse sequence", which is not an
// error at all.
type DecodeError struct {
	// Format is the grammar that matched ("sgr", "utf8", "urxvt").
	Format string

	// Field names the field that failed to decode.
	Field string

	// Raw is the matched sequence.
	Raw string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s sequence %q: bad %s: %v", e.Format, e.Raw, e.Field, e.Err)
	}
	return fmt.Sprintf("decode %s sequence %q: bad %s", e.Format, e.Raw, e.Field)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is to match DecodeError with ErrMalformedSequence.
func (e *DecodeError) Is(target error) bool {
	return target == ErrMalformedSequence
}
