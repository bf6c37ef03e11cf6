package wire

import (
	"errors"
	"fmt"
)

// DecodeErrorCode categorizes decode failures.
type DecodeErrorCode string

const (
	// ErrCodeTruncated indicates the input ended before the value did.
	// Also returned when a length prefix claims more bytes than remain.
	ErrCodeTruncated DecodeErrorCode = "TRUNCATED"

	// ErrCodeInvalidInput indicates bytes that decode to an out-of-domain
	// value: non-UTF-8 string data, a boolean byte other than 0/1, an
	// option tag other than 0/1, or a length prefix exceeding the
	// platform's addressable range.
	ErrCodeInvalidInput DecodeErrorCode = "INVALID_INPUT"

	// ErrCodeUnknownVariant indicates a union tag outside the union's
	// declared variant range. Unrecoverable: the remainder of the stream
	// cannot be framed.
	ErrCodeUnknownVariant DecodeErrorCode = "UNKNOWN_VARIANT"

	// ErrCodeDepthExceeded indicates container nesting beyond the budget.
	ErrCodeDepthExceeded DecodeErrorCode = "DEPTH_EXCEEDED"
)

// DecodeError is the typed failure for any malformed byte stream.
//
// A DecodeError is fatal to the single decode operation that raised it:
// the Decoder becomes sticky (every subsequent read returns the same
// error) and consumes no further input past the failure offset.
type DecodeError struct {
	// Code identifies the failure category.
	Code DecodeErrorCode

	// Offset is the byte offset in the input at which decoding failed.
	Offset int

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s at offset %d: %s", e.Code, e.Offset, e.Message)
}

// IsTruncated reports whether err is a truncated-input decode error.
// Uses errors.As to handle wrapped errors.
func IsTruncated(err error) bool {
	var de *DecodeError
	return errors.As(err, &de) && de.Code == ErrCodeTruncated
}

// IsUnknownVariant reports whether err is an unknown-variant decode error.
func IsUnknownVariant(err error) bool {
	var de *DecodeError
	return errors.As(err, &de) && de.Code == ErrCodeUnknownVariant
}

// IsDepthExceeded reports whether err is a depth-budget decode error,
// on either the encode or decode side.
func IsDepthExceeded(err error) bool {
	var de *DecodeError
	if errors.As(err, &de) && de.Code == ErrCodeDepthExceeded {
		return true
	}
	var re *RangeError
	return errors.As(err, &re) && re.Kind == "depth"
}

// RangeError is the encode-side failure: a value that does not fit its
// target width, a negative length, or nesting past the depth budget.
// Encoding is otherwise total, so this is rejected before any bytes are
// written for the offending value.
type RangeError struct {
	// Kind names the target that was exceeded ("u32", "length", "depth").
	Kind string

	// Value is the offending value.
	Value int64
}

// Error implements the error interface.
func (e *RangeError) Error() string {
	return fmt.Sprintf("value %d out of range for %s", e.Value, e.Kind)
}
