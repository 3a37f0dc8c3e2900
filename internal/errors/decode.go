package errors

import (
	"errors"
	"fmt"
)

// Decode failure sentinels. A *DecodeError unwraps to exactly one of these,
// so callers can branch with errors.Is.
var (
	ErrTruncated      = errors.New("truncated stream")
	ErrUnknownTag     = errors.New("unrecognized tag")
	ErrInvalidLength  = errors.New("invalid container length")
	ErrExcessNesting  = errors.New("excess nesting")
	errUnknownFailure = errors.New("decode failure")
)

// DecodeKind identifies which part of the wire grammar was violated.
type DecodeKind int

const (
	KindTruncated DecodeKind = iota + 1
	KindUnknownTag
	KindInvalidLength
	KindExcessNesting
)

func (k DecodeKind) String() string {
	switch k {
	case KindTruncated:
		return "truncated"
	case KindUnknownTag:
		return "unknown-tag"
	case KindInvalidLength:
		return "invalid-length"
	case KindExcessNesting:
		return "excess-nesting"
	default:
		return fmt.Sprintf("DecodeKind(%d)", int(k))
	}
}

func (k DecodeKind) sentinel() error {
	switch k {
	case KindTruncated:
		return ErrTruncated
	case KindUnknownTag:
		return ErrUnknownTag
	case KindInvalidLength:
		return ErrInvalidLength
	case KindExcessNesting:
		return ErrExcessNesting
	default:
		return errUnknownFailure
	}
}

// DecodeError reports where and why a MessagePack buffer could not be decoded.
// Offset is the absolute byte position in the input buffer.
type DecodeError struct {
	Kind   DecodeKind
	Offset int
	Tag    byte
	Detail string
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("%v at offset %d", e.Kind.sentinel(), e.Offset)
	if e.Kind == KindUnknownTag {
		msg = fmt.Sprintf("%s (byte 0x%02x)", msg, e.Tag)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap returns the sentinel for the error kind.
func (e *DecodeError) Unwrap() error {
	return e.Kind.sentinel()
}

// NewTruncatedError reports that the buffer ended inside a token or before a
// required item.
func NewTruncatedError(offset int, format string, args ...any) *DecodeError {
	return &DecodeError{Kind: KindTruncated, Offset: offset, Detail: fmt.Sprintf(format, args...)}
}

// NewUnknownTagError reports a leading byte outside the type grammar.
func NewUnknownTagError(offset int, tag byte) *DecodeError {
	return &DecodeError{Kind: KindUnknownTag, Offset: offset, Tag: tag}
}

// NewInvalidLengthError reports a declared length that cannot fit in the
// bytes remaining after offset.
func NewInvalidLengthError(offset int, format string, args ...any) *DecodeError {
	return &DecodeError{Kind: KindInvalidLength, Offset: offset, Detail: fmt.Sprintf(format, args...)}
}

// NewExcessNestingError reports a container nested deeper than the limit.
func NewExcessNestingError(offset, limit int) *DecodeError {
	return &DecodeError{
		Kind:   KindExcessNesting,
		Offset: offset,
		Detail: fmt.Sprintf("nesting exceeds maximum depth %d", limit),
	}
}

// IsDecodeError reports whether err carries a *DecodeError.
func IsDecodeError(err error) bool {
	var decErr *DecodeError
	return errors.As(err, &decErr)
}

// DecodeOffset returns the offset of the *DecodeError wrapped in err, if any.
func DecodeOffset(err error) (int, bool) {
	var decErr *DecodeError
	if errors.As(err, &decErr) {
		return decErr.Offset, true
	}
	return 0, false
}
