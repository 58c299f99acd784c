package qpack

import "errors"

// Sentinel errors returned by the decoder. ShortRead marks a truncated
// buffer the caller should retry once more bytes arrive; the others are
// malformed input and are fatal to the stream that produced them (see the
// error-kind mapping in the root package).
var (
	ErrShortRead              = errors.New("qpack: short read")
	ErrStaticIndexOutOfRange  = errors.New("qpack: static table index out of range")
	ErrUnknownPattern         = errors.New("qpack: unknown instruction pattern")
	ErrIntegerOverflow        = errors.New("qpack: prefixed integer overflow")
	ErrStringLengthOutOfRange = errors.New("qpack: string length exceeds remaining buffer")
)
