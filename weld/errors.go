package weld

import "errors"

// Every error returned by this package wraps one of these. They are caller
// errors: retrying with the same buffers cannot succeed.
var (
	// ErrMalformedLength: a position buffer not divisible by 3, a
	// connectivity buffer not divisible by its arity, or source and
	// destination buffers of different lengths.
	ErrMalformedLength = errors.New("malformed buffer length")
	// ErrIndexOutOfRange: a connectivity entry references a vertex the
	// index map does not know, or a remapped value does not fit the
	// destination index width.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrInconsistentMap: an index map paired with a position buffer it was
	// not built from.
	ErrInconsistentMap = errors.New("index map inconsistent with buffer")
)
