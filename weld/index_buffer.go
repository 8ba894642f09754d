package weld

import (
	"fmt"
	"math"
)

// IndexBuffer gives width-agnostic access to a connectivity buffer. Index
// values are read and written as int regardless of how they are stored.
type IndexBuffer interface {
	Len() int
	Get(i int) int
	// Set panics when v lies outside [0, MaxValue()]; values are never wrapped.
	Set(i, v int)
	// MaxValue is the largest index the storage width can hold.
	MaxValue() int
}

// Index is the set of storage widths an index buffer may use.
type Index interface {
	~uint8 | ~uint16 | ~uint32
}

// Indices is the single IndexBuffer implementation, instantiated per width.
type Indices[E Index] []E

type (
	ByteIndices  = Indices[uint8]
	ShortIndices = Indices[uint16]
	IntIndices   = Indices[uint32]
)

func (b Indices[E]) Len() int { return len(b) }
func (b Indices[E]) Get(i int) int { return int(b[i]) }
func (b Indices[E]) Set(i, v int) {
	if v < 0 || v > b.MaxValue() {
		panic(fmt.Sprintf("index %d does not fit a %d bit buffer", v, Width(b)))
	}
	b[i] = E(v)
}
func (b Indices[E]) MaxValue() int {
	m := int(^E(0))
	if m < 0 { // uint32 on a 32 bit platform
		return math.MaxInt
	}
	return m
}

// NewIndexBuffer allocates size zeroed entries in the narrowest width able to
// hold maxValue.
func NewIndexBuffer(maxValue, size int) IndexBuffer {
	switch {
	case maxValue <= math.MaxUint8:
		return make(ByteIndices, size)
	case maxValue <= math.MaxUint16:
		return make(ShortIndices, size)
	default:
		return make(IntIndices, size)
	}
}

// NewIndexBufferFrom copies values into the narrowest buffer that holds them.
func NewIndexBufferFrom(values []int) (IndexBuffer, error) {
	var maxValue int
	for i, v := range values {
		if v < 0 || uint64(v) > math.MaxUint32 {
			return nil, fmt.Errorf("value %d at position %d: %w", v, i, ErrIndexOutOfRange)
		}
		maxValue = max(maxValue, v)
	}
	b := NewIndexBuffer(maxValue, len(values))
	for i, v := range values {
		b.Set(i, v)
	}
	return b, nil
}

// Values reads a buffer back as plain ints.
func Values(b IndexBuffer) []int {
	if b == nil {
		return nil
	}
	out := make([]int, b.Len())
	for i := range out {
		out[i] = b.Get(i)
	}
	return out
}

// Width returns the storage width of b in bits.
func Width(b IndexBuffer) int {
	switch m := b.MaxValue(); {
	case m <= math.MaxUint8:
		return 8
	case m <= math.MaxUint16:
		return 16
	default:
		return 32
	}
}
