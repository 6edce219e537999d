// Package wire implements the TLV primitives shared by every on-the-wire
// structure in the core: the length-prefixed component encoding used by
// Name, and the Buffer/Wire scatter-gather types used to encode LSAs
// without an intermediate copy.
package wire

import "fmt"

// Buffer is a contiguous run of encoded bytes.
type Buffer []byte

// Wire is a sequence of Buffers that together form one TLV block. It may
// be backed by non-contiguous memory.
type Wire []Buffer

// Join concatenates all buffers in the Wire into a single byte slice.
func (w Wire) Join() []byte {
	if len(w) == 0 {
		return []byte{}
	}
	if len(w) == 1 {
		return w[0]
	}

	n := 0
	for _, v := range w {
		n += len(v)
	}

	b := make([]byte, n)
	bp := copy(b, w[0])
	for _, v := range w[1:] {
		bp += copy(b[bp:], v)
	}
	return b
}

// Length returns the total length in bytes of the Wire.
func (w Wire) Length() uint64 {
	ret := uint64(0)
	for _, v := range w {
		ret += uint64(len(v))
	}
	return ret
}

// ErrFormat reports a malformed TLV block.
type ErrFormat struct {
	Msg string
}

func (e ErrFormat) Error() string { return e.Msg }

// ErrMissingField reports a required TLV sub-element that was not present.
type ErrMissingField struct {
	Field string
}

func (e ErrMissingField) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// ErrUnexpectedType reports a TLV sub-element in an order or of a type the
// decoder did not expect.
type ErrUnexpectedType struct {
	Want TLNum
	Got  TLNum
}

func (e ErrUnexpectedType) Error() string {
	return fmt.Sprintf("unexpected TLV type: want %d, got %d", e.Want, e.Got)
}
