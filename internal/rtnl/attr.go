package rtnl

import (
	"iter"

	"github.com/josharian/native"
)

// Attribute is one rtattr record. Value aliases the buffer it was read from
// and excludes alignment padding.
type Attribute struct {
	Type  uint16
	Value []byte
}

// Attributes walks the rtattr records packed in b. The walk stops quietly at
// the first record whose length is shorter than its header or runs past the
// end of b; the kernel may leave padding there.
func Attributes(b []byte) iter.Seq[Attribute] {
	return func(yield func(Attribute) bool) {
		for off := 0; len(b)-off >= SizeofAttrHeader; {
			remaining := len(b) - off
			length := int(native.Endian.Uint16(b[off : off+2]))
			if length < SizeofAttrHeader || length > remaining {
				return
			}

			a := Attribute{
				Type:  native.Endian.Uint16(b[off+2 : off+4]),
				Value: b[off+SizeofAttrHeader : off+length : off+length],
			}
			if !yield(a) {
				return
			}

			next := align(length)
			if next > remaining {
				return
			}
			off += next
		}
	}
}
