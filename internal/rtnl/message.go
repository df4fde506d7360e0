package rtnl

import (
	"fmt"
	"iter"

	"github.com/josharian/native"
)

// Header is a decoded nlmsghdr.
type Header struct {
	Length   uint32
	Type     uint16
	Flags    uint16
	Sequence uint32
	PortID   uint32
}

func parseHeader(b []byte) Header {
	return Header{
		Length:   native.Endian.Uint32(b[0:4]),
		Type:     native.Endian.Uint16(b[4:6]),
		Flags:    native.Endian.Uint16(b[6:8]),
		Sequence: native.Endian.Uint32(b[8:12]),
		PortID:   native.Endian.Uint32(b[12:16]),
	}
}

// RawMessage is one netlink message inside a receive buffer. Payload and the
// slice returned by Bytes alias that buffer and are only valid until it is
// reused.
type RawMessage struct {
	Header
	Payload []byte

	raw []byte
}

// Bytes returns the message as received, header included and without the
// trailing alignment padding.
func (m RawMessage) Bytes() []byte { return m.raw }

// Messages walks the netlink messages packed in b. A header whose declared
// length is shorter than a header or runs past the end of b yields a single
// ErrMalformedBatch error and ends the sequence. Trailing bytes too short to
// hold a header are ignored.
func Messages(b []byte) iter.Seq2[RawMessage, error] {
	return func(yield func(RawMessage, error) bool) {
		for off := 0; len(b)-off >= SizeofHeader; {
			remaining := len(b) - off
			h := parseHeader(b[off:])

			length := int(h.Length)
			if length < SizeofHeader || length > remaining {
				yield(RawMessage{}, fmt.Errorf("%w: message at offset %d declares length %d with %d bytes remaining",
					ErrMalformedBatch, off, h.Length, remaining))
				return
			}

			m := RawMessage{
				Header:  h,
				Payload: b[off+SizeofHeader : off+length : off+length],
				raw:     b[off : off+length : off+length],
			}
			if !yield(m, nil) {
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
