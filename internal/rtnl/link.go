package rtnl

import (
	"bytes"
	"fmt"

	"github.com/josharian/native"
)

// InterfaceInfo is the fixed ifinfomsg header that starts every link message.
type InterfaceInfo struct {
	Family     uint8
	DeviceType uint16
	Index      int32
	Flags      uint32
	ChangeMask uint32
}

// ParseInterfaceInfo reads the ifinfomsg at the start of a link message
// payload and returns it together with the attribute region that follows.
func ParseInterfaceInfo(payload []byte) (InterfaceInfo, []byte, error) {
	if len(payload) < SizeofInterfaceInfo {
		return InterfaceInfo{}, nil, fmt.Errorf("%w: interface info short read (%d); want %d",
			ErrMalformedMessage, len(payload), SizeofInterfaceInfo)
	}

	info := InterfaceInfo{
		Family:     payload[0],
		DeviceType: native.Endian.Uint16(payload[2:4]),
		Index:      int32(native.Endian.Uint32(payload[4:8])),
		Flags:      native.Endian.Uint32(payload[8:12]),
		ChangeMask: native.Endian.Uint32(payload[12:16]),
	}
	return info, payload[align(SizeofInterfaceInfo):], nil
}

// IsLoopback reports whether the interface carries IFF_LOOPBACK.
func (i InterfaceInfo) IsLoopback() bool {
	return i.Flags&FlagLoopback != 0
}

// IsUp reports the carrier state: IFF_LOWER_UP, not the administrative flag.
func (i InterfaceInfo) IsUp() bool {
	return i.Flags&FlagLowerUp == FlagLowerUp
}

// LinkEvent is the decoded state of one interface after a link notification.
type LinkEvent struct {
	// Name may be empty when the kernel omitted IFLA_IFNAME.
	Name  string
	Index int32
	Up    bool
}

func (e LinkEvent) State() string {
	if e.Up {
		return "up"
	}
	return "down"
}

// Decode classifies one message. It returns ok=false without an error for
// messages that are not RTM_NEWLINK and for loopback interfaces, and an error
// wrapping ErrMalformedMessage when the payload cannot hold an ifinfomsg.
func Decode(m RawMessage) (ev LinkEvent, ok bool, err error) {
	if m.Type != TypeNewLink {
		return LinkEvent{}, false, nil
	}

	info, attrs, err := ParseInterfaceInfo(m.Payload)
	if err != nil {
		return LinkEvent{}, false, err
	}
	if info.IsLoopback() {
		return LinkEvent{}, false, nil
	}

	ev = LinkEvent{
		Index: info.Index,
		Up:    info.IsUp(),
	}
	for a := range Attributes(attrs) {
		if a.Type == AttrIfname {
			ev.Name = interfaceName(a.Value)
		}
	}
	return ev, true, nil
}

// interfaceName copies an IFLA_IFNAME value, stopping at the first NUL and
// never keeping more than IfNameSize bytes.
func interfaceName(b []byte) string {
	if len(b) > IfNameSize {
		b = b[:IfNameSize]
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// DecodeBatch decodes every message in a received buffer and hands the
// results to r. A malformed message is reported and skipped; a malformed
// batch is reported once and ends decoding of b.
func DecodeBatch(b []byte, r Reporter) {
	for m, err := range Messages(b) {
		if err != nil {
			r.ReportMalformed(newDiagnostic(MalformedBatch, err))
			return
		}

		ev, ok, err := Decode(m)
		if err != nil {
			r.ReportMalformed(newDiagnostic(MalformedMessage, err))
			continue
		}
		if ok {
			r.ReportLink(ev)
		}
	}
}
