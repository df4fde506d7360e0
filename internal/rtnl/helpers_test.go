package rtnl

import (
	"testing"

	"github.com/josharian/native"
	"github.com/mdlayher/netlink"
	"github.com/stretchr/testify/require"
)

// recordingReporter keeps everything the decoder reports, in order.
type recordingReporter struct {
	events      []LinkEvent
	diagnostics []Diagnostic
}

func (r *recordingReporter) ReportLink(ev LinkEvent) {
	r.events = append(r.events, ev)
}

func (r *recordingReporter) ReportMalformed(d Diagnostic) {
	r.diagnostics = append(r.diagnostics, d)
}

// interfaceInfo encodes an ifinfomsg.
func interfaceInfo(index int32, flags uint32) []byte {
	b := make([]byte, SizeofInterfaceInfo)
	native.Endian.PutUint16(b[2:4], 1) // ARPHRD_ETHER
	native.Endian.PutUint32(b[4:8], uint32(index))
	native.Endian.PutUint32(b[8:12], flags)
	native.Endian.PutUint32(b[12:16], 0xffffffff)
	return b
}

// encodeMessage marshals a netlink message with the given type and an
// already aligned payload.
func encodeMessage(t *testing.T, typ uint16, payload []byte) []byte {
	t.Helper()

	m := netlink.Message{
		Header: netlink.Header{
			Length:   uint32(SizeofHeader + len(payload)),
			Type:     netlink.HeaderType(typ),
			Sequence: 1,
		},
		Data: payload,
	}
	b, err := m.MarshalBinary()
	require.NoError(t, err)
	return b
}

// linkMessage builds an RTM_NEWLINK message. Each name becomes one
// IFLA_IFNAME attribute.
func linkMessage(t *testing.T, index int32, flags uint32, names ...string) []byte {
	t.Helper()

	payload := interfaceInfo(index, flags)
	if len(names) > 0 {
		ae := netlink.NewAttributeEncoder()
		ae.Uint32(4, 1500) // IFLA_MTU
		for _, name := range names {
			ae.String(AttrIfname, name)
		}
		attrs, err := ae.Encode()
		require.NoError(t, err)
		payload = append(payload, attrs...)
	}
	return encodeMessage(t, TypeNewLink, payload)
}

// rawMessage builds a message by hand so that the declared length is exactly
// header plus payload, followed by zero padding up to the alignment boundary.
func rawMessage(typ uint16, payload []byte) []byte {
	length := SizeofHeader + len(payload)
	b := make([]byte, align(length))
	native.Endian.PutUint32(b[0:4], uint32(length))
	native.Endian.PutUint16(b[4:6], typ)
	native.Endian.PutUint32(b[8:12], 7)
	copy(b[SizeofHeader:], payload)
	return b
}

// rawAttr builds an rtattr whose header declares length, followed by value
// and zero padding.
func rawAttr(length, typ uint16, value []byte) []byte {
	b := make([]byte, align(SizeofAttrHeader+len(value)))
	native.Endian.PutUint16(b[0:2], length)
	native.Endian.PutUint16(b[2:4], typ)
	copy(b[SizeofAttrHeader:], value)
	return b
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
