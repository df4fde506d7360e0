package rtnl

import (
	"bytes"
	"fmt"
	"os"

	"github.com/josharian/native"
)

// Endpoint is the bind target of a netlink socket: the sockaddr_nl triple of
// family, process identifier and multicast group mask. The zero value is not
// valid; use NewEndpoint.
type Endpoint struct {
	family uint16
	pid    uint32
	groups uint32
}

// NewEndpoint returns an Endpoint subscribed to groups and bound to the calling
// process id. The group mask is not validated; the kernel rejects unknown
// groups when the socket is bound.
func NewEndpoint(groups uint32) Endpoint {
	return NewEndpointWithPID(groups, uint32(os.Getpid()))
}

// NewEndpointWithPID is like NewEndpoint with an explicit port id. A pid of 0
// lets the kernel assign one at bind time.
func NewEndpointWithPID(groups, pid uint32) Endpoint {
	return Endpoint{
		family: FamilyNetlink,
		pid:    pid,
		groups: groups,
	}
}

func (e Endpoint) Family() uint16 { return e.family }
func (e Endpoint) PID() uint32    { return e.pid }
func (e Endpoint) Groups() uint32 { return e.groups }

// Size is the length of the native address structure.
func (e Endpoint) Size() int { return SizeofSockaddrNetlink }

// Bytes returns the native sockaddr_nl layout of the endpoint. The padding
// field is always zero.
func (e Endpoint) Bytes() []byte {
	b := make([]byte, SizeofSockaddrNetlink)
	native.Endian.PutUint16(b[0:2], e.family)
	native.Endian.PutUint32(b[4:8], e.pid)
	native.Endian.PutUint32(b[8:12], e.groups)
	return b
}

// Equal reports whether both endpoints have the same family, pid and groups.
func (e Endpoint) Equal(o Endpoint) bool {
	return e == o
}

// Compare orders endpoints the way memcmp orders their native layouts. It
// returns -1, 0 or +1.
func (e Endpoint) Compare(o Endpoint) int {
	return bytes.Compare(e.Bytes(), o.Bytes())
}

func (e Endpoint) String() string {
	return fmt.Sprintf("netlink(pid=%d, groups=%#x)", e.pid, e.groups)
}
