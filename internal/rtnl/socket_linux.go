//go:build linux

package rtnl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync/atomic"

	"github.com/mdlayher/socket"
	"golang.org/x/sys/unix"
)

// Conn is a netlink socket opened from a Protocol and bound to an Endpoint.
// It implements Transport.
type Conn struct {
	c      *socket.Conn
	local  Endpoint
	closed atomic.Bool
}

// Dial opens a socket for p and binds it to local. Binding needs the caller
// to be allowed to join the requested groups, and fails with EADDRINUSE when
// another socket in the process already holds the endpoint's pid.
func Dial(p Protocol, local Endpoint) (*Conn, error) {
	c, err := socket.Socket(p.Family(), p.Type(), p.Number(), "netlink", nil)
	if err != nil {
		return nil, fmt.Errorf("open netlink socket: %w", err)
	}

	if err := c.Bind(local.Sockaddr()); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("bind %s: %w", local, err)
	}

	return &Conn{c: c, local: local}, nil
}

// LocalEndpoint returns the endpoint the socket was bound to.
func (c *Conn) LocalEndpoint() Endpoint { return c.local }

// SetReadBuffer sets SO_RCVBUF, the kernel side queue that overflows with
// ENOBUFS when notifications arrive faster than they are read.
func (c *Conn) SetReadBuffer(bytes int) error {
	return c.c.SetsockoptInt(unix.SOL_SOCKET, unix.SO_RCVBUF, bytes)
}

// Receive reads one datagram into b. Datagrams that were not sent by the
// kernel are discarded. After Close it returns io.EOF.
func (c *Conn) Receive(ctx context.Context, b []byte) (int, error) {
	for {
		n, from, err := c.c.Recvfrom(ctx, b, 0)
		if err != nil {
			if c.closed.Load() || errors.Is(err, os.ErrClosed) || errors.Is(err, net.ErrClosed) {
				return 0, io.EOF
			}
			return 0, err
		}

		if sa, ok := from.(*unix.SockaddrNetlink); ok && sa.Pid != 0 {
			continue
		}
		return n, nil
	}
}

func (c *Conn) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.c.Close()
}
