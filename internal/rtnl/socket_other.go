//go:build !linux

package rtnl

import (
	"context"
	"errors"
)

// Conn is only available on Linux.
type Conn struct{}

func Dial(p Protocol, local Endpoint) (*Conn, error) {
	return nil, errors.ErrUnsupported
}

func (c *Conn) LocalEndpoint() Endpoint { return Endpoint{} }

func (c *Conn) SetReadBuffer(bytes int) error { return errors.ErrUnsupported }

func (c *Conn) Receive(ctx context.Context, b []byte) (int, error) {
	return 0, errors.ErrUnsupported
}

func (c *Conn) Close() error { return nil }
