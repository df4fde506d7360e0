//go:build linux

package rtnl

import "golang.org/x/sys/unix"

// Sockaddr converts the endpoint into the address used by bind(2).
func (e Endpoint) Sockaddr() *unix.SockaddrNetlink {
	return &unix.SockaddrNetlink{
		Family: e.family,
		Pid:    e.pid,
		Groups: e.groups,
	}
}
