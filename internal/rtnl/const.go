package rtnl

// Values from <linux/netlink.h>, <linux/rtnetlink.h> and <linux/if.h>. They are
// declared here rather than taken from x/sys/unix so the decoder builds and
// tests on every platform.
const (
	FamilyNetlink = 16 // AF_NETLINK
	SockRaw       = 3  // SOCK_RAW
	NetlinkRoute  = 0  // NETLINK_ROUTE
	GroupLink     = 1  // RTMGRP_LINK

	TypeNewLink = 16 // RTM_NEWLINK

	AttrIfname = 3 // IFLA_IFNAME

	FlagLoopback = 0x8     // IFF_LOOPBACK
	FlagLowerUp  = 0x10000 // IFF_LOWER_UP

	IfNameSize = 16 // IFNAMSIZ
)

const (
	alignTo = 4 // NLMSG_ALIGNTO, RTA_ALIGNTO

	SizeofHeader          = 16
	SizeofInterfaceInfo   = 16
	SizeofAttrHeader      = 4
	SizeofSockaddrNetlink = 12
)

// align rounds n up to the netlink alignment boundary.
func align(n int) int {
	return (n + alignTo - 1) &^ (alignTo - 1)
}
