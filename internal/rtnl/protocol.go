package rtnl

// Protocol describes which socket to open: a raw netlink socket speaking the
// given netlink protocol number.
type Protocol struct {
	number int
}

// NewProtocol returns the descriptor for netlink protocol number, usually
// NetlinkRoute.
func NewProtocol(number int) Protocol {
	return Protocol{number: number}
}

func (p Protocol) Type() int   { return SockRaw }
func (p Protocol) Number() int { return p.number }
func (p Protocol) Family() int { return FamilyNetlink }
