package netmon

import (
	"time"

	"github.com/dmdmdm-nz/linkmond/internal/rtnl"
)

type EventType string

const (
	LinkUp   EventType = "LINK_UP"
	LinkDown EventType = "LINK_DOWN"

	// Watcher-to-service markers around a full link snapshot. They are never
	// delivered to subscribers.
	snapshotBegin EventType = "SNAPSHOT_BEGIN"
	snapshotEnd   EventType = "SNAPSHOT_END"
)

type InterfaceEvent struct {
	Type          EventType
	InterfaceName string
	Index         int32
}

func (e InterfaceEvent) Up() bool {
	return e.Type == LinkUp
}

type EventHandler func(event InterfaceEvent)

// LinkState is the last known carrier state of one interface.
type LinkState struct {
	Name  string    `json:"name"`
	Index int32     `json:"index"`
	Up    bool      `json:"up"`
	Since time.Time `json:"since"`
}

func eventFromLink(ev rtnl.LinkEvent) InterfaceEvent {
	t := LinkDown
	if ev.Up {
		t = LinkUp
	}
	return InterfaceEvent{Type: t, InterfaceName: ev.Name, Index: ev.Index}
}

func eventFromState(st LinkState) InterfaceEvent {
	return eventFromLink(rtnl.LinkEvent{Name: st.Name, Index: st.Index, Up: st.Up})
}
