package api

import "github.com/dmdmdm-nz/linkmond/internal/netmon"

// LinkEventMessage is one frame on the /ws/links stream.
type LinkEventMessage struct {
	Type      netmon.EventType `json:"type"`
	Interface string           `json:"interface"`
	Index     int32            `json:"index"`
	Up        bool             `json:"up"`
}

func newLinkEventMessage(ev netmon.InterfaceEvent) LinkEventMessage {
	return LinkEventMessage{
		Type:      ev.Type,
		Interface: ev.InterfaceName,
		Index:     ev.Index,
		Up:        ev.Up(),
	}
}

type StatusResponse struct {
	Status string `json:"status"`
}
