//go:build linux

package netmon

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmdmdm-nz/linkmond/internal/metrics"
	"github.com/dmdmdm-nz/linkmond/internal/rtnl"
	log "github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

type linuxWatcher struct {
	cfg     WatcherConfig
	metrics *metrics.Metrics
}

// NewWatcher creates a Linux watcher that listens for RTM_NEWLINK
// notifications on the link multicast group.
func NewWatcher(cfg WatcherConfig, m *metrics.Metrics) Watcher {
	return &linuxWatcher{
		cfg:     cfg,
		metrics: m,
	}
}

func (w *linuxWatcher) Start(ctx context.Context, callback func(InterfaceEvent)) error {
	rep := &reporter{callback: callback, metrics: w.metrics}

	for {
		// Bind before listing so no change between the two is lost. The
		// listing socket is autobound and cannot take our pid.
		conn, err := rtnl.Dial(rtnl.NewProtocol(rtnl.NetlinkRoute), rtnl.NewEndpoint(rtnl.GroupLink))
		if err != nil {
			return fmt.Errorf("error opening link notification socket: %w", err)
		}

		if w.cfg.SocketBuffer > 0 {
			if err := conn.SetReadBuffer(w.cfg.SocketBuffer); err != nil {
				log.WithError(err).Warn("Unable to set socket receive buffer")
			}
		}

		if err := w.seed(callback); err != nil {
			_ = conn.Close()
			return err
		}

		log.WithField("endpoint", conn.LocalEndpoint()).Debug("Linux link watcher initialized")

		stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
		err = rtnl.Monitor(ctx, countingTransport{Transport: conn, metrics: w.metrics}, rep, w.cfg.BufferSize)
		stop()
		_ = conn.Close()

		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, unix.ENOBUFS) {
			log.Warn("Kernel dropped link notifications, resynchronizing")
			w.metrics.Resync()
			continue
		}
		if err != nil {
			return fmt.Errorf("error receiving link notifications: %w", err)
		}
		return nil
	}
}

// seed reports the current state of every non-loopback link.
func (w *linuxWatcher) seed(callback func(InterfaceEvent)) error {
	links, err := netlink.LinkList()
	if err != nil {
		return fmt.Errorf("error listing links: %w", err)
	}

	callback(InterfaceEvent{Type: snapshotBegin})
	for _, l := range links {
		attrs := l.Attrs()
		if attrs.RawFlags&rtnl.FlagLoopback != 0 {
			continue
		}

		up := attrs.RawFlags&rtnl.FlagLowerUp == rtnl.FlagLowerUp
		w.metrics.LinkState(attrs.Name, up)

		log.WithFields(log.Fields{
			"interface": attrs.Name,
			"index":     attrs.Index,
			"up":        up,
		}).Trace("Seeded link state")

		callback(eventFromState(LinkState{Name: attrs.Name, Index: int32(attrs.Index), Up: up}))
	}
	callback(InterfaceEvent{Type: snapshotEnd})
	return nil
}
