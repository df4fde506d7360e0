package netmon

import (
	"context"

	"github.com/dmdmdm-nz/linkmond/internal/metrics"
	"github.com/dmdmdm-nz/linkmond/internal/rtnl"
	log "github.com/sirupsen/logrus"
)

// reporter turns decoder output into watcher callbacks.
type reporter struct {
	callback func(InterfaceEvent)
	metrics  *metrics.Metrics
}

func (r *reporter) ReportLink(ev rtnl.LinkEvent) {
	log.WithFields(log.Fields{
		"interface": ev.Name,
		"index":     ev.Index,
		"state":     ev.State(),
	}).Trace("Received link notification")

	r.metrics.LinkEvent(ev.Name, ev.Up)
	r.callback(eventFromLink(ev))
}

func (r *reporter) ReportMalformed(d rtnl.Diagnostic) {
	fields := log.Fields{"kind": d.Kind}
	if d.Interface != "" {
		fields["interface"] = d.Interface
	}
	log.WithFields(fields).WithError(d.Err).Warn("Dropped malformed netlink data")

	r.metrics.Malformed(string(d.Kind))
}

// countingTransport counts received datagrams.
type countingTransport struct {
	rtnl.Transport
	metrics *metrics.Metrics
}

func (t countingTransport) Receive(ctx context.Context, b []byte) (int, error) {
	n, err := t.Transport.Receive(ctx, b)
	if err == nil && n > 0 {
		t.metrics.Batch()
	}
	return n, err
}
