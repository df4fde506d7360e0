//go:build !linux

package netmon

import (
	"context"
	"errors"

	"github.com/dmdmdm-nz/linkmond/internal/metrics"
)

type unsupportedWatcher struct{}

// NewWatcher returns a watcher that always fails: link notifications are
// only read from rtnetlink.
func NewWatcher(cfg WatcherConfig, m *metrics.Metrics) Watcher {
	return unsupportedWatcher{}
}

func (unsupportedWatcher) Start(ctx context.Context, callback func(InterfaceEvent)) error {
	return errors.ErrUnsupported
}
