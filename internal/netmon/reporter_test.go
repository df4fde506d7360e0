package netmon

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/dmdmdm-nz/linkmond/internal/metrics"
	"github.com/dmdmdm-nz/linkmond/internal/rtnl"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporter_ReportLink(t *testing.T) {
	m, err := metrics.New()
	require.NoError(t, err)

	var got []InterfaceEvent
	r := &reporter{
		callback: func(ev InterfaceEvent) { got = append(got, ev) },
		metrics:  m,
	}

	r.ReportLink(rtnl.LinkEvent{Name: "eth0", Index: 2, Up: true})
	r.ReportLink(rtnl.LinkEvent{Name: "eth0", Index: 2, Up: false})

	assert.Equal(t, []InterfaceEvent{
		{Type: LinkUp, InterfaceName: "eth0", Index: 2},
		{Type: LinkDown, InterfaceName: "eth0", Index: 2},
	}, got)

	expected := `
# HELP linkmond_link_up Last reported carrier state per interface (1 up, 0 down).
# TYPE linkmond_link_up gauge
linkmond_link_up{interface="eth0"} 0
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "linkmond_link_up"))
}

func TestReporter_ReportMalformed(t *testing.T) {
	m, err := metrics.New()
	require.NoError(t, err)

	r := &reporter{
		callback: func(ev InterfaceEvent) { t.Fatalf("unexpected event %+v", ev) },
		metrics:  m,
	}

	r.ReportMalformed(rtnl.Diagnostic{
		Kind:   rtnl.MalformedMessage,
		Reason: "short",
		Err:    rtnl.ErrMalformedMessage,
	})
	r.ReportMalformed(rtnl.Diagnostic{
		Kind: rtnl.MalformedBatch,
		Err:  rtnl.ErrMalformedBatch,
	})

	expected := `
# HELP linkmond_malformed_total Netlink data dropped while decoding, by kind.
# TYPE linkmond_malformed_total counter
linkmond_malformed_total{kind="batch"} 1
linkmond_malformed_total{kind="message"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "linkmond_malformed_total"))
}

type fixedTransport struct {
	batches [][]byte
}

func (f *fixedTransport) Receive(ctx context.Context, b []byte) (int, error) {
	if len(f.batches) == 0 {
		return 0, io.EOF
	}
	n := copy(b, f.batches[0])
	f.batches = f.batches[1:]
	return n, nil
}

func TestCountingTransport(t *testing.T) {
	m, err := metrics.New()
	require.NoError(t, err)

	ct := countingTransport{
		Transport: &fixedTransport{batches: [][]byte{{1, 2}, {3}}},
		metrics:   m,
	}

	buf := make([]byte, 8)
	for {
		_, err := ct.Receive(context.Background(), buf)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
	}

	expected := `
# HELP linkmond_batches_total Netlink datagrams received.
# TYPE linkmond_batches_total counter
linkmond_batches_total 2
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "linkmond_batches_total"))
}
