package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_LinkEvent(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	m.LinkEvent("eth0", true)
	m.LinkEvent("eth0", false)
	m.LinkEvent("wlan0", true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.linkEvents.WithLabelValues("up")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.linkEvents.WithLabelValues("down")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.linkUp.WithLabelValues("eth0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.linkUp.WithLabelValues("wlan0")))
}

func TestMetrics_LinkStateDoesNotCount(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	m.LinkState("eth0", true)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.linkUp.WithLabelValues("eth0")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.linkEvents.WithLabelValues("up")))
}

func TestMetrics_Counters(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	m.Malformed("batch")
	m.Malformed("message")
	m.Malformed("message")
	m.Batch()
	m.Resync()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.malformed.WithLabelValues("batch")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.malformed.WithLabelValues("message")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.batches))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resyncs))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	require.NotPanics(t, func() {
		m.LinkEvent("eth0", true)
		m.LinkState("eth0", true)
		m.Malformed("batch")
		m.Batch()
		m.Resync()
	})
}

func TestMetrics_Handler(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	m.LinkEvent("eth0", true)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `linkmond_link_events_total{state="up"} 1`)
	assert.Contains(t, string(body), `linkmond_link_up{interface="eth0"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
