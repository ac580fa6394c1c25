package metric

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegistry(t *testing.T) {
	r := NewMetricsRegistry()

	require.NotNil(t, r.PrometheusRegistry())
	require.NotNil(t, r.CoreMetrics())
}

func TestNilRegistryIsSafe(t *testing.T) {
	var r *MetricsRegistry

	m := r.CoreMetrics()
	require.Nil(t, m)

	// Record helpers on a nil Metrics must not panic.
	m.RecordEntityCreated("publisher", "channelbus")
	m.RecordEntityDestroyed("publisher", "channelbus")
	m.RecordCreateDuration("node", time.Millisecond)
	m.RecordMessagePublished("/chatter")
	m.RecordMessageTaken("/chatter")
	m.RecordError("invalid_argument")
	m.RecordBackendStatus(true)
	m.RecordBackendRTT(time.Millisecond)
}

func TestEntityLifecycleMetrics(t *testing.T) {
	r := NewMetricsRegistry()
	m := r.CoreMetrics()

	m.RecordEntityCreated("subscription", "channelbus")
	m.RecordEntityCreated("subscription", "channelbus")
	m.RecordEntityDestroyed("subscription", "channelbus")

	created := testutil.ToFloat64(m.EntitiesCreated.WithLabelValues("subscription", "channelbus"))
	assert.Equal(t, 2.0, created)

	live := testutil.ToFloat64(m.EntitiesLive.WithLabelValues("subscription"))
	assert.Equal(t, 1.0, live)
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wirebus_test_counter",
		Help: "test counter",
	})
	require.NoError(t, r.Register("test", "counter", counter))

	other := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wirebus_other_counter",
		Help: "other counter",
	})
	err := r.Register("test", "counter", other)
	assert.Error(t, err)
}

func TestUnregister(t *testing.T) {
	r := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wirebus_test_counter",
		Help: "test counter",
	})
	require.NoError(t, r.Register("test", "counter", counter))

	assert.True(t, r.Unregister("test", "counter"))
	assert.False(t, r.Unregister("test", "counter"))

	// Re-registering after unregister succeeds.
	require.NoError(t, r.Register("test", "counter", counter))
}

func TestServerAddress(t *testing.T) {
	s := NewServer(0, "", NewMetricsRegistry())
	assert.Equal(t, "http://localhost:9090/metrics", s.Address())

	s = NewServer(8123, "/m", NewMetricsRegistry())
	assert.Equal(t, "http://localhost:8123/m", s.Address())
}
