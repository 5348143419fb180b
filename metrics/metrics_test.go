package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/golang/snappy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/prometheus/prometheus/prompb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// remoteWriteServer decodes every remote-write request it receives.
func remoteWriteServer(t *testing.T, status int) (*httptest.Server, chan []prompb.TimeSeries) {
	t.Helper()
	received := make(chan []prompb.TimeSeries, 4)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/write", r.URL.Path)
		assert.Equal(t, "snappy", r.Header.Get("Content-Encoding"))
		assert.Equal(t, "application/x-protobuf", r.Header.Get("Content-Type"))
		assert.Equal(t, "0.1.0", r.Header.Get("X-Prometheus-Remote-Write-Version"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		decoded, err := snappy.Decode(nil, body)
		require.NoError(t, err)

		var writeReq prompb.WriteRequest
		require.NoError(t, proto.Unmarshal(decoded, &writeReq))

		received <- writeReq.Timeseries
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server, received
}

func findLabel(labels []prompb.Label, name string) string {
	for _, l := range labels {
		if l.Name == name {
			return l.Value
		}
	}
	return ""
}

func bySeriesName(ts []prompb.TimeSeries) map[string]prompb.TimeSeries {
	out := make(map[string]prompb.TimeSeries, len(ts))
	for _, s := range ts {
		key := findLabel(s.Labels, "__name__") + "|" + findLabel(s.Labels, "op")
		out[key] = s
	}
	return out
}

func TestPushRegistry_FlushWritesAllSeries(t *testing.T) {
	server, received := remoteWriteServer(t, http.StatusNoContent)

	registry := NewPushRegistry(PushConfig{
		URL:      server.URL,
		Prefix:   "test",
		Job:      "testjob",
		Instance: "testinstance",
	})

	gauge, err := registry.NewGauge(prometheus.GaugeOpts{Name: "size"})
	require.NoError(t, err)
	gauge.Set(3)
	gauge.Inc()

	counters, err := registry.NewCounterVec(prometheus.CounterOpts{Name: "ops_total"}, []string{"op"})
	require.NoError(t, err)
	counters.With(prometheus.Labels{"op": "create"}).Inc()
	counters.With(prometheus.Labels{"op": "create"}).Add(2)
	counters.With(prometheus.Labels{"op": "delete"}).Inc()

	require.NoError(t, registry.Flush(context.Background()))

	select {
	case ts := <-received:
		require.Len(t, ts, 3)
		series := bySeriesName(ts)

		size := series["test_size|"]
		assert.Equal(t, "testjob", findLabel(size.Labels, "job"))
		assert.Equal(t, "testinstance", findLabel(size.Labels, "instance"))
		require.Len(t, size.Samples, 1)
		assert.Equal(t, 4.0, size.Samples[0].Value)

		assert.Equal(t, 3.0, series["test_ops_total|create"].Samples[0].Value)
		assert.Equal(t, 1.0, series["test_ops_total|delete"].Samples[0].Value)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for metrics to be received")
	}
}

func TestPushRegistry_FlushEmptyIsNoop(t *testing.T) {
	registry := NewPushRegistry(PushConfig{URL: "http://127.0.0.1:1"})
	assert.NoError(t, registry.Flush(context.Background()))
}

func TestPushRegistry_FlushError(t *testing.T) {
	server, _ := remoteWriteServer(t, http.StatusBadRequest)

	registry := NewPushRegistry(PushConfig{URL: server.URL})
	gauge, err := registry.NewGauge(prometheus.GaugeOpts{Name: "size"})
	require.NoError(t, err)
	gauge.Set(1)

	err = registry.Flush(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 400")
}

func TestPushRegistry_GaugeVec(t *testing.T) {
	registry := NewPushRegistry(PushConfig{URL: "http://localhost:8428"})

	vec, err := registry.NewGaugeVec(prometheus.GaugeOpts{Name: "in_flight"}, []string{"op"})
	require.NoError(t, err)

	vec.With(prometheus.Labels{"op": "delete"}).Inc()
	vec.With(prometheus.Labels{"op": "delete"}).Inc()
	vec.With(prometheus.Labels{"op": "delete"}).Dec()

	s := registry.get("in_flight", prometheus.Labels{"op": "delete"})
	assert.Equal(t, 1.0, s.value)
	assert.Len(t, registry.series, 1)
}

func TestPushCounter_NegativeAddPanics(t *testing.T) {
	registry := NewPushRegistry(PushConfig{URL: "http://localhost:8428"})
	counter, err := registry.NewCounter(prometheus.CounterOpts{Name: "c"})
	require.NoError(t, err)

	assert.Panics(t, func() { counter.Add(-1) })
}

func TestSeriesKey_LabelOrderIndependent(t *testing.T) {
	a := seriesKey("m", prometheus.Labels{"a": "1", "b": "2"})
	b := seriesKey("m", prometheus.Labels{"b": "2", "a": "1"})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, seriesKey("m", prometheus.Labels{"a": "1"}))
}

func TestScrapeRegistry(t *testing.T) {
	registry, err := NewScrapeRegistry()
	require.NoError(t, err)

	gauge, err := registry.NewGauge(prometheus.GaugeOpts{Name: "test_gauge", Help: "A test gauge"})
	require.NoError(t, err)
	gauge.Set(42)

	counters, err := registry.NewCounterVec(prometheus.CounterOpts{Name: "test_ops_total", Help: "Ops"}, []string{"op"})
	require.NoError(t, err)
	counters.With(prometheus.Labels{"op": "list"}).Inc()

	gauges, err := registry.NewGaugeVec(prometheus.GaugeOpts{Name: "test_in_flight", Help: "In flight"}, []string{"op"})
	require.NoError(t, err)
	gauges.With(prometheus.Labels{"op": "list"}).Inc()

	expected := `
# HELP test_gauge A test gauge
# TYPE test_gauge gauge
test_gauge 42
`
	require.NoError(t, testutil.GatherAndCompare(registry.Gatherer(), strings.NewReader(expected), "test_gauge"))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	registry.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "test_gauge 42")
	assert.Contains(t, body, `test_ops_total{op="list"} 1`)
	assert.Contains(t, body, `test_in_flight{op="list"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestScrapeRegistry_DuplicateRegistration(t *testing.T) {
	registry, err := NewScrapeRegistry()
	require.NoError(t, err)

	_, err = registry.NewCounter(prometheus.CounterOpts{Name: "dup", Help: "x"})
	require.NoError(t, err)
	_, err = registry.NewCounter(prometheus.CounterOpts{Name: "dup", Help: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `registering "dup"`)
}
