package metrics

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/golang/snappy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/prometheus/prompb"
)

// DefaultTimeout bounds a single remote-write request.
const DefaultTimeout = 30 * time.Second

// PushConfig configures a PushRegistry.
type PushConfig struct {
	// URL is the base URL of the remote write endpoint, e.g. "http://localhost:8428".
	URL string
	// Prefix is prepended to every metric name, followed by an underscore.
	Prefix string
	// Job and Instance are attached as labels to every series.
	Job      string
	Instance string
	// Timeout defaults to DefaultTimeout.
	Timeout time.Duration
}

// PushRegistry implements Registry for short-lived processes. Metric updates
// only touch memory; Flush writes the current value of every series.
type PushRegistry struct {
	cfg        PushConfig
	httpClient *http.Client

	mu     sync.Mutex
	series map[string]*series
}

type series struct {
	name   string
	labels prometheus.Labels
	value  float64
}

// NewPushRegistry creates a PushRegistry.
func NewPushRegistry(cfg PushConfig) *PushRegistry {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &PushRegistry{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		series:     make(map[string]*series),
	}
}

// NewGauge creates a Gauge.
func (r *PushRegistry) NewGauge(opts prometheus.GaugeOpts) (Gauge, error) {
	return pushGauge{registry: r, s: r.get(opts.Name, nil)}, nil
}

// NewGaugeVec creates a GaugeVec.
func (r *PushRegistry) NewGaugeVec(opts prometheus.GaugeOpts, labels []string) (GaugeVec, error) {
	return pushGaugeVec{registry: r, name: opts.Name}, nil
}

// NewCounter creates a Counter.
func (r *PushRegistry) NewCounter(opts prometheus.CounterOpts) (Counter, error) {
	return pushCounter{registry: r, s: r.get(opts.Name, nil)}, nil
}

// NewCounterVec creates a CounterVec.
func (r *PushRegistry) NewCounterVec(opts prometheus.CounterOpts, labels []string) (CounterVec, error) {
	return pushCounterVec{registry: r, name: opts.Name}, nil
}

// get returns the series for name and labels, creating it at zero.
func (r *PushRegistry) get(name string, labels prometheus.Labels) *series {
	key := seriesKey(name, labels)

	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.series[key]
	if !ok {
		copied := make(prometheus.Labels, len(labels))
		for k, v := range labels {
			copied[k] = v
		}
		s = &series{name: name, labels: copied}
		r.series[key] = s
	}
	return s
}

func (r *PushRegistry) update(s *series, fn func(float64) float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.value = fn(s.value)
}

// Flush writes every series to the remote write endpoint in a single request.
func (r *PushRegistry) Flush(ctx context.Context) error {
	now := time.Now().UnixMilli()

	r.mu.Lock()
	timeseries := make([]prompb.TimeSeries, 0, len(r.series))
	for _, s := range r.series {
		timeseries = append(timeseries, r.toTimeSeries(s, now))
	}
	r.mu.Unlock()

	if len(timeseries) == 0 {
		return nil
	}

	data, err := proto.Marshal(&prompb.WriteRequest{Timeseries: timeseries})
	if err != nil {
		return fmt.Errorf("marshaling write request: %w", err)
	}
	compressed := snappy.Encode(nil, data)

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.URL+"/api/v1/write", bytes.NewReader(compressed))
	if err != nil {
		return fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Encoding", "snappy")
	req.Header.Set("Content-Type", "application/x-protobuf")
	req.Header.Set("X-Prometheus-Remote-Write-Version", "0.1.0")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// toTimeSeries must be called with r.mu held.
func (r *PushRegistry) toTimeSeries(s *series, timestamp int64) prompb.TimeSeries {
	name := s.name
	if r.cfg.Prefix != "" {
		name = r.cfg.Prefix + "_" + name
	}

	labels := make([]prompb.Label, 0, len(s.labels)+3)
	labels = append(labels, prompb.Label{Name: "__name__", Value: name})
	if r.cfg.Job != "" {
		labels = append(labels, prompb.Label{Name: "job", Value: r.cfg.Job})
	}
	if r.cfg.Instance != "" {
		labels = append(labels, prompb.Label{Name: "instance", Value: r.cfg.Instance})
	}
	for k, v := range s.labels {
		labels = append(labels, prompb.Label{Name: k, Value: v})
	}

	return prompb.TimeSeries{
		Labels:  labels,
		Samples: []prompb.Sample{{Value: s.value, Timestamp: timestamp}},
	}
}

// seriesKey builds a stable map key from the name and sorted labels.
func seriesKey(name string, labels prometheus.Labels) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(name)
	for _, k := range keys {
		b.WriteString("|" + k + "=" + labels[k])
	}
	return b.String()
}

type pushGauge struct {
	registry *PushRegistry
	s        *series
}

func (g pushGauge) Set(v float64) { g.registry.update(g.s, func(float64) float64 { return v }) }
func (g pushGauge) Inc()          { g.add(1) }
func (g pushGauge) Dec()          { g.add(-1) }

func (g pushGauge) add(v float64) {
	g.registry.update(g.s, func(cur float64) float64 { return cur + v })
}

type pushCounter struct {
	registry *PushRegistry
	s        *series
}

func (c pushCounter) Inc() { c.Add(1) }

func (c pushCounter) Add(v float64) {
	if v < 0 {
		panic("counter cannot decrease in value")
	}
	c.registry.update(c.s, func(cur float64) float64 { return cur + v })
}

type pushGaugeVec struct {
	registry *PushRegistry
	name     string
}

func (v pushGaugeVec) With(labels prometheus.Labels) Gauge {
	return pushGauge{registry: v.registry, s: v.registry.get(v.name, labels)}
}

type pushCounterVec struct {
	registry *PushRegistry
	name     string
}

func (v pushCounterVec) With(labels prometheus.Labels) Counter {
	return pushCounter{registry: v.registry, s: v.registry.get(v.name, labels)}
}
