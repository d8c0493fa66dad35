package prommetrics

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-contractkit/core"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultBuckets covers millisecond durations from sub-millisecond guard
// evaluations up to slow sink deliveries.
var DefaultBuckets = []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500}

type Option func(*Recorder)

func WithRegisterer(registerer prometheus.Registerer) Option {
	return func(r *Recorder) {
		if registerer != nil {
			r.registerer = registerer
		}
	}
}

func WithNamespace(namespace string) Option {
	return func(r *Recorder) {
		r.namespace = sanitizeName(strings.TrimSpace(namespace))
	}
}

func WithBuckets(buckets []float64) Option {
	return func(r *Recorder) {
		if len(buckets) > 0 {
			r.buckets = append([]float64(nil), buckets...)
		}
	}
}

func WithLogger(logger glog.Logger) Option {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Recorder implements core.MetricsRecorder on Prometheus vectors. Vectors
// are created lazily per metric name and label set.
type Recorder struct {
	registerer prometheus.Registerer
	namespace  string
	buckets    []float64
	logger     glog.Logger

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
}

func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		registerer: prometheus.DefaultRegisterer,
		buckets:    DefaultBuckets,
		logger:     glog.Nop(),
		counters:   map[string]*prometheus.CounterVec{},
		histograms: map[string]*prometheus.HistogramVec{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Recorder) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	if r == nil || value < 0 {
		return
	}
	labelNames, labelValues := splitTags(tags)
	vec := r.counterVec(r.metricName(name), labelNames)
	if vec == nil {
		return
	}
	vec.WithLabelValues(labelValues...).Add(float64(value))
}

func (r *Recorder) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	if r == nil {
		return
	}
	labelNames, labelValues := splitTags(tags)
	vec := r.histogramVec(r.metricName(name), labelNames)
	if vec == nil {
		return
	}
	vec.WithLabelValues(labelValues...).Observe(value)
}

func (r *Recorder) counterVec(name string, labelNames []string) *prometheus.CounterVec {
	if name == "" {
		return nil
	}
	key := vectorKey(name, labelNames)
	r.mu.Lock()
	defer r.mu.Unlock()
	if vec, ok := r.counters[key]; ok {
		return vec
	}
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: name,
		Help: "Contract verification counter " + name + ".",
	}, labelNames)
	if err := r.registerer.Register(vec); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			r.logger.Warn("prometheus counter registration failed", "metric", name, "error", err.Error())
			return nil
		}
		existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil
		}
		vec = existing
	}
	r.counters[key] = vec
	return vec
}

func (r *Recorder) histogramVec(name string, labelNames []string) *prometheus.HistogramVec {
	if name == "" {
		return nil
	}
	key := vectorKey(name, labelNames)
	r.mu.Lock()
	defer r.mu.Unlock()
	if vec, ok := r.histograms[key]; ok {
		return vec
	}
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    name,
		Help:    "Contract verification histogram " + name + ".",
		Buckets: r.buckets,
	}, labelNames)
	if err := r.registerer.Register(vec); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			r.logger.Warn("prometheus histogram registration failed", "metric", name, "error", err.Error())
			return nil
		}
		existing, ok := already.ExistingCollector.(*prometheus.HistogramVec)
		if !ok {
			return nil
		}
		vec = existing
	}
	r.histograms[key] = vec
	return vec
}

func (r *Recorder) metricName(name string) string {
	name = sanitizeName(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	if r.namespace != "" {
		return r.namespace + "_" + name
	}
	return name
}

func splitTags(tags map[string]string) ([]string, []string) {
	byLabel := make(map[string]string, len(tags))
	for key, value := range tags {
		label := sanitizeName(strings.TrimSpace(key))
		if label == "" {
			continue
		}
		byLabel[label] = value
	}
	names := make([]string, 0, len(byLabel))
	for label := range byLabel {
		names = append(names, label)
	}
	sort.Strings(names)
	values := make([]string, 0, len(names))
	for _, label := range names {
		values = append(values, byLabel[label])
	}
	return names, values
}

func vectorKey(name string, labelNames []string) string {
	return name + "{" + strings.Join(labelNames, ",") + "}"
}

// sanitizeName maps a dotted metric or tag name onto the Prometheus
// [a-zA-Z_][a-zA-Z0-9_]* alphabet.
func sanitizeName(name string) string {
	if name == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(name))
	for i, ch := range name {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch == '_':
			b.WriteRune(ch)
		case ch >= '0' && ch <= '9':
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(ch)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

var _ core.MetricsRecorder = (*Recorder)(nil)
