package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder собирает метрики генераций в собственном реестре,
// а не в глобальном prometheus.DefaultRegistry.
type Recorder struct {
	registry    *prometheus.Registry
	generations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	rejected    *prometheus.CounterVec
}

func New() *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Recorder{
		registry: registry,
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "copywriter_generations_total",
				Help: "Total number of dispatched generations, partitioned by outcome.",
			},
			[]string{"platform", "model", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "copywriter_generation_duration_seconds",
				Help:    "Histogram of completion endpoint call durations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"model"},
		),
		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "copywriter_rejected_submissions_total",
				Help: "Submissions rejected before dispatch, partitioned by reason.",
			},
			[]string{"reason"},
		),
	}
	registry.MustRegister(r.generations, r.duration, r.rejected)
	return r
}

// ObserveGeneration учитывает один завершенный вызов. outcome — "success" или вид ошибки.
func (r *Recorder) ObserveGeneration(platform, model, outcome string, took time.Duration) {
	if r == nil {
		return
	}
	r.generations.WithLabelValues(platform, model, outcome).Inc()
	r.duration.WithLabelValues(model).Observe(took.Seconds())
}

func (r *Recorder) ObserveRejected(reason string) {
	if r == nil {
		return
	}
	r.rejected.WithLabelValues(reason).Inc()
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
