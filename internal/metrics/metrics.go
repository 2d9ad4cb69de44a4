package metrics

import (
	"net/http"
	"time"

	"github.com/AnnaJiju/WeatherSpeak/internal/apperr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the service collectors. A nil *Recorder is valid and records
// nothing, which keeps tests and optional wiring simple.
type Recorder struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	steps    *prometheus.HistogramVec
	lookups  *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()

	r := &Recorder{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weatherspeak",
			Name:      "requests_total",
			Help:      "HTTP requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		steps: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weatherspeak",
			Name:      "pipeline_step_seconds",
			Help:      "Duration of each voice pipeline step.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"step"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weatherspeak",
			Name:      "weather_lookups_total",
			Help:      "Weather provider lookups by result kind.",
		}, []string{"result"}),
	}

	reg.MustRegister(r.requests, r.steps, r.lookups)
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return r
}

func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) Request(endpoint string, status int) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(endpoint, outcome(status)).Inc()
}

func (r *Recorder) Step(step string, started time.Time) {
	if r == nil {
		return
	}
	r.steps.WithLabelValues(step).Observe(time.Since(started).Seconds())
}

func (r *Recorder) Lookup(err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = apperr.KindOf(err).String()
	}
	r.lookups.WithLabelValues(result).Inc()
}

func outcome(status int) string {
	switch {
	case status >= 500:
		return "server_error"
	case status >= 400:
		return "client_error"
	}
	return "ok"
}
