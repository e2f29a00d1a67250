package load

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Metrics exposes the run as Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	users    prometheus.Gauge
}

// NewMetrics registers the load collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopcheck",
			Subsystem: "load",
			Name:      "requests_total",
			Help:      "Requests issued by simulated users, by task and status code.",
		}, []string{"task", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shopcheck",
			Subsystem: "load",
			Name:      "request_duration_seconds",
			Help:      "Request latency by task.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"task"}),
		users: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "shopcheck",
			Subsystem: "load",
			Name:      "users_active",
			Help:      "Simulated users currently running.",
		}),
	}
}

// Observe records one request. Status 0 means a transport error.
func (m *Metrics) Observe(task string, status int, latency time.Duration) {
	if m == nil {
		return
	}
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(task, code).Inc()
	m.duration.WithLabelValues(task).Observe(latency.Seconds())
}

func (m *Metrics) userStarted() {
	if m != nil {
		m.users.Inc()
	}
}

func (m *Metrics) userStopped() {
	if m != nil {
		m.users.Dec()
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) routes() http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", m.Handler())
	return r
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, log logrus.FieldLogger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: m.routes(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", ln.Addr().String()).Info("Serving load metrics")
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
