package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Guess outcomes reported to IncGuess.
const (
	OutcomeInvalid = "invalid"
	OutcomeMiss    = "miss"
	OutcomeHit     = "hit"
)

type Recorder interface {
	IncRoundsStarted()
	IncRoundsFinished(status string)
	IncGuess(outcome string)
	IncCacheHits()
	IncCacheMisses()
	IncRequestsTotal(route string, status int)
	ObserveRequestDuration(route string, d time.Duration)
	// TrackSessions registers a gauge reading the active session count.
	TrackSessions(fn func() int)
	// Handler serves the registry in Prometheus text format.
	Handler() http.Handler
}

type Prometheus struct {
	reg             *prometheus.Registry
	roundsStarted   prometheus.Counter
	roundsFinished  *prometheus.CounterVec
	guesses         *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New returns a Prometheus recorder, or a no-op recorder when disabled.
// Each recorder owns its registry so several can coexist in tests.
func New(enabled bool) Recorder {
	if !enabled {
		return Noop{}
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Prometheus{
		reg: reg,
		roundsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spordle_rounds_started_total",
			Help: "Total number of rounds started",
		}),
		roundsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spordle_rounds_finished_total",
			Help: "Total number of rounds that reached a terminal state",
		}, []string{"status"}),
		guesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spordle_guesses_total",
			Help: "Total number of submitted guesses by outcome",
		}, []string{"outcome"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spordle_catalog_cache_hits_total",
			Help: "Total number of catalog cache hits",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spordle_catalog_cache_misses_total",
			Help: "Total number of catalog cache misses",
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spordle_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "spordle_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
	reg.MustRegister(m.roundsStarted, m.roundsFinished, m.guesses, m.cacheHits, m.cacheMisses,
		m.requestsTotal, m.requestDuration)
	return m
}

func (m *Prometheus) IncRoundsStarted()               { m.roundsStarted.Inc() }
func (m *Prometheus) IncRoundsFinished(status string) { m.roundsFinished.WithLabelValues(status).Inc() }
func (m *Prometheus) IncGuess(outcome string)         { m.guesses.WithLabelValues(outcome).Inc() }
func (m *Prometheus) IncCacheHits()                   { m.cacheHits.Inc() }
func (m *Prometheus) IncCacheMisses()                 { m.cacheMisses.Inc() }

func (m *Prometheus) IncRequestsTotal(route string, status int) {
	m.requestsTotal.WithLabelValues(route, statusBucket(status)).Inc()
}

func (m *Prometheus) ObserveRequestDuration(route string, d time.Duration) {
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (m *Prometheus) TrackSessions(fn func() int) {
	m.reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "spordle_active_sessions",
		Help: "Current number of sessions held in memory",
	}, func() float64 { return float64(fn()) }))
}

func (m *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func statusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// Noop discards everything.
type Noop struct{}

func (Noop) IncRoundsStarted()                            {}
func (Noop) IncRoundsFinished(string)                     {}
func (Noop) IncGuess(string)                              {}
func (Noop) IncCacheHits()                                {}
func (Noop) IncCacheMisses()                              {}
func (Noop) IncRequestsTotal(string, int)                 {}
func (Noop) ObserveRequestDuration(string, time.Duration) {}
func (Noop) TrackSessions(func() int)                     {}
func (Noop) Handler() http.Handler                        { return http.NotFoundHandler() }
