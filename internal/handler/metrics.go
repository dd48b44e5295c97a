package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Metrics holds all Prometheus collectors for the DKSocial feed backend.
var Metrics = struct {
	EngagementsTotal *prometheus.CounterVec
	GesturesTotal    *prometheus.CounterVec
	SessionsOpen     prometheus.GaugeFunc
	ActivationsTotal prometheus.Counter
	RequestDuration  *prometheus.HistogramVec
	DBPoolActive     prometheus.GaugeFunc
	DBPoolIdle       prometheus.GaugeFunc
	RequestsInFlight prometheus.Gauge
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	RankDuration     prometheus.Histogram
}{}

// InitMetrics registers all Prometheus metrics. Call once at startup.
func InitMetrics(pool *pgxpool.Pool, openSessions func() int) {
	Metrics.EngagementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dksocial_engagements_total",
			Help: "Total engagement writes, by kind.",
		},
		[]string{"kind"},
	)

	Metrics.GesturesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dksocial_gestures_total",
			Help: "Total classified gestures, by kind.",
		},
		[]string{"kind"},
	)

	Metrics.ActivationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dksocial_activations_total",
			Help: "Total feed item activations (visibility threshold crossings).",
		},
	)

	Metrics.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dksocial_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	Metrics.RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dksocial_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)

	Metrics.CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dksocial_cache_hits_total",
			Help: "Total Redis cache hits.",
		},
	)

	Metrics.CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dksocial_cache_misses_total",
			Help: "Total Redis cache misses.",
		},
	)

	Metrics.RankDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dksocial_feed_rank_duration_seconds",
			Help:    "Duration of feed candidate ranking.",
			Buckets: prometheus.DefBuckets,
		},
	)

	if openSessions != nil {
		Metrics.SessionsOpen = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "dksocial_feed_sessions_open",
				Help: "Number of currently open feed sessions.",
			},
			func() float64 {
				return float64(openSessions())
			},
		)
		prometheus.MustRegister(Metrics.SessionsOpen)
	}

	// DB pool gauges read live stats from pgxpool
	if pool != nil {
		Metrics.DBPoolActive = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "dksocial_db_connection_pool_active",
				Help: "Number of active database connections.",
			},
			func() float64 {
				return float64(pool.Stat().AcquiredConns())
			},
		)

		Metrics.DBPoolIdle = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "dksocial_db_connection_pool_idle",
				Help: "Number of idle database connections.",
			},
			func() float64 {
				return float64(pool.Stat().IdleConns())
			},
		)

		prometheus.MustRegister(Metrics.DBPoolActive)
		prometheus.MustRegister(Metrics.DBPoolIdle)
	}

	prometheus.MustRegister(
		Metrics.EngagementsTotal,
		Metrics.GesturesTotal,
		Metrics.ActivationsTotal,
		Metrics.RequestDuration,
		Metrics.RequestsInFlight,
		Metrics.CacheHits,
		Metrics.CacheMisses,
		Metrics.RankDuration,
	)
}

// MetricsMiddleware records request duration and in-flight count for Prometheus.
func MetricsMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		// Don't instrument the /metrics endpoint itself
		if c.Path() == "/metrics" {
			return c.Next()
		}

		// Copy path and method into owned strings BEFORE c.Next(). Fiber
		// returns slices backed by the fasthttp buffer which can be reused
		// or overwritten by handlers (especially fasthttpadaptor).
		path := string([]byte(c.Path()))
		method := string([]byte(c.Method()))
		endpoint := sanitizeEndpoint(path)

		Metrics.RequestsInFlight.Inc()
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())

		Metrics.RequestDuration.WithLabelValues(endpoint, method, status).Observe(duration)
		Metrics.RequestsInFlight.Dec()

		return err
	}
}

// sanitizeEndpoint normalizes paths to avoid cardinality explosion.
func sanitizeEndpoint(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/feed/sessions/"):
		rest := path[len("/api/feed/sessions/"):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			return "/api/feed/sessions/:sessionId/" + rest[i+1:]
		}
		return "/api/feed/sessions/:sessionId"
	case strings.HasPrefix(path, "/api/videos/"):
		rest := path[len("/api/videos/"):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			return "/api/videos/:videoId/" + rest[i+1:]
		}
		return "/api/videos/:videoId"
	case strings.HasPrefix(path, "/api/users/"):
		rest := path[len("/api/users/"):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			return "/api/users/:userId/" + rest[i+1:]
		}
		return "/api/users/:userId"
	default:
		return path
	}
}

// MetricsHandler serves the Prometheus /metrics endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	httpHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c fiber.Ctx) error {
		httpHandler(c.RequestCtx())
		return nil
	}
}
