package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	RequestDuration *prometheus.HistogramVec
	RequestsTotal   *prometheus.CounterVec
	ErrorsTotal     *prometheus.CounterVec

	// Scheduling metrics
	CitasAsignadas   prometheus.Counter
	CitasRechazadas  *prometheus.CounterVec
	SegmentosCreados prometheus.Counter
	CuposGenerados   prometheus.Counter

	// Auth metrics
	LoginAttempts    *prometheus.CounterVec
	RecoveryRequests *prometheus.CounterVec

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
	DatabaseLatency    *prometheus.HistogramVec

	// Messaging and mail metrics
	EventsPublished *prometheus.CounterVec
	MailsSent       *prometheus.CounterVec
}

// NewMetrics creates all application metrics and registers them on reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		ErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "Total number of HTTP responses with status >= 400",
		}, []string{"method", "path", "class"}),

		CitasAsignadas: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "agenda",
			Name:      "citas_asignadas_total",
			Help:      "Total number of committed appointment assignments",
		}),
		CitasRechazadas: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "agenda",
			Name:      "citas_rechazadas_total",
			Help:      "Total number of rejected appointment assignments",
		}, []string{"reason"}),
		SegmentosCreados: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "agenda",
			Name:      "segmentos_creados_total",
			Help:      "Total number of availability segments created",
		}),
		CuposGenerados: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "agenda",
			Name:      "cupos_generados_total",
			Help:      "Total number of 30 minute slots generated",
		}),

		LoginAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "login_attempts_total",
			Help:      "Login attempts by result",
		}, []string{"result"}),
		RecoveryRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "recovery_requests_total",
			Help:      "Password recovery steps by stage and result",
		}, []string{"stage", "result"}),

		DatabaseOperations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		DatabaseLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "operation_duration_seconds",
			Help:      "Duration of database operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),

		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "messaging",
			Name:      "events_published_total",
			Help:      "Domain events published by broker and status",
		}, []string{"broker", "status"}),
		MailsSent: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mail",
			Name:      "sent_total",
			Help:      "Emails sent by kind and status",
		}, []string{"kind", "status"}),
	}
}

// NewNop returns metrics registered on a private registry, for tests and
// tools that do not expose /metrics.
func NewNop() *Metrics {
	return NewMetrics("nop", prometheus.NewRegistry())
}

// Status turns an error into the status label used by the counters.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
