package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	accessDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinrec_access_decisions_total",
			Help: "Access decisions by resource kind and outcome.",
		},
		[]string{"resource", "outcome"},
	)

	auditEmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "clinrec_audit_events_emitted_total",
			Help: "Audit events successfully recorded.",
		},
	)

	auditDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "clinrec_audit_events_dropped_total",
			Help: "Audit events lost to recorder failures.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinrec_http_requests_total",
			Help: "HTTP requests by method and status code.",
		},
		[]string{"method", "status"},
	)
)

// Init registers the collectors with the default registry. Call once at
// startup, before the server begins handling traffic.
func Init() {
	prometheus.MustRegister(accessDecisions, auditEmitted, auditDropped, httpRequests)
}

func ObserveDecision(resource, outcome string) {
	accessDecisions.WithLabelValues(resource, outcome).Inc()
}

func ObserveAuditEmitted() { auditEmitted.Inc() }
func ObserveAuditDropped() { auditDropped.Inc() }

func ObserveRequest(method, status string) {
	httpRequests.WithLabelValues(method, status).Inc()
}

// Handler exposes the default registry for the /metrics route.
func Handler() http.Handler {
	return promhttp.Handler()
}
