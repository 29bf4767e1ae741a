package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "src_portal"

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	AccessDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "access_decisions_total", Help: "Gate decisions by action and reason."},
		[]string{"action", "reason"},
	)
	SessionRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "session_refreshes_total", Help: "Refresh-token rotations attempted by the session resolver, by outcome."},
		[]string{"outcome"},
	)
	SignupCompensations = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "signup_compensations_total", Help: "Identities deleted because their profile could not be created."},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Help: "Request latency by route and status.", Buckets: prometheus.DefBuckets},
		[]string{"method", "route", "status"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(AccessDecisions)
	reg.MustRegister(SessionRefreshes)
	reg.MustRegister(SignupCompensations)
	reg.MustRegister(RequestDuration)
}
