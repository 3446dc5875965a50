package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BlockedWrites counts mutating requests rejected by the read-only enforcer.
	BlockedWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "essayons",
		Subsystem: "support",
		Name:      "blocked_writes_total",
		Help:      "Mutating requests blocked by read-only support sessions.",
	}, []string{"method"})

	// PermissionDenials counts route-guard capability rejections.
	PermissionDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "essayons",
		Subsystem: "authz",
		Name:      "permission_denials_total",
		Help:      "Requests denied by capability checks.",
	}, []string{"flag"})

	// RateLimitRejections counts 429 responses by limiter name.
	RateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "essayons",
		Subsystem: "ratelimit",
		Name:      "rejections_total",
		Help:      "Requests rejected by rate limiting.",
	}, []string{"limiter"})

	// SupportSessionEvents counts support session lifecycle transitions.
	SupportSessionEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "essayons",
		Subsystem: "support",
		Name:      "session_events_total",
		Help:      "Support session lifecycle events.",
	}, []string{"event"})
)
