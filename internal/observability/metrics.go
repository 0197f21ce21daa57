// Package observability provides Prometheus metrics and OpenTelemetry tracing
// for the application.
package observability

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts counts authentication attempts by operation and outcome.
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_auth_attempts_total",
		Help: "Total number of authentication attempts by operation and outcome",
	}, []string{"operation", "outcome"})

	// LegacyHashUpgrades counts stored password hashes migrated to bcrypt on login.
	LegacyHashUpgrades = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_legacy_hash_upgrades_total",
		Help: "Total number of legacy SHA-256 password hashes upgraded to bcrypt",
	})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_error_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// RateLimitHits counts requests rejected by the rate limiter per resource.
	RateLimitHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_rate_limit_hits_total",
		Help: "Total number of requests rejected by the rate limiter",
	}, []string{"resource"})
)

// InitMetrics creates the Prometheus HTTP middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}
