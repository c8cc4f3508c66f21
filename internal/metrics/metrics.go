package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "signup"

// Signup outcomes, one per response class of the signup handler
const (
	OutcomeAccepted         = "accepted"
	OutcomeInvalid          = "invalid"
	OutcomeMethodNotAllowed = "method_not_allowed"
	OutcomeError            = "error"
)

// Registry is the Prometheus registry for all service metrics
var Registry = prometheus.NewRegistry()

// AppInfo exposes version information as labels (value is always 1)
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always set to 1, version info in labels)",
	},
	[]string{"version", "commit"},
)

// SignupsTotal counts signup submissions by outcome
var SignupsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_total",
		Help:      "Total number of signup submissions by outcome",
	},
	[]string{"outcome"},
)

// RateLimitedTotal counts requests rejected by the rate limiter
var RateLimitedTotal = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the rate limiter",
	},
)

// Init registers runtime collectors and sets version information.
// It must be called at most once per process.
func Init(version, commit string) {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	AppInfo.WithLabelValues(version, commit).Set(1)
}
