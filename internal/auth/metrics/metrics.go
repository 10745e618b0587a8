package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for registration and login.
type Metrics struct {
	Registrations prometheus.Counter
	Logins        *prometheus.CounterVec
	Logouts       prometheus.Counter
	LoginDuration prometheus.Histogram
}

// New creates a new Metrics instance registered with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the auth metrics with reg. Tests pass a fresh
// registry so repeated construction does not collide.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Registrations: factory.NewCounter(prometheus.CounterOpts{
			Name: "inkwell_users_registered_total",
			Help: "Total number of users registered",
		}),
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		Logouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "inkwell_logouts_total",
			Help: "Total number of sessions ended by logout",
		}),
		LoginDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "inkwell_login_duration_seconds",
			Help:    "Duration of Login operations (dominated by bcrypt)",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// IncrementRegistrations records a successful registration.
func (m *Metrics) IncrementRegistrations() {
	m.Registrations.Inc()
}

// IncrementLogin records a login attempt; outcome is "success" or "failure".
func (m *Metrics) IncrementLogin(outcome string) {
	m.Logins.WithLabelValues(outcome).Inc()
}

// IncrementLogouts records a logout.
func (m *Metrics) IncrementLogouts() {
	m.Logouts.Inc()
}

// ObserveLogin records the duration of a Login operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveLogin(start time.Time) {
	m.LoginDuration.Observe(time.Since(start).Seconds())
}
