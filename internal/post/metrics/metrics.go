package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for posts and comments.
// Tracks content creation counts, view cache effectiveness and service latency.
type Metrics struct {
	PostsCreated      prometheus.Counter
	PostsPublished    prometheus.Counter
	CommentsCreated   prometheus.Counter
	ViewCache         *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
}

// New creates a new Metrics instance registered with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the post metrics with reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PostsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "inkwell_posts_created_total",
			Help: "Total number of posts created",
		}),
		PostsPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "inkwell_posts_published_total",
			Help: "Total number of draft-to-published transitions",
		}),
		CommentsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "inkwell_comments_created_total",
			Help: "Total number of comments created",
		}),
		ViewCache: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_post_view_cache_total",
			Help: "Post view cache lookups by result (hit, miss, error)",
		}, []string{"result"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "inkwell_post_operation_duration_seconds",
			Help:    "Duration of post service operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementPostsCreated() {
	m.PostsCreated.Inc()
}

func (m *Metrics) IncrementPostsPublished() {
	m.PostsPublished.Inc()
}

func (m *Metrics) IncrementCommentsCreated() {
	m.CommentsCreated.Inc()
}

// IncrementViewCache records a cache lookup result.
func (m *Metrics) IncrementViewCache(result string) {
	m.ViewCache.WithLabelValues(result).Inc()
}

// ObserveOperation records the duration of a service operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
