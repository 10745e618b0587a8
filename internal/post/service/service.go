// Package service implements posts, tags and comments: the editor write paths,
// the public blog read paths and their cache and event side effects.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	authmodels "inkwell/internal/auth/models"
	"inkwell/internal/post/events"
	"inkwell/internal/post/metrics"
	"inkwell/internal/post/models"
	id "inkwell/pkg/domain"
	dErrors "inkwell/pkg/domain-errors"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks
type PostStore interface {
	Create(ctx context.Context, p *models.Post) error
	Update(ctx context.Context, p *models.Post) error
	Delete(ctx context.Context, postID id.PostID) error
	FindByID(ctx context.Context, postID id.PostID) (*models.Post, error)
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)
	SlugExists(ctx context.Context, slug string, except id.PostID) (bool, error)
	List(ctx context.Context, f models.ListFilter) ([]*models.Post, error)
	Count(ctx context.Context, f models.ListFilter) (int, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
}

type CommentStore interface {
	Create(ctx context.Context, c *models.Comment) error
	FindByID(ctx context.Context, commentID id.CommentID) (*models.Comment, error)
	ListByPost(ctx context.Context, postID id.PostID) ([]*models.Comment, error)
	Delete(ctx context.Context, commentID id.CommentID) error
	DeleteByPost(ctx context.Context, postID id.PostID) error
}

// AuthorLookup resolves bylines. Unknown IDs are absent from the result.
type AuthorLookup interface {
	FindByIDs(ctx context.Context, ids []id.UserID) (map[id.UserID]*authmodels.User, error)
}

// ViewCache stores rendered views of published posts by slug.
type ViewCache interface {
	FindView(ctx context.Context, slug string) (*models.PostView, error)
	SaveView(ctx context.Context, view *models.PostView) error
	Invalidate(ctx context.Context, slugs ...string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service orchestrates posts and comments.
type Service struct {
	posts     PostStore
	comments  CommentStore
	authors   AuthorLookup
	cache     ViewCache
	publisher EventPublisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithCache enables the published view cache.
func WithCache(cache ViewCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithPublisher sets where lifecycle events go. Without one events are
// dropped.
func WithPublisher(p EventPublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// New constructs a Service.
func New(posts PostStore, comments CommentStore, authors AuthorLookup, opts ...Option) *Service {
	s := &Service{
		posts:    posts,
		comments: comments,
		authors:  authors,
		logger:   slog.New(slog.DiscardHandler),
		tracer:   otel.Tracer("inkwell/post"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// startOp opens a span for op. The returned func ends it, recording *errp and
// the operation latency.
func (s *Service) startOp(ctx context.Context, op string) (context.Context, func(errp *error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "post."+op)
	return ctx, func(errp *error) {
		if err := *errp; err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		}
		span.End()
		if s.metrics != nil {
			s.metrics.ObserveOperation(op, start)
		}
	}
}
