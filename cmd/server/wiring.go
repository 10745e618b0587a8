package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	authhandler "inkwell/internal/auth/handler"
	authmetrics "inkwell/internal/auth/metrics"
	"inkwell/internal/auth/password"
	authservice "inkwell/internal/auth/service"
	"inkwell/internal/auth/store/revocation"
	userstore "inkwell/internal/auth/store/user"
	jwttoken "inkwell/internal/jwt_token"
	"inkwell/internal/platform/config"
	"inkwell/internal/platform/kafka"
	"inkwell/internal/platform/metrics"
	"inkwell/internal/platform/postgres"
	platformredis "inkwell/internal/platform/redis"
	"inkwell/internal/post/events"
	posthandler "inkwell/internal/post/handler"
	postmetrics "inkwell/internal/post/metrics"
	postservice "inkwell/internal/post/service"
	"inkwell/internal/post/store/cache"
	commentstore "inkwell/internal/post/store/comment"
	poststore "inkwell/internal/post/store/post"
	authmw "inkwell/pkg/platform/middleware/auth"
	"inkwell/pkg/platform/middleware/metadata"
	request "inkwell/pkg/platform/middleware/request"
	"inkwell/pkg/platform/middleware/requesttime"
)

const (
	requestTimeout    = 30 * time.Second
	topicPartitions   = 3
	topicReplication  = 1
	closeFlushTimeout = 5 * time.Second
)

// infra holds the optional external connections. A nil field means the
// backing service is not configured and an in-process fallback is used.
type infra struct {
	db       *sql.DB
	redis    *platformredis.Client
	producer *kafka.Producer
}

type app struct {
	router http.Handler
	infra  infra
	closed bool
	log    *slog.Logger
}

type userStore interface {
	authservice.UserStore
	postservice.AuthorLookup
}

type stores struct {
	users       userStore
	revocations authservice.RevocationStore
	posts       postservice.PostStore
	comments    postservice.CommentStore
	views       postservice.ViewCache
	publisher   postservice.EventPublisher
}

func build(ctx context.Context, cfg config.Server, log *slog.Logger) (*app, error) {
	inf, err := connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	st := newStores(cfg, inf, log)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "inkwell", cfg.SessionTTL)
	authService := authservice.New(st.users, st.revocations, jwtService, password.NewHasher(0),
		authservice.WithLogger(log),
		authservice.WithMetrics(authmetrics.New()),
	)
	postService := postservice.New(st.posts, st.comments, st.users,
		postservice.WithLogger(log),
		postservice.WithMetrics(postmetrics.New()),
		postservice.WithCache(st.views),
		postservice.WithPublisher(st.publisher),
	)

	validator := jwttoken.NewSessionValidator(jwtService)
	requireAuth := authmw.RequireAuth(validator, authService, log)
	optionalAuth := authmw.OptionalAuth(validator, authService, log)

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(log))
	r.Use(request.Logger(log))
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(request.Timeout(requestTimeout))
	r.Use(request.Latency(metrics.New()))

	r.Get("/healthz", healthHandler(inf))
	r.Handle("/metrics", metrics.Handler())
	authhandler.New(authService, log, requireAuth, cfg.IsProduction()).Register(r)
	posthandler.New(postService, log, requireAuth, optionalAuth).Register(r)

	return &app{router: r, infra: inf, log: log}, nil
}

// connect opens every configured backing service. Postgres gets the schema
// applied; the Kafka topic is created if missing.
func connect(ctx context.Context, cfg config.Server) (infra, error) {
	var inf infra
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return inf, fmt.Errorf("open postgres: %w", err)
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return inf, fmt.Errorf("migrate postgres: %w", err)
		}
		inf.db = db
	}

	client, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		inf.close(ctx)
		return infra{}, fmt.Errorf("connect redis: %w", err)
	}
	inf.redis = client

	producer, err := kafka.NewProducer(ctx, cfg.Kafka)
	if err != nil {
		inf.close(ctx)
		return infra{}, fmt.Errorf("connect kafka: %w", err)
	}
	if producer != nil {
		if err := producer.EnsureTopic(ctx, topicPartitions, topicReplication); err != nil {
			_ = producer.Close(ctx)
			inf.close(ctx)
			return infra{}, fmt.Errorf("ensure kafka topic: %w", err)
		}
	}
	inf.producer = producer
	return inf, nil
}

func newStores(cfg config.Server, inf infra, log *slog.Logger) stores {
	var st stores
	if inf.db != nil {
		users := userstore.NewPostgres(inf.db)
		st.users = users
		st.posts = poststore.NewPostgres(inf.db)
		st.comments = commentstore.NewPostgres(inf.db)
	} else {
		st.users = userstore.New()
		st.posts = poststore.NewInMemory()
		st.comments = commentstore.NewInMemory()
	}

	if inf.redis != nil {
		st.revocations = revocation.NewRedis(inf.redis.Client)
		st.views = cache.NewRedisCache(inf.redis.Client, cfg.PostCacheTTL)
	} else {
		st.revocations = revocation.NewInMemory()
		st.views = cache.NewInMemory()
	}

	if inf.producer != nil {
		st.publisher = events.NewKafkaPublisher(inf.producer)
	} else {
		st.publisher = events.NewLogPublisher(log)
	}
	return st
}

func (inf infra) close(ctx context.Context) {
	if inf.producer != nil {
		_ = inf.producer.Close(ctx)
	}
	if inf.redis != nil {
		_ = inf.redis.Close()
	}
	if inf.db != nil {
		_ = inf.db.Close()
	}
}

func (a *app) close() {
	if a.closed {
		return
	}
	a.closed = true
	ctx, cancel := context.WithTimeout(context.Background(), closeFlushTimeout)
	defer cancel()
	a.infra.close(ctx)
	a.log.Info("connections closed")
}
