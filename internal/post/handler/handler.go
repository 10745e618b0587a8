package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/post/models"
	"inkwell/internal/post/service"
	id "inkwell/pkg/domain"
	"inkwell/pkg/platform/httputil"
	"inkwell/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type Service interface {
	Create(ctx context.Context, authorID id.UserID, in service.CreateInput) (*models.PostView, error)
	Get(ctx context.Context, viewer id.UserID, postID id.PostID) (*models.PostView, error)
	GetBySlug(ctx context.Context, viewer id.UserID, slug string) (*models.PostView, error)
	Update(ctx context.Context, userID id.UserID, postID id.PostID, in service.UpdateInput) (*models.PostView, error)
	Delete(ctx context.Context, userID id.UserID, postID id.PostID) error
	List(ctx context.Context, viewer id.UserID, params service.ListParams) (*service.ListResult, error)
	ListPublished(ctx context.Context, params service.PublicListParams) (*service.ListResult, error)
	Tags(ctx context.Context) ([]models.Tag, error)
	ExportMarkdown(ctx context.Context, viewer id.UserID, slug string) (string, error)
	AddComment(ctx context.Context, userID id.UserID, slug, content string) (*models.CommentView, error)
	ListComments(ctx context.Context, slug string) ([]models.CommentView, error)
	DeleteComment(ctx context.Context, userID id.UserID, commentID id.CommentID) error
}

// Handler serves the editor and blog endpoints.
type Handler struct {
	service      Service
	logger       *slog.Logger
	requireAuth  func(http.Handler) http.Handler
	optionalAuth func(http.Handler) http.Handler
}

// New constructs a post handler. requireAuth guards write routes;
// optionalAuth resolves the viewer on read routes that show drafts to their
// author.
func New(service Service, logger *slog.Logger, requireAuth, optionalAuth func(http.Handler) http.Handler) *Handler {
	return &Handler{
		service:      service,
		logger:       logger,
		requireAuth:  requireAuth,
		optionalAuth: optionalAuth,
	}
}

// Register mounts the post routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/blog/posts", h.HandleListPublished)
	r.Get("/api/blog/tags", h.HandleTags)
	r.Get("/api/blog/posts/{slug}/comments", h.HandleListComments)

	r.Group(func(r chi.Router) {
		r.Use(h.optionalAuth)
		r.Get("/api/editor/content", h.HandleList)
		r.Get("/api/editor/content/{id}", h.HandleGet)
		r.Get("/api/blog/posts/{slug}", h.HandleGetBySlug)
		r.Get("/api/blog/posts/{slug}/markdown", h.HandleMarkdown)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Post("/api/editor/content", h.HandleCreate)
		r.Put("/api/editor/content/{id}", h.HandleUpdate)
		r.Delete("/api/editor/content/{id}", h.HandleDelete)
		r.Post("/api/blog/posts/{slug}/comments", h.HandleAddComment)
		r.Delete("/api/blog/comments/{id}", h.HandleDeleteComment)
	})
}

// HandleCreate handles POST /api/editor/content.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)

	var req CreatePostRequest
	if err := httputil.DecodeAndPrepare(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid create post request",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	view, err := h.service.Create(ctx, userID, req.Input())
	if err != nil {
		h.logger.WarnContext(ctx, "create post failed",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusCreated, view, "Content created successfully")
}

// HandleList handles GET /api/editor/content.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	params := service.ListParams{
		Pagination:    models.ParsePagination(q.Get("page"), q.Get("limit")),
		PublishedOnly: q.Get("publishedOnly") == "true",
	}
	if raw := q.Get("authorId"); raw != "" {
		authorID, err := id.ParseUserID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		params.AuthorID = &authorID
	}

	res, err := h.service.List(ctx, requestcontext.UserID(ctx), params)
	if err != nil {
		h.writeServiceError(ctx, w, "list posts failed", err)
		return
	}
	httputil.WriteData(w, http.StatusOK, res, "")
}

// HandleGet handles GET /api/editor/content/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	postID, err := id.ParsePostID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	view, err := h.service.Get(ctx, requestcontext.UserID(ctx), postID)
	if err != nil {
		h.writeServiceError(ctx, w, "get post failed", err)
		return
	}
	httputil.WriteData(w, http.StatusOK, view, "")
}

// HandleUpdate handles PUT /api/editor/content/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)
	postID, err := id.ParsePostID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req UpdatePostRequest
	if err := httputil.DecodeAndPrepare(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	view, err := h.service.Update(ctx, userID, postID, req.Input())
	if err != nil {
		h.writeServiceError(ctx, w, "update post failed", err)
		return
	}
	httputil.WriteData(w, http.StatusOK, view, "Content updated successfully")
}

// HandleDelete handles DELETE /api/editor/content/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	postID, err := id.ParsePostID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(ctx, requestcontext.UserID(ctx), postID); err != nil {
		h.writeServiceError(ctx, w, "delete post failed", err)
		return
	}
	httputil.WriteData(w, http.StatusOK, nil, "Content deleted successfully")
}

// HandleListPublished handles GET /api/blog/posts.
func (h *Handler) HandleListPublished(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	res, err := h.service.ListPublished(ctx, service.PublicListParams{
		Pagination: models.ParsePagination(q.Get("page"), q.Get("limit")),
		Tag:        strings.TrimSpace(q.Get("tag")),
		Query:      strings.TrimSpace(q.Get("q")),
		SortBy:     models.ParseSortField(q.Get("sortBy")),
		SortOrder:  models.ParseSortOrder(q.Get("sortOrder")),
	})
	if err != nil {
		h.writeServiceError(ctx, w, "list published posts failed", err)
		return
	}
	httputil.WriteData(w, http.StatusOK, res, "")
}

// HandleGetBySlug handles GET /api/blog/posts/{slug}.
func (h *Handler) HandleGetBySlug(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.service.GetBySlug(ctx, requestcontext.UserID(ctx), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeServiceError(ctx, w, "get post by slug failed", err)
		return
	}
	httputil.WriteData(w, http.StatusOK, view, "")
}

// HandleMarkdown handles GET /api/blog/posts/{slug}/markdown.
func (h *Handler) HandleMarkdown(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")
	md, err := h.service.ExportMarkdown(ctx, requestcontext.UserID(ctx), slug)
	if err != nil {
		h.writeServiceError(ctx, w, "markdown export failed", err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="`+slug+`.md"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(md))
}

// HandleTags handles GET /api/blog/tags.
func (h *Handler) HandleTags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tags, err := h.service.Tags(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "list tags failed", err)
		return
	}
	httputil.WriteData(w, http.StatusOK, tags, "")
}

// HandleListComments handles GET /api/blog/posts/{slug}/comments.
func (h *Handler) HandleListComments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	comments, err := h.service.ListComments(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		h.writeServiceError(ctx, w, "list comments failed", err)
		return
	}
	httputil.WriteData(w, http.StatusOK, comments, "")
}

// HandleAddComment handles POST /api/blog/posts/{slug}/comments.
func (h *Handler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CommentRequest
	if err := httputil.DecodeAndPrepare(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	comment, err := h.service.AddComment(ctx, requestcontext.UserID(ctx), chi.URLParam(r, "slug"), req.Content)
	if err != nil {
		h.writeServiceError(ctx, w, "add comment failed", err)
		return
	}
	httputil.WriteData(w, http.StatusCreated, comment, "Comment added")
}

// HandleDeleteComment handles DELETE /api/blog/comments/{id}.
func (h *Handler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	commentID, err := id.ParseCommentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.DeleteComment(ctx, requestcontext.UserID(ctx), commentID); err != nil {
		h.writeServiceError(ctx, w, "delete comment failed", err)
		return
	}
	httputil.WriteData(w, http.StatusOK, nil, "Comment deleted")
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
