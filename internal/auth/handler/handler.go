package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/auth/models"
	authservice "inkwell/internal/auth/service"
	id "inkwell/pkg/domain"
	"inkwell/pkg/platform/httputil"
	authmw "inkwell/pkg/platform/middleware/auth"
	"inkwell/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type Service interface {
	Register(ctx context.Context, in authservice.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*authservice.LoginResult, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, userID id.UserID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID id.UserID, update models.ProfileUpdate) (*models.User, error)
}

// Handler serves account and session endpoints.
type Handler struct {
	service       Service
	logger        *slog.Logger
	requireAuth   func(http.Handler) http.Handler
	secureCookies bool
}

// New constructs an auth handler. requireAuth guards the profile routes;
// secureCookies marks the session cookie Secure (production).
func New(service Service, logger *slog.Logger, requireAuth func(http.Handler) http.Handler, secureCookies bool) *Handler {
	return &Handler{
		service:       service,
		logger:        logger,
		requireAuth:   requireAuth,
		secureCookies: secureCookies,
	}
}

// Register mounts the auth routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/register", h.HandleRegister)
	r.Post("/api/login", h.HandleLogin)
	r.Post("/api/auth/logout", h.HandleLogout)
	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Get("/api/auth/user", h.HandleGetUser)
		r.Patch("/api/auth/user", h.HandleUpdateUser)
	})
}

// HandleRegister handles POST /api/register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var req RegisterRequest
	if err := httputil.DecodeAndPrepare(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid register request",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	user, err := h.service.Register(ctx, authservice.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "registration failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteData(w, http.StatusCreated, user.Profile(), "User registered successfully")
}

// HandleLogin handles POST /api/login and sets the session cookie.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var req LoginRequest
	if err := httputil.DecodeAndPrepare(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	res, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "login rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	http.SetCookie(w, h.sessionCookie(res.Session.Token, res.Session.ExpiresAt))
	httputil.WriteData(w, http.StatusOK, toLoginResponse(res), "Logged in")
}

// HandleLogout handles POST /api/auth/logout. The cookie is cleared even if
// no valid session was presented.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, _ := authmw.TokenFromRequest(r)
	if err := h.service.Logout(ctx, token); err != nil {
		h.logger.ErrorContext(ctx, "logout failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	http.SetCookie(w, h.sessionCookie("", time.Unix(0, 0)))
	httputil.WriteData(w, http.StatusOK, nil, "Logged out")
}

// HandleGetUser handles GET /api/auth/user.
func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := h.service.CurrentUser(ctx, requestcontext.UserID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, user.Profile(), "")
}

// HandleUpdateUser handles PATCH /api/auth/user.
func (h *Handler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)

	var req UpdateProfileRequest
	if err := httputil.DecodeAndPrepare(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	user, err := h.service.UpdateProfile(ctx, userID, req.Update())
	if err != nil {
		h.logger.WarnContext(ctx, "profile update failed",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, user.Profile(), "Profile updated")
}

func (h *Handler) sessionCookie(value string, expires time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:     authmw.SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		c.MaxAge = -1
	}
	return c
}
