package handler

import (
	"time"

	"inkwell/internal/auth/models"
	authservice "inkwell/internal/auth/service"
)

// LoginResponse is returned by POST /api/login. The token is also set as the
// session cookie; API clients use it as a bearer token.
type LoginResponse struct {
	User      models.Profile `json:"user"`
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
}

func toLoginResponse(res *authservice.LoginResult) LoginResponse {
	return LoginResponse{
		User:      res.User.Profile(),
		Token:     res.Session.Token,
		ExpiresAt: res.Session.ExpiresAt,
	}
}
