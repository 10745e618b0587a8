package testutil

import (
	"context"
	"net/http"
	"time"

	id "inkwell/pkg/domain"
	"inkwell/pkg/requestcontext"
)

// WithUserID adds a user ID to the request context.
// This simulates what the auth middleware would do for authenticated requests.
func WithUserID(req *http.Request, userID id.UserID) *http.Request {
	return req.WithContext(requestcontext.WithUserID(req.Context(), userID))
}

// AuthedContext returns a context carrying userID and a fixed request time,
// for service tests that bypass the HTTP middleware chain.
func AuthedContext(userID id.UserID, now time.Time) context.Context {
	ctx := requestcontext.WithUserID(context.Background(), userID)
	return requestcontext.WithTime(ctx, now)
}
