package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/insightboard/internal/core"
)

// withRequestMetadata adds IP and User-Agent to ctx for ingest logging.
func withRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, clientIP(r))
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}

// sessionID returns the ID set by the session middleware.
func sessionID(r *http.Request) string {
	return core.SessionIDFromContext(r.Context())
}
