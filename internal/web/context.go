package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/sheetguard/internal/core"
)

// withClient attaches the client IP and User-Agent to the request context
// so service logs can attribute analyses.
func withClient(r *http.Request) context.Context {
	return core.ContextWithClient(r.Context(), clientIP(r), r.UserAgent())
}
