package middleware

import (
	"log/slog"
	"net/http"

	"github.com/rs/cors"
)

var corsMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}

// NewCORS allows the given origins. With no origins configured every origin
// is allowed without credentials, which suits a read-only content API.
func NewCORS(origins []string, debug bool) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: corsMethods,
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		Debug:          debug,
	}
	if len(origins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	} else {
		opts.AllowCredentials = true
	}

	slog.With("component", "cors").Debug("CORS middleware configured",
		"allowed_origins", opts.AllowedOrigins,
		"allow_credentials", opts.AllowCredentials,
	)
	return cors.New(opts).Handler
}
