package server

import (
	"log/slog"
	"net/http"
)

// Config contains server configuration options.
type Config struct {
	// AllowedOrigins is the list of allowed CORS origins.
	AllowedOrigins []string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		AllowedOrigins: []string{"*"},
	}
}

// NewRouter creates a new HTTP router with all routes configured.
// It uses Go 1.22+ ServeMux with method-based routing.
func NewRouter(h *Handlers, logger *slog.Logger, cfg Config) http.Handler {
	mux := http.NewServeMux()

	// Register routes with method-based patterns (Go 1.22+)
	mux.HandleFunc("GET /{$}", h.Root)
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("POST /api/v1/extract-thumbnail", h.ExtractThumbnail)
	mux.HandleFunc("POST /api/v1/add-watermark", h.AddWatermark)
	mux.HandleFunc("POST /api/v1/resize-video", h.ResizeVideo)
	mux.HandleFunc("POST /api/v1/get-metadata", h.GetMetadata)

	// Edge-function request shapes
	mux.HandleFunc("POST /extract-thumbnail", h.LegacyExtractThumbnail)
	mux.HandleFunc("POST /apply-watermark", h.LegacyApplyWatermark)

	// Apply middleware chain
	chain := ChainMiddleware(
		RequestIDMiddleware,
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
		CORSMiddleware(cfg.AllowedOrigins),
	)

	return chain(mux)
}
