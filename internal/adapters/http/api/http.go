// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/goccy/go-json"
	service "github.com/okian/lookbook/internal/app"
	"github.com/okian/lookbook/internal/domain/imagematch"
	"github.com/okian/lookbook/internal/domain/types"
	"github.com/okian/lookbook/pkg/logger"
)

const defaultMaxUploadBytes = 10 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Ready() bool
	RecommendImage(ctx context.Context, image []byte, filename, gender string, k int) (service.Result, error)
	RecommendLabel(ctx context.Context, label types.Label, gender string, k int) (service.Result, error)
	ResolveImage(gender, color, style, category string) (imagematch.Match, bool, error)
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxUploadBytes caps the size of multipart uploads.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	maxUploadBytes int64
	logger         logger.Logger

	healthHandler          *HealthHandler
	statsHandler           *StatsHandler
	recommendationsHandler *RecommendationsHandler
	imagesHandler          *ImagesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{maxUploadBytes: defaultMaxUploadBytes}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.recommendationsHandler = NewRecommendationsHandler(deps, s.maxUploadBytes, s.logger)
	s.imagesHandler = NewImagesHandler(deps)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	route := func(path, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(path, RequestIDMiddleware(MetricsMiddleware(h, endpoint)))
	}
	route("/healthz", "healthz", s.healthHandler.HandleHealth)
	route("/stats", "stats", s.statsHandler.HandleStats)
	route("/recommendations", "recommendations", s.recommendationsHandler.HandlePostImage)
	route("/recommendations/labels", "recommendations_labels", s.recommendationsHandler.HandlePostLabels)
	route("/images/resolve", "images_resolve", s.imagesHandler.HandleResolve)

	s.logger.Debug(ctx, "api routes registered")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, types.ErrorResponse{Code: code, Message: msg, RequestID: RequestIDFrom(r.Context())})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allow string) {
	w.Header().Set("Allow", allow)
	writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", nil)
}
