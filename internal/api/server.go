package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/imgresolver/internal/config"
	"github.com/JakeFAU/imgresolver/internal/metrics"
	"github.com/JakeFAU/imgresolver/internal/policy/ratelimit"
	"github.com/JakeFAU/imgresolver/internal/resolver"
)

const requestTimeout = 60 * time.Second

// Resolver is the subset of the dispatcher the HTTP layer needs.
type Resolver interface {
	Resolve(ctx context.Context, url string) (resolver.Result, error)
	ServiceNames() []string
}

// Server wires HTTP handlers to the dispatcher.
type Server struct {
	router   chi.Router
	resolver Resolver
	logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(res Resolver, idGen resolver.IDGenerator, cfg config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		resolver: res,
		logger:   logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware(idGen))
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metrics.Middleware)
	r.Use(timeoutMiddleware(requestTimeout))

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	limiter := ratelimit.New(ratelimit.Config{
		RPS:   cfg.Server.RatePerClient,
		Burst: cfg.Server.BurstPerClient,
	})

	guard := func(r chi.Router, group string) {
		if cfg.Auth.Enabled {
			r.Use(apiKeyMiddleware(cfg.Auth.APIKey))
		}
		if limiter.Enabled() {
			r.Use(rateLimitMiddleware(limiter, group))
		}
	}

	r.Route("/v1", func(r chi.Router) {
		guard(r, "/v1")
		r.Get("/services", s.listServices)
		r.Get("/resolve", s.resolve)
		r.Get("/image", s.redirectToImage)
	})

	// Pre-/v1 endpoints kept for existing clients.
	r.Group(func(r chi.Router) {
		guard(r, "legacy")
		r.Get("/bypass", s.legacyBypass)
		r.Get("/supportedServices", s.legacySupportedServices)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listServices(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"services": s.resolver.ServiceNames()})
}

func (s *Server) resolve(w http.ResponseWriter, r *http.Request) {
	result, ok := s.resolveQuery(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) redirectToImage(w http.ResponseWriter, r *http.Request) {
	result, ok := s.resolveQuery(w, r)
	if !ok {
		return
	}
	http.Redirect(w, r, result.ImageURL, http.StatusFound)
}

// resolveQuery resolves the url query parameter, writing the error response
// itself when resolution fails.
func (s *Server) resolveQuery(w http.ResponseWriter, r *http.Request) (resolver.Result, bool) {
	pageURL := r.URL.Query().Get("url")
	if pageURL == "" {
		s.writeError(w, http.StatusBadRequest, "url query parameter is required")
		return resolver.Result{}, false
	}
	result, err := s.resolver.Resolve(r.Context(), pageURL)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Warn("resolve failed", zap.String("url", pageURL), zap.Error(err))
		}
		s.writeError(w, status, resolver.ReasonOf(err))
		return resolver.Result{}, false
	}
	return result, true
}

func statusFor(err error) int {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		if kind, ok := resolver.KindOf(err); !ok || kind == resolver.TransportError {
			return http.StatusGatewayTimeout
		}
	}
	kind, ok := resolver.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case resolver.NoMatchingRule:
		return http.StatusNotFound
	case resolver.MissingCapture, resolver.InvalidCandidateURL:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
