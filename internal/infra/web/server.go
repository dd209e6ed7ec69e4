package web

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"seller-onboarding/internal/domain/ports/adapter"
	"seller-onboarding/internal/domain/ports/repository"
	"seller-onboarding/internal/infra/logging"
	red "seller-onboarding/internal/infra/redis"
	"seller-onboarding/internal/usecase"
)

// Pinger is satisfied by the pgx pool and the redis client.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	onboarding usecase.OnboardingUseCase
	completion adapter.CompletionStreamer
	sellers    repository.SellerRepository
	limiter    *red.RateLimiter
	turnLimit  int
	db         Pinger
	cache      Pinger
	apiKey     string
	log        *zerolog.Logger
}

func NewServer(
	onboarding usecase.OnboardingUseCase,
	completion adapter.CompletionStreamer,
	sellers repository.SellerRepository,
	limiter *red.RateLimiter,
	turnLimit int,
	db Pinger,
	cache Pinger,
	apiKey string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		onboarding: onboarding,
		completion: completion,
		sellers:    sellers,
		limiter:    limiter,
		turnLimit:  turnLimit,
		db:         db,
		cache:      cache,
		apiKey:     apiKey,
		log:        logger,
	}
}

// Routes builds the router. The turn endpoint is public (the UI calls it
// directly); the operator API sits behind the admin key.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/onboarding/turn", s.handleTurn)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.requireAPIKey)
		r.Get("/sellers/{id}", s.handleGetSeller)
		r.Get("/stats", s.handleStats)
	})
	return r
}

// requestID tags every request with a trace id for log correlation.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logging.WithTraceID(r.Context(), id)))
	})
}

// requireAPIKey provides simple Bearer token authentication for the
// operator API.
func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("admin API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			http.Error(w, "Unauthorized: Malformed token", http.StatusUnauthorized)
			return
		}

		if tokenParts[1] != s.apiKey {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
