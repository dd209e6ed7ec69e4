package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"seller-onboarding/internal/domain"
)

type sellerResponse struct {
	ID                 string    `json:"id"`
	Language           string    `json:"language"`
	StoreName          string    `json:"store_name"`
	StoreSlug          string    `json:"store_slug"`
	Category           string    `json:"category"`
	Description        string    `json:"description"`
	Phone              string    `json:"phone"`
	OnboardingComplete bool      `json:"onboarding_complete"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// handleGetSeller returns one persisted seller profile.
func (s *Server) handleGetSeller(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := s.sellers.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "seller not found", http.StatusNotFound)
			return
		}
		s.log.Error().Err(err).Str("seller_id", id).Msg("seller lookup failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sellerResponse{
		ID:                 p.ID,
		Language:           p.Language,
		StoreName:          p.StoreName,
		StoreSlug:          p.StoreSlug,
		Category:           p.Category,
		Description:        p.Description,
		Phone:              p.Phone,
		OnboardingComplete: p.OnboardingComplete,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	})
}

// handleStats reports how many sellers finished onboarding.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	n, err := s.sellers.CountOnboarded(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("stats query failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"onboarded": n})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			s.log.Warn().Err(err).Msg("health: postgres ping failed")
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			s.log.Warn().Err(err).Msg("health: redis ping failed")
			http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
