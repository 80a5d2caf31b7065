package server

import (
	"encoding/json"
	"net/http"
)

// UpdateSettingsRequest is the PUT /api/settings payload. Omitted fields
// keep their stored values.
type UpdateSettingsRequest struct {
	DefaultProvider *string `json:"default_provider"`
	DefaultModel    *string `json:"default_model"`
	DefaultStyle    *string `json:"default_style"`
}

// UpdateWeightsRequest is the PUT /api/settings/credibility-weights payload.
// Omitted weights keep their stored values; the merged set is renormalized
// before it is persisted.
type UpdateWeightsRequest struct {
	JournalImpact    *float64 `json:"journal_impact"`
	AuthorHIndex     *float64 `json:"author_hindex"`
	SampleSize       *float64 `json:"sample_size"`
	Methodology      *float64 `json:"methodology"`
	PeerReview       *float64 `json:"peer_review"`
	CitationVelocity *float64 `json:"citation_velocity"`
}

// handleGetSettings handles GET /api/settings
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	settings, err := s.store.Settings().Get(ctx)
	if err != nil {
		s.log.Error("Failed to load settings", "error", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}

	s.respondJSON(w, http.StatusOK, settings)
}

// handleUpdateSettings handles PUT /api/settings
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	settings, err := s.store.Settings().Get(ctx)
	if err != nil {
		s.log.Error("Failed to load settings", "error", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}

	if req.DefaultProvider != nil {
		settings.DefaultProvider = *req.DefaultProvider
	}
	if req.DefaultModel != nil {
		settings.DefaultModel = *req.DefaultModel
	}
	if req.DefaultStyle != nil {
		settings.DefaultStyle = *req.DefaultStyle
	}

	if err := s.store.Settings().Update(ctx, settings); err != nil {
		s.log.Error("Failed to update settings", "error", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to update settings")
		return
	}

	s.respondJSON(w, http.StatusOK, settings)
}

// handleUpdateWeights handles PUT /api/settings/credibility-weights
func (s *Server) handleUpdateWeights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req UpdateWeightsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	settings, err := s.store.Settings().Get(ctx)
	if err != nil {
		s.log.Error("Failed to load settings", "error", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}

	weights := settings.Weights
	if req.JournalImpact != nil {
		weights.JournalImpact = *req.JournalImpact
	}
	if req.AuthorHIndex != nil {
		weights.AuthorHIndex = *req.AuthorHIndex
	}
	if req.SampleSize != nil {
		weights.SampleSize = *req.SampleSize
	}
	if req.Methodology != nil {
		weights.Methodology = *req.Methodology
	}
	if req.PeerReview != nil {
		weights.PeerReview = *req.PeerReview
	}
	if req.CitationVelocity != nil {
		weights.CitationVelocity = *req.CitationVelocity
	}

	updated, err := s.store.Settings().UpdateWeights(ctx, weights)
	if err != nil {
		s.log.Error("Failed to update weights", "error", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to update weights")
		return
	}

	s.respondJSON(w, http.StatusOK, updated.Weights)
}
