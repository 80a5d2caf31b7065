package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"scholarly/internal/core"
	"scholarly/internal/persistence"
	"scholarly/internal/pipeline"
	"scholarly/internal/worker"

	"github.com/go-chi/chi/v5"
)

// CreateDigestRequest is the POST /api/digests payload. Provider, model,
// and style fall back to the stored settings when omitted.
type CreateDigestRequest struct {
	Name     string   `json:"name"`
	PaperIDs []string `json:"paper_ids"`
	Provider string   `json:"provider"`
	Model    string   `json:"model"`
	Style    string   `json:"style"`
}

// DigestListResponse is one page of digests, without their papers.
type DigestListResponse struct {
	Digests []core.Digest `json:"digests"`
	Total   int           `json:"total"`
	Skip    int           `json:"skip"`
	Limit   int           `json:"limit"`
}

// DigestView is the polling view of a digest: every digest field plus the
// member papers, in reading order, with whatever enrichment has landed.
type DigestView struct {
	core.Digest
	Papers []core.Paper `json:"papers"`
}

// handleCreateDigest handles POST /api/digests
func (s *Server) handleCreateDigest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateDigestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	digest, err := s.runner.Create(ctx, req.Name, req.PaperIDs, req.Provider, req.Model, req.Style)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrNoPapers):
			s.respondError(w, http.StatusBadRequest, "At least one paper is required")
		case errors.Is(err, persistence.ErrNotFound):
			s.respondError(w, http.StatusNotFound, "One or more papers were not found")
		default:
			s.log.Error("Failed to create digest", "error", err)
			s.respondError(w, http.StatusInternalServerError, "Failed to create digest")
		}
		return
	}

	if err := s.pool.Submit(digest.ID); err != nil {
		// The digest never reached a worker; remove it so the client can
		// simply retry the create.
		if delErr := s.store.Digests().Delete(ctx, digest.ID); delErr != nil {
			s.log.Error("Failed to remove unqueued digest", "id", digest.ID, "error", delErr)
		}
		s.respondQueueError(w, err)
		return
	}

	s.respondJSON(w, http.StatusAccepted, digest)
}

// handleListDigests handles GET /api/digests
func (s *Server) handleListDigests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	opts := parseListOptions(r)

	filter := persistence.DigestFilter{
		ListOptions: opts,
		Status:      core.DigestStatus(r.URL.Query().Get("status")),
	}

	digests, err := s.store.Digests().List(ctx, filter)
	if err != nil {
		s.log.Error("Failed to list digests", "error", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to load digests")
		return
	}
	if digests == nil {
		digests = []core.Digest{}
	}

	s.respondJSON(w, http.StatusOK, DigestListResponse{
		Digests: digests,
		Total:   len(digests),
		Skip:    opts.Offset,
		Limit:   opts.Limit,
	})
}

// handleGetDigest handles GET /api/digests/{id}
func (s *Server) handleGetDigest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	digestID := chi.URLParam(r, "id")

	digest, err := s.store.Digests().Get(ctx, digestID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "Digest not found")
			return
		}
		s.log.Error("Failed to get digest", "id", digestID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to load digest")
		return
	}

	view := DigestView{Digest: *digest, Papers: make([]core.Paper, 0, len(digest.PaperIDs))}
	for _, paperID := range digest.PaperIDs {
		paper, err := s.store.Papers().Get(ctx, paperID)
		if err != nil {
			// A concurrent delete can drop a member between the two reads.
			if errors.Is(err, persistence.ErrNotFound) {
				continue
			}
			s.log.Error("Failed to load digest paper", "digest_id", digestID, "paper_id", paperID, "error", err)
			s.respondError(w, http.StatusInternalServerError, "Failed to load digest")
			return
		}
		view.Papers = append(view.Papers, *paper)
	}

	s.respondJSON(w, http.StatusOK, view)
}

// handleRegenerateDigest handles POST /api/digests/{id}/regenerate
func (s *Server) handleRegenerateDigest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	digestID := chi.URLParam(r, "id")

	digest, err := s.runner.Regenerate(ctx, digestID)
	if err != nil {
		switch {
		case errors.Is(err, persistence.ErrNotFound):
			s.respondError(w, http.StatusNotFound, "Digest not found")
		case errors.Is(err, pipeline.ErrDigestProcessing):
			s.respondError(w, http.StatusConflict, "Digest is already processing")
		default:
			s.log.Error("Failed to regenerate digest", "id", digestID, "error", err)
			s.respondError(w, http.StatusInternalServerError, "Failed to regenerate digest")
		}
		return
	}

	if err := s.pool.Submit(digest.ID); err != nil {
		// Regenerate already marked the digest processing; without a queued
		// job it would stay there forever, so record the failure instead.
		if stErr := s.store.Digests().UpdateStatus(ctx, digest.ID, core.DigestFailed, "regeneration could not be queued"); stErr != nil {
			s.log.Error("Failed to mark unqueued digest", "id", digest.ID, "error", stErr)
		}
		s.respondQueueError(w, err)
		return
	}

	s.respondJSON(w, http.StatusAccepted, digest)
}

// handleDeleteDigest handles DELETE /api/digests/{id}
func (s *Server) handleDeleteDigest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	digestID := chi.URLParam(r, "id")

	if err := s.store.Digests().Delete(ctx, digestID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "Digest not found")
			return
		}
		s.log.Error("Failed to delete digest", "id", digestID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to delete digest")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// respondQueueError maps worker submission failures to 503 responses.
func (s *Server) respondQueueError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, worker.ErrQueueFull):
		s.respondError(w, http.StatusServiceUnavailable, "Digest queue is full, try again later")
	case errors.Is(err, worker.ErrStopped):
		s.respondError(w, http.StatusServiceUnavailable, "Service is shutting down")
	default:
		s.log.Error("Failed to queue digest", "error", err)
		s.respondError(w, http.StatusServiceUnavailable, "Failed to queue digest")
	}
}
