package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"scholarly/internal/core"
	"scholarly/internal/ingest"
	"scholarly/internal/persistence"

	"github.com/go-chi/chi/v5"
)

// PaperListResponse is one page of stored papers.
type PaperListResponse struct {
	Papers []core.Paper `json:"papers"`
	Total  int          `json:"total"`
	Skip   int          `json:"skip"`
	Limit  int          `json:"limit"`
}

// IngestFailure reports one rejected record from a batch ingest.
type IngestFailure struct {
	Index int    `json:"index"`
	Title string `json:"title,omitempty"`
	Error string `json:"error"`
}

// IngestResponse lists the stored and rejected records of a batch ingest.
type IngestResponse struct {
	Ingested []core.Paper    `json:"ingested"`
	Failed   []IngestFailure `json:"failed,omitempty"`
	Total    int             `json:"total"`
}

// handleListPapers handles GET /api/papers
func (s *Server) handleListPapers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	opts := parseListOptions(r)

	papers, err := s.store.Papers().List(ctx, opts)
	if err != nil {
		s.log.Error("Failed to list papers", "error", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to load papers")
		return
	}
	if papers == nil {
		papers = []core.Paper{}
	}

	s.respondJSON(w, http.StatusOK, PaperListResponse{
		Papers: papers,
		Total:  len(papers),
		Skip:   opts.Offset,
		Limit:  opts.Limit,
	})
}

// handleIngestPapers handles POST /api/papers
func (s *Server) handleIngestPapers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var incoming []ingest.Incoming
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(incoming) == 0 {
		s.respondError(w, http.StatusBadRequest, "At least one paper is required")
		return
	}

	response := IngestResponse{Ingested: []core.Paper{}}

	for i, in := range incoming {
		paper, err := ingest.Normalize(in)
		if err != nil {
			response.Failed = append(response.Failed, IngestFailure{
				Index: i,
				Title: in.Title,
				Error: err.Error(),
			})
			continue
		}

		if err := s.store.Papers().Create(ctx, paper); err != nil {
			s.log.Error("Failed to store paper", "title", paper.Title, "error", err)
			response.Failed = append(response.Failed, IngestFailure{
				Index: i,
				Title: paper.Title,
				Error: "Failed to store paper",
			})
			continue
		}

		response.Ingested = append(response.Ingested, *paper)
	}

	response.Total = len(response.Ingested)

	status := http.StatusCreated
	if len(response.Failed) > 0 && len(response.Ingested) == 0 {
		status = http.StatusBadRequest
	}

	s.respondJSON(w, status, response)
}

// handleGetPaper handles GET /api/papers/{id}
func (s *Server) handleGetPaper(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	paperID := chi.URLParam(r, "id")

	paper, err := s.store.Papers().Get(ctx, paperID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "Paper not found")
			return
		}
		s.log.Error("Failed to get paper", "id", paperID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to load paper")
		return
	}

	s.respondJSON(w, http.StatusOK, paper)
}

// handleDeletePaper handles DELETE /api/papers/{id}
func (s *Server) handleDeletePaper(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	paperID := chi.URLParam(r, "id")

	if err := s.store.Papers().Delete(ctx, paperID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "Paper not found")
			return
		}
		s.log.Error("Failed to delete paper", "id", paperID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to delete paper")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
