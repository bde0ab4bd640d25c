// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/padelhq/matchrank/internal/app"
	"github.com/padelhq/matchrank/internal/domain/matching"
	"github.com/padelhq/matchrank/internal/domain/model"
)

// CandidatesHandler handles candidate search requests.
type CandidatesHandler struct {
	deps Dependencies
}

// NewCandidatesHandler creates a new candidates handler.
func NewCandidatesHandler(deps Dependencies) *CandidatesHandler {
	return &CandidatesHandler{deps: deps}
}

// HandleFindCandidates handles POST /candidates requests.
func (h *CandidatesHandler) HandleFindCandidates(w http.ResponseWriter, r *http.Request) {
	const op = "api.find_candidates"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req model.MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	candidates, err := h.deps.FindCandidates(r.Context(), req)
	if err != nil {
		status, code := statusForPipelineError(err)
		writeError(w, status, code, err)
		return
	}

	writeJSON(w, http.StatusOK, candidatesResponse{
		MatchID:    req.MatchID,
		Candidates: candidates,
		Total:      len(candidates),
	})
}

// statusForPipelineError maps pipeline error kinds onto HTTP responses. An
// empty pool is a business outcome (404); any collaborator failure surfaces
// as 503.
func statusForPipelineError(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvalidRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, matching.ErrNoCandidates):
		return http.StatusNotFound, "no_candidates"
	case errors.Is(err, service.ErrEncoding):
		return http.StatusServiceUnavailable, "encoding_unavailable"
	case errors.Is(err, service.ErrRetrieval):
		return http.StatusServiceUnavailable, "retrieval_unavailable"
	case errors.Is(err, service.ErrDatabase):
		return http.StatusServiceUnavailable, "database_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
