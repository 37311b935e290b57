package handlers

import (
	"net/http"

	"match-backend/internal/models"
	"match-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// MatchHandler serves candidates and swipes
type MatchHandler struct {
	candidateService *services.CandidateService
	swipeService     *services.SwipeService
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(candidateService *services.CandidateService, swipeService *services.SwipeService) *MatchHandler {
	return &MatchHandler{
		candidateService: candidateService,
		swipeService:     swipeService,
	}
}

// SwipeRequest represents the swipe payload
type SwipeRequest struct {
	SwipedProfileID int64            `json:"swiped_profile_id"`
	Type            models.SwipeType `json:"type"`
}

// SwipeResponse is returned for every accepted swipe
type SwipeResponse struct {
	Status string `json:"status"`
	Match  bool   `json:"match"`
	PairID *int64 `json:"pair_id,omitempty"`
}

// GetCandidates handles GET /api/v1/candidates
func (h *MatchHandler) GetCandidates(w http.ResponseWriter, r *http.Request) {
	userID, ok := authUserID(w, r)
	if !ok {
		return
	}

	candidates, err := h.candidateService.GetCandidates(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get candidates")
		return
	}

	respondJSON(w, http.StatusOK, candidates)
}

// Swipe handles POST /api/v1/swipes
func (h *MatchHandler) Swipe(w http.ResponseWriter, r *http.Request) {
	userID, ok := authUserID(w, r)
	if !ok {
		return
	}

	var req SwipeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondServiceError(w, r, err, "Invalid swipe request")
		return
	}

	res, err := h.swipeService.Swipe(r.Context(), userID, req.SwipedProfileID, req.Type)
	if err != nil {
		respondServiceError(w, r, err, "Failed to swipe")
		return
	}

	log.Info().
		Int64("user_id", userID).
		Int64("swiped_id", req.SwipedProfileID).
		Str("type", string(req.Type)).
		Bool("match", res.Matched).
		Msg("Swipe recorded")

	resp := SwipeResponse{Status: "success", Match: res.Matched}
	if res.Pair != nil {
		resp.PairID = &res.Pair.ID
	}
	respondJSON(w, http.StatusOK, resp)
}
