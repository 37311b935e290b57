package handlers

import (
	"net/http"

	"match-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// AvatarHandler serves public profile pictures from the external provider
type AvatarHandler struct {
	avatarService *services.AvatarService
}

// NewAvatarHandler creates a new avatar handler
func NewAvatarHandler(avatarService *services.AvatarService) *AvatarHandler {
	return &AvatarHandler{
		avatarService: avatarService,
	}
}

// AvatarNotFoundResponse is returned when no picture could be resolved
type AvatarNotFoundResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

// GetProfilePicture handles GET /api/v1/avatar/{username}
func (h *AvatarHandler) GetProfilePicture(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	res, ok := h.avatarService.GetProfilePicture(r.Context(), username)
	if !ok {
		respondJSON(w, http.StatusNotFound, AvatarNotFoundResponse{
			Message:  "Profile picture not found",
			Username: username,
		})
		return
	}

	respondJSON(w, http.StatusOK, res)
}
