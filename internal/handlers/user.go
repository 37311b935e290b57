package handlers

import (
	"net/http"

	"match-backend/internal/models"
	"match-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// UserHandler handles registration, login and profile requests
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// LoginRequest represents the login payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/v1/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondServiceError(w, r, err, "Invalid register request")
		return
	}

	res, err := h.userService.Register(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to register user")
		return
	}

	log.Info().
		Int64("user_id", res.User.ID).
		Msg("User registered")

	respondJSON(w, http.StatusOK, res)
}

// Login handles POST /api/v1/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondServiceError(w, r, err, "Invalid login request")
		return
	}

	res, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, r, err, "Failed to log in")
		return
	}

	respondJSON(w, http.StatusOK, res)
}

// GetProfile handles GET /api/v1/profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := authUserID(w, r)
	if !ok {
		return
	}
	h.writeProfile(w, r, userID)
}

// GetProfileByID handles GET /api/v1/profile/{id}
func (h *UserHandler) GetProfileByID(w http.ResponseWriter, r *http.Request) {
	if _, ok := authUserID(w, r); !ok {
		return
	}
	profileID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	h.writeProfile(w, r, profileID)
}

func (h *UserHandler) writeProfile(w http.ResponseWriter, r *http.Request, profileID int64) {
	profile, err := h.userService.GetProfile(r.Context(), profileID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get profile")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// UpdateProfile handles PATCH /api/v1/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := authUserID(w, r)
	if !ok {
		return
	}

	var patch models.ProfilePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		respondServiceError(w, r, err, "Invalid profile patch")
		return
	}
	patch.PasswordHash = nil

	profile, err := h.userService.UpdateProfile(r.Context(), userID, patch)
	if err != nil {
		respondServiceError(w, r, err, "Failed to update profile")
		return
	}

	log.Info().
		Int64("user_id", userID).
		Msg("Profile updated")

	respondJSON(w, http.StatusOK, profile)
}
