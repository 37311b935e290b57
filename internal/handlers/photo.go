package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"match-backend/internal/services"

	"github.com/rs/zerolog/log"
)

const multipartOverhead = 1 << 20

// PhotoHandler handles photo-related HTTP requests
type PhotoHandler struct {
	photoService *services.PhotoService
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(photoService *services.PhotoService) *PhotoHandler {
	return &PhotoHandler{
		photoService: photoService,
	}
}

// GetPhotos handles GET /api/v1/photos
func (h *PhotoHandler) GetPhotos(w http.ResponseWriter, r *http.Request) {
	userID, ok := authUserID(w, r)
	if !ok {
		return
	}

	photos, err := h.photoService.ListPhotos(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get photos")
		return
	}

	respondJSON(w, http.StatusOK, photos)
}

// UploadPhoto handles POST /api/v1/photos (multipart field "photo")
func (h *PhotoHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	userID, ok := authUserID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, services.MaxPhotoSize+multipartOverhead)
	if err := r.ParseMultipartForm(services.MaxPhotoSize); err != nil {
		var tooLarge *http.MaxBytesError
		msg := "must be a multipart upload"
		if errors.As(err, &tooLarge) {
			msg = fmt.Sprintf("must be at most %d bytes", services.MaxPhotoSize)
		}
		respondServiceError(w, r, &services.ValidationError{Fields: map[string]string{"photo": msg}}, "Invalid photo upload")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("photo")
	if err != nil {
		respondServiceError(w, r, &services.ValidationError{Fields: map[string]string{"photo": "is required"}}, "Invalid photo upload")
		return
	}
	defer file.Close()

	photo, err := h.photoService.UploadPhoto(r.Context(), userID, header.Filename, header.Size, file)
	if err != nil {
		respondServiceError(w, r, err, "Failed to upload photo")
		return
	}

	log.Info().
		Int64("user_id", userID).
		Int64("photo_id", photo.ID).
		Int("order", photo.Order).
		Msg("Photo uploaded")

	respondJSON(w, http.StatusOK, photo)
}
