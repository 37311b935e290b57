package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"match-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MaxPhotoSize bounds a single upload
const MaxPhotoSize = 10 << 20

var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// PhotoService handles photo uploads
type PhotoService struct {
	photoRepo PhotoStore
	objects   ObjectStore
}

// NewPhotoService creates a new photo service
func NewPhotoService(photoRepo PhotoStore, objects ObjectStore) *PhotoService {
	return &PhotoService{
		photoRepo: photoRepo,
		objects:   objects,
	}
}

// UploadPhoto stores the file and appends a photo row after the user's last photo
func (s *PhotoService) UploadPhoto(ctx context.Context, userID int64, filename string, size int64, file io.Reader) (*models.Photo, error) {
	if size > MaxPhotoSize {
		return nil, fieldError("photo", fmt.Sprintf("must be at most %d bytes", MaxPhotoSize))
	}

	br := bufio.NewReaderSize(file, 512)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(head) == 0 {
		return nil, fieldError("photo", "is empty")
	}

	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fieldError("photo", "must be an image")
	}

	ext, ok := photoExtensions[contentType]
	if !ok {
		ext = strings.ToLower(filepath.Ext(filename))
	}
	key := fmt.Sprintf("profiles/%d/%s%s", userID, uuid.New().String(), ext)

	url, err := s.objects.Put(ctx, key, contentType, br)
	if err != nil {
		return nil, fmt.Errorf("failed to store photo: %w", err)
	}

	photo := &models.Photo{
		UserID: userID,
		URL:    url,
	}
	if err := s.photoRepo.Create(ctx, photo); err != nil {
		// no row references the object
		if delErr := s.objects.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			log.Warn().
				Err(delErr).
				Int64("user_id", userID).
				Str("key", key).
				Msg("Failed to delete orphaned photo object")
		}
		return nil, fmt.Errorf("failed to create photo record: %w", err)
	}

	return photo, nil
}

// ListPhotos returns a user's photos ordered by position
func (s *PhotoService) ListPhotos(ctx context.Context, userID int64) ([]models.Photo, error) {
	return s.photoRepo.ListByUserID(ctx, userID)
}
