package repository

import (
	"context"
	"errors"
	"fmt"

	"match-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PhotoRepository handles database operations for photos
type PhotoRepository struct {
	db *pgxpool.Pool
}

// NewPhotoRepository creates a new photo repository
func NewPhotoRepository(db *pgxpool.Pool) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// Create appends a photo after the owner's last one and fills id, order and
// timestamps. Appends for the same owner are serialized on the owner's row.
func (r *PhotoRepository) Create(ctx context.Context, photo *models.Photo) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var ownerID int64
	err = tx.QueryRow(ctx, `SELECT id FROM match_users WHERE id = $1 FOR UPDATE`, photo.UserID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("user %d: %w", photo.UserID, ErrNotFound)
		}
		return fmt.Errorf("failed to lock photo owner: %w", err)
	}

	query := `
		INSERT INTO photos (match_user_id, url, position)
		SELECT $1, $2, COALESCE(MAX(position) + 1, 0)
		FROM photos
		WHERE match_user_id = $1
		RETURNING id, position, created_at, updated_at
	`
	err = tx.QueryRow(ctx, query, photo.UserID, photo.URL).Scan(
		&photo.ID, &photo.Order, &photo.CreatedAt, &photo.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "photos_owner_position_key") {
			return fmt.Errorf("photo position for user %d: %w", photo.UserID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create photo: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit photo: %w", err)
	}
	return nil
}

// ListByUserID retrieves the photos of a user ordered by position
func (r *PhotoRepository) ListByUserID(ctx context.Context, userID int64) ([]models.Photo, error) {
	query := `
		SELECT id, match_user_id, url, position, created_at, updated_at
		FROM photos
		WHERE match_user_id = $1
		ORDER BY position, id
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get photos: %w", err)
	}
	defer rows.Close()

	photos := []models.Photo{}
	for rows.Next() {
		var photo models.Photo
		err := rows.Scan(
			&photo.ID, &photo.UserID, &photo.URL, &photo.Order,
			&photo.CreatedAt, &photo.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, photo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}

	return photos, nil
}

