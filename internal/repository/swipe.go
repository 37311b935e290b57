package repository

import (
	"context"
	"errors"
	"fmt"

	"match-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SwipeRepository is the append-only ledger of swipe decisions
type SwipeRepository struct {
	db *pgxpool.Pool
}

// NewSwipeRepository creates a new swipe repository
func NewSwipeRepository(db *pgxpool.Pool) *SwipeRepository {
	return &SwipeRepository{db: db}
}

// Append records a swipe. If the swiper already swiped the same profile the
// stored row is returned unchanged with created set to false.
func (r *SwipeRepository) Append(ctx context.Context, swipe *models.Swipe) (stored *models.Swipe, created bool, err error) {
	query := `
		INSERT INTO swipes (swiper_id, swiped_id, type)
		VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT swipes_swiper_swiped_key DO NOTHING
		RETURNING id, swiper_id, swiped_id, type, created_at
	`
	var s models.Swipe
	err = r.db.QueryRow(ctx, query, swipe.SwiperID, swipe.SwipedID, swipe.Type).Scan(
		&s.ID, &s.SwiperID, &s.SwipedID, &s.Type, &s.CreatedAt,
	)
	if err == nil {
		return &s, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to record swipe: %w", err)
	}

	existing, err := r.Get(ctx, swipe.SwiperID, swipe.SwipedID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// Get returns the swipe of swiperID on swipedID
func (r *SwipeRepository) Get(ctx context.Context, swiperID, swipedID int64) (*models.Swipe, error) {
	query := `
		SELECT id, swiper_id, swiped_id, type, created_at
		FROM swipes
		WHERE swiper_id = $1 AND swiped_id = $2
	`
	var s models.Swipe
	err := r.db.QueryRow(ctx, query, swiperID, swipedID).Scan(
		&s.ID, &s.SwiperID, &s.SwipedID, &s.Type, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("swipe %d->%d: %w", swiperID, swipedID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get swipe: %w", err)
	}
	return &s, nil
}

// HasLiked checks whether swiperID has recorded a like on swipedID
func (r *SwipeRepository) HasLiked(ctx context.Context, swiperID, swipedID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM swipes WHERE swiper_id = $1 AND swiped_id = $2 AND type = $3)`
	var exists bool
	err := r.db.QueryRow(ctx, query, swiperID, swipedID, models.SwipeLike).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check like: %w", err)
	}
	return exists, nil
}
