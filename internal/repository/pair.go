package repository

import (
	"context"
	"errors"
	"fmt"

	"match-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pairsUsersConstraint = "pairs_users_key"

// PairRepository handles database operations for pairs
type PairRepository struct {
	db *pgxpool.Pool
}

// NewPairRepository creates a new pair repository
func NewPairRepository(db *pgxpool.Pool) *PairRepository {
	return &PairRepository{db: db}
}

// Create inserts the pair for a canonical couple.
// Returns ErrDuplicate when the couple is already paired.
func (r *PairRepository) Create(ctx context.Context, users models.UserPair) (*models.Pair, error) {
	query := `
		INSERT INTO pairs (user_1_id, user_2_id)
		VALUES ($1, $2)
		RETURNING id, user_1_id, user_2_id, created_at
	`
	var pair models.Pair
	err := r.db.QueryRow(ctx, query, users.User1(), users.User2()).Scan(
		&pair.ID, &pair.User1ID, &pair.User2ID, &pair.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, pairsUsersConstraint) {
			return nil, fmt.Errorf("pair %d/%d: %w", users.User1(), users.User2(), ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create pair: %w", err)
	}
	return &pair, nil
}

// GetByID retrieves a pair by ID
func (r *PairRepository) GetByID(ctx context.Context, id int64) (*models.Pair, error) {
	query := `
		SELECT id, user_1_id, user_2_id, created_at
		FROM pairs
		WHERE id = $1
	`
	var pair models.Pair
	err := r.db.QueryRow(ctx, query, id).Scan(
		&pair.ID, &pair.User1ID, &pair.User2ID, &pair.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("pair %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get pair: %w", err)
	}
	return &pair, nil
}

// GetByUsers retrieves the pair of a canonical couple
func (r *PairRepository) GetByUsers(ctx context.Context, users models.UserPair) (*models.Pair, error) {
	query := `
		SELECT id, user_1_id, user_2_id, created_at
		FROM pairs
		WHERE user_1_id = $1 AND user_2_id = $2
	`
	var pair models.Pair
	err := r.db.QueryRow(ctx, query, users.User1(), users.User2()).Scan(
		&pair.ID, &pair.User1ID, &pair.User2ID, &pair.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("pair %d/%d: %w", users.User1(), users.User2(), ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get pair by users: %w", err)
	}
	return &pair, nil
}

// ListByUserID retrieves every pair a user belongs to, newest first
func (r *PairRepository) ListByUserID(ctx context.Context, userID int64) ([]models.Pair, error) {
	query := `
		SELECT id, user_1_id, user_2_id, created_at
		FROM pairs
		WHERE user_1_id = $1 OR user_2_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pairs: %w", err)
	}
	defer rows.Close()

	pairs := []models.Pair{}
	for rows.Next() {
		var pair models.Pair
		if err := rows.Scan(&pair.ID, &pair.User1ID, &pair.User2ID, &pair.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pair: %w", err)
		}
		pairs = append(pairs, pair)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pairs: %w", err)
	}
	return pairs, nil
}
