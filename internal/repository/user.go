package repository

import (
	"context"
	"errors"
	"fmt"

	"match-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const profileColumns = `id, email, password_hash, name, age, gender, interested_in,
	description, instagram, whatsapp, created_at, updated_at`

// UserRepository handles database operations for profiles
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a profile and fills its generated id and timestamps.
// Returns ErrDuplicate when the email is taken.
func (r *UserRepository) Create(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO match_users (email, password_hash, name, age, gender, interested_in,
			description, instagram, whatsapp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		p.Email, p.PasswordHash, p.Name, p.Age, p.Gender, p.InterestedIn,
		p.Description, p.Instagram, p.WhatsApp,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "match_users_email_key") {
			return fmt.Errorf("email %q: %w", p.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a profile by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM match_users WHERE id = $1`
	p, err := scanProfile(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return p, nil
}

// GetByEmail retrieves a profile by its (normalized) email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM match_users WHERE email = $1`
	p, err := scanProfile(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return p, nil
}

// Update applies a partial patch and returns the stored profile
func (r *UserRepository) Update(ctx context.Context, id int64, patch models.ProfilePatch) (*models.Profile, error) {
	query := `
		UPDATE match_users SET
			name          = COALESCE($2, name),
			age           = COALESCE($3, age),
			gender        = COALESCE($4, gender),
			interested_in = COALESCE($5, interested_in),
			description   = COALESCE($6, description),
			instagram     = COALESCE($7, instagram),
			whatsapp      = COALESCE($8, whatsapp),
			password_hash = COALESCE($9, password_hash),
			updated_at    = now()
		WHERE id = $1
		RETURNING ` + profileColumns
	p, err := scanProfile(r.db.QueryRow(ctx, query, id,
		patch.Name, patch.Age, patch.Gender, patch.InterestedIn,
		patch.Description, patch.Instagram, patch.WhatsApp, patch.PasswordHash,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return p, nil
}

// ListCandidates returns the profiles of the given gender that the requester
// has not swiped yet, excluding the requester, ordered by id
func (r *UserRepository) ListCandidates(ctx context.Context, requesterID int64, gender models.Gender) ([]models.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM match_users u
		WHERE u.id <> $1
		  AND u.gender = $2
		  AND NOT EXISTS (
			SELECT 1 FROM swipes s WHERE s.swiper_id = $1 AND s.swiped_id = u.id
		  )
		ORDER BY u.id
	`
	rows, err := r.db.Query(ctx, query, requesterID, gender)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	candidates := []models.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidates: %w", err)
	}
	return candidates, nil
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(
		&p.ID, &p.Email, &p.PasswordHash, &p.Name, &p.Age, &p.Gender, &p.InterestedIn,
		&p.Description, &p.Instagram, &p.WhatsApp, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
