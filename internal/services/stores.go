package services

import (
	"context"
	"io"
	"time"

	"match-backend/internal/models"
)

// UserStore persists profiles. Implemented by repository.UserRepository.
type UserStore interface {
	Create(ctx context.Context, p *models.Profile) error
	GetByID(ctx context.Context, id int64) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	Update(ctx context.Context, id int64, patch models.ProfilePatch) (*models.Profile, error)
	ListCandidates(ctx context.Context, requesterID int64, gender models.Gender) ([]models.Profile, error)
}

// PhotoStore persists photo rows. Implemented by repository.PhotoRepository.
type PhotoStore interface {
	Create(ctx context.Context, photo *models.Photo) error
	ListByUserID(ctx context.Context, userID int64) ([]models.Photo, error)
}

// SwipeStore is the swipe ledger. Implemented by repository.SwipeRepository.
type SwipeStore interface {
	Append(ctx context.Context, swipe *models.Swipe) (*models.Swipe, bool, error)
	HasLiked(ctx context.Context, swiperID, swipedID int64) (bool, error)
}

// PairStore persists pairs. Create must return repository.ErrDuplicate when
// the canonical couple already exists. Implemented by repository.PairRepository.
type PairStore interface {
	Create(ctx context.Context, users models.UserPair) (*models.Pair, error)
	GetByID(ctx context.Context, id int64) (*models.Pair, error)
	GetByUsers(ctx context.Context, users models.UserPair) (*models.Pair, error)
	ListByUserID(ctx context.Context, userID int64) ([]models.Pair, error)
}

// MessageStore persists conversation messages. Implemented by repository.MessageRepository.
type MessageStore interface {
	Create(ctx context.Context, msg *models.Message) error
	ListByPairID(ctx context.Context, pairID int64) ([]models.Message, error)
}

// ObjectStore keeps uploaded files. Implemented by storage.S3Store.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

// JSONCache is an optional cache. Implemented by cache.Redis.
type JSONCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}
