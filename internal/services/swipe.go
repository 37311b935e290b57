package services

import (
	"context"
	"errors"
	"fmt"

	"match-backend/internal/metrics"
	"match-backend/internal/models"
	"match-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// SwipeService records swipes and turns reciprocal likes into pairs
type SwipeService struct {
	userRepo  UserStore
	swipeRepo SwipeStore
	pairRepo  PairStore
}

// NewSwipeService creates a new swipe service
func NewSwipeService(userRepo UserStore, swipeRepo SwipeStore, pairRepo PairStore) *SwipeService {
	return &SwipeService{
		userRepo:  userRepo,
		swipeRepo: swipeRepo,
		pairRepo:  pairRepo,
	}
}

// SwipeResult is the outcome of a swipe
type SwipeResult struct {
	Matched bool
	Pair    *models.Pair
}

// Swipe records swiperID's decision about swipedID. A like answering an
// earlier like from swipedID produces the couple's pair; the pair is created
// at most once no matter how many requests race to create it.
//
// Repeating the same decision is idempotent. Changing an earlier decision
// fails with ErrConflict.
func (s *SwipeService) Swipe(ctx context.Context, swiperID, swipedID int64, swipeType models.SwipeType) (*SwipeResult, error) {
	var v validator
	v.check(swipeType.Valid(), "type", "must be like or dislike")
	v.check(swipedID > 0, "swiped_profile_id", "is required")
	v.check(swiperID != swipedID, "swiped_profile_id", "cannot swipe yourself")
	if err := v.err(); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, swipedID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fieldError("swiped_profile_id", "does not exist")
		}
		return nil, fmt.Errorf("failed to get swiped user: %w", err)
	}

	stored, created, err := s.swipeRepo.Append(ctx, &models.Swipe{
		SwiperID: swiperID,
		SwipedID: swipedID,
		Type:     swipeType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record swipe: %w", err)
	}
	if !created && stored.Type != swipeType {
		return nil, fmt.Errorf("user %d already swiped %s on %d: %w", swiperID, stored.Type, swipedID, ErrConflict)
	}
	if created {
		metrics.SwipesTotal.WithLabelValues(string(swipeType)).Inc()
	}

	if swipeType == models.SwipeDislike {
		return &SwipeResult{Matched: false}, nil
	}

	reciprocal, err := s.swipeRepo.HasLiked(ctx, swipedID, swiperID)
	if err != nil {
		return nil, fmt.Errorf("failed to check reciprocal like: %w", err)
	}
	if !reciprocal {
		return &SwipeResult{Matched: false}, nil
	}

	users, err := models.NewUserPair(swiperID, swipedID)
	if err != nil {
		return nil, fmt.Errorf("failed to build pair: %w", err)
	}
	pair, err := s.ensurePair(ctx, users)
	if err != nil {
		return nil, err
	}
	return &SwipeResult{Matched: true, Pair: pair}, nil
}

// ensurePair returns the couple's pair, creating it when missing. A unique
// violation on insert means a concurrent request created it first.
func (s *SwipeService) ensurePair(ctx context.Context, users models.UserPair) (*models.Pair, error) {
	pair, err := s.pairRepo.GetByUsers(ctx, users)
	if err == nil {
		return pair, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to get pair: %w", err)
	}

	pair, err = s.pairRepo.Create(ctx, users)
	if err == nil {
		metrics.PairsCreatedTotal.Inc()
		log.Info().
			Int64("pair_id", pair.ID).
			Int64("user_1_id", pair.User1ID).
			Int64("user_2_id", pair.User2ID).
			Msg("Pair created")
		return pair, nil
	}
	if !errors.Is(err, repository.ErrDuplicate) {
		return nil, fmt.Errorf("failed to create pair: %w", err)
	}

	pair, err = s.pairRepo.GetByUsers(ctx, users)
	if err != nil {
		return nil, fmt.Errorf("failed to get concurrently created pair: %w", err)
	}
	return pair, nil
}
