package services

import (
	"context"
	"errors"
	"fmt"

	"match-backend/internal/models"
	"match-backend/internal/repository"
)

// CandidateService computes the swipeable profiles for a user
type CandidateService struct {
	userRepo UserStore
}

// NewCandidateService creates a new candidate service
func NewCandidateService(userRepo UserStore) *CandidateService {
	return &CandidateService{userRepo: userRepo}
}

// GetCandidates returns every other profile whose gender is the requester's
// preference and that the requester has not swiped yet.
// The candidate's own preference is not taken into account.
func (s *CandidateService) GetCandidates(ctx context.Context, requesterID int64) ([]models.Profile, error) {
	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("user %d: %w", requesterID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get requester: %w", err)
	}

	candidates, err := s.userRepo.ListCandidates(ctx, requester.ID, requester.InterestedIn)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	return candidates, nil
}
