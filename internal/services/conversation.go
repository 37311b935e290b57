package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"match-backend/internal/metrics"
	"match-backend/internal/models"
	"match-backend/internal/repository"
)

// MaxMessageLength is the longest message content accepted, in characters
const MaxMessageLength = 2000

// ConversationService handles pair-scoped messages
type ConversationService struct {
	pairRepo    PairStore
	messageRepo MessageStore
}

// NewConversationService creates a new conversation service
func NewConversationService(pairRepo PairStore, messageRepo MessageStore) *ConversationService {
	return &ConversationService{
		pairRepo:    pairRepo,
		messageRepo: messageRepo,
	}
}

// SendMessage appends a message from one of the pair's members
func (s *ConversationService) SendMessage(ctx context.Context, pairID, senderID int64, content string) (*models.Message, error) {
	if _, err := s.memberPair(ctx, pairID, senderID); err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	var v validator
	v.check(content != "", "content", "is required")
	v.check(utf8.RuneCountInString(content) <= MaxMessageLength, "content", fmt.Sprintf("must be at most %d characters", MaxMessageLength))
	if err := v.err(); err != nil {
		return nil, err
	}

	msg := &models.Message{
		PairID:   pairID,
		SenderID: senderID,
		Content:  content,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	metrics.MessagesTotal.Inc()
	return msg, nil
}

// GetMessages returns the pair's messages, earliest first
func (s *ConversationService) GetMessages(ctx context.Context, pairID, requesterID int64) ([]models.Message, error) {
	if _, err := s.memberPair(ctx, pairID, requesterID); err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListByPairID(ctx, pairID)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	return messages, nil
}

// ListPairs returns the pairs a user belongs to, newest first
func (s *ConversationService) ListPairs(ctx context.Context, userID int64) ([]models.Pair, error) {
	pairs, err := s.pairRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pairs: %w", err)
	}
	return pairs, nil
}

func (s *ConversationService) memberPair(ctx context.Context, pairID, userID int64) (*models.Pair, error) {
	pair, err := s.pairRepo.GetByID(ctx, pairID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("pair %d: %w", pairID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get pair: %w", err)
	}
	if !pair.HasMember(userID) {
		return nil, fmt.Errorf("user %d is not a member of pair %d: %w", userID, pairID, ErrForbidden)
	}
	return pair, nil
}
