package handlers

import (
	"net/http"

	"match-backend/internal/models"
	"match-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// ConversationHandler serves pairs and their messages
type ConversationHandler struct {
	conversationService *services.ConversationService
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(conversationService *services.ConversationService) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
	}
}

// SendMessageRequest represents the message payload
type SendMessageRequest struct {
	Content string `json:"content"`
}

// PairResponse is a pair as seen by one of its members
type PairResponse struct {
	models.Pair
	PartnerID int64 `json:"partner_id"`
}

// ListPairs handles GET /api/v1/pairs
func (h *ConversationHandler) ListPairs(w http.ResponseWriter, r *http.Request) {
	userID, ok := authUserID(w, r)
	if !ok {
		return
	}

	pairs, err := h.conversationService.ListPairs(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to list pairs")
		return
	}

	resp := make([]PairResponse, 0, len(pairs))
	for _, pair := range pairs {
		partnerID, _ := pair.PartnerOf(userID)
		resp = append(resp, PairResponse{Pair: pair, PartnerID: partnerID})
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetMessages handles GET /api/v1/pairs/{pair_id}/messages
func (h *ConversationHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := authUserID(w, r)
	if !ok {
		return
	}
	pairID, ok := pathID(w, r, "pair_id")
	if !ok {
		return
	}

	messages, err := h.conversationService.GetMessages(r.Context(), pairID, userID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get messages")
		return
	}

	respondJSON(w, http.StatusOK, messages)
}

// SendMessage handles POST /api/v1/pairs/{pair_id}/messages
func (h *ConversationHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := authUserID(w, r)
	if !ok {
		return
	}
	pairID, ok := pathID(w, r, "pair_id")
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondServiceError(w, r, err, "Invalid message request")
		return
	}

	msg, err := h.conversationService.SendMessage(r.Context(), pairID, userID, req.Content)
	if err != nil {
		respondServiceError(w, r, err, "Failed to send message")
		return
	}

	log.Info().
		Int64("user_id", userID).
		Int64("pair_id", pairID).
		Int64("message_id", msg.ID).
		Msg("Message sent")

	respondJSON(w, http.StatusOK, msg)
}
