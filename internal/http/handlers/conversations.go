package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/responsewatch/backend/internal/http/httperr"
	"github.com/responsewatch/backend/internal/models"
	"github.com/responsewatch/backend/internal/tracker"
)

type PendingResponse struct {
	Success       bool                 `json:"success"`
	Count         int                  `json:"count"`
	Messages      []models.PendingItem `json:"messages"`
	BusinessHours bool                 `json:"businessHours"`
	Filter        string               `json:"filter"`
	ServerTime    time.Time            `json:"serverTime"`
}

type ConversationResponse struct {
	Success      bool                `json:"success"`
	Conversation models.Conversation `json:"conversation"`
}

// @Summary Pending conversations
// @Description Conversations awaiting a reply, longest wait first
// @Tags conversations
// @Produce json
// @Success 200 {object} PendingResponse
// @Router /api/pending-messages [get]
func (h *Handler) PendingMessages(c *gin.Context) {
	now := h.now()
	items := h.Store.ListPending()
	c.JSON(http.StatusOK, PendingResponse{
		Success:       true,
		Count:         len(items),
		Messages:      items,
		BusinessHours: h.Calendar.IsOpen(now),
		Filter:        h.Store.Filter(),
		ServerTime:    now.UTC(),
	})
}

// @Summary Conversation details
// @Tags conversations
// @Produce json
// @Param id path string true "Conversation ID"
// @Success 200 {object} ConversationResponse
// @Failure 404 {object} map[string]any
// @Router /api/conversation/{id} [get]
func (h *Handler) Conversation(c *gin.Context) {
	conv, err := h.Store.Get(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusNotFound, httperr.CodeNotFound, "Conversation not found", nil)
		return
	}
	c.JSON(http.StatusOK, ConversationResponse{Success: true, Conversation: conv})
}

// @Summary Mark conversation responded
// @Description Manually marks a conversation answered and clears its alerts
// @Tags conversations
// @Produce json
// @Param id path string true "Conversation ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/mark-responded/{id} [post]
func (h *Handler) MarkResponded(c *gin.Context) {
	id := c.Param("id")
	if err := h.Store.MarkResponded(id); err != nil {
		if errors.Is(err, tracker.ErrNotFound) {
			writeError(c, http.StatusNotFound, httperr.CodeNotFound, "Conversation not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, httperr.CodeInternal, err.Error(), nil)
		return
	}
	h.Logger.Info().Str("conversation_id", id).Msg("conversation marked responded")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// @Summary Clear all conversations
// @Description Drops every tracked conversation, the alert ledger and the webhook log
// @Tags conversations
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /api/conversations [delete]
func (h *Handler) ClearConversations(c *gin.Context) {
	n := h.Store.Clear()
	h.Webhooks.Reset()
	h.Logger.Info().Int("count", n).Msg("conversations cleared")
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Cleared %d conversations", n),
	})
}
