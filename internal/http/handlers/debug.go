package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/responsewatch/backend/internal/http/httperr"
)

// @Summary Recent webhook payloads
// @Tags debug
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /api/debug/webhooks [get]
func (h *Handler) DebugWebhooks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"count":    h.Webhooks.Len(),
		"webhooks": h.Webhooks.Recent(debugWebhookLimit),
	})
}

// @Summary All tracked conversations
// @Tags debug
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /api/debug/conversations [get]
func (h *Handler) DebugConversations(c *gin.Context) {
	rows := h.Store.Summaries()
	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"totalConversations": len(rows),
		"conversations":      rows,
	})
}

// @Summary Raw conversation state
// @Tags debug
// @Produce json
// @Param id path string true "Conversation ID"
// @Success 200 {object} ConversationResponse
// @Failure 404 {object} map[string]any
// @Router /api/debug/conversation/{id} [get]
func (h *Handler) DebugConversation(c *gin.Context) {
	conv, err := h.Store.Get(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusNotFound, httperr.CodeNotFound, "Conversation not found", gin.H{
			"availableIds": h.Store.IDs(),
		})
		return
	}
	c.JSON(http.StatusOK, ConversationResponse{Success: true, Conversation: conv})
}
