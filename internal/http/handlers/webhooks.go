package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/responsewatch/backend/internal/http/httperr"
	"github.com/responsewatch/backend/internal/ingest"
	"github.com/responsewatch/backend/internal/models"
)

type IncomingResponse struct {
	Success        bool      `json:"success"`
	ConversationID string    `json:"conversationId"`
	ContactID      string    `json:"contactId"`
	AssignedTo     string    `json:"assignedTo"`
	IsNew          bool      `json:"isNew"`
	Timestamp      time.Time `json:"timestamp"`
}

type SkippedResponse struct {
	Success    bool   `json:"success"`
	Skipped    bool   `json:"skipped"`
	Reason     string `json:"reason"`
	AssignedTo string `json:"assignedTo"`
}

type OutgoingResponse struct {
	Success        bool   `json:"success"`
	ConversationID string `json:"conversationId"`
	ContactID      string `json:"contactId,omitempty"`
	NeedsResponse  bool   `json:"needsResponse"`
	Note           string `json:"note,omitempty"`
}

// @Summary Customer message webhook
// @Description Accepts a loosely shaped inbound message payload and starts or updates tracking
// @Tags webhooks
// @Accept json
// @Produce json
// @Success 200 {object} IncomingResponse
// @Failure 400 {object} map[string]any
// @Router /webhook/incoming-message [post]
func (h *Handler) IncomingMessage(c *gin.Context) {
	raw, ok := h.readPayload(c, "incoming")
	if !ok {
		return
	}

	ev, err := h.Normalizer.Inbound(raw)
	if err != nil {
		h.rejectPayload(c, models.DirectionInbound, err)
		return
	}

	res := h.Store.RecordInbound(ev)
	if res.Skipped {
		h.Metrics.Webhook(models.DirectionInbound, "skipped")
		h.Logger.Info().
			Str("conversation_id", res.ConversationID).
			Str("assigned_to", res.AssignedTo).
			Bool("reassigned", res.Reassigned).
			Msg("inbound message outside assignment filter")
		c.JSON(http.StatusOK, SkippedResponse{
			Success:    true,
			Skipped:    true,
			Reason:     fmt.Sprintf("Not assigned to %s", h.Store.Filter()),
			AssignedTo: res.AssignedTo,
		})
		return
	}

	h.Metrics.Webhook(models.DirectionInbound, "tracked")
	h.Logger.Info().
		Str("conversation_id", res.ConversationID).
		Str("contact_id", res.ContactID).
		Bool("new", res.IsNew).
		Msg("inbound message recorded")
	c.JSON(http.StatusOK, IncomingResponse{
		Success:        true,
		ConversationID: res.ConversationID,
		ContactID:      res.ContactID,
		AssignedTo:     res.AssignedTo,
		IsNew:          res.IsNew,
		Timestamp:      res.Timestamp,
	})
}

// @Summary Staff reply webhook
// @Description Marks a tracked conversation as answered and clears its alerts
// @Tags webhooks
// @Accept json
// @Produce json
// @Success 200 {object} OutgoingResponse
// @Failure 400 {object} map[string]any
// @Router /webhook/outgoing-message [post]
func (h *Handler) OutgoingMessage(c *gin.Context) {
	raw, ok := h.readPayload(c, "outgoing")
	if !ok {
		return
	}

	ev, err := h.Normalizer.Outbound(raw)
	if err != nil {
		h.rejectPayload(c, models.DirectionOutbound, err)
		return
	}

	res := h.Store.RecordOutbound(ev)
	if !res.Tracked {
		h.Metrics.Webhook(models.DirectionOutbound, "untracked")
		h.Logger.Info().Str("conversation_id", res.ConversationID).Msg("reply for untracked conversation")
		c.JSON(http.StatusOK, OutgoingResponse{
			Success:        true,
			ConversationID: res.ConversationID,
			Note:           "Conversation not tracked",
		})
		return
	}

	h.Metrics.Webhook(models.DirectionOutbound, "tracked")
	h.Logger.Info().Str("conversation_id", res.ConversationID).Msg("reply recorded")
	c.JSON(http.StatusOK, OutgoingResponse{
		Success:        true,
		ConversationID: res.ConversationID,
		ContactID:      res.ContactID,
		NeedsResponse:  false,
	})
}

func (h *Handler) readPayload(c *gin.Context, kind string) ([]byte, bool) {
	limit := h.Config.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	raw, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Logger.Warn().Str("kind", kind).Int64("limit", tooLarge.Limit).Msg("webhook body too large")
			writeError(c, http.StatusBadRequest, httperr.CodeInvalidRequest, "payload too large", gin.H{"limitBytes": tooLarge.Limit})
			return nil, false
		}
		writeError(c, http.StatusBadRequest, httperr.CodeInvalidRequest, "unable to read body", err.Error())
		return nil, false
	}
	h.Webhooks.Add(kind, raw)
	h.Logger.Debug().Str("kind", kind).Bytes("payload", raw).Msg("webhook received")
	return raw, true
}

func (h *Handler) rejectPayload(c *gin.Context, direction string, err error) {
	h.Metrics.Webhook(direction, "rejected")
	h.Logger.Warn().Err(err).Str("direction", direction).Msg("webhook rejected")
	if errors.Is(err, ingest.ErrInvalidPayload) {
		writeError(c, http.StatusBadRequest, httperr.CodeInvalidRequest, err.Error(), nil)
		return
	}
	needed := []string{"contactId", "conversationId"}
	if direction == models.DirectionOutbound {
		needed = []string{"conversationId or contactId"}
	}
	writeError(c, http.StatusBadRequest, httperr.CodeValidationError, "Missing required fields", gin.H{"needed": needed})
}
