package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/responsewatch/backend/internal/calendar"
	"github.com/responsewatch/backend/internal/config"
	"github.com/responsewatch/backend/internal/http/httperr"
	"github.com/responsewatch/backend/internal/ingest"
	"github.com/responsewatch/backend/internal/metrics"
	"github.com/responsewatch/backend/internal/tracker"
	"github.com/responsewatch/backend/internal/webhooklog"
)

const (
	debugWebhookLimit   = 20
	DefaultMaxBodyBytes = 1 << 20
)

type Handler struct {
	Store      *tracker.Store
	Normalizer *ingest.Normalizer
	Calendar   *calendar.Calendar
	Metrics    *metrics.Metrics
	Webhooks   *webhooklog.Log
	Logger     zerolog.Logger
	Config     config.Config
	StartedAt  time.Time
	Now        func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

type HealthConfig struct {
	WarningMinutes     int    `json:"warningMinutes"`
	CriticalMinutes    int    `json:"criticalMinutes"`
	EmailAlertsEnabled bool   `json:"emailAlertsEnabled"`
	AssignedUserFilter string `json:"assignedUserFilter"`
	Timezone           string `json:"timezone"`
	BusinessHours      string `json:"businessHours"`
}

type HealthResponse struct {
	Success           bool         `json:"success"`
	Status            string       `json:"status"`
	ServerTime        time.Time    `json:"serverTime"`
	Conversations     int          `json:"conversations"`
	Pending           int          `json:"pending"`
	Uptime            int64        `json:"uptime"`
	BusinessHours     bool         `json:"businessHours"`
	BusinessStatus    string       `json:"businessStatus"`
	NextBusinessHours string       `json:"nextBusinessHours"`
	Config            HealthConfig `json:"config"`
}

// @Summary Service health
// @Description Tracker counts, business-hours state and effective alerting config
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	now := h.now()
	open := h.Calendar.IsOpen(now)
	total, pending := h.Store.Counts()

	status := "CLOSED"
	if open {
		status = "OPEN"
	}
	c.JSON(http.StatusOK, HealthResponse{
		Success:           true,
		Status:            "running",
		ServerTime:        now.UTC(),
		Conversations:     total,
		Pending:           pending,
		Uptime:            int64(now.Sub(h.StartedAt).Seconds()),
		BusinessHours:     open,
		BusinessStatus:    status,
		NextBusinessHours: h.Calendar.DescribeNextOpen(now),
		Config: HealthConfig{
			WarningMinutes:     h.Config.WarningMinutes,
			CriticalMinutes:    h.Config.CriticalMinutes,
			EmailAlertsEnabled: h.Config.EmailAlertsEnabled,
			AssignedUserFilter: h.Store.Filter(),
			Timezone:           h.Calendar.Location().String(),
			BusinessHours:      h.Calendar.Schedule().String(),
		},
	})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	httperr.Write(c, status, code, message, details)
}
