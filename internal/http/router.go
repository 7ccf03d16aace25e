package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/responsewatch/backend/internal/calendar"
	"github.com/responsewatch/backend/internal/config"
	"github.com/responsewatch/backend/internal/http/handlers"
	"github.com/responsewatch/backend/internal/http/middleware"
	"github.com/responsewatch/backend/internal/ingest"
	"github.com/responsewatch/backend/internal/metrics"
	"github.com/responsewatch/backend/internal/tracker"
	"github.com/responsewatch/backend/internal/webhooklog"

	_ "github.com/responsewatch/backend/docs"
)

type Deps struct {
	Store      *tracker.Store
	Normalizer *ingest.Normalizer
	Calendar   *calendar.Calendar
	Metrics    *metrics.Metrics
	Webhooks   *webhooklog.Log
	StartedAt  time.Time
	Now        func() time.Time
}

func Router(cfg config.Config, deps Deps, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.AdminKeyHeader, middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:      deps.Store,
		Normalizer: deps.Normalizer,
		Calendar:   deps.Calendar,
		Metrics:    deps.Metrics,
		Webhooks:   deps.Webhooks,
		Logger:     logger,
		Config:     cfg,
		StartedAt:  deps.StartedAt,
		Now:        deps.Now,
	}

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	hooks := r.Group("/webhook")
	{
		hooks.POST("/incoming-message", h.IncomingMessage)
		hooks.POST("/outgoing-message", h.OutgoingMessage)
	}

	api := r.Group("/api")
	{
		api.GET("/pending-messages", h.PendingMessages)
		api.GET("/conversation/:id", h.Conversation)
		api.POST("/mark-responded/:id", h.MarkResponded)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.DELETE("/conversations", h.ClearConversations)
		admin.GET("/debug/webhooks", h.DebugWebhooks)
		admin.GET("/debug/conversations", h.DebugConversations)
		admin.GET("/debug/conversation/:id", h.DebugConversation)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
