package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/responsewatch/backend/internal/calendar"
	"github.com/responsewatch/backend/internal/config"
	httpapi "github.com/responsewatch/backend/internal/http"
	"github.com/responsewatch/backend/internal/ingest"
	"github.com/responsewatch/backend/internal/metrics"
	"github.com/responsewatch/backend/internal/monitor"
	"github.com/responsewatch/backend/internal/notify"
	"github.com/responsewatch/backend/internal/tracker"
	"github.com/responsewatch/backend/internal/webhooklog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := log.Level(level).With().Str("service", "responsewatch").Logger()

	cal, err := calendar.Load(cfg.Timezone, cfg.BusinessHours)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid business hours")
	}

	store := tracker.NewStore(tracker.Options{
		AssignmentFilter: cfg.AssignedUserFilter,
		Thresholds:       tracker.Thresholds{Warning: cfg.WarningThreshold(), Critical: cfg.CriticalThreshold()},
		PreviewLength:    cfg.PreviewLength,
		Logger:           logger.With().Str("component", "tracker").Logger(),
	})
	m := metrics.New()

	notifier, err := newNotifier(cfg, cal, logger.With().Str("component", "notify").Logger())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure notifier")
	}

	mon := monitor.New(monitor.Options{
		Store:       store,
		Calendar:    cal,
		Notifier:    notifier,
		Metrics:     m,
		Interval:    cfg.CheckInterval,
		SendTimeout: cfg.SMTPTimeout + 5*time.Second,
		Logger:      logger.With().Str("component", "monitor").Logger(),
	})

	router := httpapi.Router(cfg, httpapi.Deps{
		Store:      store,
		Normalizer: ingest.NewNormalizer(validator.New()),
		Calendar:   cal,
		Metrics:    m,
		Webhooks:   webhooklog.New(cfg.WebhookLogSize, nil),
		StartedAt:  time.Now(),
	}, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	mon.Start()
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("filter", cfg.AssignedUserFilter).
			Str("timezone", cfg.Timezone).
			Str("business_hours", cal.Schedule().String()).
			Int("warning_minutes", cfg.WarningMinutes).
			Int("critical_minutes", cfg.CriticalMinutes).
			Bool("email_alerts", cfg.EmailAlertsEnabled).
			Dur("check_interval", mon.Interval()).
			Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	mon.Stop()
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}

func newNotifier(cfg config.Config, cal *calendar.Calendar, logger zerolog.Logger) (notify.Notifier, error) {
	renderer := notify.Renderer{
		Brand:           cfg.BrandName,
		LinkBase:        cfg.ConversationLinkBase,
		Location:        cal.Location(),
		WarningMinutes:  cfg.WarningMinutes,
		CriticalMinutes: cfg.CriticalMinutes,
	}
	if !cfg.EmailAlertsEnabled {
		logger.Info().Msg("email alerts disabled, alerts will be logged only")
		return notify.LogNotifier{Logger: logger, Renderer: renderer}, nil
	}
	smtp, err := notify.NewSMTPNotifier(notify.SMTPConfig{
		Host:          cfg.SMTPHost,
		Port:          cfg.SMTPPort,
		Secure:        cfg.SMTPSecure,
		Username:      cfg.SMTPUser,
		Password:      cfg.SMTPPass,
		Timeout:       cfg.SMTPTimeout,
		From:          cfg.EmailFrom,
		To:            cfg.Recipients(),
		RatePerMinute: cfg.EmailRatePerMinute,
	}, renderer, logger)
	if err != nil {
		return nil, err
	}
	return smtp, nil
}
