package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/responsewatch/backend/internal/utils"
)

type Config struct {
	Env         string `mapstructure:"ENV"`
	Port        string `mapstructure:"PORT" validate:"required"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	CORSAllowed string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	AdminKey    string `mapstructure:"ADMIN_KEY"`

	WarningMinutes  int           `mapstructure:"WARNING_MINUTES" validate:"min=1"`
	CriticalMinutes int           `mapstructure:"CRITICAL_MINUTES" validate:"gtfield=WarningMinutes"`
	CheckInterval   time.Duration `mapstructure:"CHECK_INTERVAL"`

	EmailAlertsEnabled bool          `mapstructure:"EMAIL_ALERTS_ENABLED"`
	EmailFrom          string        `mapstructure:"EMAIL_FROM" validate:"required_if=EmailAlertsEnabled true"`
	EmailTo            string        `mapstructure:"EMAIL_TO" validate:"required_if=EmailAlertsEnabled true"`
	SMTPHost           string        `mapstructure:"SMTP_HOST" validate:"required_if=EmailAlertsEnabled true"`
	SMTPPort           int           `mapstructure:"SMTP_PORT" validate:"min=1,max=65535"`
	SMTPSecure         bool          `mapstructure:"SMTP_SECURE"`
	SMTPUser           string        `mapstructure:"SMTP_USER"`
	SMTPPass           string        `mapstructure:"SMTP_PASS"`
	SMTPTimeout        time.Duration `mapstructure:"SMTP_TIMEOUT"`
	EmailRatePerMinute int           `mapstructure:"EMAIL_RATE_PER_MINUTE" validate:"min=1"`

	AssignedUserFilter   string `mapstructure:"ASSIGNED_USER_FILTER" validate:"required"`
	Timezone             string `mapstructure:"TIMEZONE" validate:"required"`
	BusinessHours        string `mapstructure:"BUSINESS_HOURS"`
	BrandName            string `mapstructure:"BRAND_NAME"`
	ConversationLinkBase string `mapstructure:"CONVERSATION_LINK_BASE"`
	WebhookLogSize       int    `mapstructure:"WEBHOOK_LOG_SIZE" validate:"min=1"`
	PreviewLength        int    `mapstructure:"PREVIEW_LENGTH" validate:"min=1"`
	MaxBodyBytes         int64  `mapstructure:"MAX_BODY_BYTES" validate:"min=1"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("ADMIN_KEY", "")
	v.SetDefault("WARNING_MINUTES", 5)
	v.SetDefault("CRITICAL_MINUTES", 15)
	v.SetDefault("CHECK_INTERVAL", "30s")
	v.SetDefault("EMAIL_ALERTS_ENABLED", true)
	v.SetDefault("EMAIL_FROM", "alerts@justinsurance.com")
	v.SetDefault("EMAIL_TO", "support@justinsurance.com")
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_SECURE", false)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASS", "")
	v.SetDefault("SMTP_TIMEOUT", "15s")
	v.SetDefault("EMAIL_RATE_PER_MINUTE", 30)
	v.SetDefault("ASSIGNED_USER_FILTER", "Support Team")
	v.SetDefault("TIMEZONE", "America/New_York")
	v.SetDefault("BUSINESS_HOURS", "mon-fri=8-22,sat-sun=8-18")
	v.SetDefault("BRAND_NAME", "JustInsurance")
	v.SetDefault("CONVERSATION_LINK_BASE", "https://app.gohighlevel.com/v2/location")
	v.SetDefault("WEBHOOK_LOG_SIZE", 100)
	v.SetDefault("PREVIEW_LENGTH", 150)
	v.SetDefault("MAX_BODY_BYTES", 1<<20)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.CheckInterval < time.Second {
		return fmt.Errorf("config: CHECK_INTERVAL must be at least 1s, got %s", c.CheckInterval)
	}
	return nil
}

func (c Config) WarningThreshold() time.Duration {
	return time.Duration(c.WarningMinutes) * time.Minute
}

func (c Config) CriticalThreshold() time.Duration {
	return time.Duration(c.CriticalMinutes) * time.Minute
}

func (c Config) Recipients() []string {
	return utils.SplitList(c.EmailTo)
}
