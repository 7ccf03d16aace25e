package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
	"golang.org/x/time/rate"
)

type SMTPConfig struct {
	Host          string
	Port          int
	Secure        bool
	Username      string
	Password      string
	Timeout       time.Duration
	From          string
	To            []string
	RatePerMinute int
}

type sender interface {
	DialAndSendWithContext(ctx context.Context, msgs ...*mail.Msg) error
}

type SMTPNotifier struct {
	cfg      SMTPConfig
	renderer Renderer
	limiter  *rate.Limiter
	client   sender
	logger   zerolog.Logger
}

func NewSMTPNotifier(cfg SMTPConfig, renderer Renderer, logger zerolog.Logger) (*SMTPNotifier, error) {
	if len(cfg.To) == 0 {
		return nil, errors.New("notify: no recipients configured")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.Timeout),
	}
	if cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("notify: smtp client: %w", err)
	}
	return newSMTPNotifier(cfg, renderer, client, logger), nil
}

func newSMTPNotifier(cfg SMTPConfig, renderer Renderer, client sender, logger zerolog.Logger) *SMTPNotifier {
	perMinute := cfg.RatePerMinute
	if perMinute <= 0 {
		perMinute = 30
	}
	return &SMTPNotifier{
		cfg:      cfg,
		renderer: renderer,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 5),
		client:   client,
		logger:   logger,
	}
}

func (n *SMTPNotifier) message(a Alert) (*mail.Msg, error) {
	html, err := n.renderer.HTML(a)
	if err != nil {
		return nil, err
	}
	m := mail.NewMsg()
	if err := m.FromFormat(n.renderer.Brand+" Alerts", n.cfg.From); err != nil {
		return nil, err
	}
	if err := m.To(n.cfg.To...); err != nil {
		return nil, err
	}
	m.Subject(n.renderer.Subject(a))
	m.SetDate()
	m.SetBodyString(mail.TypeTextHTML, html)
	m.AddAlternativeString(mail.TypeTextPlain, n.renderer.Text(a))
	return m, nil
}

func (n *SMTPNotifier) Notify(ctx context.Context, a Alert) error {
	m, err := n.message(a)
	if err != nil {
		return fmt.Errorf("%w: build message: %v", ErrSendFailed, err)
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limit: %v", ErrSendFailed, err)
	}
	if err := n.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	n.logger.Info().
		Str("tier", string(a.Tier)).
		Str("conversation_id", a.Conversation.ConversationID).
		Str("contact", a.Conversation.ContactName).
		Msg("alert email sent")
	return nil
}
