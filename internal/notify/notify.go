package notify

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/responsewatch/backend/internal/models"
)

var ErrSendFailed = errors.New("alert delivery failed")

// Alert is one overdue conversation at one tier.
type Alert struct {
	Conversation models.Conversation
	Tier         models.Tier
	Elapsed      time.Duration
	At           time.Time
}

// Minutes is the whole number of minutes the customer has waited.
func (a Alert) Minutes() int {
	return int(a.Elapsed / time.Minute)
}

type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}

// LogNotifier only logs alerts. It stands in when email is disabled.
type LogNotifier struct {
	Logger   zerolog.Logger
	Renderer Renderer
}

func (n LogNotifier) Notify(_ context.Context, a Alert) error {
	n.Logger.Warn().
		Str("tier", string(a.Tier)).
		Str("conversation_id", a.Conversation.ConversationID).
		Str("contact", a.Conversation.ContactName).
		Int("minutes", a.Minutes()).
		Str("subject", n.Renderer.Subject(a)).
		Msg("alert (email disabled)")
	return nil
}
