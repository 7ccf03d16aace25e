package tracker

import (
	"time"

	"github.com/responsewatch/backend/internal/models"
)

type ledgerKey struct {
	conversationID string
	tier           models.Tier
}

// Ledger remembers which alert tiers were already delivered per
// conversation. It is not safe for concurrent use; Store guards it.
type Ledger struct {
	sent map[ledgerKey]time.Time
}

func NewLedger() *Ledger {
	return &Ledger{sent: map[ledgerKey]time.Time{}}
}

func (l *Ledger) Set(conversationID string, tier models.Tier, at time.Time) {
	l.sent[ledgerKey{conversationID, tier}] = at
}

func (l *Ledger) Has(conversationID string, tier models.Tier) bool {
	_, ok := l.sent[ledgerKey{conversationID, tier}]
	return ok
}

func (l *Ledger) SentAt(conversationID string, tier models.Tier) (time.Time, bool) {
	at, ok := l.sent[ledgerKey{conversationID, tier}]
	return at, ok
}

func (l *Ledger) Delete(conversationID string, tier models.Tier) {
	delete(l.sent, ledgerKey{conversationID, tier})
}

// ClearConversation drops every tier for the conversation.
func (l *Ledger) ClearConversation(conversationID string) {
	for _, tier := range models.AlertTiers {
		l.Delete(conversationID, tier)
	}
}

func (l *Ledger) ClearAll() {
	l.sent = map[ledgerKey]time.Time{}
}

func (l *Ledger) Len() int {
	return len(l.sent)
}
