package tracker

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/responsewatch/backend/internal/ingest"
	"github.com/responsewatch/backend/internal/models"
	"github.com/responsewatch/backend/internal/utils"
)

const (
	DefaultPreviewLength = 150
	noInboundBody        = "No message body"
	noOutboundBody       = "Response sent"
	noPreview            = "No preview"
	unknownChannel       = "Unknown"
)

type Options struct {
	// AssignmentFilter is the only assignee whose conversations are tracked.
	AssignmentFilter string
	Thresholds       Thresholds
	PreviewLength    int
	Now              func() time.Time
	Logger           zerolog.Logger
}

// Store holds every tracked conversation and the alert ledger behind one
// mutex. Callers only ever receive copies.
type Store struct {
	mu            sync.Mutex
	conversations map[string]*models.Conversation
	ledger        *Ledger

	filter        string
	thresholds    Thresholds
	previewLength int
	now           func() time.Time
	logger        zerolog.Logger
}

func NewStore(opts Options) *Store {
	previewLength := opts.PreviewLength
	if previewLength <= 0 {
		previewLength = DefaultPreviewLength
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		conversations: map[string]*models.Conversation{},
		ledger:        NewLedger(),
		filter:        opts.AssignmentFilter,
		thresholds:    opts.Thresholds,
		previewLength: previewLength,
		now:           now,
		logger:        opts.Logger,
	}
}

func (s *Store) Filter() string {
	return s.filter
}

func (s *Store) Thresholds() Thresholds {
	return s.thresholds
}

type InboundResult struct {
	ConversationID string
	ContactID      string
	AssignedTo     string
	IsNew          bool
	// Skipped is set when the event's assignee is outside the filter.
	Skipped    bool
	Reassigned bool
	Timestamp  time.Time
}

// RecordInbound applies a customer message. Events assigned elsewhere never
// create a conversation; for one already tracked they only move its assignee.
func (s *Store) RecordInbound(ev models.InboundEvent) InboundResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	res := InboundResult{ConversationID: ev.ConversationID, ContactID: ev.ContactID, Timestamp: now}
	conv, exists := s.conversations[ev.ConversationID]

	if ev.AssignedTo != "" && ev.AssignedTo != s.filter {
		res.Skipped = true
		res.AssignedTo = ev.AssignedTo
		if exists && conv.AssignedTo != ev.AssignedTo {
			conv.AssignedTo = ev.AssignedTo
			res.Reassigned = true
			s.logger.Info().
				Str("conversation_id", ev.ConversationID).
				Str("assigned_to", ev.AssignedTo).
				Msg("conversation reassigned out of filter")
		}
		return res
	}

	if !exists {
		conv = &models.Conversation{
			ConversationID: ev.ConversationID,
			ContactID:      ev.ContactID,
			ContactName:    ev.ContactName,
			LocationID:     ev.LocationID,
			CreatedAt:      now,
		}
		s.conversations[ev.ConversationID] = conv
		res.IsNew = true
	} else {
		if conv.LocationID == "" {
			conv.LocationID = ev.LocationID
		}
		if conv.ContactName == ingest.DefaultContactName && ev.ContactName != "" {
			conv.ContactName = ev.ContactName
		}
	}

	at := now
	if ingest.TimestampInRange(ev.Timestamp) && ev.Timestamp.Before(now) {
		at = ev.Timestamp
	}
	body := ev.MessageBody
	if body == "" {
		body = noInboundBody
	}
	conv.Messages = append(conv.Messages, models.Message{
		ID:        newMessageID(),
		Direction: models.DirectionInbound,
		Body:      body,
		Channel:   ev.ChannelType,
		Timestamp: at,
	})

	// lastInbound never moves backwards.
	if conv.LastInbound == nil || at.After(*conv.LastInbound) {
		conv.LastInbound = &at
	}
	conv.NeedsResponse = true
	conv.AssignedTo = ev.AssignedTo
	if conv.AssignedTo == "" {
		conv.AssignedTo = s.filter
	}

	res.AssignedTo = conv.AssignedTo
	res.Timestamp = at
	return res
}

type OutboundResult struct {
	ConversationID string
	ContactID      string
	Tracked        bool
	Timestamp      time.Time
}

// RecordOutbound applies a staff reply. Replies to untracked conversations
// are accepted and ignored.
func (s *Store) RecordOutbound(ev models.OutboundEvent) OutboundResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	res := OutboundResult{ConversationID: ev.ConversationID, ContactID: ev.ContactID, Timestamp: now}

	conv, ok := s.conversations[ev.ConversationID]
	if !ok && ev.ContactID != "" {
		alt := ingest.SyntheticPrefix + ev.ContactID
		if conv, ok = s.conversations[alt]; ok {
			res.ConversationID = alt
		}
	}
	if !ok {
		return res
	}

	body := ev.MessageBody
	if body == "" {
		body = noOutboundBody
	}
	conv.Messages = append(conv.Messages, models.Message{
		ID:        newMessageID(),
		Direction: models.DirectionOutbound,
		Body:      body,
		UserID:    ev.UserID,
		Timestamp: now,
	})
	conv.LastResponse = &now
	conv.NeedsResponse = false
	s.ledger.ClearConversation(conv.ConversationID)

	res.Tracked = true
	return res
}

// MarkResponded forces a conversation into the answered state.
func (s *Store) MarkResponded(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return ErrNotFound
	}
	now := s.now()
	conv.NeedsResponse = false
	conv.LastResponse = &now
	s.ledger.ClearConversation(id)
	return nil
}

func (s *Store) Get(id string) (models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return models.Conversation{}, ErrNotFound
	}
	return cloneConversation(conv), nil
}

func (s *Store) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.conversations))
	for id := range s.conversations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clear drops all conversations and ledger entries, returning how many
// conversations were removed.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.conversations)
	s.conversations = map[string]*models.Conversation{}
	s.ledger.ClearAll()
	return n
}

// Counts returns the number of tracked and pending conversations.
func (s *Store) Counts() (total int, pending int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, conv := range s.conversations {
		if s.isPending(conv) {
			pending++
		}
	}
	return len(s.conversations), pending
}

func (s *Store) isPending(conv *models.Conversation) bool {
	return conv.NeedsResponse && conv.AssignedTo == s.filter && conv.LastInbound != nil
}

// ListPending returns conversations awaiting a reply, longest wait first.
func (s *Store) ListPending() []models.PendingItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	out := []models.PendingItem{}
	for id, conv := range s.conversations {
		if !s.isPending(conv) {
			continue
		}
		elapsed := now.Sub(*conv.LastInbound)
		item := models.PendingItem{
			ID:             id,
			ConversationID: id,
			ContactID:      conv.ContactID,
			ContactName:    conv.ContactName,
			LocationID:     conv.LocationID,
			AssignedTo:     conv.AssignedTo,
			Preview:        noPreview,
			Channel:        unknownChannel,
			Timestamp:      *conv.LastInbound,
			Elapsed:        elapsed.Milliseconds(),
			Status:         s.thresholds.Classify(elapsed),
		}
		if last, ok := conv.LastInboundMessage(); ok {
			item.Preview = utils.Truncate(last.Body, s.previewLength)
			item.Channel = last.Channel
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Elapsed != out[j].Elapsed {
			return out[i].Elapsed > out[j].Elapsed
		}
		return out[i].ConversationID < out[j].ConversationID
	})
	return out
}

// Summaries lists every tracked conversation for diagnostics.
func (s *Store) Summaries() []models.ConversationSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	out := make([]models.ConversationSummary, 0, len(s.conversations))
	for id, conv := range s.conversations {
		sum := models.ConversationSummary{
			ID:            id,
			ContactName:   conv.ContactName,
			ContactID:     conv.ContactID,
			AssignedTo:    conv.AssignedTo,
			NeedsResponse: conv.NeedsResponse,
			MessageCount:  len(conv.Messages),
			LastInbound:   copyTime(conv.LastInbound),
			LastResponse:  copyTime(conv.LastResponse),
		}
		if conv.LastInbound != nil {
			sum.Elapsed = now.Sub(*conv.LastInbound).Milliseconds()
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Overdue is a pending conversation that crossed an alert threshold.
type Overdue struct {
	Conversation models.Conversation
	Elapsed      time.Duration
	Tier         models.Tier
	AlreadySent  bool
}

type SweepResult struct {
	Checked int
	Overdue []Overdue
}

// Sweep classifies every pending conversation at now.
func (s *Store) Sweep(now time.Time) SweepResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res SweepResult
	for id, conv := range s.conversations {
		if !s.isPending(conv) {
			continue
		}
		res.Checked++
		elapsed := now.Sub(*conv.LastInbound)
		tier := s.thresholds.Classify(elapsed)
		if tier == models.TierNew {
			continue
		}
		res.Overdue = append(res.Overdue, Overdue{
			Conversation: cloneConversation(conv),
			Elapsed:      elapsed,
			Tier:         tier,
			AlreadySent:  s.ledger.Has(id, tier),
		})
	}
	sort.Slice(res.Overdue, func(i, j int) bool {
		return res.Overdue[i].Elapsed > res.Overdue[j].Elapsed
	})
	return res
}

func (s *Store) AlertSent(conversationID string, tier models.Tier) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Has(conversationID, tier)
}

// RecordAlert writes the ledger entry for a delivered alert. The write is
// dropped when the conversation was answered after since, the moment the
// alert was picked up; it reports whether the entry was kept.
func (s *Store) RecordAlert(conversationID string, tier models.Tier, since, sentAt time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok || !conv.NeedsResponse {
		return false
	}
	if conv.LastResponse != nil && !conv.LastResponse.Before(since) {
		return false
	}
	s.ledger.Set(conversationID, tier, sentAt)
	return true
}

func newMessageID() string {
	return "msg_" + uuid.NewString()
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneConversation(c *models.Conversation) models.Conversation {
	out := *c
	out.LastInbound = copyTime(c.LastInbound)
	out.LastResponse = copyTime(c.LastResponse)
	out.Messages = append([]models.Message(nil), c.Messages...)
	if out.Messages == nil {
		out.Messages = []models.Message{}
	}
	return out
}
