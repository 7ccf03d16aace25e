// Package ingest turns loosely shaped webhook payloads into canonical events.
//
// Integrations disagree on field names and nesting, so every canonical field
// is resolved through an ordered list of gjson paths: the customData
// container first, then known flat spellings, then nested sub-objects. The
// first non-empty value wins.
package ingest

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"

	"github.com/responsewatch/backend/internal/models"
)

var (
	ErrInvalidPayload  = errors.New("payload must be a JSON object")
	ErrMissingIdentity = errors.New("missing required identity fields")
)

const (
	SyntheticPrefix    = "conv_"
	DefaultChannel     = "SMS"
	DefaultContactName = "Unknown Contact"
)

type rule []string

func (r rule) resolve(doc gjson.Result) string {
	for _, path := range r {
		v := doc.Get(path)
		if !v.Exists() || v.Type == gjson.Null || v.IsObject() || v.IsArray() {
			continue
		}
		if s := strings.TrimSpace(v.String()); s != "" {
			return s
		}
	}
	return ""
}

var (
	contactIDRule      = rule{"customData.contactId", "contactId", "contact_id", "ContactId", "contactid", "contact.id"}
	conversationIDRule = rule{"customData.conversationId", "conversationId", "conversation_id", "ConversationId", "conversationid", "message.conversationId"}
	locationIDRule     = rule{"customData.locationId", "locationId", "location_id", "LocationId", "location.id"}
	messageBodyRule    = rule{"customData.messageBody", "messageBody", "message_body", "body", "MessageBody", "message.body"}
	channelRule        = rule{"customData.type", "type", "message_type", "messageType", "Type"}
	nestedChannelRule  = rule{"message.type"} // overrides a missing or default SMS channel
	contactNameRule    = rule{"customData.contactName", "contactName", "contact_name", "name", "ContactName", "full_name", "fullName", "email", "contact.name"}
	assignedToRule     = rule{"customData.assignedTo", "assignedTo", "assigned_to", "AssignedTo"}
	userIDRule         = rule{"customData.userId", "userId", "user_id", "UserId", "message.userId"}
	timestampRule      = rule{"customData.timestamp", "timestamp", "dateAdded", "date_added", "message.dateAdded"}
)

type Normalizer struct {
	validate *validator.Validate
}

func NewNormalizer(v *validator.Validate) *Normalizer {
	if v == nil {
		v = validator.New()
	}
	return &Normalizer{validate: v}
}

// ConversationID returns explicit when set, otherwise a stable id derived
// from the contact.
func ConversationID(explicit, contactID string) string {
	if strings.TrimSpace(explicit) != "" {
		return explicit
	}
	if contactID == "" {
		return ""
	}
	return SyntheticPrefix + contactID
}

func parse(payload []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(payload) {
		return gjson.Result{}, ErrInvalidPayload
	}
	doc := gjson.ParseBytes(payload)
	if !doc.IsObject() {
		return gjson.Result{}, ErrInvalidPayload
	}
	return doc, nil
}

func (n *Normalizer) Inbound(payload []byte) (models.InboundEvent, error) {
	doc, err := parse(payload)
	if err != nil {
		return models.InboundEvent{}, err
	}

	contactID := contactIDRule.resolve(doc)
	ev := models.InboundEvent{
		ContactID:      contactID,
		ConversationID: ConversationID(conversationIDRule.resolve(doc), contactID),
		LocationID:     locationIDRule.resolve(doc),
		MessageBody:    messageBodyRule.resolve(doc),
		ChannelType:    channelRule.resolve(doc),
		ContactName:    contactNameRule.resolve(doc),
		AssignedTo:     assignedToRule.resolve(doc),
		Timestamp:      parseTimestamp(timestampRule.resolve(doc)),
	}
	if ev.ChannelType == "" || ev.ChannelType == DefaultChannel {
		if nested := nestedChannelRule.resolve(doc); nested != "" {
			ev.ChannelType = nested
		}
	}
	if ev.ChannelType == "" {
		ev.ChannelType = DefaultChannel
	}
	if ev.ContactName == "" {
		ev.ContactName = DefaultContactName
	}
	if err := n.validate.Struct(ev); err != nil {
		return ev, fmt.Errorf("%w: %v", ErrMissingIdentity, err)
	}
	return ev, nil
}

func (n *Normalizer) Outbound(payload []byte) (models.OutboundEvent, error) {
	doc, err := parse(payload)
	if err != nil {
		return models.OutboundEvent{}, err
	}

	contactID := contactIDRule.resolve(doc)
	ev := models.OutboundEvent{
		ConversationID: ConversationID(conversationIDRule.resolve(doc), contactID),
		ContactID:      contactID,
		MessageBody:    messageBodyRule.resolve(doc),
		UserID:         userIDRule.resolve(doc),
	}
	if err := n.validate.Struct(ev); err != nil {
		return ev, fmt.Errorf("%w: %v", ErrMissingIdentity, err)
	}
	return ev, nil
}

// Event timestamps outside this window are treated as absent.
var (
	EarliestTimestamp = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	LatestTimestamp   = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
)

// Epoch values at or above this are milliseconds; anything past
// maxEpochMillis cannot be a real time.
const (
	epochMillisCutoff = 1e12
	maxEpochMillis    = 1e15
)

// TimestampInRange reports whether t can be used as a message time.
func TimestampInRange(t time.Time) bool {
	return !t.Before(EarliestTimestamp) && !t.After(LatestTimestamp)
}

// parseTimestamp accepts RFC3339 strings or epoch values in seconds or
// milliseconds. Unparseable or out-of-range input yields the zero time.
func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		n, perr := strconv.ParseFloat(raw, 64)
		if perr != nil || math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 || n > maxEpochMillis {
			return time.Time{}
		}
		if n >= epochMillisCutoff {
			t = time.UnixMilli(int64(n))
		} else {
			t = time.Unix(int64(n), 0)
		}
	}
	if !TimestampInRange(t) {
		return time.Time{}
	}
	return t
}
