package models

import "time"

const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

type Tier string

const (
	TierNew      Tier = "new"
	TierWarning  Tier = "warning"
	TierCritical Tier = "critical"
)

// AlertTiers lists the tiers that produce alerts, in escalation order.
var AlertTiers = []Tier{TierWarning, TierCritical}

type Message struct {
	ID        string    `json:"id"`
	Direction string    `json:"type"`
	Body      string    `json:"body"`
	Channel   string    `json:"channel,omitempty"`
	UserID    string    `json:"userId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Conversation struct {
	ConversationID string     `json:"conversationId"`
	ContactID      string     `json:"contactId"`
	ContactName    string     `json:"contactName"`
	LocationID     string     `json:"locationId,omitempty"`
	AssignedTo     string     `json:"assignedTo"`
	NeedsResponse  bool       `json:"needsResponse"`
	LastInbound    *time.Time `json:"lastInbound"`
	LastResponse   *time.Time `json:"lastResponse"`
	CreatedAt      time.Time  `json:"createdAt"`
	Messages       []Message  `json:"messages"`
}

// LastInboundMessage returns the newest inbound message, if any.
func (c Conversation) LastInboundMessage() (Message, bool) {
	var (
		last  Message
		found bool
	)
	for _, m := range c.Messages {
		if m.Direction != DirectionInbound {
			continue
		}
		if !found || !m.Timestamp.Before(last.Timestamp) {
			last = m
			found = true
		}
	}
	return last, found
}

// InboundEvent is the canonical shape of a customer message webhook.
type InboundEvent struct {
	ContactID      string    `json:"contactId" validate:"required"`
	ConversationID string    `json:"conversationId" validate:"required"`
	LocationID     string    `json:"locationId,omitempty"`
	MessageBody    string    `json:"messageBody"`
	ChannelType    string    `json:"channelType"`
	ContactName    string    `json:"contactName"`
	AssignedTo     string    `json:"assignedTo,omitempty"`
	Timestamp      time.Time `json:"timestamp,omitempty"`
}

// OutboundEvent is the canonical shape of a staff reply webhook.
type OutboundEvent struct {
	ConversationID string `json:"conversationId" validate:"required_without=ContactID"`
	ContactID      string `json:"contactId,omitempty"`
	MessageBody    string `json:"messageBody"`
	UserID         string `json:"userId,omitempty"`
}

type PendingItem struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	ContactID      string    `json:"contactId"`
	ContactName    string    `json:"contactName"`
	LocationID     string    `json:"locationId,omitempty"`
	AssignedTo     string    `json:"assignedTo"`
	Preview        string    `json:"preview"`
	Channel        string    `json:"channel"`
	Timestamp      time.Time `json:"timestamp"`
	Elapsed        int64     `json:"elapsed"`
	Status         Tier      `json:"status"`
}

// ConversationSummary is the compact debug listing row.
type ConversationSummary struct {
	ID            string     `json:"id"`
	ContactName   string     `json:"contactName"`
	ContactID     string     `json:"contactId"`
	AssignedTo    string     `json:"assignedTo"`
	NeedsResponse bool       `json:"needsResponse"`
	MessageCount  int        `json:"messageCount"`
	LastInbound   *time.Time `json:"lastInbound"`
	LastResponse  *time.Time `json:"lastResponse"`
	Elapsed       int64      `json:"elapsed"`
}
