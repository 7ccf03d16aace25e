package ingest

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInboundFlatCamelCase(t *testing.T) {
	n := NewNormalizer(nil)
	ev, err := n.Inbound([]byte(`{"contactId":"c1","assignedTo":"Support Team","messageBody":"hi"}`))
	require.NoError(t, err)
	require.Equal(t, "c1", ev.ContactID)
	require.Equal(t, "conv_c1", ev.ConversationID)
	require.Equal(t, "hi", ev.MessageBody)
	require.Equal(t, "Support Team", ev.AssignedTo)
	require.Equal(t, DefaultChannel, ev.ChannelType)
	require.Equal(t, DefaultContactName, ev.ContactName)
	require.True(t, ev.Timestamp.IsZero())
}

func TestInboundCustomDataWins(t *testing.T) {
	n := NewNormalizer(nil)
	payload := `{
		"customData": {"contactId": "custom-contact", "conversationId": "custom-conv", "contactName": "Ada"},
		"contactId": "flat-contact",
		"conversation_id": "flat-conv",
		"contact_name": "Grace"
	}`
	ev, err := n.Inbound([]byte(payload))
	require.NoError(t, err)
	require.Equal(t, "custom-contact", ev.ContactID)
	require.Equal(t, "custom-conv", ev.ConversationID)
	require.Equal(t, "Ada", ev.ContactName)
}

func TestInboundAlternateSpellings(t *testing.T) {
	n := NewNormalizer(nil)
	payload := `{
		"contact_id": "c9",
		"ConversationId": "conv-9",
		"LocationId": "loc-9",
		"message_body": "need help",
		"message_type": "Email",
		"full_name": "Lin",
		"assigned_to": "Support Team"
	}`
	ev, err := n.Inbound([]byte(payload))
	require.NoError(t, err)
	require.Equal(t, "c9", ev.ContactID)
	require.Equal(t, "conv-9", ev.ConversationID)
	require.Equal(t, "loc-9", ev.LocationID)
	require.Equal(t, "need help", ev.MessageBody)
	require.Equal(t, "Email", ev.ChannelType)
	require.Equal(t, "Lin", ev.ContactName)
	require.Equal(t, "Support Team", ev.AssignedTo)
}

func TestInboundNestedFallbacks(t *testing.T) {
	n := NewNormalizer(nil)
	payload := `{
		"contactId": 12345,
		"location": {"id": "loc-1"},
		"message": {"body": "from nested", "type": "WhatsApp"}
	}`
	ev, err := n.Inbound([]byte(payload))
	require.NoError(t, err)
	require.Equal(t, "12345", ev.ContactID)
	require.Equal(t, "conv_12345", ev.ConversationID)
	require.Equal(t, "loc-1", ev.LocationID)
	require.Equal(t, "from nested", ev.MessageBody)
	require.Equal(t, "WhatsApp", ev.ChannelType)
}

func TestInboundIgnoresBlankAndObjectValues(t *testing.T) {
	n := NewNormalizer(nil)
	payload := `{"contactId":"c1","conversationId":"   ","body":{"text":"x"},"message":{"body":"real"}}`
	ev, err := n.Inbound([]byte(payload))
	require.NoError(t, err)
	require.Equal(t, "conv_c1", ev.ConversationID)
	require.Equal(t, "real", ev.MessageBody)
}

func TestInboundSynthesizedIDIsDeterministic(t *testing.T) {
	n := NewNormalizer(nil)
	a, err := n.Inbound([]byte(`{"contactId":"same","messageBody":"one"}`))
	require.NoError(t, err)
	b, err := n.Inbound([]byte(`{"contact_id":"same","body":"two"}`))
	require.NoError(t, err)
	require.Equal(t, a.ConversationID, b.ConversationID)
}

func TestInboundMissingContact(t *testing.T) {
	n := NewNormalizer(nil)
	_, err := n.Inbound([]byte(`{"conversationId":"conv-1","messageBody":"hi"}`))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMissingIdentity))
}

func TestInboundRejectsNonObject(t *testing.T) {
	n := NewNormalizer(nil)
	for _, payload := range []string{``, `not json`, `[1,2]`, `"str"`} {
		_, err := n.Inbound([]byte(payload))
		require.True(t, errors.Is(err, ErrInvalidPayload), payload)
	}
}

func TestInboundTimestamp(t *testing.T) {
	n := NewNormalizer(nil)

	ev, err := n.Inbound([]byte(`{"contactId":"c1","dateAdded":"2026-10-19T12:00:00Z"}`))
	require.NoError(t, err)
	require.True(t, ev.Timestamp.Equal(time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)))

	ev, err = n.Inbound([]byte(`{"contactId":"c1","timestamp":1792411200000}`))
	require.NoError(t, err)
	require.Equal(t, int64(1792411200000), ev.Timestamp.UnixMilli())

	ev, err = n.Inbound([]byte(`{"contactId":"c1","timestamp":1792411200}`))
	require.NoError(t, err)
	require.Equal(t, int64(1792411200), ev.Timestamp.Unix())

	ev, err = n.Inbound([]byte(`{"contactId":"c1","timestamp":"yesterday"}`))
	require.NoError(t, err)
	require.True(t, ev.Timestamp.IsZero())
}

func TestInboundTimestampOutOfRangeIsIgnored(t *testing.T) {
	n := NewNormalizer(nil)
	for _, raw := range []string{`1e19`, `-1`, `0`, `"NaN"`, `"Inf"`, `86400`, `"1970-01-02T00:00:00Z"`, `"0001-01-01T00:00:00Z"`, `1e15`} {
		ev, err := n.Inbound([]byte(`{"contactId":"c1","timestamp":` + raw + `}`))
		require.NoError(t, err, raw)
		require.True(t, ev.Timestamp.IsZero(), raw)
	}
}

func TestTimestampInRange(t *testing.T) {
	require.False(t, TimestampInRange(time.Time{}))
	require.False(t, TimestampInRange(time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC)))
	require.True(t, TimestampInRange(EarliestTimestamp))
	require.True(t, TimestampInRange(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)))
}

func TestInboundNestedTypeOverridesDefaultChannel(t *testing.T) {
	n := NewNormalizer(nil)

	ev, err := n.Inbound([]byte(`{"contactId":"c1","type":"SMS","message":{"type":"Email"}}`))
	require.NoError(t, err)
	require.Equal(t, "Email", ev.ChannelType)

	ev, err = n.Inbound([]byte(`{"contactId":"c1","type":"GMB","message":{"type":"Email"}}`))
	require.NoError(t, err)
	require.Equal(t, "GMB", ev.ChannelType)

	ev, err = n.Inbound([]byte(`{"contactId":"c1"}`))
	require.NoError(t, err)
	require.Equal(t, DefaultChannel, ev.ChannelType)
}

func TestOutbound(t *testing.T) {
	n := NewNormalizer(nil)

	ev, err := n.Outbound([]byte(`{"conversationId":"conv-1","userId":"u1","body":"on it"}`))
	require.NoError(t, err)
	require.Equal(t, "conv-1", ev.ConversationID)
	require.Equal(t, "u1", ev.UserID)
	require.Equal(t, "on it", ev.MessageBody)

	ev, err = n.Outbound([]byte(`{"customData":{"contactId":"c7"}}`))
	require.NoError(t, err)
	require.Equal(t, "conv_c7", ev.ConversationID)
	require.Equal(t, "c7", ev.ContactID)

	_, err = n.Outbound([]byte(`{"body":"orphan"}`))
	require.True(t, errors.Is(err, ErrMissingIdentity))
}

func TestConversationID(t *testing.T) {
	require.Equal(t, "explicit", ConversationID("explicit", "c1"))
	require.Equal(t, "conv_c1", ConversationID("", "c1"))
	require.Equal(t, "", ConversationID("", ""))
}
