package greenapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWebhookCanonicalShape(t *testing.T) {
	body := []byte(`{
		"typeWebhook": "incomingMessageReceived",
		"idMessage": "ABC123",
		"senderData": {"chatId": "491700000001@c.us", "sender": "491700000001@c.us"},
		"instanceData": {"wid": "491709999999@c.us"},
		"messageData": {"textMessageData": {"textMessage": "привет"}}
	}`)

	msg, ok, err := ParseWebhook(body)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "491700000001@c.us", msg.ChatID)
	assert.Equal(t, "ABC123", msg.MessageID)
	assert.Equal(t, "привет", msg.Text)
	assert.False(t, msg.FromMe)
}

func TestParseWebhookFlatShape(t *testing.T) {
	body := []byte(`{"typeWebhook": "incomingMessageReceived", "chatId": "c@c.us", "messageId": "m1", "text": "hello"}`)

	msg, ok, err := ParseWebhook(body)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "c@c.us", msg.ChatID)
	assert.Equal(t, "m1", msg.MessageID)
	assert.Equal(t, "hello", msg.Text)
}

func TestParseWebhookNestedDataShape(t *testing.T) {
	body := []byte(`{"typeWebhook": "incomingMessageReceived", "data": {"chatId": "c@c.us", "idMessage": "m1", "text": "hi"}}`)

	msg, ok, err := ParseWebhook(body)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "c@c.us", msg.ChatID)
	assert.Equal(t, "m1", msg.MessageID)
	assert.Equal(t, "hi", msg.Text)
}

func TestParseWebhookFieldPrecedence(t *testing.T) {
	// senderData.chatId beats the flat chatId, idMessage beats messageId,
	// textMessageData beats the flat text.
	body := []byte(`{
		"typeWebhook": "incomingMessageReceived",
		"chatId": "flat@c.us",
		"senderData": {"chatId": "nested@c.us"},
		"idMessage": "primary",
		"messageId": "secondary",
		"text": "flat text",
		"messageData": {"textMessageData": {"textMessage": "nested text"}}
	}`)

	msg, ok, err := ParseWebhook(body)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "nested@c.us", msg.ChatID)
	assert.Equal(t, "primary", msg.MessageID)
	assert.Equal(t, "nested text", msg.Text)
}

func TestParseWebhookExtendedText(t *testing.T) {
	body := []byte(`{
		"typeWebhook": "incomingMessageReceived",
		"chatId": "c@c.us",
		"idMessage": "m1",
		"messageData": {"extendedTextMessageData": {"text": "link message"}}
	}`)

	msg, ok, err := ParseWebhook(body)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "link message", msg.Text)
}

func TestParseWebhookWrongType(t *testing.T) {
	body := []byte(`{
		"typeWebhook": "outgoingMessageStatus",
		"chatId": "c@c.us",
		"idMessage": "m1",
		"text": "hi"
	}`)

	_, ok, err := ParseWebhook(body)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseWebhookMissingType(t *testing.T) {
	// A body without the incomingMessageReceived discriminator is not a
	// message notification, however complete the rest of it looks.
	body := []byte(`{"chatId": "c@c.us", "messageId": "m1", "text": "hello"}`)

	_, ok, err := ParseWebhook(body)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseWebhookSelfMessage(t *testing.T) {
	body := []byte(`{
		"typeWebhook": "incomingMessageReceived",
		"idMessage": "m1",
		"senderData": {"chatId": "me@c.us", "sender": "me@c.us"},
		"instanceData": {"wid": "me@c.us"},
		"text": "echo"
	}`)

	msg, ok, err := ParseWebhook(body)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, msg.FromMe)
}

func TestParseWebhookMissingFields(t *testing.T) {
	cases := []string{
		`{"typeWebhook": "incomingMessageReceived", "idMessage": "m1", "text": "hi"}`,
		`{"typeWebhook": "incomingMessageReceived", "chatId": "c@c.us", "text": "hi"}`,
		`{"typeWebhook": "incomingMessageReceived", "chatId": "c@c.us", "idMessage": "m1"}`,
		`{"typeWebhook": "incomingMessageReceived"}`,
		`{}`,
	}
	for _, body := range cases {
		_, ok, err := ParseWebhook([]byte(body))
		require.NoError(t, err, body)
		assert.False(t, ok, body)
	}
}

func TestParseWebhookMalformedJSON(t *testing.T) {
	_, _, err := ParseWebhook([]byte(`{"chatId": `))
	assert.Error(t, err)
}
