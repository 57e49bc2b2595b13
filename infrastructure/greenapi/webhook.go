package greenapi

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/recruiterhub/wabot/channel"
)

// TypeIncoming is the only webhook type that produces a pipeline run.
const TypeIncoming = "incomingMessageReceived"

// webhookPayload covers the notification shapes the gateway emits. Field
// names vary between gateway versions, so every known spelling is
// declared and resolved in a fixed order.
type webhookPayload struct {
	TypeWebhook string `json:"typeWebhook"`

	ChatIDCamel string `json:"chatId"`
	ChatIDUpper string `json:"chatID"`

	IDMessage string `json:"idMessage"`
	MessageID string `json:"messageId"`
	ID        string `json:"id"`

	Text string `json:"text"`

	SenderData struct {
		ChatID    string `json:"chatId"`
		Sender    string `json:"sender"`
		IDMessage string `json:"idMessage"`
	} `json:"senderData"`

	InstanceData struct {
		Wid string `json:"wid"`
	} `json:"instanceData"`

	MessageData struct {
		TextMessageData struct {
			TextMessage string `json:"textMessage"`
		} `json:"textMessageData"`
		ExtendedTextMessageData struct {
			Text string `json:"text"`
		} `json:"extendedTextMessageData"`
		QuotedMessage struct {
			TextMessage string `json:"textMessage"`
		} `json:"quotedMessage"`
	} `json:"messageData"`

	Data struct {
		ChatID    string `json:"chatId"`
		IDMessage string `json:"idMessage"`
		Text      string `json:"text"`
	} `json:"data"`
}

// ParseWebhook decodes a gateway notification body into a normalized
// incoming message. The second return value is false when the payload is
// valid JSON but carries nothing actionable (wrong type, missing fields,
// or a message the instance sent itself).
func ParseWebhook(body []byte) (channel.IncomingMessage, bool, error) {
	var p webhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return channel.IncomingMessage{}, false, fmt.Errorf("malformed webhook body: %w", err)
	}

	// Only incomingMessageReceived notifications carry a user message;
	// everything else (status updates, absent discriminator) is ignored.
	if p.TypeWebhook != TypeIncoming {
		return channel.IncomingMessage{}, false, nil
	}

	chatID := firstNonEmpty(
		p.SenderData.ChatID,
		p.ChatIDCamel,
		p.ChatIDUpper,
		p.Data.ChatID,
	)
	messageID := firstNonEmpty(
		p.IDMessage,
		p.MessageID,
		p.ID,
		p.Data.IDMessage,
		p.SenderData.IDMessage,
	)
	text := firstNonEmpty(
		p.MessageData.TextMessageData.TextMessage,
		p.MessageData.ExtendedTextMessageData.Text,
		p.MessageData.QuotedMessage.TextMessage,
		p.Text,
		p.Data.Text,
	)

	if chatID == "" || messageID == "" || strings.TrimSpace(text) == "" {
		return channel.IncomingMessage{}, false, nil
	}

	msg := channel.IncomingMessage{
		ChatID:    chatID,
		MessageID: messageID,
		SenderID:  p.SenderData.Sender,
		Text:      text,
	}
	if p.SenderData.Sender != "" && p.SenderData.Sender == p.InstanceData.Wid {
		msg.FromMe = true
		return msg, false, nil
	}
	return msg, true, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
