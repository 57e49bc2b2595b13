// Package channel defines the transport-agnostic contract between the
// reply pipeline and a concrete WhatsApp delivery mechanism (cloud
// gateway or direct socket session).
package channel

import "context"

// Presence states reported to the remote chat while a reply is being
// prepared.
const (
	PresenceComposing = "composing"
	PresencePaused    = "paused"
)

// IncomingMessage is a normalized inbound text message, already stripped
// of transport-specific envelope details.
type IncomingMessage struct {
	ChatID    string
	MessageID string
	SenderID  string
	Text      string
	FromMe    bool
}

// Adapter sends outbound traffic over one concrete transport.
type Adapter interface {
	// SendMessage delivers a plain text message to the chat.
	SendMessage(ctx context.Context, chatID, text string) error
	// SendPresence reports a typing state. Transports without presence
	// support treat this as a no-op.
	SendPresence(ctx context.Context, chatID, state string) error
}

// Handler consumes normalized inbound messages.
type Handler func(ctx context.Context, msg IncomingMessage)
