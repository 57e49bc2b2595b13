package message

import (
	"context"
	"time"
)

// Direction marks whether a message was received or sent by the bot.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Message is one append-only entry of the per-contact message log. The
// provider-assigned id doubles as the dedup key for inbound deliveries;
// outbound rows synthesize theirs from the inbound id ("out:<id>").
type Message struct {
	ID                string    `gorm:"primaryKey;column:id"`
	ContactID         string    `gorm:"column:contact_id;index"`
	Direction         Direction `gorm:"column:direction"`
	ProviderMessageID string    `gorm:"column:provider_message_id;uniqueIndex"`
	Text              string    `gorm:"column:text"`
	CreatedAt         time.Time `gorm:"column:created_at"`
}

func (Message) TableName() string {
	return "messages"
}

// HistoryEntry is a message joined with its owning contact, used by the
// admin history view.
type HistoryEntry struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Direction Direction `json:"direction"`
	Text      string    `json:"text"`
	ChatID    string    `json:"chat_id"`
	LeadType  string    `json:"lead_type"`
	Stage     string    `json:"stage"`
}

// ErrDuplicate is returned by Append when the provider message id is
// already stored. Callers treat it as a silent skip, not a failure.
type duplicateError struct{}

func (duplicateError) Error() string { return "message: duplicate provider message id" }

var ErrDuplicate error = duplicateError{}

// IMessageRepository defines the contract for the append-only message log.
type IMessageRepository interface {
	// ExistsByProviderID is the dedup pre-check for redelivered events.
	ExistsByProviderID(ctx context.Context, providerMessageID string) (bool, error)
	// Append stores a message; a uniqueness violation on the provider
	// message id is reported as ErrDuplicate.
	Append(ctx context.Context, m *Message) error
	// Recent returns up to limit messages for a contact ordered oldest-first.
	Recent(ctx context.Context, contactID string, limit int) ([]Message, error)
	// History returns the newest entries across all contacts, newest-first.
	History(ctx context.Context, limit int) ([]HistoryEntry, error)
}
