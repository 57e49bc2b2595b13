package contact

import (
	"context"
	"time"
)

// LeadType classifies a contact as assigned by the language model.
type LeadType string

const (
	LeadUnknown   LeadType = "unknown"
	LeadCandidate LeadType = "candidate"
	LeadAgency    LeadType = "agency"
)

// Coerce maps an arbitrary string onto a valid LeadType, defaulting to unknown.
func Coerce(v string) LeadType {
	switch LeadType(v) {
	case LeadCandidate, LeadAgency:
		return LeadType(v)
	}
	return LeadUnknown
}

// StageStart is the stage assigned to a brand-new contact.
const StageStart = "start"

// SummaryMaxLen bounds the accumulated free-text memory of a contact.
const SummaryMaxLen = 2000

// Contact is the persisted record of one chat counterpart and its
// conversation state. There is at most one Contact per chat identity.
type Contact struct {
	ID        string    `gorm:"primaryKey;column:id"`
	ChatID    string    `gorm:"column:chat_id;uniqueIndex"`
	Stage     string    `gorm:"column:stage"`
	Summary   string    `gorm:"column:summary"`
	LeadType  LeadType  `gorm:"column:lead_type"`
	OptOut    bool      `gorm:"column:opt_out"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Contact) TableName() string {
	return "contacts"
}

// AppendSummary concatenates an update onto the current summary with a
// newline separator and truncates the result to SummaryMaxLen runes.
func (c *Contact) AppendSummary(update string) {
	if update == "" {
		return
	}
	next := update
	if c.Summary != "" {
		next = c.Summary + "\n" + update
	}
	runes := []rune(next)
	if len(runes) > SummaryMaxLen {
		next = string(runes[:SummaryMaxLen])
	}
	c.Summary = next
}

// IContactRepository defines the contract for persisting contacts.
type IContactRepository interface {
	GetByChatID(ctx context.Context, chatID string) (*Contact, error)
	GetByID(ctx context.Context, id string) (*Contact, error)
	Create(ctx context.Context, c *Contact) error
	Update(ctx context.Context, c *Contact) error
	// MarkOptOut upserts a contact by chat identity with opt_out set,
	// creating the row when the chat identity is unseen.
	MarkOptOut(ctx context.Context, chatID string) error
}
