package schedule

import (
	"context"
	"time"
)

// Status of a scheduled message. Transitions pending→sent or
// pending→failed exactly once; rows are never re-enqueued.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// ScheduledMessage is one delayed follow-up send owned by a contact.
type ScheduledMessage struct {
	ID          string     `gorm:"primaryKey;column:id"`
	ContactID   string     `gorm:"column:contact_id;index"`
	MessageText string     `gorm:"column:message_text"`
	ScheduledAt time.Time  `gorm:"column:scheduled_at;index"`
	Status      Status     `gorm:"column:status;index"`
	SentAt      *time.Time `gorm:"column:sent_at"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
}

func (ScheduledMessage) TableName() string {
	return "scheduled_messages"
}

// IScheduleRepository defines the contract for the follow-up queue.
type IScheduleRepository interface {
	Insert(ctx context.Context, m *ScheduledMessage) error
	// DuePending returns up to limit pending rows with scheduled_at <= now.
	DuePending(ctx context.Context, now time.Time, limit int) ([]ScheduledMessage, error)
	// MarkSent stamps sent_at and flips the status to sent.
	MarkSent(ctx context.Context, id string, at time.Time) error
	// MarkFailed stamps sent_at and flips the status to failed.
	MarkFailed(ctx context.Context, id string, at time.Time) error
}
