package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/recruiterhub/wabot/domains/message"
	"gorm.io/gorm"
)

type MessageGormRepository struct {
	db *gorm.DB
}

func NewMessageGormRepository(db *gorm.DB) *MessageGormRepository {
	return &MessageGormRepository{db: db}
}

func (r *MessageGormRepository) ExistsByProviderID(ctx context.Context, providerMessageID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&message.Message{}).
		Where("provider_message_id = ?", providerMessageID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *MessageGormRepository) Append(ctx context.Context, m *message.Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return message.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *MessageGormRepository) Recent(ctx context.Context, contactID string, limit int) ([]message.Message, error) {
	// Take the newest rows, then flip to oldest-first for prompting.
	var newest []message.Message
	err := r.db.WithContext(ctx).
		Where("contact_id = ?", contactID).
		Order("created_at DESC").
		Limit(limit).
		Find(&newest).Error
	if err != nil {
		return nil, err
	}
	out := make([]message.Message, 0, len(newest))
	for i := len(newest) - 1; i >= 0; i-- {
		out = append(out, newest[i])
	}
	return out, nil
}

func (r *MessageGormRepository) History(ctx context.Context, limit int) ([]message.HistoryEntry, error) {
	var rows []message.HistoryEntry
	err := r.db.WithContext(ctx).
		Table("messages").
		Select("messages.id, messages.created_at, messages.direction, messages.text, contacts.chat_id, contacts.lead_type, contacts.stage").
		Joins("JOIN contacts ON contacts.id = messages.contact_id").
		Order("messages.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// isUniqueViolation detects duplicate-key failures across sqlite and
// postgres without importing driver-specific error types.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if err == gorm.ErrDuplicatedKey {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
