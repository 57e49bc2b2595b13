package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/recruiterhub/wabot/domains/contact"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContactGormRepository struct {
	db *gorm.DB
}

func NewContactGormRepository(db *gorm.DB) *ContactGormRepository {
	return &ContactGormRepository{db: db}
}

func (r *ContactGormRepository) GetByChatID(ctx context.Context, chatID string) (*contact.Contact, error) {
	var m contact.Contact
	if err := r.db.WithContext(ctx).First(&m, "chat_id = ?", chatID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *ContactGormRepository) GetByID(ctx context.Context, id string) (*contact.Contact, error) {
	var m contact.Contact
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *ContactGormRepository) Create(ctx context.Context, c *contact.Contact) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ContactGormRepository) Update(ctx context.Context, c *contact.Contact) error {
	c.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *ContactGormRepository) MarkOptOut(ctx context.Context, chatID string) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"opt_out": true, "updated_at": now}),
	}).Create(&contact.Contact{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Stage:     contact.StageStart,
		LeadType:  contact.LeadUnknown,
		OptOut:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}).Error
}
