package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/recruiterhub/wabot/domains/schedule"
	"gorm.io/gorm"
)

type ScheduleGormRepository struct {
	db *gorm.DB
}

func NewScheduleGormRepository(db *gorm.DB) *ScheduleGormRepository {
	return &ScheduleGormRepository{db: db}
}

func (r *ScheduleGormRepository) Insert(ctx context.Context, m *schedule.ScheduledMessage) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Status == "" {
		m.Status = schedule.StatusPending
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *ScheduleGormRepository) DuePending(ctx context.Context, now time.Time, limit int) ([]schedule.ScheduledMessage, error) {
	var rows []schedule.ScheduledMessage
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_at <= ?", schedule.StatusPending, now).
		Order("scheduled_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *ScheduleGormRepository) MarkSent(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&schedule.ScheduledMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": schedule.StatusSent, "sent_at": at}).Error
}

func (r *ScheduleGormRepository) MarkFailed(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&schedule.ScheduledMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": schedule.StatusFailed, "sent_at": at}).Error
}

