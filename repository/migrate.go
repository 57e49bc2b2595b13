package repository

import (
	"context"

	"github.com/recruiterhub/wabot/domains/contact"
	"github.com/recruiterhub/wabot/domains/message"
	"github.com/recruiterhub/wabot/domains/schedule"
	"github.com/recruiterhub/wabot/domains/settings"
	"gorm.io/gorm"
)

// InitSchema creates every table used by the bot.
func InitSchema(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(
		&contact.Contact{},
		&message.Message{},
		&settings.Setting{},
		&schedule.ScheduledMessage{},
	)
}
