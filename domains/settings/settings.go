package settings

import "context"

// Setting is one dynamic configuration value stored in the database.
type Setting struct {
	Key   string `gorm:"primaryKey;column:key"`
	Value string `gorm:"column:value"`
}

func (Setting) TableName() string {
	return "settings"
}

// Keys used by the pipeline and admin panel.
const (
	KeySystemPrompt       = "system_prompt"
	KeySiteURL            = "site_url"
	KeyCandidateLink      = "candidate_link"
	KeyAgencyLink         = "agency_link"
	KeyTone               = "tone"
	KeyAdminPhone         = "admin_phone"
	KeyFollowupEnabled    = "followup_enabled"
	KeyFollowupMessage    = "followup_message"
	KeyFollowupDelayHours = "followup_delay_hours"
)

// ISettingsRepository defines the contract for persisting dynamic settings.
type ISettingsRepository interface {
	// GetAll returns every setting as a key→value map.
	GetAll(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
}
