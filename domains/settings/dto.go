package settings

import "strconv"

// DTO is the flat settings object exposed by the admin API.
type DTO struct {
	SystemPrompt       string `json:"system_prompt"`
	SiteURL            string `json:"site_url"`
	CandidateLink      string `json:"candidate_link"`
	AgencyLink         string `json:"agency_link"`
	Tone               string `json:"tone"`
	AdminPhone         string `json:"admin_phone"`
	FollowupEnabled    bool   `json:"followup_enabled"`
	FollowupMessage    string `json:"followup_message"`
	FollowupDelayHours int    `json:"followup_delay_hours"`
}

// FromMap builds the DTO from raw setting rows.
func FromMap(m map[string]string) DTO {
	delay := 24
	if v := m[KeyFollowupDelayHours]; v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			delay = n
		}
	}
	return DTO{
		SystemPrompt:       m[KeySystemPrompt],
		SiteURL:            m[KeySiteURL],
		CandidateLink:      m[KeyCandidateLink],
		AgencyLink:         m[KeyAgencyLink],
		Tone:               m[KeyTone],
		AdminPhone:         m[KeyAdminPhone],
		FollowupEnabled:    m[KeyFollowupEnabled] == "true",
		FollowupMessage:    m[KeyFollowupMessage],
		FollowupDelayHours: delay,
	}
}

// ToMap flattens the DTO back to setting rows.
func (d DTO) ToMap() map[string]string {
	return map[string]string{
		KeySystemPrompt:       d.SystemPrompt,
		KeySiteURL:            d.SiteURL,
		KeyCandidateLink:      d.CandidateLink,
		KeyAgencyLink:         d.AgencyLink,
		KeyTone:               d.Tone,
		KeyAdminPhone:         d.AdminPhone,
		KeyFollowupEnabled:    strconv.FormatBool(d.FollowupEnabled),
		KeyFollowupMessage:    d.FollowupMessage,
		KeyFollowupDelayHours: strconv.Itoa(d.FollowupDelayHours),
	}
}
