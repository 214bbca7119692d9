package reminder

import (
	"github.com/google/uuid"
)

// SettingsRequest updates reminder settings. Absent or negative day counts
// keep the current value.
type SettingsRequest struct {
	DueSoonDaysBefore *int  `json:"due_soon_days_before"`
	OverdueDays1      *int  `json:"overdue_days_1"`
	OverdueDays2      *int  `json:"overdue_days_2"`
	Enabled           *bool `json:"enabled"`
}

func (req *SettingsRequest) apply(s *Settings) {
	if req.DueSoonDaysBefore != nil && *req.DueSoonDaysBefore >= 0 {
		s.DueSoonDaysBefore = *req.DueSoonDaysBefore
	}
	if req.OverdueDays1 != nil && *req.OverdueDays1 >= 0 {
		s.OverdueDays1 = *req.OverdueDays1
	}
	if req.OverdueDays2 != nil && *req.OverdueDays2 >= 0 {
		s.OverdueDays2 = *req.OverdueDays2
	}
	if req.Enabled != nil {
		s.Enabled = *req.Enabled
	}
}

// SettingsResponse represents reminder settings in API
type SettingsResponse struct {
	DueSoonDaysBefore int  `json:"due_soon_days_before"`
	OverdueDays1      int  `json:"overdue_days_1"`
	OverdueDays2      int  `json:"overdue_days_2"`
	Enabled           bool `json:"enabled"`
}

// SettingsResponseFromEntity converts entity to response
func SettingsResponseFromEntity(s *Settings) SettingsResponse {
	return SettingsResponse{
		DueSoonDaysBefore: s.DueSoonDaysBefore,
		OverdueDays1:      s.OverdueDays1,
		OverdueDays2:      s.OverdueDays2,
		Enabled:           s.Enabled,
	}
}

// PreferencesRequest updates a customer's notification preferences
type PreferencesRequest struct {
	AllowInApp       *bool   `json:"allow_in_app"`
	AllowSMS         *bool   `json:"allow_sms"`
	AllowEmail       *bool   `json:"allow_email"`
	AllowWhatsApp    *bool   `json:"allow_whatsapp"`
	PreferredChannel *string `json:"preferred_channel" validate:"omitempty,channel"`
}

func (req *PreferencesRequest) apply(p *Preferences) {
	for _, f := range []struct {
		src *bool
		dst *bool
	}{
		{req.AllowInApp, &p.AllowInApp},
		{req.AllowSMS, &p.AllowSMS},
		{req.AllowEmail, &p.AllowEmail},
		{req.AllowWhatsApp, &p.AllowWhatsApp},
	} {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	if req.PreferredChannel != nil {
		p.PreferredChannel = Channel(*req.PreferredChannel)
	}
}

// PreferencesResponse represents notification preferences in API
type PreferencesResponse struct {
	CustomerID       uuid.UUID `json:"customer_id"`
	AllowInApp       bool      `json:"allow_in_app"`
	AllowSMS         bool      `json:"allow_sms"`
	AllowEmail       bool      `json:"allow_email"`
	AllowWhatsApp    bool      `json:"allow_whatsapp"`
	PreferredChannel Channel   `json:"preferred_channel"`
	EffectiveChannel Channel   `json:"effective_channel,omitempty"`
}

// PreferencesResponseFromEntity converts entity to response
func PreferencesResponseFromEntity(p *Preferences) PreferencesResponse {
	return PreferencesResponse{
		CustomerID:       p.CustomerID,
		AllowInApp:       p.AllowInApp,
		AllowSMS:         p.AllowSMS,
		AllowEmail:       p.AllowEmail,
		AllowWhatsApp:    p.AllowWhatsApp,
		PreferredChannel: p.PreferredChannel,
		EffectiveChannel: p.Channel(),
	}
}
