// internal/models/recipient.go
package models

import "encoding/json"

// Platform identifies the messaging app a recipient is reached on.
type Platform string

const (
	PlatformWhatsApp  Platform = "whatsapp"
	PlatformSMS       Platform = "sms"
	PlatformInstagram Platform = "instagram"
)

// Valid reports whether p is one of the supported platforms.
func (p Platform) Valid() bool {
	switch p {
	case PlatformWhatsApp, PlatformSMS, PlatformInstagram:
		return true
	}
	return false
}

// Recipient is a contact configured to receive scheduled reminder
// messages. Identifier is an E.164 phone number for whatsapp/sms or a
// username for instagram.
type Recipient struct {
	ID             string
	Name           string
	Platform       Platform
	Identifier     string
	ScheduleConfig ScheduleConfig
	MessagePool    []string
	IsActive       bool
	CreatedAt      string // RFC3339
	UpdatedAt      string // RFC3339, bumped on every mutation
}

type recipientJSON struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Platform       Platform        `json:"platform"`
	Identifier     string          `json:"identifier"`
	ScheduleConfig json.RawMessage `json:"scheduleConfig"`
	MessagePool    []string        `json:"messagePool"`
	IsActive       bool            `json:"isActive"`
	CreatedAt      string          `json:"createdAt"`
	UpdatedAt      string          `json:"updatedAt"`
}

func (r Recipient) MarshalJSON() ([]byte, error) {
	cfg, err := MarshalScheduleConfig(r.ScheduleConfig)
	if err != nil {
		return nil, err
	}
	return json.Marshal(recipientJSON{
		ID:             r.ID,
		Name:           r.Name,
		Platform:       r.Platform,
		Identifier:     r.Identifier,
		ScheduleConfig: cfg,
		MessagePool:    r.MessagePool,
		IsActive:       r.IsActive,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	})
}

func (r *Recipient) UnmarshalJSON(data []byte) error {
	var raw recipientJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	cfg, err := UnmarshalScheduleConfig(raw.ScheduleConfig)
	if err != nil {
		return err
	}
	r.ID = raw.ID
	r.Name = raw.Name
	r.Platform = raw.Platform
	r.Identifier = raw.Identifier
	r.ScheduleConfig = cfg
	r.MessagePool = raw.MessagePool
	r.IsActive = raw.IsActive
	r.CreatedAt = raw.CreatedAt
	r.UpdatedAt = raw.UpdatedAt
	return nil
}
