package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"playa-scheduler/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func createValidRecipient() models.Recipient {
	return models.Recipient{
		ID:             "r-1",
		Name:           "Maya",
		Platform:       models.PlatformWhatsApp,
		Identifier:     "+14155550100",
		ScheduleConfig: models.RandomSchedule{Frequency: 2},
		MessagePool:    []string{"hello"},
		IsActive:       true,
	}
}

// ==========================
// Field Validator Tests
// ==========================

func TestValidatePhoneNumber(t *testing.T) {
	tests := []struct {
		name     string
		phone    string
		expected bool
	}{
		{"valid us number", "+14155550100", true},
		{"valid short number", "+4930", true},
		{"missing plus", "14155550100", false},
		{"leading zero", "+04155550100", false},
		{"letters", "+1415ABC0100", false},
		{"too long", "+1234567890123456", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidatePhoneNumber(tt.phone).Success)
		})
	}
}

func TestValidateInstagramUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		expected bool
	}{
		{"simple", "maya", true},
		{"with separators", "maya._belle", true},
		{"max length", strings.Repeat("a", 30), true},
		{"too long", strings.Repeat("a", 31), false},
		{"spaces", "maya belle", false},
		{"hyphen", "maya-belle", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateInstagramUsername(tt.username).Success)
		})
	}
}

func TestValidateMessage(t *testing.T) {
	assert.True(t, ValidateMessage("hi").Success)
	assert.True(t, ValidateMessage(strings.Repeat("a", MaxMessageLength)).Success)
	assert.False(t, ValidateMessage("").Success)
	assert.False(t, ValidateMessage(strings.Repeat("a", MaxMessageLength+1)).Success)
}

func TestValidateScheduleConfig(t *testing.T) {
	tests := []struct {
		name     string
		config   models.ScheduleConfig
		expected bool
	}{
		{"frequency at lower bound", models.RandomSchedule{Frequency: models.MinFrequency}, true},
		{"frequency at upper bound", models.RandomSchedule{Frequency: models.MaxFrequency}, true},
		{"frequency below bound", models.RandomSchedule{Frequency: 0}, false},
		{"frequency above bound", models.RandomSchedule{Frequency: models.MaxFrequency + 1}, false},
		{"fixed with times", models.FixedSchedule{FixedTimes: []string{"09:00", "21:15"}}, true},
		{"fixed empty", models.FixedSchedule{}, false},
		{"fixed malformed time", models.FixedSchedule{FixedTimes: []string{"9:00"}}, false},
		{"nil config", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateScheduleConfig(tt.config).Success)
		})
	}
}

// ==========================
// Whole Recipient Tests
// ==========================

func TestValidateRecipient_Valid(t *testing.T) {
	assert.Empty(t, ValidateRecipient(createValidRecipient()))
}

func TestValidateRecipient_FieldErrors(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(r *models.Recipient)
		expectedField string
	}{
		{"empty name", func(r *models.Recipient) { r.Name = "  " }, "name"},
		{"name too long", func(r *models.Recipient) { r.Name = strings.Repeat("a", MaxNameLength+1) }, "name"},
		{"bad platform", func(r *models.Recipient) { r.Platform = "telegram" }, "platform"},
		{"phone for whatsapp", func(r *models.Recipient) { r.Identifier = "not-a-phone" }, "identifier"},
		{
			"username for instagram",
			func(r *models.Recipient) {
				r.Platform = models.PlatformInstagram
				r.Identifier = "has spaces"
			},
			"identifier",
		},
		{"missing schedule", func(r *models.Recipient) { r.ScheduleConfig = nil }, "scheduleConfig"},
		{"empty pool", func(r *models.Recipient) { r.MessagePool = nil }, "messagePool"},
		{
			"pool too large",
			func(r *models.Recipient) {
				r.MessagePool = make([]string, MaxPoolSize+1)
				for i := range r.MessagePool {
					r.MessagePool[i] = "m"
				}
			},
			"messagePool",
		},
		{"empty message in pool", func(r *models.Recipient) { r.MessagePool = []string{"ok", ""} }, "messagePool"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipient := createValidRecipient()
			tt.mutate(&recipient)
			errs := ValidateRecipient(recipient)
			assert.Contains(t, errs, tt.expectedField)
		})
	}
}

func TestValidateRecipient_PhoneValidForSMS(t *testing.T) {
	recipient := createValidRecipient()
	recipient.Platform = models.PlatformSMS
	assert.Empty(t, ValidateRecipient(recipient))
}
