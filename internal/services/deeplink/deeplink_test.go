package deeplink

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playa-scheduler/internal/models"
)

func createTestEvent(platform models.Platform, identifier, message string) models.ScheduledEvent {
	return models.ScheduledEvent{
		ID:         "e-1",
		Platform:   platform,
		Identifier: identifier,
		Message:    message,
	}
}

// ==========================
// Construction Tests
// ==========================

func TestConstructDeepLink(t *testing.T) {
	tests := []struct {
		name     string
		event    models.ScheduledEvent
		expected string
	}{
		{
			name:     "whatsapp",
			event:    createTestEvent(models.PlatformWhatsApp, "+14155550100", "hey there"),
			expected: "whatsapp://send?phone=+14155550100&text=hey%20there",
		},
		{
			name:     "sms",
			event:    createTestEvent(models.PlatformSMS, "+14155550100", "hey there"),
			expected: "sms:+14155550100?body=hey%20there",
		},
		{
			name:     "instagram ignores message",
			event:    createTestEvent(models.PlatformInstagram, "maya._belle", "this is dropped"),
			expected: "instagram://user?username=maya._belle",
		},
		{
			name:     "special characters encoded",
			event:    createTestEvent(models.PlatformWhatsApp, "+4930", "50% off & more?"),
			expected: "whatsapp://send?phone=+4930&text=50%25%20off%20%26%20more%3F",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, err := ConstructDeepLink(tt.event)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, link)
		})
	}
}

func TestConstructDeepLink_UnsupportedPlatform(t *testing.T) {
	_, err := ConstructDeepLink(createTestEvent("telegram", "+4930", "hi"))
	assert.Error(t, err)
}

func TestConstructDeepLink_LengthCap(t *testing.T) {
	event := createTestEvent(models.PlatformSMS, "+14155550100", strings.Repeat("a", MaxURLLength))
	_, err := ConstructDeepLink(event)
	assert.Error(t, err)
}

// ==========================
// Validation Tests
// ==========================

func TestValidateDeepLink(t *testing.T) {
	tests := []struct {
		name     string
		link     string
		expected bool
	}{
		{"whatsapp", "whatsapp://send?phone=+4930&text=hi", true},
		{"sms", "sms:+4930?body=hi", true},
		{"instagram", "instagram://user?username=maya", true},
		{"https", "https://example.com", false},
		{"whatsapp missing text", "whatsapp://send?phone=+4930", false},
		{"empty", "", false},
		{"too long", "sms:+4930?body=" + strings.Repeat("a", MaxURLLength), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateDeepLink(tt.link))
		})
	}
}
