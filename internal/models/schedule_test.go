package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Schedule Config JSON Tests
// ==========================

func TestMarshalScheduleConfig(t *testing.T) {
	tests := []struct {
		name     string
		config   ScheduleConfig
		expected string
	}{
		{
			name:     "random schedule",
			config:   RandomSchedule{Frequency: 3},
			expected: `{"mode":"random","frequency":3}`,
		},
		{
			name:     "fixed schedule",
			config:   FixedSchedule{FixedTimes: []string{"09:00", "18:30"}},
			expected: `{"mode":"fixed","fixedTimes":["09:00","18:30"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalScheduleConfig(tt.config)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))
		})
	}
}

func TestUnmarshalScheduleConfig_RoundTrip(t *testing.T) {
	configs := []ScheduleConfig{
		RandomSchedule{Frequency: 1},
		RandomSchedule{Frequency: 10},
		FixedSchedule{FixedTimes: []string{"21:00"}},
		FixedSchedule{FixedTimes: []string{"09:00", "12:00", "18:00"}},
	}

	for _, cfg := range configs {
		data, err := MarshalScheduleConfig(cfg)
		require.NoError(t, err)

		decoded, err := UnmarshalScheduleConfig(data)
		require.NoError(t, err)
		assert.True(t, cfg.Equal(decoded))
		assert.Equal(t, cfg.Mode(), decoded.Mode())
	}
}

func TestUnmarshalScheduleConfig_UnknownMode(t *testing.T) {
	_, err := UnmarshalScheduleConfig([]byte(`{"mode":"weekly","frequency":2}`))
	assert.Error(t, err)
}

func TestScheduleConfig_Equal(t *testing.T) {
	tests := []struct {
		name     string
		a, b     ScheduleConfig
		expected bool
	}{
		{"same frequency", RandomSchedule{Frequency: 3}, RandomSchedule{Frequency: 3}, true},
		{"different frequency", RandomSchedule{Frequency: 3}, RandomSchedule{Frequency: 4}, false},
		{"same fixed times", FixedSchedule{FixedTimes: []string{"09:00", "18:00"}}, FixedSchedule{FixedTimes: []string{"09:00", "18:00"}}, true},
		{"different fixed times", FixedSchedule{FixedTimes: []string{"09:00"}}, FixedSchedule{FixedTimes: []string{"10:00"}}, false},
		{"different order is not equal", FixedSchedule{FixedTimes: []string{"18:00", "09:00"}}, FixedSchedule{FixedTimes: []string{"09:00", "18:00"}}, false},
		{"cross mode", RandomSchedule{Frequency: 2}, FixedSchedule{FixedTimes: []string{"09:00", "10:00"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.a.Equal(tt.b))
		})
	}
}

// ==========================
// Recipient JSON Tests
// ==========================

func TestRecipient_JSONRoundTrip(t *testing.T) {
	original := Recipient{
		ID:             "r-1",
		Name:           "Maya",
		Platform:       PlatformWhatsApp,
		Identifier:     "+14155550100",
		ScheduleConfig: RandomSchedule{Frequency: 2},
		MessagePool:    []string{"hey!", "thinking of you"},
		IsActive:       true,
		CreatedAt:      "2026-09-01T10:00:00Z",
		UpdatedAt:      "2026-09-01T10:00:00Z",
	}

	data, err := original.MarshalJSON()
	require.NoError(t, err)

	var decoded Recipient
	require.NoError(t, decoded.UnmarshalJSON(data))

	assert.Equal(t, original.ID, decoded.ID)
	assert.Equal(t, original.Platform, decoded.Platform)
	assert.True(t, original.ScheduleConfig.Equal(decoded.ScheduleConfig))
	assert.Equal(t, original.MessagePool, decoded.MessagePool)
	assert.True(t, decoded.IsActive)
}
