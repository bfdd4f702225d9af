// internal/models/schedule.go
package models

import (
	"encoding/json"
	"fmt"
)

// ScheduleMode discriminates the two schedule policy variants.
type ScheduleMode string

const (
	ScheduleModeRandom ScheduleMode = "random"
	ScheduleModeFixed  ScheduleMode = "fixed"
)

// Schedule policy bounds.
const (
	MinFrequency = 1
	MaxFrequency = 10
)

// ScheduleConfig is the per-recipient schedule policy, a tagged union:
// exactly one of RandomSchedule or FixedSchedule. Consumers must switch
// exhaustively on the concrete variant.
type ScheduleConfig interface {
	Mode() ScheduleMode
	// Equal compares by value, not by reference. Regeneration is keyed
	// off this comparison.
	Equal(other ScheduleConfig) bool
}

// RandomSchedule generates Frequency events per day at independent
// random times.
type RandomSchedule struct {
	Frequency int `json:"frequency"`
}

func (RandomSchedule) Mode() ScheduleMode { return ScheduleModeRandom }

func (s RandomSchedule) Equal(other ScheduleConfig) bool {
	o, ok := other.(RandomSchedule)
	return ok && o.Frequency == s.Frequency
}

// FixedSchedule generates one event per listed "HH:MM" clock time.
// The order of FixedTimes is preserved, not sorted.
type FixedSchedule struct {
	FixedTimes []string `json:"fixedTimes"`
}

func (FixedSchedule) Mode() ScheduleMode { return ScheduleModeFixed }

func (s FixedSchedule) Equal(other ScheduleConfig) bool {
	o, ok := other.(FixedSchedule)
	if !ok || len(o.FixedTimes) != len(s.FixedTimes) {
		return false
	}
	for i, t := range s.FixedTimes {
		if o.FixedTimes[i] != t {
			return false
		}
	}
	return true
}

// scheduleConfigJSON is the wire envelope shared by both variants.
type scheduleConfigJSON struct {
	Mode       ScheduleMode `json:"mode"`
	Frequency  int          `json:"frequency,omitempty"`
	FixedTimes []string     `json:"fixedTimes,omitempty"`
}

// MarshalScheduleConfig serializes a config into its JSON envelope.
func MarshalScheduleConfig(cfg ScheduleConfig) ([]byte, error) {
	switch c := cfg.(type) {
	case RandomSchedule:
		return json.Marshal(scheduleConfigJSON{Mode: ScheduleModeRandom, Frequency: c.Frequency})
	case FixedSchedule:
		return json.Marshal(scheduleConfigJSON{Mode: ScheduleModeFixed, FixedTimes: c.FixedTimes})
	default:
		return nil, fmt.Errorf("unknown schedule config type %T", cfg)
	}
}

// UnmarshalScheduleConfig parses the JSON envelope back into a variant.
func UnmarshalScheduleConfig(data []byte) (ScheduleConfig, error) {
	var env scheduleConfigJSON
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch env.Mode {
	case ScheduleModeRandom:
		return RandomSchedule{Frequency: env.Frequency}, nil
	case ScheduleModeFixed:
		return FixedSchedule{FixedTimes: env.FixedTimes}, nil
	default:
		return nil, fmt.Errorf("unknown schedule mode %q", env.Mode)
	}
}
