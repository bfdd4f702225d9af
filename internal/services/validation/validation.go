// internal/services/validation/validation.go
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"playa-scheduler/internal/models"
)

// Message template and recipient bounds.
const (
	MaxNameLength    = 100
	MaxMessageLength = 500
	MaxPoolSize      = 100
)

var (
	// E.164: "+" followed by a non-zero digit and 1-14 more digits.
	phonePattern = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

	// Instagram usernames: letters, digits, underscores, periods.
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._]{1,30}$`)

	// Clock times in fixed schedules.
	clockPattern = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// Result is the outcome of a single-value check. Validation failures
// are returned as data, never as errors.
type Result struct {
	Success bool
	Error   string
}

func ok() Result             { return Result{Success: true} }
func fail(msg string) Result { return Result{Success: false, Error: msg} }

// FieldErrors maps recipient field names to their first error message.
type FieldErrors map[string]string

// ValidatePhoneNumber checks E.164 format.
func ValidatePhoneNumber(phone string) Result {
	if !phonePattern.MatchString(phone) {
		return fail("please enter a valid phone number with country code (e.g., +1234567890)")
	}
	return ok()
}

// ValidateInstagramUsername checks the username character set and length.
func ValidateInstagramUsername(username string) Result {
	if !usernamePattern.MatchString(username) {
		return fail("instagram username can only contain letters, numbers, underscores, and periods")
	}
	return ok()
}

// ValidateMessage checks a single message template's length bounds.
func ValidateMessage(message string) Result {
	if len(message) == 0 {
		return fail("message cannot be empty")
	}
	if len(message) > MaxMessageLength {
		return fail(fmt.Sprintf("message must be %d characters or less", MaxMessageLength))
	}
	return ok()
}

// ValidateScheduleConfig checks the structural rules of either variant.
func ValidateScheduleConfig(cfg models.ScheduleConfig) Result {
	switch c := cfg.(type) {
	case models.RandomSchedule:
		if c.Frequency < models.MinFrequency || c.Frequency > models.MaxFrequency {
			return fail(fmt.Sprintf("frequency must be between %d and %d", models.MinFrequency, models.MaxFrequency))
		}
		return ok()
	case models.FixedSchedule:
		if len(c.FixedTimes) == 0 {
			return fail("please select at least one time for fixed schedule")
		}
		for _, t := range c.FixedTimes {
			if !clockPattern.MatchString(t) {
				return fail(fmt.Sprintf("time %q must be in HH:MM format", t))
			}
		}
		return ok()
	default:
		return fail("schedule config is required")
	}
}

// ValidateRecipient runs all schema-level acceptance rules for a whole
// recipient and returns a per-field error map. An empty map means the
// recipient is acceptable.
func ValidateRecipient(r models.Recipient) FieldErrors {
	errs := FieldErrors{}

	name := strings.TrimSpace(r.Name)
	if name == "" {
		errs["name"] = "name is required"
	} else if len(name) > MaxNameLength {
		errs["name"] = fmt.Sprintf("name must be %d characters or less", MaxNameLength)
	}

	if !r.Platform.Valid() {
		errs["platform"] = "platform must be one of whatsapp, sms, instagram"
	} else {
		// Cross-field rule: the identifier format depends on platform.
		var res Result
		if r.Platform == models.PlatformInstagram {
			res = ValidateInstagramUsername(r.Identifier)
		} else {
			res = ValidatePhoneNumber(r.Identifier)
		}
		if !res.Success {
			errs["identifier"] = res.Error
		}
	}

	if res := ValidateScheduleConfig(r.ScheduleConfig); !res.Success {
		errs["scheduleConfig"] = res.Error
	}

	if len(r.MessagePool) == 0 {
		errs["messagePool"] = "at least one message template is required"
	} else if len(r.MessagePool) > MaxPoolSize {
		errs["messagePool"] = fmt.Sprintf("maximum %d message templates allowed", MaxPoolSize)
	} else {
		for _, msg := range r.MessagePool {
			if res := ValidateMessage(msg); !res.Success {
				errs["messagePool"] = res.Error
				break
			}
		}
	}

	return errs
}
