// internal/services/deeplink/deeplink.go
package deeplink

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"playa-scheduler/internal/models"
)

// MaxURLLength caps constructed deep links; platforms truncate or
// reject anything longer.
const MaxURLLength = 2048

var validPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^whatsapp://send\?phone=.+&text=.+$`),
	regexp.MustCompile(`^sms:.+\?body=.+$`),
	regexp.MustCompile(`^instagram://user\?username=.+$`),
}

// encodeMessage matches JavaScript's encodeURIComponent: spaces become
// %20, not +.
func encodeMessage(message string) string {
	return strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
}

// ConstructDeepLink builds the platform URL that opens a messaging app
// pre-filled with the event's contact and message. Instagram has no
// prefill parameter, so the message is ignored there.
func ConstructDeepLink(event models.ScheduledEvent) (string, error) {
	encoded := encodeMessage(event.Message)

	var link string
	switch event.Platform {
	case models.PlatformWhatsApp:
		link = fmt.Sprintf("whatsapp://send?phone=%s&text=%s", event.Identifier, encoded)
	case models.PlatformSMS:
		link = fmt.Sprintf("sms:%s?body=%s", event.Identifier, encoded)
	case models.PlatformInstagram:
		link = fmt.Sprintf("instagram://user?username=%s", event.Identifier)
	default:
		return "", fmt.Errorf("unsupported platform: %s", event.Platform)
	}

	if len(link) > MaxURLLength {
		return "", fmt.Errorf("URL exceeds maximum length of %d characters", MaxURLLength)
	}
	return link, nil
}

// ValidateDeepLink reports whether url matches one of the supported
// deep link shapes and fits the length cap.
func ValidateDeepLink(link string) bool {
	if len(link) > MaxURLLength {
		return false
	}
	for _, pattern := range validPatterns {
		if pattern.MatchString(link) {
			return true
		}
	}
	return false
}
