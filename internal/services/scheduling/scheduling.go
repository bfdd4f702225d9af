// internal/services/scheduling/scheduling.go
package scheduling

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"

	"playa-scheduler/internal/common/logger"
	"playa-scheduler/internal/common/metrics"
	"playa-scheduler/internal/models"
	"playa-scheduler/internal/services/storage"
	"playa-scheduler/internal/services/validation"

	"github.com/google/uuid"
)

// Daily generation window. Random times land on whole minutes between
// 09:00 and 21:00.
const (
	ScheduleStartHour = 9
	ScheduleEndHour   = 21
	minutesInHour     = 60
)

// GenerateRandomTimes produces frequency distinct whole-minute times
// within the daily window on the given day, in ascending order.
// Distinctness comes from rejection sampling over the 720 minute
// slots; the frequency bound keeps that space far from saturated, and
// the guard below protects against a future widening of the range.
func GenerateRandomTimes(frequency int, day time.Time) ([]time.Time, error) {
	if frequency < models.MinFrequency || frequency > models.MaxFrequency {
		return nil, fmt.Errorf("frequency %d outside [%d,%d]", frequency, models.MinFrequency, models.MaxFrequency)
	}

	totalMinutes := (ScheduleEndHour - ScheduleStartHour) * minutesInHour
	if frequency >= totalMinutes {
		return nil, fmt.Errorf("frequency %d saturates the %d-minute window", frequency, totalMinutes)
	}

	offsets := map[int]struct{}{}
	for len(offsets) < frequency {
		offsets[rand.Intn(totalMinutes)] = struct{}{}
	}

	sorted := make([]int, 0, len(offsets))
	for off := range offsets {
		sorted = append(sorted, off)
	}
	sort.Ints(sorted)

	times := make([]time.Time, 0, frequency)
	for _, off := range sorted {
		hour := ScheduleStartHour + off/minutesInHour
		minute := off % minutesInHour
		times = append(times, time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location()))
	}
	return times, nil
}

// parseClock parses an "HH:MM" string. Format validation belongs to
// the validation service; malformed input here fails fast instead of
// producing a wrong time.
func parseClock(clock string) (hour, minute int, err error) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed clock time %q", clock)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("malformed clock time %q", clock)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("malformed clock time %q", clock)
	}
	return hour, minute, nil
}

// GenerateEventsForRecipient is the pure expansion of a recipient's
// schedule policy for one day. No I/O, no de-duplication.
//
// Fixed-mode events follow the order of FixedTimes, which is not
// necessarily chronological; consumers needing chronological order
// must sort.
func GenerateEventsForRecipient(recipient models.Recipient, day time.Time) ([]models.ScheduledEvent, error) {
	if !recipient.IsActive || len(recipient.MessagePool) == 0 {
		return nil, nil
	}

	var times []time.Time
	switch cfg := recipient.ScheduleConfig.(type) {
	case models.RandomSchedule:
		generated, err := GenerateRandomTimes(cfg.Frequency, day)
		if err != nil {
			return nil, err
		}
		times = generated
	case models.FixedSchedule:
		for _, clock := range cfg.FixedTimes {
			hour, minute, err := parseClock(clock)
			if err != nil {
				return nil, err
			}
			times = append(times, time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location()))
		}
	default:
		return nil, fmt.Errorf("unknown schedule config type %T", recipient.ScheduleConfig)
	}

	now := time.Now().Format(time.RFC3339)
	events := make([]models.ScheduledEvent, 0, len(times))
	for _, t := range times {
		message := recipient.MessagePool[rand.Intn(len(recipient.MessagePool))]
		events = append(events, models.ScheduledEvent{
			ID:            uuid.New().String(),
			RecipientID:   recipient.ID,
			RecipientName: recipient.Name,
			Platform:      recipient.Platform,
			Identifier:    recipient.Identifier,
			Message:       message,
			ScheduledTime: t.Format(time.RFC3339),
			Status:        models.StatusPending,
			CreatedAt:     now,
		})
	}
	return events, nil
}

// CanGenerateEvents is the pre-flight guard used before generation or
// regeneration is attempted.
func CanGenerateEvents(recipient models.Recipient) bool {
	return recipient.IsActive &&
		len(recipient.MessagePool) > 0 &&
		validation.ValidateScheduleConfig(recipient.ScheduleConfig).Success
}

// Service wraps the pure generators with persistence-aware
// de-duplication and the daily orchestration.
type Service struct {
	store *storage.Store
	log   logger.Logger
}

func NewService(store *storage.Store, log logger.Logger) *Service {
	return &Service{
		store: store,
		log:   log.WithFields(map[string]interface{}{"component": "scheduling"}),
	}
}

func dedupKey(recipientID, scheduledTime string) string {
	return recipientID + "|" + scheduledTime
}

// GenerateEventsForRecipientDedup expands the recipient for the day
// and drops any event whose (recipientId, scheduledTime) pair is
// already persisted. This is what keeps the daily routine safe to run
// twice for the same day.
func (s *Service) GenerateEventsForRecipientDedup(ctx context.Context, recipient models.Recipient, day string) ([]models.ScheduledEvent, error) {
	dayTime, err := time.ParseInLocation(storage.DateLayout, day, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid day %q: %w", day, err)
	}

	events, err := GenerateEventsForRecipient(recipient, dayTime)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}

	existing, err := s.store.GetEventsByDate(ctx, day)
	if err != nil {
		return nil, err
	}
	existingKeys := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		existingKeys[dedupKey(e.RecipientID, e.ScheduledTime)] = struct{}{}
	}

	filtered := events[:0]
	for _, e := range events {
		if _, dup := existingKeys[dedupKey(e.RecipientID, e.ScheduledTime)]; !dup {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// GenerateDailyEvents expands every active recipient for the day.
// Order across recipients is unspecified.
func (s *Service) GenerateDailyEvents(ctx context.Context, day string) ([]models.ScheduledEvent, error) {
	recipients, err := s.store.GetAllRecipients(ctx)
	if err != nil {
		return nil, err
	}

	var all []models.ScheduledEvent
	for _, recipient := range recipients {
		if !recipient.IsActive {
			continue
		}
		events, err := s.GenerateEventsForRecipientDedup(ctx, recipient, day)
		if err != nil {
			return nil, err
		}
		all = append(all, events...)
	}

	metrics.EventsGenerated.Add(float64(len(all)))
	s.log.Info("daily events generated", map[string]interface{}{
		"day":   day,
		"count": len(all),
	})
	return all, nil
}
