// internal/services/notification/notification.go
package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"playa-scheduler/internal/common/database"
	"playa-scheduler/internal/common/logger"
	"playa-scheduler/internal/common/metrics"
	"playa-scheduler/internal/models"

	"github.com/google/uuid"
)

// Scheduler is the reminder collaborator consumed by the daily
// routine and the event store. Both operations are best-effort:
// individual failures are logged and never abort the caller.
type Scheduler interface {
	// ScheduleNotifications registers a reminder per event and returns
	// a map of event id to opaque notification handle. Events that
	// fail to schedule are simply absent from the map.
	ScheduleNotifications(ctx context.Context, events []models.ScheduledEvent, recipients map[string]models.Recipient) map[string]string

	// CancelNotification cancels a previously returned handle.
	CancelNotification(ctx context.Context, handle string) error
}

const reminderKeyPrefix = "reminder:"

// reminderRecord is what a registered reminder looks like at rest.
type reminderRecord struct {
	EventID       string `json:"eventId"`
	RecipientID   string `json:"recipientId"`
	Title         string `json:"title"`
	Body          string `json:"body"`
	ScheduledTime string `json:"scheduledTime"`
}

// LocalScheduler registers reminders as engine records keyed by a
// fresh handle. It stands in for the device notification platform.
type LocalScheduler struct {
	engine *database.RedisClient
	log    logger.Logger
}

func NewLocalScheduler(engine *database.RedisClient, log logger.Logger) *LocalScheduler {
	return &LocalScheduler{
		engine: engine,
		log:    log.WithFields(map[string]interface{}{"component": "notification"}),
	}
}

// messagePreview truncates long messages for the reminder body.
func messagePreview(message string) string {
	if len(message) > 100 {
		return message[:100] + "..."
	}
	return message
}

func (s *LocalScheduler) ScheduleNotifications(ctx context.Context, events []models.ScheduledEvent, recipients map[string]models.Recipient) map[string]string {
	handles := make(map[string]string)

	for _, event := range events {
		recipient, exists := recipients[event.RecipientID]
		if !exists {
			continue
		}

		handle, err := s.schedule(ctx, event, recipient)
		if err != nil {
			metrics.NotificationsFailed.Inc()
			s.log.Error("failed to schedule notification", map[string]interface{}{
				"eventId": event.ID,
				"error":   err.Error(),
			})
			continue
		}
		handles[event.ID] = handle
		metrics.NotificationsScheduled.Inc()
	}

	return handles
}

func (s *LocalScheduler) schedule(ctx context.Context, event models.ScheduledEvent, recipient models.Recipient) (string, error) {
	record := reminderRecord{
		EventID:       event.ID,
		RecipientID:   event.RecipientID,
		Title:         fmt.Sprintf("Message for %s", recipient.Name),
		Body:          messagePreview(event.Message),
		ScheduledTime: event.ScheduledTime,
	}
	data, err := json.Marshal(record)
	if err != nil {
		return "", err
	}

	handle := uuid.New().String()
	if err := s.engine.Set(ctx, reminderKeyPrefix+handle, string(data)); err != nil {
		return "", err
	}
	return handle, nil
}

func (s *LocalScheduler) CancelNotification(ctx context.Context, handle string) error {
	return s.engine.Del(ctx, reminderKeyPrefix+handle)
}
