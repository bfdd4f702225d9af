// internal/stores/eventstore.go
package stores

import (
	"context"
	"time"

	apperrors "playa-scheduler/internal/common/errors"
	"playa-scheduler/internal/common/logger"
	"playa-scheduler/internal/models"
	"playa-scheduler/internal/services/notification"
	"playa-scheduler/internal/services/storage"
)

// EventUpdate is a partial field update for a scheduled event. Nil
// fields are left untouched.
type EventUpdate struct {
	Status         *models.EventStatus
	NotificationID *string
	Message        *string
	ScheduledTime  *string
	ExecutedAt     *string
}

// EventStore mediates every read and mutation of event status. The
// status state machine is enforced here, not in the storage layer.
type EventStore struct {
	storage  *storage.Store
	notifier notification.Scheduler
	log      logger.Logger
}

func NewEventStore(store *storage.Store, notifier notification.Scheduler, log logger.Logger) *EventStore {
	return &EventStore{
		storage:  store,
		notifier: notifier,
		log:      log.WithFields(map[string]interface{}{"component": "eventStore"}),
	}
}

// GetEvent returns the event or nil when the id is unknown.
func (s *EventStore) GetEvent(ctx context.Context, id string) (*models.ScheduledEvent, error) {
	return s.storage.GetEvent(ctx, id)
}

// GetAllEvents returns every stored event, order unspecified.
func (s *EventStore) GetAllEvents(ctx context.Context) ([]models.ScheduledEvent, error) {
	return s.storage.GetAllEvents(ctx)
}

// GetEventsByDate returns events scheduled on the given local day.
func (s *EventStore) GetEventsByDate(ctx context.Context, day string) ([]models.ScheduledEvent, error) {
	return s.storage.GetEventsByDate(ctx, day)
}

// AddEvents persists a freshly generated batch.
func (s *EventStore) AddEvents(ctx context.Context, events []models.ScheduledEvent) error {
	return s.storage.SaveEvents(ctx, events)
}

// UpdateEvent merges a partial update into the event. Status changes
// pass through the state machine: a disallowed transition silently
// keeps the prior status while the other fields still apply. Returns
// NotFoundError when the id is unknown.
func (s *EventStore) UpdateEvent(ctx context.Context, id string, update EventUpdate) (*models.ScheduledEvent, error) {
	existing, err := s.storage.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperrors.NewNotFoundError("event", id)
	}

	updated := *existing

	if update.Status != nil && *update.Status != existing.Status {
		if existing.Status.CanTransitionTo(*update.Status) {
			updated.Status = *update.Status
			if updated.Status == models.StatusSent && update.ExecutedAt == nil {
				updated.ExecutedAt = time.Now().Format(time.RFC3339)
			}
		} else {
			s.log.Warn("invalid status transition ignored", map[string]interface{}{
				"eventId": id,
				"from":    string(existing.Status),
				"to":      string(*update.Status),
			})
		}
	}

	if update.NotificationID != nil {
		updated.NotificationID = *update.NotificationID
	}
	if update.Message != nil {
		updated.Message = *update.Message
	}
	if update.ScheduledTime != nil {
		updated.ScheduledTime = *update.ScheduledTime
	}
	if update.ExecutedAt != nil {
		updated.ExecutedAt = *update.ExecutedAt
	}

	if err := s.storage.SaveEvent(ctx, updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// MarkSent records a successful manual or notification-triggered send.
func (s *EventStore) MarkSent(ctx context.Context, id string) (*models.ScheduledEvent, error) {
	status := models.StatusSent
	return s.UpdateEvent(ctx, id, EventUpdate{Status: &status})
}

// DeleteEvent cancels a pending event. The record stays; only its
// status changes. A registered notification is cancelled first, but a
// cancel failure never blocks the status update. Unknown ids are a
// no-op.
func (s *EventStore) DeleteEvent(ctx context.Context, id string) error {
	existing, err := s.storage.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}

	if existing.NotificationID != "" {
		if err := s.notifier.CancelNotification(ctx, existing.NotificationID); err != nil {
			s.log.Warn("failed to cancel notification, continuing", map[string]interface{}{
				"eventId":        id,
				"notificationId": existing.NotificationID,
				"error":          err.Error(),
			})
		}
	}

	status := models.StatusCancelled
	_, err = s.UpdateEvent(ctx, id, EventUpdate{Status: &status})
	return err
}
