// internal/stores/recipientstore.go
package stores

import (
	"context"
	"time"

	apperrors "playa-scheduler/internal/common/errors"
	"playa-scheduler/internal/common/logger"
	"playa-scheduler/internal/common/sanitize"
	"playa-scheduler/internal/models"
	"playa-scheduler/internal/services/notification"
	"playa-scheduler/internal/services/scheduling"
	"playa-scheduler/internal/services/storage"
	"playa-scheduler/internal/services/validation"

	"github.com/google/uuid"
)

// RecipientFormData carries everything a caller supplies when
// creating a recipient. Identity, activation and timestamps are
// assigned here.
type RecipientFormData struct {
	Name           string
	Platform       models.Platform
	Identifier     string
	ScheduleConfig models.ScheduleConfig
	MessagePool    []string
}

// RecipientUpdate is a partial field update. Nil fields are left
// untouched; MessagePool and ScheduleConfig replace wholesale when set.
type RecipientUpdate struct {
	Name           *string
	Platform       *models.Platform
	Identifier     *string
	ScheduleConfig models.ScheduleConfig
	MessagePool    []string
	IsActive       *bool
}

// CloneOptions selects which parts of the source recipient to copy.
type CloneOptions struct {
	CopyScheduleConfig bool
	CopyMessagePool    bool
}

// RecipientStore mediates recipient mutations and keeps today's events
// consistent with them: a schedule policy change regenerates the
// recipient's pending events, and deletion cascades to every owned
// event.
type RecipientStore struct {
	storage   *storage.Store
	scheduler *scheduling.Service
	notifier  notification.Scheduler
	log       logger.Logger
}

func NewRecipientStore(store *storage.Store, scheduler *scheduling.Service, notifier notification.Scheduler, log logger.Logger) *RecipientStore {
	return &RecipientStore{
		storage:   store,
		scheduler: scheduler,
		notifier:  notifier,
		log:       log.WithFields(map[string]interface{}{"component": "recipientStore"}),
	}
}

// GetRecipient returns the recipient or nil when the id is unknown.
func (s *RecipientStore) GetRecipient(ctx context.Context, id string) (*models.Recipient, error) {
	return s.storage.GetRecipient(ctx, id)
}

// GetAllRecipients returns every stored recipient, order unspecified.
func (s *RecipientStore) GetAllRecipients(ctx context.Context) ([]models.Recipient, error) {
	return s.storage.GetAllRecipients(ctx)
}

// AddRecipient sanitizes and validates the form data, then persists a
// new active recipient. Validation failures come back as the field
// error map, not as an error; the error return is for storage faults
// only.
func (s *RecipientStore) AddRecipient(ctx context.Context, data RecipientFormData) (*models.Recipient, validation.FieldErrors, error) {
	now := time.Now().Format(time.RFC3339)
	recipient := models.Recipient{
		ID:             uuid.New().String(),
		Name:           sanitize.RecipientName(data.Name),
		Platform:       data.Platform,
		Identifier:     sanitizeIdentifier(data.Platform, data.Identifier),
		ScheduleConfig: data.ScheduleConfig,
		MessagePool:    sanitizePool(data.MessagePool),
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if errs := validation.ValidateRecipient(recipient); len(errs) > 0 {
		return nil, errs, nil
	}

	if err := s.storage.SaveRecipient(ctx, recipient); err != nil {
		return nil, nil, err
	}
	s.log.Info("recipient added", map[string]interface{}{
		"recipientId": recipient.ID,
		"platform":    string(recipient.Platform),
	})
	return &recipient, nil, nil
}

// UpdateRecipient merges a partial update, persists it, and — when the
// schedule policy actually changed — regenerates today's pending
// events for the recipient. Returns NotFoundError for unknown ids.
func (s *RecipientStore) UpdateRecipient(ctx context.Context, id string, update RecipientUpdate) (*models.Recipient, validation.FieldErrors, error) {
	existing, err := s.storage.GetRecipient(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if existing == nil {
		return nil, nil, apperrors.NewNotFoundError("recipient", id)
	}

	updated := *existing
	if update.Name != nil {
		updated.Name = sanitize.RecipientName(*update.Name)
	}
	if update.Platform != nil {
		updated.Platform = *update.Platform
	}
	if update.Identifier != nil {
		updated.Identifier = sanitizeIdentifier(updated.Platform, *update.Identifier)
	}
	if update.ScheduleConfig != nil {
		updated.ScheduleConfig = update.ScheduleConfig
	}
	if update.MessagePool != nil {
		updated.MessagePool = sanitizePool(update.MessagePool)
	}
	if update.IsActive != nil {
		updated.IsActive = *update.IsActive
	}
	updated.UpdatedAt = time.Now().Format(time.RFC3339)

	if errs := validation.ValidateRecipient(updated); len(errs) > 0 {
		return nil, errs, nil
	}

	if err := s.storage.SaveRecipient(ctx, updated); err != nil {
		return nil, nil, err
	}

	configChanged := update.ScheduleConfig != nil &&
		(existing.ScheduleConfig == nil || !existing.ScheduleConfig.Equal(update.ScheduleConfig))
	if configChanged {
		if err := s.regenerateEvents(ctx, updated); err != nil {
			return nil, nil, err
		}
	}
	return &updated, nil, nil
}

// DeleteRecipient removes the recipient and physically removes every
// event it owns, cancelling registered notifications best-effort
// first. Unknown ids are a no-op.
func (s *RecipientStore) DeleteRecipient(ctx context.Context, id string) error {
	existing, err := s.storage.GetRecipient(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}

	if err := s.cancelRecipientNotifications(ctx, id); err != nil {
		return err
	}
	if err := s.storage.DeleteEventsByRecipient(ctx, id); err != nil {
		return err
	}
	if err := s.storage.DeleteRecipient(ctx, id); err != nil {
		return err
	}
	s.log.Info("recipient deleted", map[string]interface{}{"recipientId": id})
	return nil
}

// CloneRecipient copies the selected parts of the source recipient
// onto the target. Copying a schedule config that differs from the
// target's regenerates the target's pending events.
func (s *RecipientStore) CloneRecipient(ctx context.Context, targetID, sourceID string, opts CloneOptions) (*models.Recipient, error) {
	source, err := s.storage.GetRecipient(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, apperrors.NewNotFoundError("recipient", sourceID)
	}
	target, err := s.storage.GetRecipient(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, apperrors.NewNotFoundError("recipient", targetID)
	}

	updated := *target
	configChanged := false
	if opts.CopyScheduleConfig {
		configChanged = target.ScheduleConfig == nil || !target.ScheduleConfig.Equal(source.ScheduleConfig)
		updated.ScheduleConfig = source.ScheduleConfig
	}
	if opts.CopyMessagePool {
		updated.MessagePool = append([]string(nil), source.MessagePool...)
	}
	updated.UpdatedAt = time.Now().Format(time.RFC3339)

	if err := s.storage.SaveRecipient(ctx, updated); err != nil {
		return nil, err
	}
	if configChanged {
		if err := s.regenerateEvents(ctx, updated); err != nil {
			return nil, err
		}
	}
	s.log.Info("recipient settings cloned", map[string]interface{}{
		"sourceId": sourceID,
		"targetId": targetID,
	})
	return &updated, nil
}

// regenerateEvents removes the recipient's pending events for today
// and generates a fresh set under the new policy. Sent and cancelled
// events stay as history, so their slots remain occupied for
// de-duplication purposes.
func (s *RecipientStore) regenerateEvents(ctx context.Context, recipient models.Recipient) error {
	today := time.Now().Format(storage.DateLayout)

	existing, err := s.storage.GetEventsByDate(ctx, today)
	if err != nil {
		return err
	}
	var stale []string
	for _, e := range existing {
		if e.RecipientID != recipient.ID || e.Status != models.StatusPending {
			continue
		}
		if e.NotificationID != "" {
			if err := s.notifier.CancelNotification(ctx, e.NotificationID); err != nil {
				s.log.Warn("failed to cancel notification, continuing", map[string]interface{}{
					"eventId": e.ID,
					"error":   err.Error(),
				})
			}
		}
		stale = append(stale, e.ID)
	}
	if len(stale) > 0 {
		if err := s.storage.DeleteEvents(ctx, stale); err != nil {
			return err
		}
	}

	if !scheduling.CanGenerateEvents(recipient) {
		return nil
	}
	events, err := s.scheduler.GenerateEventsForRecipientDedup(ctx, recipient, today)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	handles := s.notifier.ScheduleNotifications(ctx, events, map[string]models.Recipient{recipient.ID: recipient})
	for i := range events {
		if handle, exists := handles[events[i].ID]; exists {
			events[i].NotificationID = handle
		}
	}
	if err := s.storage.SaveEvents(ctx, events); err != nil {
		return err
	}
	s.log.Info("events regenerated after schedule change", map[string]interface{}{
		"recipientId": recipient.ID,
		"removed":     len(stale),
		"generated":   len(events),
	})
	return nil
}

func (s *RecipientStore) cancelRecipientNotifications(ctx context.Context, recipientID string) error {
	events, err := s.storage.GetAllEvents(ctx)
	if err != nil {
		return err
	}
	for _, e := range events {
		if e.RecipientID != recipientID || e.NotificationID == "" || e.Status != models.StatusPending {
			continue
		}
		if err := s.notifier.CancelNotification(ctx, e.NotificationID); err != nil {
			s.log.Warn("failed to cancel notification, continuing", map[string]interface{}{
				"eventId": e.ID,
				"error":   err.Error(),
			})
		}
	}
	return nil
}

func sanitizeIdentifier(platform models.Platform, identifier string) string {
	if platform == models.PlatformInstagram {
		return sanitize.Username(identifier)
	}
	return sanitize.PhoneNumber(identifier)
}

func sanitizePool(pool []string) []string {
	out := make([]string, 0, len(pool))
	for _, msg := range pool {
		out = append(out, sanitize.Message(msg))
	}
	return out
}
