// internal/services/storage/storage.go
package storage

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"playa-scheduler/internal/common/database"
	apperrors "playa-scheduler/internal/common/errors"
	"playa-scheduler/internal/common/logger"
	"playa-scheduler/internal/common/metrics"
	"playa-scheduler/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

// Storage keys. Each collection is one JSON blob; there is no
// partial-record update at the engine level.
const (
	keyRecipients = "recipients"
	keyEvents     = "events"
	keyMetadata   = "metadata"
)

// DateLayout is the ISO calendar-day format used throughout.
const DateLayout = "2006-01-02"

// importSchema gates ImportData: all three top-level collections must
// be present before anything is written.
const importSchema = `{
	"type": "object",
	"properties": {
		"recipients": {"type": "object"},
		"events": {"type": "object"},
		"metadata": {
			"type": "object",
			"properties": {
				"lastGenerationDate": {"type": "string"},
				"version": {"type": "string"}
			}
		}
	},
	"required": ["recipients", "events", "metadata"]
}`

// Store owns the persistence engine handle and the in-memory
// collection caches. A nil cache means "not loaded yet"; the cache is
// dropped whenever the engine is wiped.
//
// A single mutex serializes every load-modify-store sequence. The
// engine itself has no transactions across our whole-collection
// writes, so two concurrent writers would lose one update (last write
// wins on the deserialized snapshot); the mutex is what prevents that
// inside this process.
type Store struct {
	engine *database.RedisClient
	log    logger.Logger

	mu         sync.Mutex
	recipients map[string]models.Recipient
	events     map[string]models.ScheduledEvent
}

// New creates a Store over the given engine.
func New(engine *database.RedisClient, log logger.Logger) *Store {
	return &Store{
		engine: engine,
		log:    log.WithFields(map[string]interface{}{"component": "storage"}),
	}
}

func (s *Store) fail(op string, err error) error {
	metrics.StorageFailures.WithLabelValues(op).Inc()
	s.log.Error("storage operation failed", map[string]interface{}{
		"operation": op,
		"error":     err.Error(),
	})
	return apperrors.NewStorageError(op, err)
}

// loadRecipientsLocked populates the recipient cache from the engine
// if needed. Caller must hold s.mu.
func (s *Store) loadRecipientsLocked(ctx context.Context, op string) (map[string]models.Recipient, error) {
	if s.recipients != nil {
		return s.recipients, nil
	}
	recipients := map[string]models.Recipient{}
	raw, err := s.engine.Get(ctx, keyRecipients)
	if err != nil && err != database.ErrKeyNotFound {
		return nil, s.fail(op, err)
	}
	if err == nil {
		if err := json.Unmarshal([]byte(raw), &recipients); err != nil {
			return nil, s.fail(op, err)
		}
	}
	s.recipients = recipients
	return recipients, nil
}

func (s *Store) persistRecipientsLocked(ctx context.Context, op string, recipients map[string]models.Recipient) error {
	data, err := json.Marshal(recipients)
	if err != nil {
		return s.fail(op, err)
	}
	if err := s.engine.Set(ctx, keyRecipients, string(data)); err != nil {
		return s.fail(op, err)
	}
	s.recipients = recipients
	return nil
}

func (s *Store) loadEventsLocked(ctx context.Context, op string) (map[string]models.ScheduledEvent, error) {
	if s.events != nil {
		return s.events, nil
	}
	events := map[string]models.ScheduledEvent{}
	raw, err := s.engine.Get(ctx, keyEvents)
	if err != nil && err != database.ErrKeyNotFound {
		return nil, s.fail(op, err)
	}
	if err == nil {
		if err := json.Unmarshal([]byte(raw), &events); err != nil {
			return nil, s.fail(op, err)
		}
	}
	s.events = events
	return events, nil
}

func (s *Store) persistEventsLocked(ctx context.Context, op string, events map[string]models.ScheduledEvent) error {
	data, err := json.Marshal(events)
	if err != nil {
		return s.fail(op, err)
	}
	if err := s.engine.Set(ctx, keyEvents, string(data)); err != nil {
		return s.fail(op, err)
	}
	s.events = events
	return nil
}

// ==========================
// Recipient operations
// ==========================

// SaveRecipient upserts a recipient and persists the whole collection.
func (s *Store) SaveRecipient(ctx context.Context, recipient models.Recipient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recipients, err := s.loadRecipientsLocked(ctx, "saveRecipient")
	if err != nil {
		return err
	}
	recipients[recipient.ID] = recipient
	return s.persistRecipientsLocked(ctx, "saveRecipient", recipients)
}

// GetRecipient returns the recipient or nil when the id is unknown.
func (s *Store) GetRecipient(ctx context.Context, id string) (*models.Recipient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recipients, err := s.loadRecipientsLocked(ctx, "getRecipient")
	if err != nil {
		return nil, err
	}
	if r, exists := recipients[id]; exists {
		return &r, nil
	}
	return nil, nil
}

// GetAllRecipients returns every stored recipient, order unspecified.
func (s *Store) GetAllRecipients(ctx context.Context) ([]models.Recipient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recipients, err := s.loadRecipientsLocked(ctx, "getAllRecipients")
	if err != nil {
		return nil, err
	}
	out := make([]models.Recipient, 0, len(recipients))
	for _, r := range recipients {
		out = append(out, r)
	}
	return out, nil
}

// DeleteRecipient removes a recipient by id. Deleting an absent id is
// not an error.
func (s *Store) DeleteRecipient(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recipients, err := s.loadRecipientsLocked(ctx, "deleteRecipient")
	if err != nil {
		return err
	}
	delete(recipients, id)
	return s.persistRecipientsLocked(ctx, "deleteRecipient", recipients)
}

// ==========================
// Event operations
// ==========================

// SaveEvent upserts a single event and persists the collection.
func (s *Store) SaveEvent(ctx context.Context, event models.ScheduledEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.loadEventsLocked(ctx, "saveEvent")
	if err != nil {
		return err
	}
	events[event.ID] = event
	return s.persistEventsLocked(ctx, "saveEvent", events)
}

// SaveEvents bulk-upserts events with a single collection write, so a
// batch either fully lands or leaves prior state unchanged.
func (s *Store) SaveEvents(ctx context.Context, batch []models.ScheduledEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.loadEventsLocked(ctx, "saveEvents")
	if err != nil {
		return err
	}
	for _, event := range batch {
		events[event.ID] = event
	}
	return s.persistEventsLocked(ctx, "saveEvents", events)
}

// GetEvent returns the event or nil when the id is unknown.
func (s *Store) GetEvent(ctx context.Context, id string) (*models.ScheduledEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.loadEventsLocked(ctx, "getEvent")
	if err != nil {
		return nil, err
	}
	if e, exists := events[id]; exists {
		return &e, nil
	}
	return nil, nil
}

// GetAllEvents returns every stored event, order unspecified.
func (s *Store) GetAllEvents(ctx context.Context) ([]models.ScheduledEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.loadEventsLocked(ctx, "getAllEvents")
	if err != nil {
		return nil, err
	}
	out := make([]models.ScheduledEvent, 0, len(events))
	for _, e := range events {
		out = append(out, e)
	}
	return out, nil
}

// GetEventsByDate returns events whose scheduledTime falls on the given
// local calendar day ("2006-01-02").
func (s *Store) GetEventsByDate(ctx context.Context, day string) ([]models.ScheduledEvent, error) {
	all, err := s.GetAllEvents(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.ScheduledEvent
	for _, e := range all {
		if eventOnDay(e, day) {
			out = append(out, e)
		}
	}
	return out, nil
}

func eventOnDay(e models.ScheduledEvent, day string) bool {
	if t, err := time.Parse(time.RFC3339, e.ScheduledTime); err == nil {
		return t.In(time.Local).Format(DateLayout) == day
	}
	// Unparsable values fall back to a date prefix match.
	return len(e.ScheduledTime) >= len(day) && e.ScheduledTime[:len(day)] == day
}

// DeleteEvent removes an event by id; idempotent for absent ids.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.loadEventsLocked(ctx, "deleteEvent")
	if err != nil {
		return err
	}
	delete(events, id)
	return s.persistEventsLocked(ctx, "deleteEvent", events)
}

// DeleteEvents removes the given event ids with one collection write.
func (s *Store) DeleteEvents(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.loadEventsLocked(ctx, "deleteEvents")
	if err != nil {
		return err
	}
	for _, id := range ids {
		delete(events, id)
	}
	return s.persistEventsLocked(ctx, "deleteEvents", events)
}

// DeleteEventsByRecipient physically removes all events owned by the
// recipient (the recipient-deletion cascade path).
func (s *Store) DeleteEventsByRecipient(ctx context.Context, recipientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.loadEventsLocked(ctx, "deleteEventsByRecipient")
	if err != nil {
		return err
	}
	filtered := map[string]models.ScheduledEvent{}
	for id, e := range events {
		if e.RecipientID != recipientID {
			filtered[id] = e
		}
	}
	return s.persistEventsLocked(ctx, "deleteEventsByRecipient", filtered)
}

// ==========================
// Metadata operations
// ==========================

func (s *Store) loadMetadataLocked(ctx context.Context) models.Metadata {
	meta := models.Metadata{Version: models.SchemaVersion}
	raw, err := s.engine.Get(ctx, keyMetadata)
	if err != nil {
		// Metadata reads are best-effort and default to empty.
		if err != database.ErrKeyNotFound {
			s.log.Warn("metadata read failed, using defaults", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return meta
	}
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		s.log.Warn("metadata unmarshal failed, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return meta
}

// GetLastGenerationDate returns the last calendar day generation ran
// for, or "" if it never ran. Read failures default to "".
func (s *Store) GetLastGenerationDate(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadMetadataLocked(ctx).LastGenerationDate
}

// SetLastGenerationDate stamps the given ISO date into metadata.
func (s *Store) SetLastGenerationDate(ctx context.Context, day string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta := s.loadMetadataLocked(ctx)
	meta.LastGenerationDate = day
	data, err := json.Marshal(meta)
	if err != nil {
		return s.fail("setLastGenerationDate", err)
	}
	if err := s.engine.Set(ctx, keyMetadata, string(data)); err != nil {
		return s.fail("setLastGenerationDate", err)
	}
	return nil
}

// GetMetadata reads a raw string flag (e.g. onboarding completion).
// Missing keys and read failures both return "".
func (s *Store) GetMetadata(ctx context.Context, key string) string {
	val, err := s.engine.Get(ctx, key)
	if err != nil {
		return ""
	}
	return val
}

// SetMetadata writes a raw string flag.
func (s *Store) SetMetadata(ctx context.Context, key, value string) error {
	if err := s.engine.Set(ctx, key, value); err != nil {
		return s.fail("setMetadata", err)
	}
	return nil
}

// ==========================
// Export / Import
// ==========================

// ExportData produces the full persisted state as one pretty-printed
// JSON document that round-trips through ImportData.
func (s *Store) ExportData(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recipients, err := s.loadRecipientsLocked(ctx, "exportData")
	if err != nil {
		return "", err
	}
	events, err := s.loadEventsLocked(ctx, "exportData")
	if err != nil {
		return "", err
	}

	schema := models.StorageSchema{
		Recipients: recipients,
		Events:     events,
		Metadata:   s.loadMetadataLocked(ctx),
	}
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", s.fail("exportData", err)
	}
	return string(data), nil
}

// ImportData replaces the entire store state with the given export
// document. The payload shape is checked before anything is cleared.
func (s *Store) ImportData(ctx context.Context, jsonData string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(importSchema),
		gojsonschema.NewStringLoader(jsonData),
	)
	if err != nil {
		return apperrors.NewFormatError(err.Error())
	}
	if !result.Valid() {
		detail := "recipients, events and metadata are required"
		if errs := result.Errors(); len(errs) > 0 {
			detail = errs[0].String()
		}
		return apperrors.NewFormatError(detail)
	}

	var schema models.StorageSchema
	if err := json.Unmarshal([]byte(jsonData), &schema); err != nil {
		return apperrors.NewFormatError(err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.engine.FlushAll(ctx); err != nil {
		return s.fail("importData", err)
	}
	s.recipients = nil
	s.events = nil

	recipientsData, err := json.Marshal(schema.Recipients)
	if err != nil {
		return s.fail("importData", err)
	}
	eventsData, err := json.Marshal(schema.Events)
	if err != nil {
		return s.fail("importData", err)
	}
	metadataData, err := json.Marshal(schema.Metadata)
	if err != nil {
		return s.fail("importData", err)
	}

	if err := s.engine.Set(ctx, keyRecipients, string(recipientsData)); err != nil {
		return s.fail("importData", err)
	}
	if err := s.engine.Set(ctx, keyEvents, string(eventsData)); err != nil {
		return s.fail("importData", err)
	}
	if err := s.engine.Set(ctx, keyMetadata, string(metadataData)); err != nil {
		return s.fail("importData", err)
	}

	// Refresh caches with the imported collections.
	s.recipients = schema.Recipients
	if s.recipients == nil {
		s.recipients = map[string]models.Recipient{}
	}
	s.events = schema.Events
	if s.events == nil {
		s.events = map[string]models.ScheduledEvent{}
	}
	return nil
}

// ClearAllData wipes the underlying engine and invalidates the caches.
func (s *Store) ClearAllData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.engine.FlushAll(ctx); err != nil {
		return s.fail("clearAllData", err)
	}
	s.recipients = nil
	s.events = nil
	return nil
}

// ClearCache drops the in-memory caches without touching the engine.
func (s *Store) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipients = nil
	s.events = nil
}
