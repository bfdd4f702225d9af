package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playa-scheduler/internal/common/database"
	"playa-scheduler/internal/common/logger"
	"playa-scheduler/internal/models"
	"playa-scheduler/internal/services/storage"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestService(t *testing.T) (*Service, *storage.Store) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := storage.New(database.NewRedisFromClient(client), logger.NewTestLogger(t))
	return NewService(store, logger.NewTestLogger(t)), store
}

func createActiveRecipient(id string, cfg models.ScheduleConfig) models.Recipient {
	return models.Recipient{
		ID:             id,
		Name:           "Maya",
		Platform:       models.PlatformWhatsApp,
		Identifier:     "+14155550100",
		ScheduleConfig: cfg,
		MessagePool:    []string{"hello", "hi", "hey"},
		IsActive:       true,
	}
}

// ==========================
// Random Time Tests
// ==========================

func TestGenerateRandomTimes_Properties(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.Local)

	for freq := models.MinFrequency; freq <= models.MaxFrequency; freq++ {
		times, err := GenerateRandomTimes(freq, day)
		require.NoError(t, err)
		require.Len(t, times, freq)

		seen := map[int64]struct{}{}
		for i, tm := range times {
			assert.Equal(t, day.Day(), tm.Day())
			assert.GreaterOrEqual(t, tm.Hour(), ScheduleStartHour)
			assert.Less(t, tm.Hour(), ScheduleEndHour)
			assert.Zero(t, tm.Second())

			if i > 0 {
				assert.True(t, times[i-1].Before(tm), "times must be ascending")
			}
			seen[tm.Unix()] = struct{}{}
		}
		assert.Len(t, seen, freq, "times must be distinct")
	}
}

func TestGenerateRandomTimes_FrequencyBounds(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.Local)

	_, err := GenerateRandomTimes(0, day)
	assert.Error(t, err)

	_, err = GenerateRandomTimes(models.MaxFrequency+1, day)
	assert.Error(t, err)
}

// ==========================
// Per-Recipient Generation Tests
// ==========================

func TestGenerateEventsForRecipient_Random(t *testing.T) {
	recipient := createActiveRecipient("r-1", models.RandomSchedule{Frequency: 4})
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.Local)

	events, err := GenerateEventsForRecipient(recipient, day)
	require.NoError(t, err)
	require.Len(t, events, 4)

	for _, e := range events {
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, "r-1", e.RecipientID)
		assert.Equal(t, recipient.Platform, e.Platform)
		assert.Equal(t, models.StatusPending, e.Status)
		assert.Contains(t, recipient.MessagePool, e.Message)

		scheduled, err := time.Parse(time.RFC3339, e.ScheduledTime)
		require.NoError(t, err)
		assert.Equal(t, "2026-09-01", scheduled.Format(storage.DateLayout))
	}
}

func TestGenerateEventsForRecipient_FixedKeepsOrder(t *testing.T) {
	recipient := createActiveRecipient("r-1", models.FixedSchedule{
		FixedTimes: []string{"18:30", "09:00"},
	})
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.Local)

	events, err := GenerateEventsForRecipient(recipient, day)
	require.NoError(t, err)
	require.Len(t, events, 2)

	first, _ := time.Parse(time.RFC3339, events[0].ScheduledTime)
	second, _ := time.Parse(time.RFC3339, events[1].ScheduledTime)
	assert.Equal(t, 18, first.Hour())
	assert.Equal(t, 9, second.Hour())
}

func TestGenerateEventsForRecipient_SkipsInactiveAndEmpty(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.Local)

	inactive := createActiveRecipient("r-1", models.RandomSchedule{Frequency: 2})
	inactive.IsActive = false
	events, err := GenerateEventsForRecipient(inactive, day)
	require.NoError(t, err)
	assert.Empty(t, events)

	empty := createActiveRecipient("r-2", models.RandomSchedule{Frequency: 2})
	empty.MessagePool = nil
	events, err = GenerateEventsForRecipient(empty, day)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestGenerateEventsForRecipient_MalformedFixedTime(t *testing.T) {
	recipient := createActiveRecipient("r-1", models.FixedSchedule{
		FixedTimes: []string{"25:99"},
	})
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.Local)

	_, err := GenerateEventsForRecipient(recipient, day)
	assert.Error(t, err)
}

func TestCanGenerateEvents(t *testing.T) {
	recipient := createActiveRecipient("r-1", models.RandomSchedule{Frequency: 2})
	assert.True(t, CanGenerateEvents(recipient))

	recipient.IsActive = false
	assert.False(t, CanGenerateEvents(recipient))

	recipient.IsActive = true
	recipient.MessagePool = nil
	assert.False(t, CanGenerateEvents(recipient))

	recipient.MessagePool = []string{"hi"}
	recipient.ScheduleConfig = models.RandomSchedule{Frequency: 0}
	assert.False(t, CanGenerateEvents(recipient))
}

// ==========================
// De-duplication Tests
// ==========================

func TestGenerateEventsForRecipientDedup_SkipsOccupiedSlots(t *testing.T) {
	svc, store := createTestService(t)
	ctx := context.Background()

	recipient := createActiveRecipient("r-1", models.FixedSchedule{
		FixedTimes: []string{"09:00", "18:00"},
	})
	day := time.Now().Format(storage.DateLayout)

	first, err := svc.GenerateEventsForRecipientDedup(ctx, recipient, day)
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NoError(t, store.SaveEvents(ctx, first))

	// The same slots are now occupied, so a second run yields nothing.
	second, err := svc.GenerateEventsForRecipientDedup(ctx, recipient, day)
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestGenerateDailyEvents_SkipsInactiveRecipients(t *testing.T) {
	svc, store := createTestService(t)
	ctx := context.Background()

	active := createActiveRecipient("r-1", models.FixedSchedule{FixedTimes: []string{"10:00"}})
	paused := createActiveRecipient("r-2", models.FixedSchedule{FixedTimes: []string{"11:00"}})
	paused.IsActive = false
	require.NoError(t, store.SaveRecipient(ctx, active))
	require.NoError(t, store.SaveRecipient(ctx, paused))

	day := time.Now().Format(storage.DateLayout)
	events, err := svc.GenerateDailyEvents(ctx, day)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "r-1", events[0].RecipientID)
}
