package notification

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playa-scheduler/internal/common/database"
	"playa-scheduler/internal/common/logger"
	"playa-scheduler/internal/models"
)

func createTestScheduler(t *testing.T) (*LocalScheduler, *database.RedisClient) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	engine := database.NewRedisFromClient(client)
	return NewLocalScheduler(engine, logger.NewTestLogger(t)), engine
}

func TestLocalScheduler_ScheduleNotifications(t *testing.T) {
	scheduler, engine := createTestScheduler(t)
	ctx := context.Background()

	recipient := models.Recipient{ID: "r-1", Name: "Maya"}
	events := []models.ScheduledEvent{
		{ID: "e-1", RecipientID: "r-1", Message: "hello", ScheduledTime: "2026-09-01T10:00:00Z"},
		{ID: "e-2", RecipientID: "ghost", Message: "never", ScheduledTime: "2026-09-01T11:00:00Z"},
	}

	handles := scheduler.ScheduleNotifications(ctx, events, map[string]models.Recipient{"r-1": recipient})

	require.Len(t, handles, 1)
	handle, exists := handles["e-1"]
	require.True(t, exists, "events without a known recipient are skipped")

	record, err := engine.Get(ctx, reminderKeyPrefix+handle)
	require.NoError(t, err)
	assert.Contains(t, record, `"eventId":"e-1"`)
	assert.Contains(t, record, "Message for Maya")
}

func TestLocalScheduler_CancelNotification(t *testing.T) {
	scheduler, engine := createTestScheduler(t)
	ctx := context.Background()

	recipient := models.Recipient{ID: "r-1", Name: "Maya"}
	handles := scheduler.ScheduleNotifications(ctx, []models.ScheduledEvent{
		{ID: "e-1", RecipientID: "r-1", Message: "hello"},
	}, map[string]models.Recipient{"r-1": recipient})
	handle := handles["e-1"]

	require.NoError(t, scheduler.CancelNotification(ctx, handle))

	_, err := engine.Get(ctx, reminderKeyPrefix+handle)
	assert.ErrorIs(t, err, database.ErrKeyNotFound)
}

func TestMessagePreview(t *testing.T) {
	assert.Equal(t, "short", messagePreview("short"))

	long := strings.Repeat("a", 150)
	preview := messagePreview(long)
	assert.Len(t, preview, 103)
	assert.True(t, strings.HasSuffix(preview, "..."))
}
