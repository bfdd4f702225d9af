// internal/services/background/background.go
package background

import (
	"context"
	"time"

	"playa-scheduler/internal/common/logger"
	"playa-scheduler/internal/common/metrics"
	"playa-scheduler/internal/models"
	"playa-scheduler/internal/services/notification"
	"playa-scheduler/internal/services/scheduling"
	"playa-scheduler/internal/services/storage"
)

// Generator runs the once-per-day event generation routine. The
// lastGenerationDate stamp is what makes repeated invocations on the
// same day a no-op; de-duplication below it makes even a concurrent
// double run safe.
type Generator struct {
	store     *storage.Store
	scheduler *scheduling.Service
	notifier  notification.Scheduler
	log       logger.Logger
}

func NewGenerator(store *storage.Store, scheduler *scheduling.Service, notifier notification.Scheduler, log logger.Logger) *Generator {
	return &Generator{
		store:     store,
		scheduler: scheduler,
		notifier:  notifier,
		log:       log.WithFields(map[string]interface{}{"component": "generator"}),
	}
}

// CheckAndGenerate generates today's events if they have not been
// generated yet. Returns the number of events created (0 when the day
// was already stamped).
func (g *Generator) CheckAndGenerate(ctx context.Context) (int, error) {
	today := time.Now().Format(storage.DateLayout)

	if g.store.GetLastGenerationDate(ctx) == today {
		g.log.Debug("generation already ran today", map[string]interface{}{"day": today})
		return 0, nil
	}

	events, err := g.scheduler.GenerateDailyEvents(ctx, today)
	if err != nil {
		metrics.GenerationRuns.WithLabelValues("error").Inc()
		return 0, err
	}

	if len(events) > 0 {
		recipients, err := g.store.GetAllRecipients(ctx)
		if err != nil {
			metrics.GenerationRuns.WithLabelValues("error").Inc()
			return 0, err
		}
		byID := make(map[string]models.Recipient, len(recipients))
		for _, r := range recipients {
			byID[r.ID] = r
		}

		handles := g.notifier.ScheduleNotifications(ctx, events, byID)
		for i := range events {
			if handle, exists := handles[events[i].ID]; exists {
				events[i].NotificationID = handle
			}
		}

		if err := g.store.SaveEvents(ctx, events); err != nil {
			metrics.GenerationRuns.WithLabelValues("error").Inc()
			return 0, err
		}
	}

	if err := g.store.SetLastGenerationDate(ctx, today); err != nil {
		metrics.GenerationRuns.WithLabelValues("error").Inc()
		return 0, err
	}

	metrics.GenerationRuns.WithLabelValues("success").Inc()
	g.log.Info("daily generation complete", map[string]interface{}{
		"day":    today,
		"events": len(events),
	})
	return len(events), nil
}

// Runner drives the generator on a fixed interval so a process that
// stays up across midnight picks up the new day without restarting.
type Runner struct {
	generator *Generator
	interval  time.Duration
	log       logger.Logger
}

func NewRunner(generator *Generator, interval time.Duration, log logger.Logger) *Runner {
	return &Runner{
		generator: generator,
		interval:  interval,
		log:       log.WithFields(map[string]interface{}{"component": "runner"}),
	}
}

// Start blocks until ctx is cancelled, running one generation check
// immediately and then one per tick. Generation errors are logged and
// the loop keeps going.
func (r *Runner) Start(ctx context.Context) {
	r.log.Info("background runner started", map[string]interface{}{
		"interval": r.interval.String(),
	})

	r.runOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("background runner stopped", nil)
			return
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	if _, err := r.generator.CheckAndGenerate(ctx); err != nil {
		r.log.Error("generation check failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
