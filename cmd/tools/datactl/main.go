// cmd/tools/datactl/main.go
//
// datactl is the operational companion to the scheduler daemon: it
// manages recipients, inspects and mutates events, builds messaging
// deep links, and moves whole-store backups in and out.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"playa-scheduler/internal/common/config"
	"playa-scheduler/internal/common/database"
	"playa-scheduler/internal/common/logger"
	"playa-scheduler/internal/models"
	"playa-scheduler/internal/services/deeplink"
	"playa-scheduler/internal/services/notification"
	"playa-scheduler/internal/services/scheduling"
	"playa-scheduler/internal/services/storage"
	"playa-scheduler/internal/stores"
)

type app struct {
	store          *storage.Store
	recipientStore *stores.RecipientStore
	eventStore     *stores.EventStore
}

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("config load failed: %v", err)
	}
	log := logger.NewNoOpLogger()

	engine, err := database.NewRedis(cfg.Redis)
	if err != nil {
		fatal("redis init failed: %v", err)
	}
	defer engine.Close()

	ctx := context.Background()
	if err := engine.Ping(ctx); err != nil {
		fatal("redis unreachable: %v", err)
	}

	store := storage.New(engine, log)
	scheduler := scheduling.NewService(store, log)
	notifier := notification.NewLocalScheduler(engine, log)
	a := &app{
		store:          store,
		recipientStore: stores.NewRecipientStore(store, scheduler, notifier, log),
		eventStore:     stores.NewEventStore(store, notifier, log),
	}

	switch os.Args[1] {
	case "add-recipient":
		err = a.addRecipient(ctx, os.Args[2:])
	case "list-recipients":
		err = a.listRecipients(ctx)
	case "delete-recipient":
		err = a.deleteRecipient(ctx, os.Args[2:])
	case "list-events":
		err = a.listEvents(ctx, os.Args[2:])
	case "mark-sent":
		err = a.markSent(ctx, os.Args[2:])
	case "cancel-event":
		err = a.cancelEvent(ctx, os.Args[2:])
	case "link":
		err = a.link(ctx, os.Args[2:])
	case "export":
		err = a.export(ctx, os.Args[2:])
	case "import":
		err = a.importData(ctx, os.Args[2:])
	case "clear":
		err = a.clear(ctx)
	default:
		help()
		os.Exit(1)
	}

	if err != nil {
		fatal("%v", err)
	}
}

func (a *app) addRecipient(ctx context.Context, args []string) error {
	cmd := flag.NewFlagSet("add-recipient", flag.ExitOnError)
	name := cmd.String("name", "", "Display name")
	platform := cmd.String("platform", "", "Platform (whatsapp, sms, instagram)")
	identifier := cmd.String("identifier", "", "Phone number or username")
	mode := cmd.String("mode", "random", "Schedule mode (random, fixed)")
	frequency := cmd.Int("frequency", 1, "Messages per day (random mode)")
	times := cmd.String("times", "", "Comma-separated HH:MM times (fixed mode)")
	messages := cmd.String("messages", "", "Comma-separated message templates")
	cmd.Parse(args)

	var scheduleConfig models.ScheduleConfig
	switch *mode {
	case "random":
		scheduleConfig = models.RandomSchedule{Frequency: *frequency}
	case "fixed":
		scheduleConfig = models.FixedSchedule{FixedTimes: splitList(*times)}
	default:
		return fmt.Errorf("unknown schedule mode %q", *mode)
	}

	recipient, fieldErrs, err := a.recipientStore.AddRecipient(ctx, stores.RecipientFormData{
		Name:           *name,
		Platform:       models.Platform(*platform),
		Identifier:     *identifier,
		ScheduleConfig: scheduleConfig,
		MessagePool:    splitList(*messages),
	})
	if err != nil {
		return err
	}
	if len(fieldErrs) > 0 {
		for field, msg := range fieldErrs {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", field, msg)
		}
		return fmt.Errorf("recipient rejected")
	}
	fmt.Printf("Added recipient %s\n", recipient.ID)
	return nil
}

func (a *app) listRecipients(ctx context.Context) error {
	recipients, err := a.recipientStore.GetAllRecipients(ctx)
	if err != nil {
		return err
	}
	for _, r := range recipients {
		state := "active"
		if !r.IsActive {
			state = "paused"
		}
		fmt.Printf("%s  %-10s %-20s %s (%d messages, %s)\n",
			r.ID, r.Platform, r.Name, r.Identifier, len(r.MessagePool), state)
	}
	return nil
}

func (a *app) deleteRecipient(ctx context.Context, args []string) error {
	cmd := flag.NewFlagSet("delete-recipient", flag.ExitOnError)
	id := cmd.String("id", "", "Recipient id")
	cmd.Parse(args)
	if *id == "" {
		return fmt.Errorf("id is required")
	}
	if err := a.recipientStore.DeleteRecipient(ctx, *id); err != nil {
		return err
	}
	fmt.Printf("Deleted recipient %s and its events\n", *id)
	return nil
}

func (a *app) listEvents(ctx context.Context, args []string) error {
	cmd := flag.NewFlagSet("list-events", flag.ExitOnError)
	day := cmd.String("day", "", "Calendar day (2006-01-02), empty for all")
	cmd.Parse(args)

	var events []models.ScheduledEvent
	var err error
	if *day != "" {
		events, err = a.eventStore.GetEventsByDate(ctx, *day)
	} else {
		events, err = a.eventStore.GetAllEvents(ctx)
	}
	if err != nil {
		return err
	}
	for _, e := range events {
		fmt.Printf("%s  %-9s %s  %-20s %q\n", e.ID, e.Status, e.ScheduledTime, e.RecipientName, e.Message)
	}
	return nil
}

func (a *app) markSent(ctx context.Context, args []string) error {
	cmd := flag.NewFlagSet("mark-sent", flag.ExitOnError)
	id := cmd.String("id", "", "Event id")
	cmd.Parse(args)
	if *id == "" {
		return fmt.Errorf("id is required")
	}
	event, err := a.eventStore.MarkSent(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Printf("Event %s is now %s (executed at %s)\n", event.ID, event.Status, event.ExecutedAt)
	return nil
}

func (a *app) cancelEvent(ctx context.Context, args []string) error {
	cmd := flag.NewFlagSet("cancel-event", flag.ExitOnError)
	id := cmd.String("id", "", "Event id")
	cmd.Parse(args)
	if *id == "" {
		return fmt.Errorf("id is required")
	}
	if err := a.eventStore.DeleteEvent(ctx, *id); err != nil {
		return err
	}
	fmt.Printf("Event %s cancelled\n", *id)
	return nil
}

func (a *app) link(ctx context.Context, args []string) error {
	cmd := flag.NewFlagSet("link", flag.ExitOnError)
	id := cmd.String("id", "", "Event id")
	cmd.Parse(args)
	if *id == "" {
		return fmt.Errorf("id is required")
	}
	event, err := a.eventStore.GetEvent(ctx, *id)
	if err != nil {
		return err
	}
	if event == nil {
		return fmt.Errorf("event %s not found", *id)
	}
	url, err := deeplink.ConstructDeepLink(*event)
	if err != nil {
		return err
	}
	fmt.Println(url)
	return nil
}

func (a *app) export(ctx context.Context, args []string) error {
	cmd := flag.NewFlagSet("export", flag.ExitOnError)
	out := cmd.String("out", "", "Output file, stdout when empty")
	cmd.Parse(args)

	data, err := a.store.ExportData(ctx)
	if err != nil {
		return err
	}
	if *out == "" {
		fmt.Println(data)
		return nil
	}
	if err := os.WriteFile(*out, []byte(data), 0o644); err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", *out)
	return nil
}

func (a *app) importData(ctx context.Context, args []string) error {
	cmd := flag.NewFlagSet("import", flag.ExitOnError)
	in := cmd.String("in", "", "Backup file to import")
	cmd.Parse(args)
	if *in == "" {
		return fmt.Errorf("in is required")
	}
	data, err := os.ReadFile(*in)
	if err != nil {
		return err
	}
	if !json.Valid(data) {
		return fmt.Errorf("%s is not valid JSON", *in)
	}
	if err := a.store.ImportData(ctx, string(data)); err != nil {
		return err
	}
	fmt.Printf("Imported %s\n", *in)
	return nil
}

func (a *app) clear(ctx context.Context) error {
	if err := a.store.ClearAllData(ctx); err != nil {
		return err
	}
	fmt.Println("All data cleared")
	return nil
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func help() {
	fmt.Println(`Usage: datactl <command> [flags]

Commands:
  add-recipient     Create a recipient (-name -platform -identifier -mode -frequency -times -messages)
  list-recipients   List all recipients
  delete-recipient  Delete a recipient and all its events (-id)
  list-events       List events, optionally for one day (-day)
  mark-sent         Mark an event as sent (-id)
  cancel-event      Cancel a pending event (-id)
  link              Print the messaging deep link for an event (-id)
  export            Export all data as JSON (-out)
  import            Replace all data from a JSON backup (-in)
  clear             Wipe all stored data`)
}
