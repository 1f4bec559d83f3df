package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pvasek/taskhub/internal/domain"
	"github.com/pvasek/taskhub/internal/events"
	"github.com/pvasek/taskhub/internal/store"
)

// DispatcherConfig holds configuration for the notification dispatcher.
type DispatcherConfig struct {
	// Workers bounds how many email sends run concurrently.
	// If zero or negative, defaults to 4.
	Workers int

	// EmailTimeout bounds a single gateway call. A slow mail provider must
	// never stall the rest of the batch. If zero, defaults to 10 seconds.
	EmailTimeout time.Duration

	// BaseURL is prefixed to notification links (e.g. "https://app.example.com").
	BaseURL string
}

// DefaultDispatcherConfig returns a DispatcherConfig with reasonable defaults.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		Workers:      4,
		EmailTimeout: 10 * time.Second,
	}
}

// RecipientFailure records why a single recipient could not be served.
type RecipientFailure struct {
	RecipientID uuid.UUID
	Reason      string
}

// DispatchResult summarizes a fan-out. It is a value, not an error: the
// triggering operation already succeeded, so partial delivery is surfaced
// as a warning, never as a failure of the caller's action.
type DispatchResult struct {
	// Delivered counts recipients whose in-app record was durably persisted.
	Delivered int

	// ResolutionFailed lists recipients whose profile could not be resolved;
	// they received nothing.
	ResolutionFailed []RecipientFailure

	// InAppFailed lists recipients whose notification record failed to persist.
	InAppFailed []RecipientFailure

	// EmailFailed lists recipients whose in-app record persisted but whose
	// email could not be delivered.
	EmailFailed []RecipientFailure
}

// Partial reports whether any recipient was not fully served.
func (r DispatchResult) Partial() bool {
	return len(r.ResolutionFailed) > 0 || len(r.InAppFailed) > 0 || len(r.EmailFailed) > 0
}

// Dispatcher fans a domain event out to its recipients: one in-app record
// per recipient plus a best-effort email. It implements events.EventHandler
// so services can stay unaware of delivery mechanics.
type Dispatcher struct {
	directory     store.UserDirectory
	notifications store.NotificationStore
	email         EmailSender
	config        DispatcherConfig
	logger        *slog.Logger
	wg            sync.WaitGroup
}

// NewDispatcher creates a new Dispatcher.
// The email sender may be nil, in which case only in-app records are written.
func NewDispatcher(
	directory store.UserDirectory,
	notifications store.NotificationStore,
	email EmailSender,
	config DispatcherConfig,
	logger *slog.Logger,
) (*Dispatcher, error) {
	if directory == nil {
		return nil, domain.NewValidationError("directory", "cannot be nil", domain.ErrValidation)
	}
	if notifications == nil {
		return nil, domain.NewValidationError("notifications", "cannot be nil", domain.ErrValidation)
	}

	if config.Workers <= 0 {
		config.Workers = 4
	}
	if config.EmailTimeout <= 0 {
		config.EmailTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		directory:     directory,
		notifications: notifications,
		email:         email,
		config:        config,
		logger:        logger.With(slog.String("component", "notification_dispatcher")),
	}, nil
}

// HandleEvent implements events.EventHandler. Dispatch runs in the
// background on a context detached from the caller: the triggering request
// may be cancelled the moment its transition commits, and delivery must
// still run to completion. Failures are logged, not retried.
func (d *Dispatcher) HandleEvent(ctx context.Context, event *events.TaskEvent) error {
	detached := context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		result := d.Dispatch(detached, event)
		if result.Partial() {
			d.logger.Warn("event dispatched with partial failures",
				"event_id", event.ID,
				"event_kind", event.Kind,
				"delivered", result.Delivered,
				"resolution_failed", len(result.ResolutionFailed),
				"in_app_failed", len(result.InAppFailed),
				"email_failed", len(result.EmailFailed))
		}
	}()

	return nil
}

// Wait blocks until all background dispatches have completed.
// Used during shutdown and by tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Dispatch synchronously fans the event out to its recipients and returns
// the delivery summary. The triggering actor is always excluded.
func (d *Dispatcher) Dispatch(ctx context.Context, event *events.TaskEvent) DispatchResult {
	var result DispatchResult

	kind, ok := notificationKindFor(event.Kind)
	if !ok {
		d.logger.Error("event kind has no notification mapping, dropping",
			"event_id", event.ID, "event_kind", event.Kind)
		return result
	}

	eventsDispatched.WithLabelValues(string(event.Kind)).Inc()

	recipients := dedupe(event.Recipients, event.TriggeredBy.ID)
	if len(recipients) == 0 {
		return result
	}

	profiles, err := d.directory.GetUsersByIDs(ctx, recipients)
	if err != nil {
		// The whole lookup failed; every recipient is a resolution failure,
		// but the batch itself is still a completed (empty) dispatch.
		d.logger.Error("recipient resolution failed for event",
			"event_id", event.ID, "error", err)
		for _, id := range recipients {
			result.ResolutionFailed = append(result.ResolutionFailed, RecipientFailure{
				RecipientID: id,
				Reason:      fmt.Sprintf("directory lookup failed: %v", err),
			})
			deliveryFailures.WithLabelValues(stageResolution).Inc()
		}
		return result
	}

	profileByID := make(map[uuid.UUID]domain.UserProfile, len(profiles))
	for _, p := range profiles {
		profileByID[p.ID] = p
	}

	link := d.taskLink(event.Task.ID)

	// Build one record per resolvable recipient. A missing profile isolates
	// to that recipient; the rest of the batch is unaffected.
	var records []*domain.NotificationRecord
	recordProfiles := make(map[uuid.UUID]domain.UserProfile)
	for _, id := range recipients {
		profile, ok := profileByID[id]
		if !ok {
			result.ResolutionFailed = append(result.ResolutionFailed, RecipientFailure{
				RecipientID: id,
				Reason:      "no profile for recipient",
			})
			deliveryFailures.WithLabelValues(stageResolution).Inc()
			continue
		}

		message := renderMessage(event, event.IsMentioned(id))
		record, err := domain.NewNotificationRecord(
			id, kind, message, link, event.Task.ID, event.TriggeredBy.ID,
		)
		if err != nil {
			result.InAppFailed = append(result.InAppFailed, RecipientFailure{
				RecipientID: id,
				Reason:      err.Error(),
			})
			deliveryFailures.WithLabelValues(stagePersist).Inc()
			continue
		}

		records = append(records, record)
		recordProfiles[record.ID] = profile
	}

	if len(records) == 0 {
		return result
	}

	inserted, err := d.notifications.InsertMany(ctx, records)
	if err != nil {
		d.logger.Error("notification batch could not be attempted",
			"event_id", event.ID, "error", err)
		for _, record := range records {
			result.InAppFailed = append(result.InAppFailed, RecipientFailure{
				RecipientID: record.RecipientID,
				Reason:      fmt.Sprintf("insert failed: %v", err),
			})
			deliveryFailures.WithLabelValues(stagePersist).Inc()
		}
		return result
	}

	// Email only the recipients whose in-app record is durable. The record
	// is the source of truth; email failures never roll it back.
	var persisted []*domain.NotificationRecord
	for i, res := range inserted {
		if !res.Ok() {
			result.InAppFailed = append(result.InAppFailed, RecipientFailure{
				RecipientID: res.RecipientID,
				Reason:      res.Err.Error(),
			})
			deliveryFailures.WithLabelValues(stagePersist).Inc()
			continue
		}
		result.Delivered++
		recordsDelivered.Inc()
		persisted = append(persisted, records[i])
	}

	result.EmailFailed = d.sendEmails(ctx, event, persisted, recordProfiles)

	return result
}

// sendEmails delivers one email per persisted record under a bounded worker
// pool. Recipients without an email address are simply in-app only.
func (d *Dispatcher) sendEmails(
	ctx context.Context,
	event *events.TaskEvent,
	records []*domain.NotificationRecord,
	profiles map[uuid.UUID]domain.UserProfile,
) []RecipientFailure {
	if d.email == nil {
		return nil
	}

	var (
		mu       sync.Mutex
		failures []RecipientFailure
		wg       sync.WaitGroup
	)

	sem := make(chan struct{}, d.config.Workers)

	for _, record := range records {
		profile := profiles[record.ID]
		if profile.Email == "" {
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(record *domain.NotificationRecord, profile domain.UserProfile) {
			defer wg.Done()
			defer func() { <-sem }()

			sendCtx, cancel := context.WithTimeout(ctx, d.config.EmailTimeout)
			defer cancel()

			msg := renderEmail(event, profile, record.Message, record.Link)
			if err := d.email.Send(sendCtx, msg); err != nil {
				d.logger.Warn("email delivery failed",
					"event_id", event.ID,
					"recipient_id", record.RecipientID,
					"error", err)
				deliveryFailures.WithLabelValues(stageEmail).Inc()

				mu.Lock()
				failures = append(failures, RecipientFailure{
					RecipientID: record.RecipientID,
					Reason:      err.Error(),
				})
				mu.Unlock()
				return
			}
			emailsSent.Inc()
		}(record, profile)
	}

	wg.Wait()
	return failures
}

// taskLink builds the in-app link stored on every record for this task.
func (d *Dispatcher) taskLink(taskID uuid.UUID) string {
	return fmt.Sprintf("%s/tasks/%s", d.config.BaseURL, taskID)
}

// dedupe returns the recipient set minus the excluded ID, without duplicates.
func dedupe(ids []uuid.UUID, exclude uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == exclude || id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
