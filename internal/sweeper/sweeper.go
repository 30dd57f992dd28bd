// Package sweeper runs the background loop that delivers due reminders:
// it marks them sent, emits reminder.due events, and cleans up reminders
// whose task has disappeared.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/mhutchins/tasknest/internal/domain"
	"github.com/mhutchins/tasknest/internal/events"
)

// DefaultInterval is how often the sweeper scans for due reminders.
const DefaultInterval = time.Minute

// ReminderSource is the slice of the reminder store the sweeper needs.
type ReminderSource interface {
	ListDueUnsent(ctx context.Context, before time.Time) ([]*domain.Reminder, error)
	MarkSent(ctx context.Context, id int64, sentAt time.Time) (bool, error)
	DeleteByID(ctx context.Context, id int64) error
}

// TaskSource is the slice of the task store the sweeper needs.
type TaskSource interface {
	Exists(ctx context.Context, id int64) (bool, error)
	GetByID(ctx context.Context, ownerID uuid.UUID, id int64) (*domain.Task, error)
}

// Sweeper periodically scans all owners' unsent reminders. Each due reminder
// is transitioned to sent exactly once and published to the event sink; a
// reminder whose task no longer exists is deleted instead. Errors on one
// reminder never stop the rest of the tick.
type Sweeper struct {
	reminders ReminderSource
	tasks     TaskSource
	sink      events.Sink
	logger    *slog.Logger
	interval  time.Duration
	now       func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	started bool
}

// New creates a Sweeper. A non-positive interval falls back to
// DefaultInterval; a nil sink falls back to a LogSink; a nil logger falls
// back to the default logger.
func New(
	reminders ReminderSource,
	tasks TaskSource,
	sink events.Sink,
	log *slog.Logger,
	interval time.Duration,
) *Sweeper {
	if reminders == nil {
		panic("reminder source cannot be nil")
	}
	if tasks == nil {
		panic("task source cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	if sink == nil {
		sink = events.NewLogSink(log)
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Sweeper{
		reminders: reminders,
		tasks:     tasks,
		sink:      sink,
		logger:    log.With(slog.String("component", "reminder_sweeper")),
		interval:  interval,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Start schedules the sweep on its interval and returns immediately.
// Calling Start on a running sweeper is a no-op.
func (s *Sweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(fmt.Sprintf("@every %s", s.interval), func() {
		if err := s.RunOnce(context.Background()); err != nil {
			s.logger.Error("sweep failed", slog.String("error", err.Error()))
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling sweep: %w", err)
	}

	c.Start()
	s.cron = c
	s.started = true

	s.logger.Info("reminder sweeper started",
		slog.Duration("interval", s.interval))
	return nil
}

// Stop halts the schedule and waits for an in-flight sweep to finish, or for
// ctx to expire. Stopping a sweeper that never started is a no-op.
func (s *Sweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.started = false

	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("reminder sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce performs a single sweep. It returns an error only when the due
// listing itself fails; per-reminder failures are logged and skipped.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	now := s.now()

	due, err := s.reminders.ListDueUnsent(ctx, now)
	if err != nil {
		return fmt.Errorf("listing due reminders: %w", err)
	}

	for _, reminder := range due {
		if err := s.deliver(ctx, reminder, now); err != nil {
			s.logger.Error("reminder delivery failed",
				slog.Int64("reminder_id", reminder.ID),
				slog.Int64("task_id", reminder.TaskID),
				slog.String("error", err.Error()))
		}
	}

	return nil
}

// deliver handles one due reminder: orphan cleanup, the sent transition, and
// the reminder.due event.
func (s *Sweeper) deliver(
	ctx context.Context,
	reminder *domain.Reminder,
	now time.Time,
) error {
	exists, err := s.tasks.Exists(ctx, reminder.TaskID)
	if err != nil {
		return err
	}
	if !exists {
		// The task went away without cascading; self-heal.
		s.logger.Warn("deleting orphaned reminder",
			slog.Int64("reminder_id", reminder.ID),
			slog.Int64("task_id", reminder.TaskID))
		return s.reminders.DeleteByID(ctx, reminder.ID)
	}

	transitioned, err := s.reminders.MarkSent(ctx, reminder.ID, now)
	if err != nil {
		return err
	}
	if !transitioned {
		// Another deliverer won the race; nothing to emit.
		return nil
	}

	task, err := s.tasks.GetByID(ctx, reminder.OwnerID, reminder.TaskID)
	if err != nil {
		return err
	}

	event := events.NewTaskEvent(task, now)
	if task.ReminderMinutes != nil {
		event = event.WithMinutesBefore(*task.ReminderMinutes)
	}

	if err := s.sink.Publish(ctx, events.TopicReminderDue, event); err != nil {
		// The sent flag already flipped; losing the event beats re-sending.
		s.logger.Warn("reminder.due publish failed",
			slog.Int64("reminder_id", reminder.ID),
			slog.String("error", err.Error()))
	}

	return nil
}
