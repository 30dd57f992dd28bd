package events

import (
	"context"
	"log/slog"
)

// LogSink writes events to structured logs. It is the default sink when no
// external broker is configured and never returns an error.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a LogSink. If logger is nil, the default logger is used.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With(slog.String("component", "event_sink"))}
}

var _ Sink = (*LogSink)(nil)

// Publish implements Sink.Publish
func (s *LogSink) Publish(_ context.Context, topic string, event Event) error {
	s.logger.Info("event published",
		slog.String("topic", topic),
		slog.String("user_id", event.UserID.String()),
		slog.Int64("task_id", event.TaskID),
		slog.String("title", event.Title),
		slog.Time("timestamp", event.Timestamp),
		slog.Any("payload", event.Payload))
	return nil
}
