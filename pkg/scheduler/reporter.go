package scheduler

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/dskvich/trigger-telegram-bot/pkg/domain"
	"github.com/dskvich/trigger-telegram-bot/pkg/logger"
)

type EventKind string

const (
	EventFired     EventKind = "fired"
	EventFailed    EventKind = "failed"
	EventRetrying  EventKind = "retrying"
	EventCancelled EventKind = "cancelled"
	EventDropped   EventKind = "dropped"
)

// Reporter receives every terminal or retry transition of a delivery.
type Reporter interface {
	Report(ctx context.Context, kind EventKind, delivery domain.ScheduledDelivery, err error)
}

type Stats struct {
	Fired     int64 `json:"fired"`
	Failed    int64 `json:"failed"`
	Retried   int64 `json:"retried"`
	Cancelled int64 `json:"cancelled"`
	Dropped   int64 `json:"dropped"`
}

// LogReporter logs delivery events and counts them.
type LogReporter struct {
	fired     atomic.Int64
	failed    atomic.Int64
	retried   atomic.Int64
	cancelled atomic.Int64
	dropped   atomic.Int64
}

func NewLogReporter() *LogReporter {
	return &LogReporter{}
}

func (r *LogReporter) Report(ctx context.Context, kind EventKind, d domain.ScheduledDelivery, err error) {
	attrs := []any{"taskID", d.TaskID, "chatID", d.ChatID, "key", d.Key, "attempts", d.Attempts}

	switch kind {
	case EventFired:
		r.fired.Add(1)
		slog.InfoContext(ctx, "Delayed response delivered", attrs...)
	case EventFailed:
		r.failed.Add(1)
		slog.ErrorContext(ctx, "Delayed response delivery failed", append(attrs, logger.Err(err))...)
	case EventRetrying:
		r.retried.Add(1)
		slog.WarnContext(ctx, "Delayed response delivery failed, retrying", append(attrs, "fireAt", d.FireAt, logger.Err(err))...)
	case EventCancelled:
		r.cancelled.Add(1)
		slog.InfoContext(ctx, "Delayed response cancelled", attrs...)
	case EventDropped:
		r.dropped.Add(1)
		slog.WarnContext(ctx, "Delayed response dropped on shutdown", append(attrs, "fireAt", d.FireAt)...)
	}
}

func (r *LogReporter) Stats() Stats {
	return Stats{
		Fired:     r.fired.Load(),
		Failed:    r.failed.Load(),
		Retried:   r.retried.Load(),
		Cancelled: r.cancelled.Load(),
		Dropped:   r.dropped.Load(),
	}
}
