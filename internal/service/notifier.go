// internal/service/notifier.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/gurkanbulca/taskapproval/pkg/events"
)

// Notifier is the one-way sink for domain events. Implementations must not retain ev.
type Notifier interface {
	Notify(ctx context.Context, ev events.Event) error
}

// LogNotifier writes every event as a structured log record
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, ev events.Event) error {
	attrs := []slog.Attr{
		slog.String("event", string(ev.Type)),
		slog.String("severity", string(ev.Severity)),
		slog.Time("occurred_at", ev.OccurredAt),
	}
	if ev.TaskID != "" {
		attrs = append(attrs,
			slog.String("task_id", ev.TaskID),
			slog.String("task_title", ev.TaskTitle),
			slog.String("status", ev.Status),
		)
	}
	if ev.ActorID != "" {
		attrs = append(attrs,
			slog.String("actor_id", ev.ActorID),
			slog.String("actor_name", ev.ActorName),
			slog.String("actor_role", ev.ActorRole),
		)
	}
	if ev.IPAddress != "" {
		attrs = append(attrs, slog.String("ip", ev.IPAddress))
	}
	for k, v := range ev.Metadata {
		attrs = append(attrs, slog.String(k, v))
	}

	n.logger.LogAttrs(ctx, severityLevel(ev.Severity), ev.Message, attrs...)
	return nil
}

func severityLevel(s events.Severity) slog.Level {
	switch s {
	case events.SeverityHigh:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// RedisNotifier publishes the JSON encoding of each event on a pub/sub channel
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

func NewRedisNotifier(client *redis.Client, channel string) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel}
}

func (n *RedisNotifier) Notify(ctx context.Context, ev events.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := n.client.Publish(ctx, n.channel, data).Err(); err != nil {
		return fmt.Errorf("publish event to %s: %w", n.channel, err)
	}
	return nil
}

// MultiNotifier fans an event out to every sink and joins their errors
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, ev events.Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
