// Package notify reports ECS task state changes of the game server to a
// Discord channel.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"discord-ecs-control/internal/models"
)

// Sink delivers a rendered message somewhere.
type Sink interface {
	Name() string
	Send(ctx context.Context, content string) error
}

type Config struct {
	NotifyOnRunning bool
	NotifyOnStopped bool
	// Label names the workload in message headers.
	Label string
}

type Notifier struct {
	config Config
	sinks  []Sink
	logger *slog.Logger
}

// New builds a notifier delivering to every sink in order; the first
// failure aborts delivery and is returned.
func New(config Config, logger *slog.Logger, sinks ...Sink) *Notifier {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.Label == "" {
		config.Label = "Minecraft server"
	}
	return &Notifier{config: config, sinks: sinks, logger: logger}
}

// Handle processes one EventBridge event. Events that are not reported
// yield Ignored. A delivery failure is returned so the platform can retry
// the invocation.
func (n *Notifier) Handle(ctx context.Context, event models.TaskStateChangeEvent) (models.NotifyResult, error) {
	if event.DetailType != models.DetailTypeTaskStateChange {
		n.logger.Info("ignore event (detail-type mismatch)", "detail_type", event.DetailType)
		return models.NotifyResult{Ignored: true}, nil
	}

	status := event.Detail.LastStatus
	switch status {
	case models.StatusRunning:
		if !n.config.NotifyOnRunning {
			return models.NotifyResult{Ignored: true}, nil
		}
	case models.StatusStopped:
		if !n.config.NotifyOnStopped {
			return models.NotifyResult{Ignored: true}, nil
		}
	default:
		n.logger.Info("ignore status", "status", status)
		return models.NotifyResult{Ignored: true}, nil
	}

	message := BuildMessage(n.config.Label, event)
	n.logger.Info("posting task state notification",
		"status", status,
		"group", event.Detail.Group,
		"task_arn", event.Detail.TaskArn,
	)

	for _, sink := range n.sinks {
		if err := sink.Send(ctx, message); err != nil {
			n.logFailure(sink.Name(), err)
			return models.NotifyResult{}, err
		}
	}
	return models.NotifyResult{OK: true}, nil
}

func (n *Notifier) logFailure(sink string, err error) {
	attrs := []any{
		"sink", sink,
		"message", err.Error(),
		"kind", fmt.Sprintf("%T", rootCause(err)),
	}
	var webhookErr *WebhookError
	if errors.As(err, &webhookErr) {
		attrs = append(attrs, "status", webhookErr.StatusCode, "body", webhookErr.Body)
	}
	n.logger.Error("error in ECS task notify handler", attrs...)
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
