// Package worker performs the state change a gateway command asked for,
// outside the interaction response deadline.
package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"discord-ecs-control/internal/models"
	"discord-ecs-control/internal/orchestration"
)

var (
	ErrMissingServiceConfig = errors.New("missing ECS configuration")
	ErrTaskDefinitionUnset  = errors.New("task definition not configured")
	ErrUnknownAction        = errors.New("unknown action")
)

// Orchestrator applies a desired state to the game server service.
type Orchestrator interface {
	SetDesiredState(ctx context.Context, state orchestration.DesiredState) error
}

type Config struct {
	Cluster         string
	Service         string
	TaskDefinitions map[models.Size]string
}

// TaskDefinition resolves a raw size to its configured task definition.
func (c Config) TaskDefinition(size string) (string, error) {
	tier := models.ParseSize(size)
	td := c.TaskDefinitions[tier]
	if td == "" {
		return "", fmt.Errorf("%w: %s", ErrTaskDefinitionUnset, tier)
	}
	return td, nil
}

type Worker struct {
	config       Config
	orchestrator Orchestrator
	logger       *slog.Logger
}

func New(config Config, orchestrator Orchestrator, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Worker{config: config, orchestrator: orchestrator, logger: logger}
}

// Run executes one payload. Failures are reported in the result and are
// never retried here.
func (w *Worker) Run(ctx context.Context, payload models.WorkerPayload) models.WorkerResult {
	logger := w.logger.With(
		"request_id", payload.RequestID,
		"action", string(payload.Action),
		"size", payload.Size,
	)

	if err := w.run(ctx, payload); err != nil {
		logger.Error("worker failed", "error", err)
		return models.WorkerResult{OK: false, Error: resultMessage(err)}
	}
	logger.Info("desired state updated")
	return models.WorkerResult{OK: true}
}

func (w *Worker) run(ctx context.Context, payload models.WorkerPayload) error {
	if w.config.Cluster == "" || w.config.Service == "" {
		return ErrMissingServiceConfig
	}

	state := orchestration.DesiredState{
		Cluster: w.config.Cluster,
		Service: w.config.Service,
	}

	switch payload.Action {
	case models.ActionStart:
		td, err := w.config.TaskDefinition(payload.Size)
		if err != nil {
			return err
		}
		state.DesiredCount = 1
		state.TaskDefinition = td
	case models.ActionStop:
		state.DesiredCount = 0
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, payload.Action)
	}

	return w.orchestrator.SetDesiredState(ctx, state)
}

// resultMessage keeps orchestration error detail out of the result; the
// full error is in the log line.
func resultMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingServiceConfig):
		return ErrMissingServiceConfig.Error()
	case errors.Is(err, ErrTaskDefinitionUnset):
		return err.Error()
	case errors.Is(err, ErrUnknownAction):
		return ErrUnknownAction.Error()
	default:
		return "worker failed"
	}
}
