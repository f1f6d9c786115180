package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"discord-ecs-control/internal/models"
	"discord-ecs-control/internal/worker"
)

// messageReader is satisfied by queue.Consumer.
type messageReader interface {
	Read(ctx context.Context) ([]byte, func(context.Context) error, error)
}

type payloadRunner interface {
	Run(ctx context.Context, payload models.WorkerPayload) models.WorkerResult
}

// consume reads until ctx is cancelled. Read errors back off and retry the
// read; they never end the loop while ctx is live.
func consume(ctx context.Context, reader messageReader, runner payloadRunner, logger *slog.Logger, backoff time.Duration) {
	for {
		raw, commit, err := reader.Read(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				logger.Info("worker: shutting down")
				return
			}
			logger.Error("worker: read error", "error", err)
			time.Sleep(backoff)
			continue
		}

		processOne(ctx, raw, commit, runner, logger)
	}
}

// processOne runs a single message. Results are only logged; nothing is
// retried, so every message is committed whatever the outcome.
func processOne(ctx context.Context, raw []byte, commit func(context.Context) error, runner payloadRunner, logger *slog.Logger) {
	if payload, ok := worker.IsWorkerInvocation(raw); ok {
		runner.Run(ctx, payload)
	} else {
		logger.Warn("worker: dropping unrecognized message", "value", string(raw))
	}

	if err := commit(ctx); err != nil {
		logger.Error("worker: commit error", "error", err)
	}
}
