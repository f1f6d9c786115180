package httpapi

import (
	"context"
	"log/slog"

	"discord-ecs-control/internal/gateway"
)

// Interactions is the gateway behind POST /interactions.
type Interactions interface {
	Handle(ctx context.Context, req gateway.Request) gateway.Response
}

type App struct {
	Gateway Interactions
	Logger  *slog.Logger
}
