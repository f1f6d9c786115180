// Package gateway answers Discord interactions: it verifies the request
// signature, checks the caller's role and hands start/stop commands to the
// worker without waiting for them to complete.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"discord-ecs-control/internal/dispatch"
	"discord-ecs-control/internal/models"
	"discord-ecs-control/internal/signature"
)

// User-visible replies. All of them are ephemeral.
const (
	MessagePermissionDenied   = "Permission denied: the allowed role is required."
	MessageUnsupportedCommand = "Unsupported command."
	MessageInternalError      = "An internal error occurred. Please try again later."
	MessageStopAccepted       = "stop request accepted"
)

func MessageStartAccepted(size string) string {
	return fmt.Sprintf("start request accepted (size=%s)", size)
}

// SecretValue yields a credential, typically from the process-wide cache.
type SecretValue interface {
	Value(ctx context.Context) (string, error)
}

type Request struct {
	Headers http.Header
	Body    []byte
}

// Response is transport-agnostic: Body is marshalled to JSON by whoever
// writes it out.
type Response struct {
	StatusCode int
	Body       any
}

type errorBody struct {
	Error string `json:"error"`
}

func errorResponse(status int, msg string) Response {
	return Response{StatusCode: status, Body: errorBody{Error: msg}}
}

func reply(r models.InteractionResponse) Response {
	return Response{StatusCode: http.StatusOK, Body: r}
}

type Gateway struct {
	publicKey   SecretValue
	allowedRole SecretValue
	dispatcher  dispatch.Dispatcher
	logger      *slog.Logger

	newRequestID func() string
}

func New(publicKey, allowedRole SecretValue, dispatcher dispatch.Dispatcher, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Gateway{
		publicKey:    publicKey,
		allowedRole:  allowedRole,
		dispatcher:   dispatcher,
		logger:       logger,
		newRequestID: uuid.NewString,
	}
}

// Handle processes one interaction request. It never blocks on the
// worker: a dispatched command is acknowledged as soon as the handoff
// is accepted.
func (g *Gateway) Handle(ctx context.Context, req Request) Response {
	requestID := g.newRequestID()
	logger := g.logger.With("request_id", requestID)

	sig := req.Headers.Get(signature.HeaderSignature)
	ts := req.Headers.Get(signature.HeaderTimestamp)
	if sig == "" || ts == "" {
		logger.Warn("missing signature headers")
		return errorResponse(http.StatusUnauthorized, "missing signature headers")
	}

	publicKey, err := g.publicKey.Value(ctx)
	if err != nil {
		logger.Error("failed to get Discord public key", "error", err)
		return errorResponse(http.StatusInternalServerError, "internal server error")
	}
	if !signature.Verify(req.Body, ts, sig, publicKey) {
		logger.Warn("invalid request signature")
		return errorResponse(http.StatusUnauthorized, "invalid request signature")
	}

	var interaction models.Interaction
	if err := json.Unmarshal(req.Body, &interaction); err != nil {
		logger.Warn("invalid JSON body", "error", err)
		return errorResponse(http.StatusBadRequest, "invalid JSON body")
	}

	if interaction.Type == models.InteractionPing {
		return reply(models.Pong())
	}

	allowedRole, err := g.allowedRole.Value(ctx)
	if err != nil {
		logger.Error("failed to get allowed role ID", "error", err)
		return errorResponse(http.StatusInternalServerError, "internal server error")
	}
	if !interaction.HasRole(allowedRole) {
		logger.Info("permission denied", "command", interaction.CommandName())
		return reply(models.Ephemeral(MessagePermissionDenied))
	}

	action := models.Action(interaction.CommandName())
	if action != models.ActionStart && action != models.ActionStop {
		logger.Info("unsupported command", "command", string(action))
		return reply(models.Ephemeral(MessageUnsupportedCommand))
	}

	// The acknowledgment names the tier the worker will actually start;
	// missing and unknown sizes are small.
	requested, _ := interaction.StringOption("size")
	size := string(models.ParseSize(requested))
	if requested != "" && requested != size {
		logger.Info("unknown size, using small", "requested_size", requested)
	}

	payload := models.WorkerPayload{
		Async:     true,
		RequestID: requestID,
		Action:    action,
		Size:      size,
	}
	if err := g.dispatcher.Dispatch(ctx, payload); err != nil {
		if errors.Is(err, dispatch.ErrFunctionNameUnset) {
			logger.Error("missing function name (AWS_LAMBDA_FUNCTION_NAME / invocation context)")
		} else {
			logger.Error("failed to dispatch worker", "error", err)
		}
		return reply(models.Ephemeral(MessageInternalError))
	}

	logger.Info("worker dispatched", "action", string(action), "size", size)
	if action == models.ActionStart {
		return reply(models.Ephemeral(MessageStartAccepted(size)))
	}
	return reply(models.Ephemeral(MessageStopAccepted))
}
