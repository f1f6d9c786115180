// Package invoke is the single Lambda entrypoint of the control function.
// One deployable serves two roles: interactions arriving over HTTP and
// worker payloads the gateway sent to itself.
package invoke

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"discord-ecs-control/internal/gateway"
	"discord-ecs-control/internal/models"
	"discord-ecs-control/internal/worker"
)

type Gateway interface {
	Handle(ctx context.Context, req gateway.Request) gateway.Response
}

type Worker interface {
	Run(ctx context.Context, payload models.WorkerPayload) models.WorkerResult
}

type Router struct {
	gateway Gateway
	worker  Worker
	logger  *slog.Logger
}

func NewRouter(gw Gateway, w Worker, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Router{gateway: gw, worker: w, logger: logger}
}

// Handle routes on the _async marker only. HTTP events are recognized
// first and always go through the gateway: their body is untrusted until
// its signature verifies, so it can never select worker mode. Anything
// else without the marker is treated as an HTTP event; input that is not
// even that gets a 400 response.
func (r *Router) Handle(ctx context.Context, raw json.RawMessage) (any, error) {
	if isHTTPEvent(raw) {
		return r.handleHTTP(ctx, raw), nil
	}
	if payload, ok := worker.IsWorkerInvocation(raw); ok {
		result := r.worker.Run(ctx, payload)
		r.logger.Info("worker finished",
			"request_id", payload.RequestID,
			"ok", result.OK,
			"error", result.Error,
		)
		return result, nil
	}
	return r.handleHTTP(ctx, raw), nil
}

// httpEventFields are keys only API Gateway and Function URL events carry.
type httpEventFields struct {
	RequestContext json.RawMessage `json:"requestContext"`
	Headers        json.RawMessage `json:"headers"`
	RawPath        *string         `json:"rawPath"`
	RouteKey       *string         `json:"routeKey"`
	HTTPMethod     *string         `json:"httpMethod"`
}

func isHTTPEvent(raw []byte) bool {
	var f httpEventFields
	if err := json.Unmarshal(raw, &f); err != nil {
		return false
	}
	return len(f.RequestContext) > 0 || len(f.Headers) > 0 ||
		f.RawPath != nil || f.RouteKey != nil || f.HTTPMethod != nil
}

func (r *Router) handleHTTP(ctx context.Context, raw []byte) events.APIGatewayV2HTTPResponse {
	var event events.APIGatewayV2HTTPRequest
	if err := json.Unmarshal(raw, &event); err != nil {
		r.logger.Warn("unrecognized invocation payload", "error", err)
		return toHTTPResponse(gateway.Response{
			StatusCode: http.StatusBadRequest,
			Body:       map[string]string{"error": "unrecognized invocation"},
		})
	}

	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return toHTTPResponse(gateway.Response{
				StatusCode: http.StatusBadRequest,
				Body:       map[string]string{"error": "invalid body encoding"},
			})
		}
		body = decoded
	}

	headers := make(http.Header, len(event.Headers))
	for k, v := range event.Headers {
		headers.Set(k, v)
	}

	resp := r.gateway.Handle(ctx, gateway.Request{Headers: headers, Body: body})
	return toHTTPResponse(resp)
}

func toHTTPResponse(resp gateway.Response) events.APIGatewayV2HTTPResponse {
	body, err := json.Marshal(resp.Body)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"error":"internal server error"}`,
		}
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}
