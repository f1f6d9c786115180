// Package dispatch hands worker payloads off to a second invocation of the
// control function without waiting for it to finish.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"discord-ecs-control/internal/models"
)

// ErrFunctionNameUnset means neither the environment nor the invocation
// context names the function to invoke.
var ErrFunctionNameUnset = errors.New("function name is not available")

// Dispatcher sends a payload and returns once the handoff is accepted.
// The worker's outcome is never reported back.
type Dispatcher interface {
	Dispatch(ctx context.Context, payload models.WorkerPayload) error
}

// Invoker is the part of the Lambda client the dispatcher needs.
type Invoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// Lambda invokes a function with InvocationType=Event.
type Lambda struct {
	client       Invoker
	functionName string
}

func NewLambda(cfg aws.Config, endpoint, functionName string) *Lambda {
	client := lambda.NewFromConfig(cfg, func(o *lambda.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return &Lambda{client: client, functionName: functionName}
}

func NewLambdaFromClient(client Invoker, functionName string) *Lambda {
	return &Lambda{client: client, functionName: functionName}
}

func (l *Lambda) Dispatch(ctx context.Context, payload models.WorkerPayload) error {
	target := l.target(ctx)
	if target == "" {
		return ErrFunctionNameUnset
	}

	payload.Async = true
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	out, err := l.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(target),
		InvocationType: types.InvocationTypeEvent,
		Payload:        body,
	})
	if err != nil {
		return fmt.Errorf("invoke %s: %w", target, err)
	}
	if out.StatusCode != http.StatusAccepted {
		return fmt.Errorf("invoke %s: unexpected status %d", target, out.StatusCode)
	}
	return nil
}

// target prefers the configured name and falls back to the ARN the
// current invocation was made against.
func (l *Lambda) target(ctx context.Context) string {
	if l.functionName != "" {
		return l.functionName
	}
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		return lc.InvokedFunctionArn
	}
	return ""
}
