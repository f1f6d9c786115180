// Package orchestration changes the desired state of the ECS service that
// runs the game server.
package orchestration

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
)

// DesiredState is what the worker asks ECS for. TaskDefinition is left
// unchanged when empty.
type DesiredState struct {
	Cluster        string
	Service        string
	DesiredCount   int32
	TaskDefinition string
}

// ServiceUpdater is the part of the ECS client the orchestrator needs.
type ServiceUpdater interface {
	UpdateService(ctx context.Context, params *ecs.UpdateServiceInput, optFns ...func(*ecs.Options)) (*ecs.UpdateServiceOutput, error)
}

type ECS struct {
	client ServiceUpdater
}

func NewECS(cfg aws.Config, endpoint string) *ECS {
	client := ecs.NewFromConfig(cfg, func(o *ecs.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return &ECS{client: client}
}

func NewECSFromClient(client ServiceUpdater) *ECS {
	return &ECS{client: client}
}

// SetDesiredState issues a single UpdateService call. Updates are
// last-write-wins on the ECS side; callers get no ordering guarantee
// between overlapping calls.
func (e *ECS) SetDesiredState(ctx context.Context, state DesiredState) error {
	input := &ecs.UpdateServiceInput{
		Cluster:      aws.String(state.Cluster),
		Service:      aws.String(state.Service),
		DesiredCount: aws.Int32(state.DesiredCount),
	}
	if state.TaskDefinition != "" {
		input.TaskDefinition = aws.String(state.TaskDefinition)
	}

	if _, err := e.client.UpdateService(ctx, input); err != nil {
		return fmt.Errorf("update service %s: %w", state.Service, err)
	}
	return nil
}
