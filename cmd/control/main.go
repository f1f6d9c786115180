// Command control is the Lambda function behind the Discord interactions
// endpoint. It also receives its own asynchronous worker invocations.
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"discord-ecs-control/internal/config"
	"discord-ecs-control/internal/dispatch"
	"discord-ecs-control/internal/gateway"
	"discord-ecs-control/internal/invoke"
	"discord-ecs-control/internal/logging"
	"discord-ecs-control/internal/orchestration"
	"discord-ecs-control/internal/secrets"
	"discord-ecs-control/internal/worker"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, nil)

	awsCfg, err := cfg.AWS(ctx)
	if err != nil {
		log.Fatal("control: load aws cfg:", err)
	}

	// Clients are built once per execution environment and reused.
	params := secrets.NewSSM(awsCfg, cfg.AWSEndpoint)
	gw := gateway.New(
		secrets.NewCached(params, cfg.PublicKeyParam),
		secrets.NewCached(params, cfg.AllowedRoleParam),
		dispatch.NewLambda(awsCfg, cfg.AWSEndpoint, cfg.FunctionName),
		logger.With("component", "gateway"),
	)

	wk := worker.New(worker.Config{
		Cluster:         cfg.ClusterARN,
		Service:         cfg.ServiceName,
		TaskDefinitions: cfg.TaskDefinitions,
	}, orchestration.NewECS(awsCfg, cfg.AWSEndpoint), logger.With("component", "worker"))

	router := invoke.NewRouter(gw, wk, logger)
	lambda.Start(router.Handle)
}
