// Command worker consumes worker payloads published by cmd/api and applies
// them to the ECS service.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"discord-ecs-control/internal/config"
	"discord-ecs-control/internal/logging"
	"discord-ecs-control/internal/orchestration"
	"discord-ecs-control/internal/queue"
	"discord-ecs-control/internal/worker"
)

func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file to seed the environment from")
	pflag.Parse()

	config.LoadEnvFile(*envFile)
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := cfg.AWS(ctx)
	if err != nil {
		log.Fatal("worker: load aws cfg:", err)
	}

	wk := worker.New(worker.Config{
		Cluster:         cfg.ClusterARN,
		Service:         cfg.ServiceName,
		TaskDefinitions: cfg.TaskDefinitions,
	}, orchestration.NewECS(awsCfg, cfg.AWSEndpoint), logger)

	consumer := queue.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID)
	defer consumer.Close()

	logger.Info("worker: started",
		"topic", cfg.KafkaTopic,
		"group_id", cfg.KafkaGroupID,
		"brokers", cfg.KafkaBrokers,
	)

	consume(ctx, consumer, wk, logger, 500*time.Millisecond)
}
