// Command api serves the interactions endpoint as a plain HTTP server and
// hands commands to cmd/worker over Kafka.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"discord-ecs-control/internal/config"
	"discord-ecs-control/internal/gateway"
	httpapi "discord-ecs-control/internal/http"
	"discord-ecs-control/internal/logging"
	"discord-ecs-control/internal/queue"
	"discord-ecs-control/internal/secrets"
)

func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file to seed the environment from")
	addr := pflag.String("addr", "", "listen address (overrides LISTEN_ADDR)")
	pflag.Parse()

	config.LoadEnvFile(*envFile)
	cfg := config.Load()
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := cfg.AWS(ctx)
	if err != nil {
		log.Fatal("api: load aws cfg:", err)
	}
	params := secrets.NewSSM(awsCfg, cfg.AWSEndpoint)

	prod, err := queue.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		log.Fatal("api: init kafka producer:", err)
	}
	defer prod.Close()

	app := &httpapi.App{
		Gateway: gateway.New(
			secrets.NewCached(params, cfg.PublicKeyParam),
			secrets.NewCached(params, cfg.AllowedRoleParam),
			prod,
			logger.With("component", "gateway"),
		),
		Logger: logger,
	}

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httpapi.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("api listening", "addr", cfg.ListenAddr, "topic", cfg.KafkaTopic)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("api: serve:", err)
	}
}
