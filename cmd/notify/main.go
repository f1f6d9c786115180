// Command notify is the Lambda function subscribed to ECS task state
// change events. It posts RUNNING and STOPPED transitions to Discord.
package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/lambda"

	"discord-ecs-control/internal/config"
	"discord-ecs-control/internal/email"
	"discord-ecs-control/internal/logging"
	"discord-ecs-control/internal/notify"
	"discord-ecs-control/internal/secrets"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, nil)

	awsCfg, err := cfg.AWS(ctx)
	if err != nil {
		log.Fatal("notify: load aws cfg:", err)
	}

	params := secrets.NewSSM(awsCfg, cfg.AWSEndpoint)
	sinks := []notify.Sink{
		notify.NewWebhook(secrets.NewCached(params, cfg.WebhookURLParam), &http.Client{Timeout: 10 * time.Second}),
	}
	if cfg.EmailEnabled() {
		sender, err := email.NewSESSender(awsCfg, cfg.EmailFrom, cfg.AWSEndpoint)
		if err != nil {
			log.Fatal("notify: init ses:", err)
		}
		sinks = append(sinks, email.NewMirror(sender, cfg.EmailTo))
	}

	notifier := notify.New(notify.Config{
		NotifyOnRunning: cfg.NotifyOnRunning,
		NotifyOnStopped: cfg.NotifyOnStopped,
		Label:           cfg.ServerLabel,
	}, logger, sinks...)

	lambda.Start(notifier.Handle)
}
