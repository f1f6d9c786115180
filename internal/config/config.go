// Package config reads the environment of the control, notify, api and
// worker binaries.
package config

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/joho/godotenv"

	"discord-ecs-control/internal/models"
)

type Config struct {
	// Parameter Store names
	PublicKeyParam   string
	AllowedRoleParam string
	WebhookURLParam  string

	// Self-invocation
	FunctionName string

	// Orchestration
	ClusterARN      string
	ServiceName     string
	TaskDefinitions map[models.Size]string

	// Notifications
	NotifyOnRunning bool
	NotifyOnStopped bool
	ServerLabel     string
	EmailFrom       string
	EmailTo         string

	// AWS
	Region      string
	AWSEndpoint string

	// Non-Lambda deployment
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string
	ListenAddr   string

	LogLevel  string
	LogFormat string
}

// LoadEnvFile seeds the environment from a .env file. Variables already
// set win. A missing file is not an error.
func LoadEnvFile(path string) {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		log.Printf("config: %s not loaded: %v", path, err)
	}
}

func Load() Config {
	return Config{
		PublicKeyParam:   os.Getenv("DISCORD_PUBLIC_KEY_PARAM"),
		AllowedRoleParam: os.Getenv("ALLOWED_ROLE_ID_PARAM"),
		WebhookURLParam:  os.Getenv("DISCORD_WEBHOOK_URL_PARAM"),

		FunctionName: os.Getenv("AWS_LAMBDA_FUNCTION_NAME"),

		ClusterARN:  os.Getenv("ECS_CLUSTER_ARN"),
		ServiceName: os.Getenv("ECS_SERVICE_NAME"),
		TaskDefinitions: map[models.Size]string{
			models.SizeSmall:  os.Getenv("TASKDEF_SMALL"),
			models.SizeMedium: os.Getenv("TASKDEF_MEDIUM"),
			models.SizeLarge:  os.Getenv("TASKDEF_LARGE"),
		},

		NotifyOnRunning: getBool("NOTIFY_ON_RUNNING", true),
		NotifyOnStopped: getBool("NOTIFY_ON_STOPPED", true),
		ServerLabel:     getenv("SERVER_LABEL", "Minecraft server"),
		EmailFrom:       os.Getenv("NOTIFY_EMAIL_FROM"),
		EmailTo:         os.Getenv("NOTIFY_EMAIL_TO"),

		Region:      os.Getenv("AWS_REGION"),
		AWSEndpoint: os.Getenv("AWS_ENDPOINT_URL"),

		KafkaBrokers: splitCSV(getenv("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   getenv("KAFKA_TOPIC_WORKER", "discord-ecs-control-worker"),
		KafkaGroupID: getenv("KAFKA_GROUP_ID", "discord-ecs-control-workers"),
		ListenAddr:   getenv("LISTEN_ADDR", ":8080"),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),
	}
}

// EmailEnabled reports whether the SES mirror is configured.
func (c Config) EmailEnabled() bool {
	return c.EmailFrom != "" && c.EmailTo != ""
}

// AWS loads the shared SDK configuration. An empty region defers to the
// SDK's own resolution chain.
func (c Config) AWS(ctx context.Context) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if c.Region != "" {
		opts = append(opts, awsconfig.WithRegion(c.Region))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

// getBool treats unset as def and anything other than "true" as false.
func getBool(k string, def bool) bool {
	v, ok := os.LookupEnv(k)
	if !ok || v == "" {
		return def
	}
	return strings.EqualFold(strings.TrimSpace(v), "true")
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
