package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	kgo "github.com/segmentio/kafka-go"

	"discord-ecs-control/internal/models"
)

// Producer hands worker payloads to the worker topic. It satisfies
// dispatch.Dispatcher for deployments that run the gateway outside Lambda.
type Producer struct {
	writer  *kgo.Writer
	timeout time.Duration
}

func NewProducer(brokers []string, topic string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if topic == "" {
		return nil, errors.New("KAFKA_TOPIC_WORKER is required")
	}

	w := &kgo.Writer{
		Addr:         kgo.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kgo.LeastBytes{},
		RequiredAcks: kgo.RequireOne,
	}

	return &Producer{
		writer:  w,
		timeout: 3 * time.Second,
	}, nil
}

func (p *Producer) Close() error { return p.writer.Close() }

// Dispatch returns once the broker has acknowledged the message.
func (p *Producer) Dispatch(ctx context.Context, payload models.WorkerPayload) error {
	msg, err := encodeMessage(payload, time.Now())
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.writer.WriteMessages(cctx, msg)
}

func encodeMessage(payload models.WorkerPayload, now time.Time) (kgo.Message, error) {
	payload.Async = true
	b, err := json.Marshal(payload)
	if err != nil {
		return kgo.Message{}, err
	}
	return kgo.Message{
		Key:   []byte(payload.RequestID),
		Value: b,
		Time:  now,
	}, nil
}
