package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

type Sender interface {
	Send(ctx context.Context, to string, subject string, body string) error
}

// EmailSender is the part of the SES v2 client the sender needs.
type EmailSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type SESSender struct {
	client    EmailSender
	fromEmail string
}

func NewSESSender(cfg aws.Config, from, endpoint string) (*SESSender, error) {
	client := sesv2.NewFromConfig(cfg, func(o *sesv2.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return NewSESSenderFromClient(client, from)
}

func NewSESSenderFromClient(client EmailSender, from string) (*SESSender, error) {
	if from == "" {
		return nil, errors.New("NOTIFY_EMAIL_FROM is not set")
	}
	return &SESSender{client: client, fromEmail: from}, nil
}

func (s *SESSender) Send(ctx context.Context, to, subject, body string) error {
	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send to %s: %w", to, err)
	}
	return nil
}

// Mirror copies channel notifications to a mailbox. The subject is the
// first line of the message.
type Mirror struct {
	sender Sender
	to     string
}

func NewMirror(sender Sender, to string) *Mirror {
	return &Mirror{sender: sender, to: to}
}

func (m *Mirror) Name() string { return "ses-mirror" }

func (m *Mirror) Send(ctx context.Context, content string) error {
	subject, _, _ := strings.Cut(content, "\n")
	return m.sender.Send(ctx, m.to, "[discord-ecs-control] "+subject, content)
}
