// Package secrets reads credentials from SSM Parameter Store and keeps them
// for the lifetime of the process.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

var (
	// ErrParameterNameUnset means the environment does not name the parameter.
	ErrParameterNameUnset = errors.New("parameter name is not set")

	// ErrEmptyParameter means the parameter exists but holds no value.
	ErrEmptyParameter = errors.New("parameter has no value")
)

type Source interface {
	Get(ctx context.Context, name string) (string, error)
}

// ParameterGetter is the part of the SSM client the store needs.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

type SSM struct {
	client ParameterGetter
}

func NewSSM(cfg aws.Config, endpoint string) *SSM {
	client := ssm.NewFromConfig(cfg, func(o *ssm.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return &SSM{client: client}
}

func NewSSMFromClient(client ParameterGetter) *SSM {
	return &SSM{client: client}
}

// Get returns the decrypted value of a parameter.
func (s *SSM) Get(ctx context.Context, name string) (string, error) {
	out, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("get parameter %s: %w", name, err)
	}
	if out.Parameter == nil || strings.TrimSpace(aws.ToString(out.Parameter.Value)) == "" {
		return "", fmt.Errorf("%s: %w", name, ErrEmptyParameter)
	}
	return aws.ToString(out.Parameter.Value), nil
}

// Cached is one parameter fetched on first use and then reused until the
// process exits. Concurrent first calls may each hit the source; the fetch
// is idempotent so the last store wins. Errors are not cached.
type Cached struct {
	source Source
	name   string
	value  atomic.Pointer[string]
}

func NewCached(source Source, name string) *Cached {
	return &Cached{source: source, name: name}
}

func (c *Cached) Value(ctx context.Context) (string, error) {
	if v := c.value.Load(); v != nil {
		return *v, nil
	}
	if c.name == "" {
		return "", ErrParameterNameUnset
	}

	v, err := c.source.Get(ctx, c.name)
	if err != nil {
		return "", err
	}
	c.value.Store(&v)
	return v, nil
}
