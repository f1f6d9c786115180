package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"discord-ecs-control/internal/models"
)

type readResult struct {
	value []byte
	err   error
}

// fakeReader replays results in order, then cancels the loop.
type fakeReader struct {
	results   []readResult
	cancel    context.CancelFunc
	commits   []string
	commitErr error
}

func (r *fakeReader) Read(ctx context.Context) ([]byte, func(context.Context) error, error) {
	if len(r.results) == 0 {
		r.cancel()
		return nil, nil, ctx.Err()
	}
	next := r.results[0]
	r.results = r.results[1:]
	if next.err != nil {
		return nil, nil, next.err
	}
	commit := func(context.Context) error {
		r.commits = append(r.commits, string(next.value))
		return r.commitErr
	}
	return next.value, commit, nil
}

type fakeRunner struct {
	payloads []models.WorkerPayload
	result   models.WorkerResult
}

func (r *fakeRunner) Run(_ context.Context, payload models.WorkerPayload) models.WorkerResult {
	r.payloads = append(r.payloads, payload)
	return r.result
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestConsumeCommitsEveryOutcome(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{
		cancel: cancel,
		results: []readResult{
			{value: []byte(`{"_async":true,"action":"start","size":"large"}`)},
			{err: errors.New("broker unavailable")},
			{value: []byte(`not json`)},
			{value: []byte(`{"action":"stop"}`)},
			{value: []byte(`{"_async":true,"action":"stop"}`)},
		},
	}
	runner := &fakeRunner{result: models.WorkerResult{OK: false, Error: "worker failed"}}

	consume(ctx, reader, runner, discardLogger(), 0)

	if len(runner.payloads) != 2 {
		t.Fatalf("runs = %d, want 2: %+v", len(runner.payloads), runner.payloads)
	}
	if runner.payloads[0].Action != models.ActionStart || runner.payloads[1].Action != models.ActionStop {
		t.Errorf("payloads = %+v", runner.payloads)
	}
	// Failed runs and unrecognized messages are committed as well.
	if len(reader.commits) != 4 {
		t.Errorf("commits = %q, want all 4 messages", reader.commits)
	}
}

func TestProcessOneDropsUnrecognizedMessage(t *testing.T) {
	runner := &fakeRunner{}
	committed := false
	commit := func(context.Context) error {
		committed = true
		return nil
	}

	// A marker-less payload never reaches the worker.
	processOne(context.Background(), []byte(`{"action":"stop"}`), commit, runner, discardLogger())

	if len(runner.payloads) != 0 {
		t.Errorf("unrecognized message ran the worker: %+v", runner.payloads)
	}
	if !committed {
		t.Error("unrecognized message was not committed")
	}
}

func TestProcessOneCommitErrorIsNotFatal(t *testing.T) {
	runner := &fakeRunner{result: models.WorkerResult{OK: true}}
	commit := func(context.Context) error { return errors.New("rebalance in progress") }

	processOne(context.Background(), []byte(`{"_async":true,"action":"stop"}`), commit, runner, discardLogger())

	if len(runner.payloads) != 1 {
		t.Errorf("runs = %d, want 1", len(runner.payloads))
	}
}

func TestConsumeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := &fakeReader{cancel: cancel}
	runner := &fakeRunner{}
	consume(ctx, reader, runner, discardLogger(), 0)

	if len(runner.payloads) != 0 {
		t.Error("worker ran after cancellation")
	}
}
