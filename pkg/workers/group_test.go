package workers_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dskvich/trigger-telegram-bot/pkg/workers"
)

type funcWorker struct {
	name string
	run  func(ctx context.Context) error
}

func (f funcWorker) Name() string { return f.name }
func (f funcWorker) Run(ctx context.Context) error { return f.run(ctx) }

func blockUntilDone(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func TestGroupRun_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	group := workers.Group{
		funcWorker{name: "a", run: blockUntilDone},
		funcWorker{name: "b", run: blockUntilDone},
	}

	done := make(chan error, 1)
	go func() { done <- group.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("group did not stop")
	}
}

func TestGroupRun_FailingWorkerStopsOthers(t *testing.T) {
	boom := errors.New("boom")
	stopped := make(chan struct{})

	group := workers.Group{
		funcWorker{name: "failing", run: func(context.Context) error { return boom }},
		funcWorker{name: "waiting", run: func(ctx context.Context) error {
			<-ctx.Done()
			close(stopped)
			return nil
		}},
	}

	err := group.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failing")
	select {
	case <-stopped:
	default:
		t.Fatal("sibling worker was not cancelled")
	}
}

func TestGroupRun_WorkerReturningEarlyStopsOthers(t *testing.T) {
	stopped := make(chan struct{})

	group := workers.Group{
		funcWorker{name: "short", run: func(context.Context) error { return nil }},
		funcWorker{name: "waiting", run: func(ctx context.Context) error {
			<-ctx.Done()
			close(stopped)
			return nil
		}},
	}

	done := make(chan error, 1)
	go func() { done <- group.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("group kept running after a worker returned")
	}
	select {
	case <-stopped:
	default:
		t.Fatal("sibling worker was not cancelled")
	}
}

func TestGroupRun_CollectsEveryFailure(t *testing.T) {
	first, second := errors.New("first"), errors.New("second")

	group := workers.Group{
		funcWorker{name: "a", run: func(context.Context) error { return first }},
		funcWorker{name: "b", run: func(ctx context.Context) error {
			<-ctx.Done()
			return second
		}},
	}

	err := group.Run(context.Background())

	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
}
