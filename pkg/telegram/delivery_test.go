package telegram_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dskvich/trigger-telegram-bot/pkg/domain"
	"github.com/dskvich/trigger-telegram-bot/pkg/scheduler"
)

func runScheduler(t *testing.T, s *scheduler.Scheduler) (stop func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, s.Run(ctx))
	}()

	return func() {
		cancel()
		<-done
	}
}

func TestDelayedDeliveryWithSlowTelegramIsSentOnce(t *testing.T) {
	stub := &botAPIStub{sendDelay: 100 * time.Millisecond}
	client := newTestClient(t, stub)
	reporter := scheduler.NewLogReporter()

	s := scheduler.New(client, reporter, scheduler.Config{
		AllowDuplicatePending: true,
		MaxAttempts:           2,
		RetryBackoff:          10 * time.Millisecond,
	})
	stop := runScheduler(t, s)
	defer stop()

	_, err := s.Schedule(domain.DeliveryRequest{ChatID: -100, ReplyToMessageID: 3, Key: "#tea", Payload: "tea is ready"})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return reporter.Stats().Fired == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	sent := stub.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "tea is ready", sent[0].Get("text"))
	assert.Zero(t, reporter.Stats().Failed)
	assert.Zero(t, reporter.Stats().Retried)
}

func TestDelayedDeliveryTimingOutIsNotRetried(t *testing.T) {
	stub := &botAPIStub{sendDelay: 200 * time.Millisecond}
	client := newTestClientWithTimeout(t, stub, 50*time.Millisecond)
	reporter := scheduler.NewLogReporter()

	s := scheduler.New(client, reporter, scheduler.Config{
		AllowDuplicatePending: true,
		MaxAttempts:           3,
		RetryBackoff:          10 * time.Millisecond,
	})
	stop := runScheduler(t, s)
	defer stop()

	_, err := s.Schedule(domain.DeliveryRequest{ChatID: -100, Key: "#tea", Payload: "tea is ready"})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return reporter.Stats().Failed == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	assert.Len(t, stub.Sent(), 1)
	assert.Zero(t, reporter.Stats().Retried)
}
