package services_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/dskvich/trigger-telegram-bot/pkg/domain"
)

type senderMock struct {
	mock.Mock
}

func (m *senderMock) Send(ctx context.Context, response domain.Response) error {
	return m.Called(ctx, response).Error(0)
}

type matcherMock struct {
	mock.Mock
}

func (m *matcherMock) Match(ctx context.Context, text string) (*domain.TriggerConfig, error) {
	args := m.Called(ctx, text)
	trigger, _ := args.Get(0).(*domain.TriggerConfig)
	return trigger, args.Error(1)
}

type schedulerMock struct {
	mock.Mock
}

func (m *schedulerMock) Schedule(req domain.DeliveryRequest) (string, error) {
	args := m.Called(req)
	return args.String(0), args.Error(1)
}

func (m *schedulerMock) Pending(chatID int64) []domain.ScheduledDelivery {
	pending, _ := m.Called(chatID).Get(0).([]domain.ScheduledDelivery)
	return pending
}

func (m *schedulerMock) Cancel(taskID string) bool {
	return m.Called(taskID).Bool(0)
}

type storeMock struct {
	mock.Mock
}

func (m *storeMock) Upsert(ctx context.Context, trigger domain.TriggerConfig) error {
	return m.Called(ctx, trigger).Error(0)
}

func (m *storeMock) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *storeMock) List(ctx context.Context) ([]domain.TriggerConfig, error) {
	args := m.Called(ctx)
	triggers, _ := args.Get(0).([]domain.TriggerConfig)
	return triggers, args.Error(1)
}

type adminOnly int64

func (a adminOnly) IsAdmin(userID int64) bool { return int64(a) == userID }

// memoryStore is a concurrency-safe in-memory trigger store for pipeline tests.
type memoryStore struct {
	mu       sync.Mutex
	triggers map[string]domain.TriggerConfig
	lookups  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{triggers: make(map[string]domain.TriggerConfig)}
}

func (s *memoryStore) Get(_ context.Context, key string) (*domain.TriggerConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	t, ok := s.triggers[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (s *memoryStore) Upsert(_ context.Context, trigger domain.TriggerConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.triggers[trigger.Key] = trigger
	return nil
}

func (s *memoryStore) Lookups() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookups
}

type capturingSender struct {
	mu   sync.Mutex
	sent []domain.Response
}

func (c *capturingSender) Send(_ context.Context, response domain.Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, response)
	return nil
}

func (c *capturingSender) Sent() []domain.Response {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Response(nil), c.sent...)
}
