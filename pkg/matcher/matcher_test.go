package matcher_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dskvich/trigger-telegram-bot/pkg/domain"
	"github.com/dskvich/trigger-telegram-bot/pkg/matcher"
)

type lookupMock struct {
	mock.Mock
}

func (m *lookupMock) Get(ctx context.Context, key string) (*domain.TriggerConfig, error) {
	args := m.Called(ctx, key)
	trigger, _ := args.Get(0).(*domain.TriggerConfig)
	return trigger, args.Error(1)
}

func TestMatchIgnoresTextWithoutMarker(t *testing.T) {
	lookup := &lookupMock{}
	m := matcher.New(lookup, matcher.Config{})

	for _, text := range []string{"", "hello", " #hello", "hello #hello", "/settrigger #a"} {
		trigger, err := m.Match(context.Background(), text)
		assert.NoError(t, err)
		assert.Nil(t, trigger)
	}

	lookup.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestMatchUsesTextVerbatim(t *testing.T) {
	ctx := context.Background()
	hello := &domain.TriggerConfig{Key: "#hello", ImmediateResponse: "hi!", DelayedResponse: "still there?", DelaySeconds: 5}

	lookup := &lookupMock{}
	lookup.On("Get", ctx, "#hello").Return(hello, nil)
	lookup.On("Get", ctx, "#hello!").Return(nil, domain.ErrNotFound)

	m := matcher.New(lookup, matcher.Config{Marker: "#"})

	trigger, err := m.Match(ctx, "#hello")
	require.NoError(t, err)
	assert.Equal(t, hello, trigger)

	trigger, err = m.Match(ctx, "#hello!")
	require.NoError(t, err)
	assert.Nil(t, trigger)

	lookup.AssertExpectations(t)
}

func TestMatchTrimSpace(t *testing.T) {
	ctx := context.Background()
	hello := &domain.TriggerConfig{Key: "#hello"}

	lookup := &lookupMock{}
	lookup.On("Get", ctx, "#hello").Return(hello, nil).Once()

	m := matcher.New(lookup, matcher.Config{TrimSpace: true})

	trigger, err := m.Match(ctx, "  #hello \n")
	require.NoError(t, err)
	assert.Equal(t, hello, trigger)

	lookup.AssertExpectations(t)
}

func TestMatchCustomMarker(t *testing.T) {
	ctx := context.Background()

	lookup := &lookupMock{}
	lookup.On("Get", ctx, "!ping").Return(&domain.TriggerConfig{Key: "!ping"}, nil).Once()

	m := matcher.New(lookup, matcher.Config{Marker: "!"})

	trigger, err := m.Match(ctx, "#ping")
	require.NoError(t, err)
	assert.Nil(t, trigger)

	trigger, err = m.Match(ctx, "!ping")
	require.NoError(t, err)
	assert.NotNil(t, trigger)

	lookup.AssertExpectations(t)
}

func TestMatchPropagatesStoreUnavailable(t *testing.T) {
	ctx := context.Background()

	lookup := &lookupMock{}
	lookup.On("Get", ctx, "#a").Return(nil, errors.New("connection refused"))
	lookup.On("Get", ctx, "#b").Return(nil, domain.ErrStoreUnavailable)

	m := matcher.New(lookup, matcher.Config{})

	_, err := m.Match(ctx, "#a")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.ErrorContains(t, err, "connection refused")

	_, err = m.Match(ctx, "#b")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
