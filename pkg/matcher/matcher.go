package matcher

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dskvich/trigger-telegram-bot/pkg/domain"
)

type TriggerLookup interface {
	Get(ctx context.Context, key string) (*domain.TriggerConfig, error)
}

type Config struct {
	Marker    string
	TrimSpace bool
}

type matcher struct {
	lookup TriggerLookup
	cfg    Config
}

func New(lookup TriggerLookup, cfg Config) *matcher {
	if cfg.Marker == "" {
		cfg.Marker = domain.DefaultTriggerMarker
	}
	return &matcher{lookup: lookup, cfg: cfg}
}

// Key returns the lookup key for text and whether text is a trigger candidate at all.
// Without TrimSpace the text is used verbatim, so "#hello " and "#hello" are different keys.
func (m *matcher) Key(text string) (string, bool) {
	if m.cfg.TrimSpace {
		text = strings.TrimSpace(text)
	}
	if !strings.HasPrefix(text, m.cfg.Marker) {
		return "", false
	}
	return text, true
}

// Match returns the trigger configured for text, or nil when text is not a trigger.
// Store failures other than a miss are reported as domain.ErrStoreUnavailable.
func (m *matcher) Match(ctx context.Context, text string) (*domain.TriggerConfig, error) {
	key, ok := m.Key(text)
	if !ok {
		return nil, nil
	}

	trigger, err := m.lookup.Get(ctx, key)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, nil
	case errors.Is(err, domain.ErrStoreUnavailable):
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return trigger, nil
}
