package domain

import (
	"fmt"
	"strings"
	"time"
)

const DefaultTriggerMarker = "#"

// TriggerConfig is the stored two-stage response for a trigger key.
type TriggerConfig struct {
	Key               string
	ImmediateResponse string
	DelayedResponse   string
	DelaySeconds      int
}

func (t TriggerConfig) Delay() time.Duration {
	return time.Duration(t.DelaySeconds) * time.Second
}

// Validate checks the definition before it is written. A zero maxDelay disables the upper bound.
func (t TriggerConfig) Validate(marker string, maxDelay time.Duration) error {
	switch {
	case t.Key == "":
		return fmt.Errorf("%w: trigger key is empty", ErrMalformedTriggerDefinition)
	case !strings.HasPrefix(t.Key, marker):
		return fmt.Errorf("%w: trigger key must start with %q", ErrMalformedTriggerDefinition, marker)
	case t.ImmediateResponse == "":
		return fmt.Errorf("%w: immediate response is empty", ErrMalformedTriggerDefinition)
	case t.DelayedResponse == "":
		return fmt.Errorf("%w: delayed response is empty", ErrMalformedTriggerDefinition)
	case t.DelaySeconds < 0:
		return fmt.Errorf("%w: delay must not be negative", ErrMalformedTriggerDefinition)
	case maxDelay > 0 && t.Delay() > maxDelay:
		return fmt.Errorf("%w: delay must not exceed %d seconds", ErrMalformedTriggerDefinition, int(maxDelay.Seconds()))
	}
	return nil
}
