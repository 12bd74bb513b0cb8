package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/dskvich/trigger-telegram-bot/pkg/domain"
)

const triggerFieldSeparator = "|"

// ParseTriggerDefinition parses "key | immediate | delayed | seconds". Exactly four fields are accepted.
func ParseTriggerDefinition(args, marker string, maxDelay time.Duration) (domain.TriggerConfig, error) {
	if strings.TrimSpace(args) == "" {
		return domain.TriggerConfig{}, fmt.Errorf("%w: no fields given", domain.ErrMalformedTriggerDefinition)
	}

	fields := lo.Map(strings.Split(args, triggerFieldSeparator), func(f string, _ int) string {
		return strings.TrimSpace(f)
	})
	if len(fields) != 4 {
		return domain.TriggerConfig{}, fmt.Errorf("%w: expected 4 fields, got %d", domain.ErrMalformedTriggerDefinition, len(fields))
	}

	delay, err := strconv.Atoi(fields[3])
	if err != nil {
		return domain.TriggerConfig{}, fmt.Errorf("%w: delay %q is not a whole number of seconds", domain.ErrMalformedTriggerDefinition, fields[3])
	}

	trigger := domain.TriggerConfig{
		Key:               fields[0],
		ImmediateResponse: fields[1],
		DelayedResponse:   fields[2],
		DelaySeconds:      delay,
	}
	if err := trigger.Validate(marker, maxDelay); err != nil {
		return domain.TriggerConfig{}, err
	}

	return trigger, nil
}

// FormatDelay renders a delay the way it is shown to chat users.
func FormatDelay(seconds int) string {
	switch {
	case seconds == 1:
		return "1 second"
	case seconds < 60:
		return fmt.Sprintf("%d seconds", seconds)
	case seconds%60 == 0 && seconds/60 == 1:
		return "1 minute"
	case seconds%60 == 0:
		return fmt.Sprintf("%d minutes", seconds/60)
	default:
		return (time.Duration(seconds) * time.Second).String()
	}
}
