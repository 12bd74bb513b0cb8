package domain

import "errors"

var (
	ErrNotFound                   = errors.New("not found")
	ErrStoreUnavailable           = errors.New("trigger store unavailable")
	ErrDeliveryFailed             = errors.New("delivery failed")
	ErrMalformedTriggerDefinition = errors.New("malformed trigger definition")
	ErrUnauthorized               = errors.New("unauthorized")
	ErrDuplicatePending           = errors.New("delivery already pending")
	ErrSchedulerStopped           = errors.New("scheduler stopped")
)

// ErrDeliveryUnconfirmed marks a failed send whose request may still have reached the chat.
var ErrDeliveryUnconfirmed = errors.New("delivery unconfirmed")
