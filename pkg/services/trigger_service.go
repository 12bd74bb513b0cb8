package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dskvich/trigger-telegram-bot/pkg/domain"
	"github.com/dskvich/trigger-telegram-bot/pkg/logger"
)

type TriggerMatcher interface {
	Match(ctx context.Context, text string) (*domain.TriggerConfig, error)
}

type DeliveryScheduler interface {
	Schedule(req domain.DeliveryRequest) (string, error)
}

type Sender interface {
	Send(ctx context.Context, response domain.Response) error
}

type triggerService struct {
	matcher   TriggerMatcher
	scheduler DeliveryScheduler
	sender    Sender
}

func NewTriggerService(matcher TriggerMatcher, scheduler DeliveryScheduler, sender Sender) *triggerService {
	return &triggerService{
		matcher:   matcher,
		scheduler: scheduler,
		sender:    sender,
	}
}

// HandleMessage answers a trigger immediately and schedules its delayed response.
// Store failures are logged and the message is ignored. A failed immediate reply is returned
// and nothing is scheduled for it.
func (t *triggerService) HandleMessage(ctx context.Context, msg domain.IncomingMessage) error {
	trigger, err := t.matcher.Match(ctx, msg.Text)
	if err != nil {
		slog.WarnContext(ctx, "Trigger lookup failed, ignoring message", "chatID", msg.ChatID, logger.Err(err))
		return nil
	}
	if trigger == nil {
		return nil
	}

	slog.InfoContext(ctx, "Trigger matched", "chatID", msg.ChatID, "key", trigger.Key, "delaySeconds", trigger.DelaySeconds)

	if err := t.sender.Send(ctx, msg.Reply(trigger.ImmediateResponse)); err != nil {
		return fmt.Errorf("sending immediate response for %q: %w", trigger.Key, err)
	}

	taskID, err := t.scheduler.Schedule(domain.DeliveryRequest{
		ChatID:           msg.ChatID,
		ReplyToMessageID: msg.MessageID,
		Key:              trigger.Key,
		Payload:          trigger.DelayedResponse,
		Delay:            trigger.Delay(),
	})
	switch {
	case errors.Is(err, domain.ErrDuplicatePending):
		slog.InfoContext(ctx, "Delayed response already pending", "chatID", msg.ChatID, "key", trigger.Key, "taskID", taskID)
		return nil
	case err != nil:
		return fmt.Errorf("scheduling delayed response for %q: %w", trigger.Key, err)
	}

	slog.DebugContext(ctx, "Delayed response scheduled", "chatID", msg.ChatID, "key", trigger.Key, "taskID", taskID)
	return nil
}
