package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/dskvich/trigger-telegram-bot/pkg/domain"
	"github.com/dskvich/trigger-telegram-bot/pkg/logger"
)

type TriggerStore interface {
	Upsert(ctx context.Context, trigger domain.TriggerConfig) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]domain.TriggerConfig, error)
}

type Authenticator interface {
	IsAdmin(userID int64) bool
}

type PendingDeliveries interface {
	Pending(chatID int64) []domain.ScheduledDelivery
	Cancel(taskID string) bool
}

type AdminConfig struct {
	Marker   string
	MaxDelay time.Duration
}

type adminService struct {
	store         TriggerStore
	authenticator Authenticator
	deliveries    PendingDeliveries
	sender        Sender
	cfg           AdminConfig
}

func NewAdminService(
	store TriggerStore,
	authenticator Authenticator,
	deliveries PendingDeliveries,
	sender Sender,
	cfg AdminConfig,
) *adminService {
	if cfg.Marker == "" {
		cfg.Marker = domain.DefaultTriggerMarker
	}
	return &adminService{
		store:         store,
		authenticator: authenticator,
		deliveries:    deliveries,
		sender:        sender,
		cfg:           cfg,
	}
}

func isPublicCommand(command string) bool {
	return command == domain.CommandStart || command == domain.CommandHelp
}

// HandleCommand runs a bot command. Every outcome is answered in chat; the returned error is
// only for the caller's log.
func (a *adminService) HandleCommand(ctx context.Context, msg domain.IncomingMessage, command, args string) error {
	if !isPublicCommand(command) && !a.authenticator.IsAdmin(msg.UserID) {
		slog.WarnContext(ctx, "Unauthorized command attempt", "userID", msg.UserID, "command", command)
		return a.reply(ctx, msg, "❌ Only the bot admin can use this command.")
	}

	switch command {
	case domain.CommandStart:
		return a.reply(ctx, msg, "👋 Trigger bot is running. Send /help for usage.")
	case domain.CommandHelp:
		return a.reply(ctx, msg, a.helpText())
	case domain.CommandSetTrigger:
		return a.setTrigger(ctx, msg, args)
	case domain.CommandDelTrigger:
		return a.deleteTrigger(ctx, msg, args)
	case domain.CommandListTrigger:
		return a.listTriggers(ctx, msg)
	case domain.CommandPending:
		return a.listPending(ctx, msg)
	case domain.CommandCancel:
		return a.cancelPending(ctx, msg, args)
	default:
		slog.DebugContext(ctx, "Unhandled command", "command", command)
		return nil
	}
}

func (a *adminService) helpText() string {
	return strings.Join([]string{
		"🤖 Commands:",
		domain.SetTriggerUsage,
		"  " + domain.SetTriggerRules,
		"/deltrigger " + a.cfg.Marker + "trigger",
		"/triggers - list triggers",
		"/pending - list pending delayed responses in this chat",
		"/cancel <task id> - cancel a pending delayed response",
	}, "\n")
}

func (a *adminService) setTrigger(ctx context.Context, msg domain.IncomingMessage, args string) error {
	trigger, err := ParseTriggerDefinition(args, a.cfg.Marker, a.cfg.MaxDelay)
	if err != nil {
		slog.InfoContext(ctx, "Rejected trigger definition", logger.Err(err))
		return a.reply(ctx, msg, fmt.Sprintf("⚠️ %s\n\nUsage: %s\n%s", err, domain.SetTriggerUsage, domain.SetTriggerRules))
	}

	if err := a.store.Upsert(ctx, trigger); err != nil {
		if sendErr := a.reply(ctx, msg, "❌ Failed to save the trigger."); sendErr != nil {
			return errors.Join(err, sendErr)
		}
		return fmt.Errorf("saving trigger %q: %w", trigger.Key, err)
	}

	slog.InfoContext(ctx, "Trigger saved", "key", trigger.Key, "delaySeconds", trigger.DelaySeconds)

	return a.reply(ctx, msg, fmt.Sprintf(
		"✅ Trigger '%s' saved!\n\n✅ Immediate response: %s\n\n⏳ Delayed response (%s): %s",
		trigger.Key, trigger.ImmediateResponse, FormatDelay(trigger.DelaySeconds), trigger.DelayedResponse,
	))
}

func (a *adminService) deleteTrigger(ctx context.Context, msg domain.IncomingMessage, args string) error {
	key := strings.TrimSpace(args)
	if !strings.HasPrefix(key, a.cfg.Marker) {
		return a.reply(ctx, msg, fmt.Sprintf("⚠️ Usage: /deltrigger %strigger", a.cfg.Marker))
	}

	err := a.store.Delete(ctx, key)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return a.reply(ctx, msg, fmt.Sprintf("🤷 Trigger '%s' does not exist.", key))
	case err != nil:
		if sendErr := a.reply(ctx, msg, "❌ Failed to delete the trigger."); sendErr != nil {
			return errors.Join(err, sendErr)
		}
		return fmt.Errorf("deleting trigger %q: %w", key, err)
	}

	return a.reply(ctx, msg, fmt.Sprintf("🗑 Trigger '%s' deleted.", key))
}

func (a *adminService) listTriggers(ctx context.Context, msg domain.IncomingMessage) error {
	triggers, err := a.store.List(ctx)
	if err != nil {
		if sendErr := a.reply(ctx, msg, "❌ Failed to load triggers."); sendErr != nil {
			return errors.Join(err, sendErr)
		}
		return fmt.Errorf("listing triggers: %w", err)
	}

	if len(triggers) == 0 {
		return a.reply(ctx, msg, "⚙️ Triggers:\n❌ No triggers configured")
	}

	lines := lo.Map(triggers, func(t domain.TriggerConfig, _ int) string {
		return fmt.Sprintf("%s: %s", t.Key, FormatDelay(t.DelaySeconds))
	})
	return a.reply(ctx, msg, "⚙️ Triggers:\n"+strings.Join(lines, "\n"))
}

func (a *adminService) listPending(ctx context.Context, msg domain.IncomingMessage) error {
	pending := a.deliveries.Pending(msg.ChatID)
	if len(pending) == 0 {
		return a.reply(ctx, msg, "⏳ No pending delayed responses.")
	}

	lines := lo.Map(pending, func(d domain.ScheduledDelivery, _ int) string {
		return fmt.Sprintf("%s %s at %s", d.TaskID, d.Key, d.FireAt.Format(time.TimeOnly))
	})
	return a.reply(ctx, msg, "⏳ Pending:\n"+strings.Join(lines, "\n"))
}

func (a *adminService) cancelPending(ctx context.Context, msg domain.IncomingMessage, args string) error {
	taskID := strings.TrimSpace(args)
	if taskID == "" {
		return a.reply(ctx, msg, "⚠️ Usage: /cancel <task id>")
	}

	if !a.deliveries.Cancel(taskID) {
		return a.reply(ctx, msg, "🤷 Nothing to cancel: the task is unknown or has already fired.")
	}
	return a.reply(ctx, msg, "🛑 Cancelled "+taskID)
}

func (a *adminService) reply(ctx context.Context, msg domain.IncomingMessage, text string) error {
	if err := a.sender.Send(ctx, msg.Reply(text)); err != nil {
		return fmt.Errorf("replying to command: %w", err)
	}
	return nil
}

