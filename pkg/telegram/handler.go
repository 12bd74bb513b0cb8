package telegram

import (
	"context"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dskvich/trigger-telegram-bot/pkg/domain"
	"github.com/dskvich/trigger-telegram-bot/pkg/logger"
)

type TriggerService interface {
	HandleMessage(ctx context.Context, msg domain.IncomingMessage) error
}

type AdminService interface {
	HandleCommand(ctx context.Context, msg domain.IncomingMessage, command, args string) error
}

type handler struct {
	triggerService TriggerService
	adminService   AdminService
}

func NewHandler(triggerService TriggerService, adminService AdminService) *handler {
	return &handler{
		triggerService: triggerService,
		adminService:   adminService,
	}
}

func (h *handler) HandleUpdate(ctx context.Context, update *tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" || msg.Chat == nil {
		return
	}

	in := domain.IncomingMessage{
		UpdateID:  update.UpdateID,
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
		Text:      msg.Text,
	}
	if msg.From != nil {
		in.UserID = msg.From.ID
	}

	if msg.IsCommand() {
		command := strings.ToLower(msg.Command())
		if err := h.adminService.HandleCommand(ctx, in, command, msg.CommandArguments()); err != nil {
			slog.ErrorContext(ctx, "Handling command", "command", command, "chatID", in.ChatID, logger.Err(err))
		}
		return
	}

	if err := h.triggerService.HandleMessage(ctx, in); err != nil {
		slog.ErrorContext(ctx, "Handling trigger message", "chatID", in.ChatID, logger.Err(err))
	}
}
