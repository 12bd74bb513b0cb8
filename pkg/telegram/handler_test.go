package telegram_test

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/mock"

	"github.com/dskvich/trigger-telegram-bot/pkg/domain"
	"github.com/dskvich/trigger-telegram-bot/pkg/telegram"
)

type triggerServiceMock struct {
	mock.Mock
}

func (m *triggerServiceMock) HandleMessage(ctx context.Context, msg domain.IncomingMessage) error {
	return m.Called(ctx, msg).Error(0)
}

type adminServiceMock struct {
	mock.Mock
}

func (m *adminServiceMock) HandleCommand(ctx context.Context, msg domain.IncomingMessage, command, args string) error {
	return m.Called(ctx, msg, command, args).Error(0)
}

func textUpdate(text string) *tgbotapi.Update {
	msg := &tgbotapi.Message{
		MessageID: 10,
		From:      &tgbotapi.User{ID: 7},
		Chat:      &tgbotapi.Chat{ID: -100},
		Text:      text,
	}
	if len(text) > 0 && text[0] == '/' {
		end := len(text)
		for i, r := range text {
			if r == ' ' {
				end = i
				break
			}
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: end}}
	}
	return &tgbotapi.Update{UpdateID: 5, Message: msg}
}

func TestHandler_RoutesPlainTextToTriggerService(t *testing.T) {
	triggers := &triggerServiceMock{}
	admin := &adminServiceMock{}
	h := telegram.NewHandler(triggers, admin)

	expected := domain.IncomingMessage{UpdateID: 5, ChatID: -100, MessageID: 10, UserID: 7, Text: "#coffee"}
	triggers.On("HandleMessage", mock.Anything, expected).Return(nil).Once()

	h.HandleUpdate(context.Background(), textUpdate("#coffee"))

	triggers.AssertExpectations(t)
	admin.AssertNotCalled(t, "HandleCommand", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_RoutesCommandsToAdminService(t *testing.T) {
	triggers := &triggerServiceMock{}
	admin := &adminServiceMock{}
	h := telegram.NewHandler(triggers, admin)

	admin.On("HandleCommand", mock.Anything, mock.Anything, "settrigger", "#tea | a | b | 5").
		Return(errors.New("ignored")).Once()

	h.HandleUpdate(context.Background(), textUpdate("/SetTrigger@trigger_bot #tea | a | b | 5"))

	admin.AssertExpectations(t)
	triggers.AssertNotCalled(t, "HandleMessage", mock.Anything, mock.Anything)
}

func TestHandler_IgnoresUpdatesWithoutText(t *testing.T) {
	triggers := &triggerServiceMock{}
	admin := &adminServiceMock{}
	h := telegram.NewHandler(triggers, admin)

	h.HandleUpdate(context.Background(), &tgbotapi.Update{UpdateID: 1})
	h.HandleUpdate(context.Background(), &tgbotapi.Update{UpdateID: 2, Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}}})

	triggers.AssertNotCalled(t, "HandleMessage", mock.Anything, mock.Anything)
	admin.AssertNotCalled(t, "HandleCommand", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
