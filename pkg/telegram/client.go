package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dskvich/trigger-telegram-bot/pkg/domain"
)

const updatesTimeoutSeconds = 60

type client struct {
	bot *tgbotapi.BotAPI

	updatesOnce sync.Once
	updatesCh   tgbotapi.UpdatesChannel
}

// NewClient authorizes against the Telegram Bot API. requestTimeout bounds every HTTP call and
// must exceed the long-polling timeout.
func NewClient(token string, requestTimeout time.Duration) (*client, error) {
	return NewClientWithEndpoint(token, tgbotapi.APIEndpoint, &http.Client{Timeout: requestTimeout})
}

func NewClientWithEndpoint(token, endpoint string, httpClient tgbotapi.HTTPClient) (*client, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("creating bot api instance: %w", err)
	}

	slog.Info("authorized on telegram", "account", bot.Self.UserName)

	return &client{bot: bot}, nil
}

func (c *client) UserName() string {
	return c.bot.Self.UserName
}

// GetUpdates starts long polling on first use.
func (c *client) GetUpdates() tgbotapi.UpdatesChannel {
	c.updatesOnce.Do(func() {
		u := tgbotapi.NewUpdate(0)
		u.Timeout = updatesTimeoutSeconds
		u.AllowedUpdates = []string{"message"}
		c.updatesCh = c.bot.GetUpdatesChan(u)
	})
	return c.updatesCh
}

func (c *client) StopUpdates() {
	c.bot.StopReceivingUpdates()
}

// Send delivers a plain text message. Any failure wraps domain.ErrDeliveryFailed.
// ctx is checked before the request starts; once started the call waits for Telegram's answer,
// bounded by the HTTP client timeout. A timed out request also wraps domain.ErrDeliveryUnconfirmed.
func (c *client) Send(ctx context.Context, response domain.Response) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: chat %d: %w", domain.ErrDeliveryFailed, response.ChatID, err)
	}

	msg := tgbotapi.NewMessage(response.ChatID, response.Text)
	msg.ReplyToMessageID = response.ReplyToMessageID
	msg.AllowSendingWithoutReply = true

	if _, err := c.bot.Send(msg); err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return fmt.Errorf("%w: %w: chat %d: %w", domain.ErrDeliveryFailed, domain.ErrDeliveryUnconfirmed, response.ChatID, err)
		}
		return fmt.Errorf("%w: chat %d: %w", domain.ErrDeliveryFailed, response.ChatID, err)
	}
	return nil
}
