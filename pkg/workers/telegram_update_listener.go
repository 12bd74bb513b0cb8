package workers

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dskvich/trigger-telegram-bot/pkg/logger"
)

type Handler interface {
	HandleUpdate(ctx context.Context, update *tgbotapi.Update)
}

type TelegramClient interface {
	GetUpdates() tgbotapi.UpdatesChannel
	StopUpdates()
}

type telegramUpdateListener struct {
	client  TelegramClient
	handler Handler
	sem     chan struct{}
	wg      sync.WaitGroup
}

func NewTelegramUpdateListener(client TelegramClient, handler Handler, poolSize int) (*telegramUpdateListener, error) {
	if poolSize <= 0 {
		return nil, errors.New("update listener pool size must be positive")
	}

	return &telegramUpdateListener{
		client:  client,
		handler: handler,
		sem:     make(chan struct{}, poolSize),
	}, nil
}

func (t *telegramUpdateListener) Name() string { return "telegram_listener_worker" }

func (t *telegramUpdateListener) Run(ctx context.Context) error {
	slog.Info("Starting worker", "name", t.Name())
	defer slog.Info("Worker stopped", "name", t.Name())

	updates := t.client.GetUpdates()

	for {
		select {
		case <-ctx.Done():
			t.client.StopUpdates()
			t.wg.Wait()
			return nil
		case update, ok := <-updates:
			if !ok {
				t.wg.Wait()
				return nil
			}

			select {
			case t.sem <- struct{}{}:
			case <-ctx.Done():
				continue
			}

			t.wg.Add(1)
			go func(update tgbotapi.Update) {
				defer func() {
					<-t.sem
					t.wg.Done()
				}()
				t.processUpdate(ctx, &update)
			}(update)
		}
	}
}

func (t *telegramUpdateListener) processUpdate(ctx context.Context, update *tgbotapi.Update) {
	ctx = logger.ContextWithUpdateID(ctx, update.UpdateID)

	if update.Message == nil || update.Message.Chat == nil {
		slog.DebugContext(ctx, "Skipping non-message update")
		return
	}

	slog.DebugContext(ctx, "Processing update", "chatID", update.Message.Chat.ID)

	t.handler.HandleUpdate(ctx, update)
}
