// Package telegram оборачивает Bot API: отправка HTML-сообщений, текстовые
// ответы об ошибках и цикл получения обновлений с командой /start.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"feed_notifier/internal/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const updateTimeout = 60 // секунд long polling

// StartFunc вызывается на команду /start с идентификатором чата отправителя.
type StartFunc func(ctx context.Context, chatID int64)

type Bot struct {
	api *tgbotapi.BotAPI
}

// NewBot авторизуется в Bot API (запрос getMe).
func NewBot(token string) (*Bot, error) {
	return NewBotWithEndpoint(token, tgbotapi.APIEndpoint, &http.Client{})
}

// NewBotWithEndpoint позволяет указать свой адрес API, endpoint — формат вида
// "https://api.telegram.org/bot%s/%s".
func NewBotWithEndpoint(token, endpoint string, client *http.Client) (*Bot, error) {
	if err := tgbotapi.SetLogger(logger.Log); err != nil {
		return nil, fmt.Errorf("telegram logger: %w", err)
	}

	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return &Bot{api: api}, nil
}

func (b *Bot) UserName() string {
	return b.api.Self.UserName
}

// Send отправляет сообщение в режиме HTML без превью ссылок. chatID — число
// или @username канала.
func (b *Bot) Send(ctx context.Context, chatID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := newMessage(chatID, text)
	if err != nil {
		return err
	}
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send to %s: %w", chatID, err)
	}
	return nil
}

func newMessage(chatID, text string) (tgbotapi.MessageConfig, error) {
	if id, err := strconv.ParseInt(chatID, 10, 64); err == nil {
		return tgbotapi.NewMessage(id, text), nil
	}
	if strings.HasPrefix(chatID, "@") {
		return tgbotapi.NewMessageToChannel(chatID, text), nil
	}
	return tgbotapi.MessageConfig{}, fmt.Errorf("invalid chat id %q", chatID)
}

// Replier отвечает обычным текстом в чат, из которого пришла команда.
type Replier struct {
	bot    *Bot
	chatID int64
}

func (b *Bot) Replier(chatID int64) *Replier {
	return &Replier{bot: b, chatID: chatID}
}

func (r *Replier) Reply(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := r.bot.api.Send(tgbotapi.NewMessage(r.chatID, text)); err != nil {
		return fmt.Errorf("reply to %d: %w", r.chatID, err)
	}
	return nil
}

// Listen получает обновления до отмены ctx или вызова Stop.
func (b *Bot) Listen(ctx context.Context, onStart StartFunc) {
	log := logger.Log.WithField("service", "telegram")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeout
	updates := b.api.GetUpdatesChan(u)

	log.WithField("bot", b.api.Self.UserName).Info("Listening for updates")
	for {
		select {
		case update, ok := <-updates:
			if !ok {
				log.Info("Update channel closed")
				return
			}
			b.handleUpdate(ctx, log, update, onStart)

		case <-ctx.Done():
			log.Info("Stopping listener by context")
			return
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, log *logger.Entry, update tgbotapi.Update, onStart StartFunc) {
	msg := update.Message
	if msg == nil || !msg.IsCommand() || msg.Chat == nil {
		return
	}

	log = log.WithFields(map[string]interface{}{
		"chat_id": msg.Chat.ID,
		"command": msg.Command(),
	})
	if msg.Command() != "start" {
		log.Debug("Ignoring command")
		return
	}

	log.Info("Start command received")
	onStart(ctx, msg.Chat.ID)
}

// Stop завершает long polling.
func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
}
