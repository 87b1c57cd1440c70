// Package notify delivers best-effort outbound messages to Telegram chats.
// Nothing in here is load-bearing: callers log failures and move on.
package notify

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Telegram sends notifications through the Telegram Bot API and answers the
// /start command with a button opening the mini app.
type Telegram struct {
	bot       *tgbotapi.BotAPI
	webAppURL string
	logger    *zap.Logger
}

// NewTelegram connects to the Bot API with the given token.
func NewTelegram(token, webAppURL string, logger *zap.Logger) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}
	return &Telegram{bot: bot, webAppURL: webAppURL, logger: logger}, nil
}

// JoinRequest notifies the room owner about a new join request.
func (t *Telegram) JoinRequest(_ context.Context, ownerTgID, applicantName, applicantUsername, roomTitle string) error {
	chatID, err := strconv.ParseInt(ownerTgID, 10, 64)
	if err != nil {
		return fmt.Errorf("bad owner chat id %q: %w", ownerTgID, err)
	}

	text := fmt.Sprintf("New join request for %q from: %s", roomTitle, applicantName)
	if applicantUsername != "" {
		text += " (@" + applicantUsername + ")"
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = t.openAppKeyboard()

	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("send join request notification: %w", err)
	}
	return nil
}

// Start runs the long-polling loop answering /start with a button that
// opens the mini app. It blocks until ctx is done.
func (t *Telegram) Start(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := t.bot.GetUpdatesChan(cfg)

	t.logger.Info("telegram bot started", zap.String("username", t.bot.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			t.bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || !update.Message.IsCommand() || update.Message.Command() != "start" {
				continue
			}

			msg := tgbotapi.NewMessage(update.Message.Chat.ID, "Welcome to CampusLink! Open the mini app:")
			msg.ReplyMarkup = t.openAppKeyboard()
			if _, err := t.bot.Send(msg); err != nil {
				t.logger.Warn("failed to answer /start", zap.Error(err))
			}
		}
	}
}

func (t *Telegram) openAppKeyboard() tgbotapi.InlineKeyboardMarkup {
	button := tgbotapi.NewInlineKeyboardButtonURL("Open CampusLink", t.webAppURL)
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(button))
}
