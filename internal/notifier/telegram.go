package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/rinodehi1978/resell-trap/internal/config"
	"github.com/rinodehi1978/resell-trap/internal/model"

	"gopkg.in/telebot.v4"
)

// TelegramNotifier sends notifications to a single operator chat.
type TelegramNotifier struct {
	bot    *telebot.Bot
	chatId int64
}

func NewTelegramNotifier(cfg config.TelegramConfig) (*TelegramNotifier, error) {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.Token,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, err
	}

	return &TelegramNotifier{
		bot:    bot,
		chatId: cfg.ChatId,
	}, nil
}

func (n *TelegramNotifier) Notify(_ context.Context, notification model.Notification) error {
	message := fmt.Sprintf("[%s] %s", notification.App, notification.Message)
	_, err := n.bot.Send(telebot.ChatID(n.chatId), message)
	return err
}
