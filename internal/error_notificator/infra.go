package error_notificator

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Infra delivers alerts to a single admin chat through a Telegram bot.
type Infra struct {
	bot    sender
	chatID int64
	source string
}

func NewTelegramInfra(token string, chatID int64, source string) (*Infra, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram alert bot: %w", err)
	}
	return &Infra{bot: bot, chatID: chatID, source: source}, nil
}

func (i *Infra) Notify(_ context.Context, err error, details string) error {
	text := fmt.Sprintf(
		"❗ Error in %s\n\nError: %v\n\nDetails: %s",
		i.source,
		err,
		details,
	)

	if _, sendErr := i.bot.Send(tgbotapi.NewMessage(i.chatID, text)); sendErr != nil {
		return fmt.Errorf("send alert: %w", sendErr)
	}
	return nil
}

// Noop is used when alerts are not configured.
type Noop struct{}

func (Noop) Notify(context.Context, error, string) error { return nil }
