package notifier

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Config struct {
	BotToken string `envconfig:"TG_BOT_TOKEN"`
	ChatID   int64  `envconfig:"TG_CHAT_ID"`
}

// Telegram forwards notification messages to a single chat.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
	log    *zap.Logger
}

func NewTelegram(cfg Config, log *zap.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, errors.Wrap(err, "tgbotapi.NewBotAPI")
	}
	log.Info("telegram bot ready", zap.String("bot_username", api.Self.UserName))

	return &Telegram{
		api:    api,
		chatID: cfg.ChatID,
		log:    log.Named("telegram"),
	}, nil
}

func (t *Telegram) Send(message string) error {
	if _, err := t.api.Send(tgbotapi.NewMessage(t.chatID, message)); err != nil {
		return errors.Wrap(err, "telegram send")
	}
	return nil
}
