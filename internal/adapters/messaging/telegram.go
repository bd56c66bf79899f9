package messaging

import (
	"context"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"stockpulse/internal/adapters/config"
	"stockpulse/pkg/errors"
	"stockpulse/pkg/logger"
)

// Ensure TelegramSender implements Sender
var _ Sender = (*TelegramSender)(nil)

// TelegramSender delivers messages through the Telegram Bot API.
// User ids on this channel are numeric chat ids.
type TelegramSender struct {
	api         *tgbotapi.BotAPI
	rateLimiter *rate.Limiter
	log         *logger.Logger
}

// NewTelegramSender creates a Telegram sender
func NewTelegramSender(cfg config.MessagingConfig) (*TelegramSender, error) {
	if cfg.TelegramBotToken == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "telegram bot token is required")
	}

	limit := cfg.RateLimitRate
	if limit == 0 {
		limit = 20 // Conservative: Telegram limit is 30 msg/sec
	}
	burst := cfg.RateLimitBurst
	if burst == 0 {
		burst = 30
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, errors.Wrap(err, "create telegram bot")
	}

	log := logger.Get().With("component", "telegram_sender")
	log.Infof("Authorized on account %s", api.Self.UserName)

	return &TelegramSender{
		api:         api,
		rateLimiter: rate.NewLimiter(rate.Limit(limit), burst),
		log:         log,
	}, nil
}

// Send delivers a message to the user's chat
func (s *TelegramSender) Send(ctx context.Context, userID, text string) error {
	chatID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "telegram user id must be a chat id: %q", userID)
	}

	if err := s.rateLimiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "telegram rate limiter")
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := s.api.Send(msg); err != nil {
		return errors.Wrap(err, "send telegram message")
	}

	s.log.Infow("Message delivered", "chat_id", chatID, "chars", len(text))
	return nil
}
