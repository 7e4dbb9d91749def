// Файл: pkg/telegram/service.go
package telegram

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/telebot.v3"
)

type ServiceInterface interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Sender - часть telebot.Bot, которая нам нужна. Позволяет подменить бота в тестах.
type Sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

type Service struct {
	sender Sender
	logger *zap.Logger
}

// NewBot создаёт бота без поллинга: сервис только отправляет сообщения.
func NewBot(token string) (*telebot.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("токен Telegram-бота не установлен")
	}
	bot, err := telebot.NewBot(telebot.Settings{Token: token, Offline: true})
	if err != nil {
		return nil, fmt.Errorf("не удалось создать Telegram-бота: %w", err)
	}
	return bot, nil
}

func NewService(sender Sender, logger *zap.Logger) ServiceInterface {
	return &Service{sender: sender, logger: logger}
}

func (s *Service) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	recipient := &telebot.User{ID: chatID}
	if _, err := s.sender.Send(recipient, text, &telebot.SendOptions{DisableWebPagePreview: true}); err != nil {
		return fmt.Errorf("ошибка отправки сообщения в Telegram (chat %d): %w", chatID, err)
	}

	s.logger.Debug("Сообщение отправлено в Telegram", zap.Int64("chatID", chatID))
	return nil
}

// NoopService используется, когда Telegram отключён в конфигурации.
type NoopService struct{}

func (NoopService) SendMessage(context.Context, int64, string) error { return nil }
