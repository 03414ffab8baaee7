// Package notify pushes persisted notifications to a user's Telegram chat.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/farm-helper/internal/domain"
)

// Notifier delivers drafts to a chat. Delivery is best effort: callers log
// the error and carry on.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, drafts []domain.NotificationDraft) error
}

// Noop is used when no bot token is configured.
type Noop struct{}

func (Noop) Notify(context.Context, int64, []domain.NotificationDraft) error { return nil }

type Telegram struct {
	api    *tgbotapi.BotAPI
	logger *slog.Logger
}

// NewTelegramWithAPI shares one bot client with the companion bot.
func NewTelegramWithAPI(api *tgbotapi.BotAPI, logger *slog.Logger) *Telegram {
	logger.Info("Telegram bot authorized", "account", api.Self.UserName)
	return &Telegram{api: api, logger: logger}
}

func (t *Telegram) Notify(ctx context.Context, chatID int64, drafts []domain.NotificationDraft) error {
	for _, d := range drafts {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(chatID, format(d))
		if _, err := t.api.Send(msg); err != nil {
			return fmt.Errorf("failed to send %q to chat %d: %w", d.Title, chatID, err)
		}
	}
	return nil
}

func format(d domain.NotificationDraft) string {
	return fmt.Sprintf("%s %s\n\n%s", badge(d.Severity), d.Title, d.Message)
}

func badge(s domain.Severity) string {
	switch s {
	case domain.SeverityCritical:
		return "🚨"
	case domain.SeverityHigh:
		return "🔴"
	case domain.SeverityMedium:
		return "🟠"
	default:
		return "🟢"
	}
}
