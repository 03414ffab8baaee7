// Package bot runs the Telegram companion bot: it links a chat to a farm
// profile for weather alerts and answers quick weather lookups.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/vladimiradmaev/farm-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/farm-helper/internal/errors"
	"github.com/vladimiradmaev/farm-helper/internal/weather"
)

// TokenVerifier resolves an app bearer token to its user.
type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

// ChatLinker stores which chat receives a user's alerts.
type ChatLinker interface {
	LinkTelegram(ctx context.Context, userID uuid.UUID, chatID int64) error
	UnlinkTelegram(ctx context.Context, chatID int64) (bool, error)
}

// WeatherLookup fetches a report for a free-form location.
type WeatherLookup interface {
	Get(ctx context.Context, location string) (*weather.Report, error)
}

type Bot struct {
	api      *tgbotapi.BotAPI
	verifier TokenVerifier
	linker   ChatLinker
	weather  WeatherLookup
	logger   *slog.Logger
}

func New(api *tgbotapi.BotAPI, verifier TokenVerifier, linker ChatLinker, lookup WeatherLookup, logger *slog.Logger) *Bot {
	return &Bot{api: api, verifier: verifier, linker: linker, weather: lookup, logger: logger}
}

// Start long-polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()
	b.logger.Info("Bot is now listening for updates", "account", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Bot is shutting down")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := b.handleUpdate(ctx, update); err != nil {
				b.logger.Error("Error handling update", "update_id", update.UpdateID, "error", err)
			}
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	msg := update.Message
	if msg == nil {
		return nil
	}
	if !msg.IsCommand() {
		return b.reply(msg.Chat.ID, "Use /help to see what I can do.")
	}

	b.logger.Info("Handling command", "command", msg.Command(), "chat_id", msg.Chat.ID)
	switch msg.Command() {
	case "start", "help":
		return b.reply(msg.Chat.ID, helpText)
	case "link":
		return b.handleLink(ctx, msg)
	case "unlink":
		return b.handleUnlink(ctx, msg.Chat.ID)
	case "weather":
		return b.handleWeather(ctx, msg.Chat.ID, msg.CommandArguments())
	default:
		return b.reply(msg.Chat.ID, "Unknown command. Use /help to see the available commands.")
	}
}

const helpText = `🌾 Farm Helper bot

/link <code> - receive weather alerts in this chat (copy the code from the app settings)
/unlink - stop weather alerts in this chat
/weather <city> - current weather and alerts for a location
/help - show this message`

func (b *Bot) handleLink(ctx context.Context, msg *tgbotapi.Message) error {
	code := strings.TrimSpace(msg.CommandArguments())
	if code == "" {
		return b.reply(msg.Chat.ID, "Usage: /link <code>")
	}

	// the code is a bearer token, so it should not stay in the chat history
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(msg.Chat.ID, msg.MessageID)); err != nil {
		b.logger.Warn("Failed to delete link message", "chat_id", msg.Chat.ID, "error", err)
	}

	userID, err := b.verifier.Verify(code)
	if err != nil {
		return b.reply(msg.Chat.ID, "❌ That code is invalid or expired. Generate a new one in the app.")
	}
	if err := b.linker.LinkTelegram(ctx, userID, msg.Chat.ID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return b.reply(msg.Chat.ID, "Create your farm profile in the app first, then try again.")
		}
		return fmt.Errorf("failed to link chat %d: %w", msg.Chat.ID, err)
	}
	b.logger.Info("Chat linked", "chat_id", msg.Chat.ID, "user_id", userID)
	return b.reply(msg.Chat.ID, "✅ Linked. Weather alerts will be delivered to this chat.")
}

func (b *Bot) handleUnlink(ctx context.Context, chatID int64) error {
	removed, err := b.linker.UnlinkTelegram(ctx, chatID)
	if err != nil {
		return fmt.Errorf("failed to unlink chat %d: %w", chatID, err)
	}
	if !removed {
		return b.reply(chatID, "This chat is not linked to a farm profile.")
	}
	return b.reply(chatID, "Unlinked. You will no longer receive weather alerts here.")
}

func (b *Bot) handleWeather(ctx context.Context, chatID int64, location string) error {
	location = strings.TrimSpace(location)
	if location == "" || len(location) > 100 {
		return b.reply(chatID, "Usage: /weather <city>, e.g. /weather Chennai,IN")
	}

	report, err := b.weather.Get(ctx, location)
	if err != nil {
		if appErr, ok := apperrors.As(err); ok && appErr.HTTPStatus() < 500 {
			return b.reply(chatID, "⚠️ "+appErr.Message)
		}
		b.logger.Error("Weather lookup failed", "location", location, "error", err)
		return b.reply(chatID, "⚠️ Failed to fetch weather data. Please try again later.")
	}
	return b.reply(chatID, formatReport(report))
}

func formatReport(r *weather.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🌤 %s", r.Location.Name)
	if r.Location.Country != "" {
		fmt.Fprintf(&sb, ", %s", r.Location.Country)
	}
	fmt.Fprintf(&sb, "\n%s, %d°C (feels like %d°C)\nHumidity %d%%, wind %.1f m/s, rain chance %.0f%%",
		r.Current.Description, r.Current.Temperature, r.Current.FeelsLike,
		r.Current.Humidity, r.Current.WindSpeed, r.Current.RainChance)

	for _, a := range weather.DeriveAlerts(r) {
		if a.Severity == domain.SeverityLow {
			continue
		}
		fmt.Fprintf(&sb, "\n\n⚠️ %s\n%s", a.Title, a.Message)
	}
	return sb.String()
}

func (b *Bot) reply(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
