package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/farm-helper/internal/database"
	apperrors "github.com/vladimiradmaev/farm-helper/internal/errors"
	"github.com/vladimiradmaev/farm-helper/internal/logger"
	"github.com/vladimiradmaev/farm-helper/internal/metrics"
	"github.com/vladimiradmaev/farm-helper/internal/notify"
	"github.com/vladimiradmaev/farm-helper/internal/repository"
	"github.com/vladimiradmaev/farm-helper/internal/weather"
	"gorm.io/datatypes"
)

// WeatherProvider is satisfied by *weather.Client.
type WeatherProvider interface {
	GetWeather(ctx context.Context, location string) (*weather.Report, error)
}

// WeatherNotificationResult is the response of a notification run.
type WeatherNotificationResult struct {
	Success           bool            `json:"success"`
	WeatherData       *weather.Report `json:"weather_data"`
	NotificationsSent int             `json:"notifications_sent"`
	Location          string          `json:"location"`
}

type WeatherService struct {
	provider        WeatherProvider
	notifications   *repository.NotificationRepository
	profiles        *repository.ProfileRepository
	notifier        notify.Notifier
	defaultLocation string
}

func NewWeatherService(provider WeatherProvider, repos *repository.Repositories, notifier notify.Notifier, defaultLocation string) *WeatherService {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &WeatherService{
		provider:        provider,
		notifications:   repos.Notifications,
		profiles:        repos.Profiles,
		notifier:        notifier,
		defaultLocation: defaultLocation,
	}
}

func (s *WeatherService) Get(ctx context.Context, location string) (*weather.Report, error) {
	return s.provider.GetWeather(ctx, location)
}

// Notify fetches weather for location (or the user's profile location, or the
// default), stores one notification per derived alert and pushes them to the
// user's Telegram chat when one is linked. A failed insert aborts the run;
// rows inserted before it are kept.
func (s *WeatherService) Notify(ctx context.Context, userID uuid.UUID, location string) (*WeatherNotificationResult, error) {
	log := logger.FromContext(ctx)

	profile, err := s.profiles.Get(ctx, userID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if location == "" && profile != nil {
		location = profile.Location
	}
	if location == "" {
		location = s.defaultLocation
	}

	log.Info("Fetching weather for notifications", "user_id", userID, "location", location)
	report, err := s.provider.GetWeather(ctx, location)
	if err != nil {
		return nil, err
	}

	alerts := weather.DeriveAlerts(report)
	for _, alert := range alerts {
		data, err := json.Marshal(alert.Data)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		row := &database.Notification{
			UserID:   userID,
			Type:     alert.Type,
			Title:    alert.Title,
			Message:  alert.Message,
			Severity: alert.Severity,
			Data:     datatypes.JSON(data),
		}
		if err := s.notifications.Create(ctx, row); err != nil {
			return nil, err
		}
		metrics.NotificationsCreated.WithLabelValues(string(alert.Severity)).Inc()
	}

	if profile != nil && profile.TelegramChatID != nil {
		if err := s.notifier.Notify(ctx, *profile.TelegramChatID, alerts); err != nil {
			log.Warn("Telegram delivery failed", "user_id", userID, "error", err)
		}
	}

	return &WeatherNotificationResult{
		Success:           true,
		WeatherData:       report,
		NotificationsSent: len(alerts),
		Location:          report.Location.Name,
	}, nil
}
