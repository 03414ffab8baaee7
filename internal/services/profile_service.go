package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/farm-helper/internal/database"
	"github.com/vladimiradmaev/farm-helper/internal/repository"
	"github.com/vladimiradmaev/farm-helper/internal/validation"
)

type ProfileService struct {
	profiles *repository.ProfileRepository
}

func NewProfileService(profiles *repository.ProfileRepository) *ProfileService {
	return &ProfileService{profiles: profiles}
}

func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*database.Profile, error) {
	return s.profiles.Get(ctx, userID)
}

// Save creates the user's profile on first use and overwrites it afterwards.
// The linked Telegram chat is left alone; only the bot's /link changes it.
func (s *ProfileService) Save(ctx context.Context, userID uuid.UUID, req validation.ProfileRequest) (*database.Profile, error) {
	p := &database.Profile{
		UserID:   userID,
		FullName: req.FullName,
		Phone:    req.Phone,
		Location: req.Location,
		FarmSize: req.FarmSize,
		SoilType: req.SoilType,
	}
	if err := s.profiles.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return s.profiles.Get(ctx, userID)
}

// LinkTelegram sends the user's weather alerts to chatID. The profile must exist.
func (s *ProfileService) LinkTelegram(ctx context.Context, userID uuid.UUID, chatID int64) error {
	return s.profiles.SetTelegramChat(ctx, userID, chatID)
}

// UnlinkTelegram reports whether chatID was linked to a profile.
func (s *ProfileService) UnlinkTelegram(ctx context.Context, chatID int64) (bool, error) {
	n, err := s.profiles.ClearTelegramChat(ctx, chatID)
	return n > 0, err
}
