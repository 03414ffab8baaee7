package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/farm-helper/internal/database"
	"github.com/vladimiradmaev/farm-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/farm-helper/internal/errors"
	"github.com/vladimiradmaev/farm-helper/internal/repository"
	"github.com/vladimiradmaev/farm-helper/internal/validation"
)

type CropService struct {
	crops *repository.CropRepository
}

func NewCropService(crops *repository.CropRepository) *CropService {
	return &CropService{crops: crops}
}

// Create always inserts a new row; submitting the same form twice yields two crops.
func (s *CropService) Create(ctx context.Context, userID uuid.UUID, req validation.CropRequest) (*database.Crop, error) {
	planting, err := optionalDate("planting_date", req.PlantingDate)
	if err != nil {
		return nil, err
	}
	harvest, err := optionalDate("expected_harvest_date", req.ExpectedHarvestDate)
	if err != nil {
		return nil, err
	}

	stage := domain.StagePlanning
	if req.GrowthStage != "" {
		stage = domain.GrowthStage(req.GrowthStage)
	}

	crop := &database.Crop{
		UserID:              userID,
		Name:                req.Name,
		Variety:             req.Variety,
		Category:            req.Category,
		PlantingDate:        planting,
		ExpectedHarvestDate: harvest,
		GrowthStage:         stage,
		FieldLocation:       req.FieldLocation,
		AreaPlanted:         req.AreaPlanted,
		Notes:               req.Notes,
		Status:              domain.CropActive,
	}
	if err := s.crops.Create(ctx, crop); err != nil {
		return nil, err
	}
	return crop, nil
}

func (s *CropService) List(ctx context.Context, userID uuid.UUID) ([]database.Crop, error) {
	return s.crops.List(ctx, userID)
}

func (s *CropService) Get(ctx context.Context, userID, id uuid.UUID) (*database.Crop, error) {
	return s.crops.Get(ctx, userID, id)
}

// Update changes growth stage and/or status.
func (s *CropService) Update(ctx context.Context, userID, id uuid.UUID, req validation.CropUpdateRequest) (*database.Crop, error) {
	updates := map[string]any{}
	if req.GrowthStage != nil {
		updates["growth_stage"] = domain.GrowthStage(*req.GrowthStage)
	}
	if req.Status != nil {
		updates["status"] = domain.CropStatus(*req.Status)
	}
	if len(updates) == 0 {
		return nil, apperrors.NewValidationError("Nothing to update", apperrors.FieldError{
			Field: "growth_stage", Message: "growth_stage or status is required",
		})
	}
	return s.crops.Update(ctx, userID, id, updates)
}

func (s *CropService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.crops.Delete(ctx, userID, id)
}

func optionalDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(value)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid request", apperrors.FieldError{Field: field, Message: "must be a valid date in YYYY-MM-DD format"})
	}
	return &d, nil
}
