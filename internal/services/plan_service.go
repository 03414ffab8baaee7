package services

import (
	"context"

	"github.com/vladimiradmaev/farm-helper/internal/ai"
	"github.com/vladimiradmaev/farm-helper/internal/domain"
	"github.com/vladimiradmaev/farm-helper/internal/validation"
)

// PlanGenerator is satisfied by *ai.Gateway.
type PlanGenerator interface {
	GenerateCultivationPlan(ctx context.Context, in ai.PlanInput) ([]domain.PlanActivity, error)
}

// PlanService generates cultivation plans. Plans are not stored; individual
// activities become tasks through TaskService.AddActivity.
type PlanService struct {
	generator PlanGenerator
}

func NewPlanService(generator PlanGenerator) *PlanService {
	return &PlanService{generator: generator}
}

func (s *PlanService) Generate(ctx context.Context, req validation.PlanRequest) ([]domain.PlanActivity, error) {
	return s.generator.GenerateCultivationPlan(ctx, ai.PlanInput{
		CropName:            req.CropName,
		Variety:             req.Variety,
		PlantingDate:        req.PlantingDate,
		ExpectedHarvestDate: req.ExpectedHarvestDate,
		SoilType:            req.SoilType,
		Location:            req.Location,
	})
}
