package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/farm-helper/internal/database"
	"github.com/vladimiradmaev/farm-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/farm-helper/internal/errors"
	"github.com/vladimiradmaev/farm-helper/internal/metrics"
	"github.com/vladimiradmaev/farm-helper/internal/repository"
	"github.com/vladimiradmaev/farm-helper/internal/rules"
	"github.com/vladimiradmaev/farm-helper/internal/validation"
)

// SoilService records soil tests and turns them into crop recommendations.
type SoilService struct {
	soilTests       *repository.SoilTestRepository
	recommendations *repository.RecommendationRepository
	engine          *rules.Engine
	now             func() time.Time
}

func NewSoilService(repos *repository.Repositories, engine *rules.Engine, now func() time.Time) *SoilService {
	if now == nil {
		now = time.Now
	}
	return &SoilService{
		soilTests:       repos.SoilTests,
		recommendations: repos.Recommendations,
		engine:          engine,
		now:             now,
	}
}

func (s *SoilService) Create(ctx context.Context, userID uuid.UUID, req validation.SoilTestRequest) (*database.SoilTest, error) {
	testDate := today(s.now())
	if req.TestDate != "" {
		d, err := domain.ParseDate(req.TestDate)
		if err != nil {
			return nil, apperrors.NewValidationError("Invalid request", apperrors.FieldError{Field: "test_date", Message: "must be a valid date in YYYY-MM-DD format"})
		}
		testDate = d
	}

	test := &database.SoilTest{
		UserID:                  userID,
		Location:                req.Location,
		Latitude:                req.Latitude,
		Longitude:               req.Longitude,
		PHLevel:                 req.PHLevel,
		NitrogenLevel:           req.NitrogenLevel,
		PhosphorusLevel:         req.PhosphorusLevel,
		PotassiumLevel:          req.PotassiumLevel,
		OrganicMatterPercentage: req.OrganicMatterPercentage,
		SoilType:                req.SoilType,
		SoilTexture:             req.SoilTexture,
		DrainageQuality:         req.DrainageQuality,
		TestDate:                testDate,
		Notes:                   req.Notes,
	}
	if err := s.soilTests.Create(ctx, test); err != nil {
		return nil, err
	}
	return test, nil
}

func (s *SoilService) List(ctx context.Context, userID uuid.UUID) ([]database.SoilTest, error) {
	return s.soilTests.List(ctx, userID)
}

func (s *SoilService) Get(ctx context.Context, userID, id uuid.UUID) (*database.SoilTest, error) {
	return s.soilTests.Get(ctx, userID, id)
}

func (s *SoilService) Latest(ctx context.Context, userID uuid.UUID) (*database.SoilTest, error) {
	return s.soilTests.Latest(ctx, userID)
}

// Recommend runs the rule engine on one of the user's soil tests and stores
// a recommendation row per matched crop.
func (s *SoilService) Recommend(ctx context.Context, userID, soilTestID uuid.UUID) ([]rules.Recommendation, error) {
	test, err := s.soilTests.Get(ctx, userID, soilTestID)
	if err != nil {
		return nil, err
	}
	return s.recommend(ctx, test)
}

func (s *SoilService) RecommendLatest(ctx context.Context, userID uuid.UUID) ([]rules.Recommendation, error) {
	test, err := s.soilTests.Latest(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.recommend(ctx, test)
}

func (s *SoilService) recommend(ctx context.Context, test *database.SoilTest) ([]rules.Recommendation, error) {
	recs := s.engine.Recommend(rules.Soil{
		PH:            test.PHLevel,
		Nitrogen:      test.NitrogenLevel,
		OrganicMatter: test.OrganicMatterPercentage,
		SoilType:      test.SoilType,
	})
	metrics.RecommendationsProduced.Observe(float64(len(recs)))

	now := s.now().UTC()
	for _, rec := range recs {
		row := &database.CropRecommendation{
			UserID:             test.UserID,
			SoilTestID:         test.ID,
			RecommendedCrop:    rec.Crop,
			Season:             rec.Season,
			AvgTemperature:     rec.AvgTemperature,
			AvgRainfall:        rec.AvgRainfall,
			SoilType:           rec.SoilType,
			SuitabilityScore:   rec.SuitabilityScore,
			RecommendationDate: now,
		}
		if err := s.recommendations.Create(ctx, row); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

func (s *SoilService) ListRecommendations(ctx context.Context, userID uuid.UUID) ([]database.CropRecommendation, error) {
	return s.recommendations.List(ctx, userID)
}

func today(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
