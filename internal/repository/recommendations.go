package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/farm-helper/internal/database"
	"gorm.io/gorm"
)

const recommendationResource = "Crop recommendation"

// RecommendationRepository is write-once: rows are never updated.
type RecommendationRepository struct {
	db *gorm.DB
}

func (r *RecommendationRepository) Create(ctx context.Context, rec *database.CropRecommendation) error {
	return mapErr(r.db.WithContext(ctx).Create(rec).Error, recommendationResource)
}

func (r *RecommendationRepository) List(ctx context.Context, userID uuid.UUID) ([]database.CropRecommendation, error) {
	var recs []database.CropRecommendation
	err := owned(ctx, r.db, userID).
		Order("recommendation_date DESC").
		Order("suitability_score DESC").
		Find(&recs).Error
	return recs, mapErr(err, recommendationResource)
}
