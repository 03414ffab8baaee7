package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/farm-helper/internal/database"
	"gorm.io/gorm"
)

const detectionResource = "Disease detection"

type DetectionRepository struct {
	db *gorm.DB
}

func (r *DetectionRepository) Create(ctx context.Context, d *database.DiseaseDetection) error {
	return mapErr(r.db.WithContext(ctx).Create(d).Error, detectionResource)
}

func (r *DetectionRepository) List(ctx context.Context, userID uuid.UUID) ([]database.DiseaseDetection, error) {
	var detections []database.DiseaseDetection
	err := owned(ctx, r.db, userID).Order("created_at DESC").Find(&detections).Error
	return detections, mapErr(err, detectionResource)
}
