package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	apperrors "github.com/vladimiradmaev/farm-helper/internal/errors"
	"gorm.io/gorm"
)

// Repositories groups the per-entity repositories over one connection.
type Repositories struct {
	SoilTests       *SoilTestRepository
	Crops           *CropRepository
	Recommendations *RecommendationRepository
	Tasks           *TaskRepository
	Detections      *DetectionRepository
	Notifications   *NotificationRepository
	Profiles        *ProfileRepository
}

func New(db *gorm.DB) *Repositories {
	return &Repositories{
		SoilTests:       &SoilTestRepository{db: db},
		Crops:           &CropRepository{db: db},
		Recommendations: &RecommendationRepository{db: db},
		Tasks:           &TaskRepository{db: db},
		Detections:      &DetectionRepository{db: db},
		Notifications:   &NotificationRepository{db: db},
		Profiles:        &ProfileRepository{db: db},
	}
}

// owned restricts every statement to rows belonging to userID.
func owned(ctx context.Context, db *gorm.DB, userID uuid.UUID) *gorm.DB {
	return db.WithContext(ctx).Where("user_id = ?", userID)
}

func mapErr(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NewNotFoundError(resource)
	}
	return apperrors.NewDatabaseError(err).WithContext("resource", resource)
}

func requireAffected(tx *gorm.DB, resource string) error {
	if tx.Error != nil {
		return mapErr(tx.Error, resource)
	}
	if tx.RowsAffected == 0 {
		return apperrors.NewNotFoundError(resource)
	}
	return nil
}
