package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/farm-helper/internal/database"
	"gorm.io/gorm"
)

const cropResource = "Crop"

type CropRepository struct {
	db *gorm.DB
}

func (r *CropRepository) Create(ctx context.Context, c *database.Crop) error {
	return mapErr(r.db.WithContext(ctx).Create(c).Error, cropResource)
}

func (r *CropRepository) List(ctx context.Context, userID uuid.UUID) ([]database.Crop, error) {
	var crops []database.Crop
	err := owned(ctx, r.db, userID).Order("created_at DESC").Find(&crops).Error
	return crops, mapErr(err, cropResource)
}

func (r *CropRepository) Get(ctx context.Context, userID, id uuid.UUID) (*database.Crop, error) {
	var c database.Crop
	if err := owned(ctx, r.db, userID).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, mapErr(err, cropResource)
	}
	return &c, nil
}

// Update applies column updates to one of the user's crops and returns the new row.
func (r *CropRepository) Update(ctx context.Context, userID, id uuid.UUID, updates map[string]any) (*database.Crop, error) {
	if len(updates) > 0 {
		tx := owned(ctx, r.db, userID).Model(&database.Crop{}).Where("id = ?", id).Updates(updates)
		if err := requireAffected(tx, cropResource); err != nil {
			return nil, err
		}
	}
	return r.Get(ctx, userID, id)
}

func (r *CropRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return requireAffected(owned(ctx, r.db, userID).Where("id = ?", id).Delete(&database.Crop{}), cropResource)
}
