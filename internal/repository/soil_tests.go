package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/farm-helper/internal/database"
	"gorm.io/gorm"
)

const soilTestResource = "Soil test"

// SoilTestRepository stores soil tests. There is no update path: tests are immutable.
type SoilTestRepository struct {
	db *gorm.DB
}

func (r *SoilTestRepository) Create(ctx context.Context, t *database.SoilTest) error {
	return mapErr(r.db.WithContext(ctx).Create(t).Error, soilTestResource)
}

// List returns the user's soil tests, newest test date first.
func (r *SoilTestRepository) List(ctx context.Context, userID uuid.UUID) ([]database.SoilTest, error) {
	var tests []database.SoilTest
	err := owned(ctx, r.db, userID).Order("test_date DESC").Order("created_at DESC").Find(&tests).Error
	return tests, mapErr(err, soilTestResource)
}

func (r *SoilTestRepository) Get(ctx context.Context, userID, id uuid.UUID) (*database.SoilTest, error) {
	var t database.SoilTest
	if err := owned(ctx, r.db, userID).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, mapErr(err, soilTestResource)
	}
	return &t, nil
}

func (r *SoilTestRepository) Latest(ctx context.Context, userID uuid.UUID) (*database.SoilTest, error) {
	var t database.SoilTest
	err := owned(ctx, r.db, userID).Order("test_date DESC").Order("created_at DESC").First(&t).Error
	if err != nil {
		return nil, mapErr(err, soilTestResource)
	}
	return &t, nil
}
