package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/farm-helper/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const profileResource = "Profile"

type ProfileRepository struct {
	db *gorm.DB
}

// Upsert inserts the profile or overwrites the editable columns of the existing
// one. telegram_chat_id is not editable here, see SetTelegramChat.
func (r *ProfileRepository) Upsert(ctx context.Context, p *database.Profile) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"full_name", "phone", "location", "farm_size", "soil_type", "updated_at",
		}),
	}).Create(p).Error
	return mapErr(err, profileResource)
}

func (r *ProfileRepository) Get(ctx context.Context, userID uuid.UUID) (*database.Profile, error) {
	var p database.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, mapErr(err, profileResource)
	}
	return &p, nil
}

// SetTelegramChat points the user's alerts at chatID, moving the chat off any
// other profile it was linked to.
func (r *ProfileRepository) SetTelegramChat(ctx context.Context, userID uuid.UUID, chatID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&database.Profile{}).
			Where("telegram_chat_id = ? AND user_id <> ?", chatID, userID).
			Update("telegram_chat_id", nil).Error; err != nil {
			return mapErr(err, profileResource)
		}
		return requireAffected(tx.Model(&database.Profile{}).
			Where("user_id = ?", userID).
			Update("telegram_chat_id", chatID), profileResource)
	})
}

// ClearTelegramChat unlinks chatID from whichever profile holds it.
func (r *ProfileRepository) ClearTelegramChat(ctx context.Context, chatID int64) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&database.Profile{}).
		Where("telegram_chat_id = ?", chatID).
		Update("telegram_chat_id", nil)
	return tx.RowsAffected, mapErr(tx.Error, profileResource)
}
