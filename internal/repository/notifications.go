package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/farm-helper/internal/database"
	"gorm.io/gorm"
)

const notificationResource = "Notification"

type NotificationRepository struct {
	db *gorm.DB
}

func (r *NotificationRepository) Create(ctx context.Context, n *database.Notification) error {
	return mapErr(r.db.WithContext(ctx).Create(n).Error, notificationResource)
}

// List returns newest first; limit <= 0 means no limit.
func (r *NotificationRepository) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]database.Notification, error) {
	q := owned(ctx, r.db, userID).Order("created_at DESC")
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []database.Notification
	return out, mapErr(q.Find(&out).Error, notificationResource)
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := owned(ctx, r.db, userID).Model(&database.Notification{}).Where("is_read = ?", false).Count(&n).Error
	return n, mapErr(err, notificationResource)
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	tx := owned(ctx, r.db, userID).Model(&database.Notification{}).Where("id = ?", id).Update("is_read", true)
	return requireAffected(tx, notificationResource)
}

// MarkAllRead returns how many notifications changed state.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	tx := owned(ctx, r.db, userID).Model(&database.Notification{}).Where("is_read = ?", false).Update("is_read", true)
	return tx.RowsAffected, mapErr(tx.Error, notificationResource)
}

func (r *NotificationRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return requireAffected(owned(ctx, r.db, userID).Where("id = ?", id).Delete(&database.Notification{}), notificationResource)
}
