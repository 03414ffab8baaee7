package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/farm-helper/internal/database"
	"github.com/vladimiradmaev/farm-helper/internal/domain"
	"gorm.io/gorm"
)

const taskResource = "Task"

type TaskRepository struct {
	db *gorm.DB
}

func (r *TaskRepository) Create(ctx context.Context, t *database.FarmTask) error {
	return mapErr(r.db.WithContext(ctx).Create(t).Error, taskResource)
}

// List returns the user's tasks in calendar order.
func (r *TaskRepository) List(ctx context.Context, userID uuid.UUID) ([]database.FarmTask, error) {
	var tasks []database.FarmTask
	err := owned(ctx, r.db, userID).Order("scheduled_date ASC").Order("created_at ASC").Find(&tasks).Error
	return tasks, mapErr(err, taskResource)
}

func (r *TaskRepository) Get(ctx context.Context, userID, id uuid.UUID) (*database.FarmTask, error) {
	var t database.FarmTask
	if err := owned(ctx, r.db, userID).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, mapErr(err, taskResource)
	}
	return &t, nil
}

// SetStatus records a status change; completedAt is nil when the task is reopened.
func (r *TaskRepository) SetStatus(ctx context.Context, userID, id uuid.UUID, status domain.TaskStatus, completedAt *time.Time) error {
	tx := owned(ctx, r.db, userID).Model(&database.FarmTask{}).Where("id = ?", id).
		Updates(map[string]any{"status": status, "completed_at": completedAt})
	return requireAffected(tx, taskResource)
}

func (r *TaskRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return requireAffected(owned(ctx, r.db, userID).Where("id = ?", id).Delete(&database.FarmTask{}), taskResource)
}
