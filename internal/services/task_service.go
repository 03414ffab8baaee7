package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/farm-helper/internal/database"
	"github.com/vladimiradmaev/farm-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/farm-helper/internal/errors"
	"github.com/vladimiradmaev/farm-helper/internal/repository"
	"github.com/vladimiradmaev/farm-helper/internal/validation"
)

// Activities in the first month of a plan are scheduled as high priority.
const highPriorityDays = 30

type TaskService struct {
	tasks *repository.TaskRepository
	now   func() time.Time
}

func NewTaskService(tasks *repository.TaskRepository, now func() time.Time) *TaskService {
	if now == nil {
		now = time.Now
	}
	return &TaskService{tasks: tasks, now: now}
}

func (s *TaskService) Create(ctx context.Context, userID uuid.UUID, req validation.TaskRequest) (*database.FarmTask, error) {
	scheduled, err := domain.ParseDate(req.ScheduledDate)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid request", apperrors.FieldError{Field: "scheduled_date", Message: "must be a valid date in YYYY-MM-DD format"})
	}

	task := &database.FarmTask{
		UserID:          userID,
		CropName:        req.CropName,
		TaskType:        req.TaskType,
		TaskDescription: req.TaskDescription,
		ScheduledDate:   scheduled,
		Priority:        domain.Priority(req.Priority),
		Status:          domain.TaskPending,
		Notes:           req.Notes,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// AddActivity schedules one generated plan activity as a pending task,
// counting day 1 as the planting date.
func (s *TaskService) AddActivity(ctx context.Context, userID uuid.UUID, req validation.ActivityTaskRequest) (*database.FarmTask, error) {
	planting, err := domain.ParseDate(req.PlantingDate)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid request", apperrors.FieldError{Field: "planting_date", Message: "must be a valid date in YYYY-MM-DD format"})
	}

	task := ActivityTask(userID, req.CropName, planting, req.Activity)
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// ActivityTask maps a plan activity onto a new task row.
func ActivityTask(userID uuid.UUID, cropName string, planting time.Time, a validation.ActivityInput) *database.FarmTask {
	priority := domain.PriorityMedium
	if a.DayNumber <= highPriorityDays {
		priority = domain.PriorityHigh
	}

	var notes string
	if len(a.RequiredResources) > 0 {
		notes = "Resources: " + strings.Join(a.RequiredResources, ", ")
	}

	return &database.FarmTask{
		UserID:          userID,
		CropName:        cropName,
		TaskType:        a.Activity,
		TaskDescription: a.Description,
		ScheduledDate:   planting.AddDate(0, 0, a.DayNumber-1),
		Priority:        priority,
		Status:          domain.TaskPending,
		Notes:           notes,
	}
}

func (s *TaskService) List(ctx context.Context, userID uuid.UUID) ([]database.FarmTask, error) {
	return s.tasks.List(ctx, userID)
}

// Toggle flips a task between pending and completed, stamping or clearing
// completed_at.
func (s *TaskService) Toggle(ctx context.Context, userID, id uuid.UUID) (*database.FarmTask, error) {
	task, err := s.tasks.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	status := domain.TaskCompleted
	var completedAt *time.Time
	if task.Status == domain.TaskCompleted {
		status = domain.TaskPending
	} else {
		now := s.now().UTC()
		completedAt = &now
	}

	if err := s.tasks.SetStatus(ctx, userID, id, status, completedAt); err != nil {
		return nil, err
	}
	task.Status = status
	task.CompletedAt = completedAt
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.tasks.Delete(ctx, userID, id)
}
