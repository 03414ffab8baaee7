package interfaces

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/farm-helper/internal/database"
	"github.com/vladimiradmaev/farm-helper/internal/domain"
	"github.com/vladimiradmaev/farm-helper/internal/export"
	"github.com/vladimiradmaev/farm-helper/internal/rules"
	"github.com/vladimiradmaev/farm-helper/internal/services"
	"github.com/vladimiradmaev/farm-helper/internal/validation"
	"github.com/vladimiradmaev/farm-helper/internal/weather"
)

// DiseaseServiceInterface defines the contract for disease analysis and image uploads
type DiseaseServiceInterface interface {
	Analyze(ctx context.Context, userID uuid.UUID, req validation.DiseaseRequest) (*domain.DiagnosisResult, error)
	UploadImages(ctx context.Context, userID uuid.UUID, files []services.Upload) ([]string, error)
	ListDetections(ctx context.Context, userID uuid.UUID) ([]database.DiseaseDetection, error)
}

// PlanServiceInterface defines the contract for cultivation plan generation
type PlanServiceInterface interface {
	Generate(ctx context.Context, req validation.PlanRequest) ([]domain.PlanActivity, error)
}

// WeatherServiceInterface defines the contract for weather lookups and alert runs
type WeatherServiceInterface interface {
	Get(ctx context.Context, location string) (*weather.Report, error)
	Notify(ctx context.Context, userID uuid.UUID, location string) (*services.WeatherNotificationResult, error)
}

// SoilServiceInterface defines the contract for soil tests and crop recommendations
type SoilServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID, req validation.SoilTestRequest) (*database.SoilTest, error)
	List(ctx context.Context, userID uuid.UUID) ([]database.SoilTest, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*database.SoilTest, error)
	Latest(ctx context.Context, userID uuid.UUID) (*database.SoilTest, error)
	Recommend(ctx context.Context, userID, soilTestID uuid.UUID) ([]rules.Recommendation, error)
	RecommendLatest(ctx context.Context, userID uuid.UUID) ([]rules.Recommendation, error)
	ListRecommendations(ctx context.Context, userID uuid.UUID) ([]database.CropRecommendation, error)
}

// CropServiceInterface defines the contract for crop operations
type CropServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID, req validation.CropRequest) (*database.Crop, error)
	List(ctx context.Context, userID uuid.UUID) ([]database.Crop, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*database.Crop, error)
	Update(ctx context.Context, userID, id uuid.UUID, req validation.CropUpdateRequest) (*database.Crop, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// TaskServiceInterface defines the contract for farm task operations
type TaskServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID, req validation.TaskRequest) (*database.FarmTask, error)
	AddActivity(ctx context.Context, userID uuid.UUID, req validation.ActivityTaskRequest) (*database.FarmTask, error)
	List(ctx context.Context, userID uuid.UUID) ([]database.FarmTask, error)
	Toggle(ctx context.Context, userID, id uuid.UUID) (*database.FarmTask, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// NotificationServiceInterface defines the contract for notification operations
type NotificationServiceInterface interface {
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) (*services.NotificationPage, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// ProfileServiceInterface defines the contract for profile operations
type ProfileServiceInterface interface {
	Get(ctx context.Context, userID uuid.UUID) (*database.Profile, error)
	Save(ctx context.Context, userID uuid.UUID, req validation.ProfileRequest) (*database.Profile, error)
}

// ExportServiceInterface defines the contract for dataset exports
type ExportServiceInterface interface {
	Write(ctx context.Context, w io.Writer, userID uuid.UUID, dataset string, format export.Format) error
}

var (
	_ DiseaseServiceInterface      = (*services.DiseaseService)(nil)
	_ PlanServiceInterface         = (*services.PlanService)(nil)
	_ WeatherServiceInterface      = (*services.WeatherService)(nil)
	_ SoilServiceInterface         = (*services.SoilService)(nil)
	_ CropServiceInterface         = (*services.CropService)(nil)
	_ TaskServiceInterface         = (*services.TaskService)(nil)
	_ NotificationServiceInterface = (*services.NotificationService)(nil)
	_ ProfileServiceInterface      = (*services.ProfileService)(nil)
	_ ExportServiceInterface       = (*services.ExportService)(nil)
)
