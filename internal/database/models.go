package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/farm-helper/internal/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Model carries the generated primary key shared by user-owned rows.
type Model struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
}

func (m *Model) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type SoilTest struct {
	Model
	UserID                  uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Location                string    `gorm:"size:200" json:"location"`
	Latitude                *float64  `json:"latitude"`
	Longitude               *float64  `json:"longitude"`
	PHLevel                 *float64  `gorm:"column:ph_level" json:"ph_level"`
	NitrogenLevel           *float64  `json:"nitrogen_level"`
	PhosphorusLevel         *float64  `json:"phosphorus_level"`
	PotassiumLevel          *float64  `json:"potassium_level"`
	OrganicMatterPercentage *float64  `json:"organic_matter_percentage"`
	SoilType                string    `gorm:"size:50" json:"soil_type"`
	SoilTexture             string    `gorm:"size:50" json:"soil_texture"`
	DrainageQuality         string    `gorm:"size:50" json:"drainage_quality"`
	TestDate                time.Time `json:"test_date"`
	Notes                   string    `gorm:"size:1000" json:"notes"`
	CreatedAt               time.Time `json:"created_at"`
}

type Crop struct {
	Model
	UserID              uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name                string             `gorm:"size:100;not null" json:"name"`
	Variety             string             `gorm:"size:100" json:"variety"`
	Category            string             `gorm:"size:50" json:"category"`
	PlantingDate        *time.Time         `json:"planting_date"`
	ExpectedHarvestDate *time.Time         `json:"expected_harvest_date"`
	GrowthStage         domain.GrowthStage `gorm:"size:20;default:planning" json:"growth_stage"`
	FieldLocation       string             `gorm:"size:200" json:"field_location"`
	AreaPlanted         *float64           `json:"area_planted"`
	Notes               string             `gorm:"size:1000" json:"notes"`
	Status              domain.CropStatus  `gorm:"size:20;default:active" json:"status"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

type CropRecommendation struct {
	Model
	UserID             uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	SoilTestID         uuid.UUID `gorm:"type:uuid" json:"soil_test_id"`
	RecommendedCrop    string    `gorm:"size:100" json:"recommended_crop"`
	Season             string    `gorm:"size:50" json:"season"`
	AvgTemperature     float64   `json:"avg_temperature"`
	AvgRainfall        float64   `json:"avg_rainfall"`
	SoilType           string    `gorm:"size:50" json:"soil_type"`
	SuitabilityScore   int       `json:"suitability_score"`
	RecommendationDate time.Time `json:"recommendation_date"`
}

type FarmTask struct {
	Model
	UserID          uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	CropName        string            `gorm:"size:100" json:"crop_name"`
	TaskType        string            `gorm:"size:100" json:"task_type"`
	TaskDescription string            `gorm:"size:500" json:"task_description"`
	ScheduledDate   time.Time         `json:"scheduled_date"`
	Priority        domain.Priority   `gorm:"size:10;default:medium" json:"priority"`
	Status          domain.TaskStatus `gorm:"size:10;default:pending" json:"status"`
	Notes           string            `gorm:"size:1000" json:"notes"`
	CompletedAt     *time.Time        `json:"completed_at"`
	CreatedAt       time.Time         `json:"created_at"`
}

type DiseaseDetection struct {
	Model
	UserID                  uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	ImageURL                string    `json:"image_url"`
	CropType                string    `gorm:"size:30" json:"crop_type"`
	DetectedDisease         string    `json:"detected_disease"`
	ConfidenceScore         float64   `json:"confidence_score"`
	Symptoms                string    `json:"symptoms"`
	TreatmentRecommendation string    `json:"treatment_recommendation"`
	PreventionMethods       string    `json:"prevention_methods"`
	CreatedAt               time.Time `json:"created_at"`
}

type Notification struct {
	Model
	UserID    uuid.UUID               `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      domain.NotificationType `gorm:"size:30" json:"type"`
	Title     string                  `gorm:"size:200" json:"title"`
	Message   string                  `json:"message"`
	Severity  domain.Severity         `gorm:"size:10" json:"severity"`
	IsRead    bool                    `gorm:"default:false" json:"is_read"`
	Data      datatypes.JSON          `json:"data"`
	CreatedAt time.Time               `json:"created_at"`
}

type Profile struct {
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	FullName       string    `gorm:"size:100" json:"full_name"`
	Phone          string    `gorm:"size:20" json:"phone"`
	Location       string    `gorm:"size:200" json:"location"`
	FarmSize       *float64  `json:"farm_size"`
	SoilType       string    `gorm:"size:50" json:"soil_type"`
	TelegramChatID *int64    `json:"telegram_chat_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// All lists every model for schema migration.
func All() []any {
	return []any{
		&SoilTest{},
		&Crop{},
		&CropRecommendation{},
		&FarmTask{},
		&DiseaseDetection{},
		&Notification{},
		&Profile{},
	}
}
