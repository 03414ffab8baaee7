package domain

import "time"

// GrowthStage tracks where a planted crop is in its lifecycle.
type GrowthStage string

const (
	StagePlanning  GrowthStage = "planning"
	StagePlanted   GrowthStage = "planted"
	StageGrowing   GrowthStage = "growing"
	StageMature    GrowthStage = "mature"
	StageHarvested GrowthStage = "harvested"
)

type CropStatus string

const (
	CropActive    CropStatus = "active"
	CropHarvested CropStatus = "harvested"
	CropFailed    CropStatus = "failed"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

type NotificationType string

const (
	NotificationWeatherAlert    NotificationType = "weather_alert"
	NotificationTaskReminder    NotificationType = "task_reminder"
	NotificationDiseaseAlert    NotificationType = "disease_alert"
	NotificationSystem          NotificationType = "system"
	NotificationHarvestReminder NotificationType = "harvest_reminder"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// DiagnosisResult is the normalized outcome of a disease analysis.
type DiagnosisResult struct {
	DetectedDisease         string  `json:"detectedDisease"`
	ConfidenceScore         float64 `json:"confidenceScore"`
	Symptoms                string  `json:"symptoms"`
	TreatmentRecommendation string  `json:"treatmentRecommendation"`
	PreventionMethods       string  `json:"preventionMethods"`
}

// PlanActivity is one day-indexed step of a generated cultivation plan.
type PlanActivity struct {
	DayNumber         int      `json:"day_number"`
	Activity          string   `json:"activity"`
	Description       string   `json:"description"`
	RequiredResources []string `json:"required_resources"`
	EstimatedDuration string   `json:"estimated_duration"`
}

// NotificationDraft is a notification that has not been persisted yet.
type NotificationDraft struct {
	Type     NotificationType `json:"type"`
	Title    string           `json:"title"`
	Message  string           `json:"message"`
	Severity Severity         `json:"severity"`
	Data     map[string]any   `json:"data"`
}

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
