package validation

// DiseaseRequest asks for an analysis of 1 to 5 uploaded crop images.
type DiseaseRequest struct {
	ImageURLs []string `json:"imageUrls" validate:"required,min=1,max=5,dive,required,url"`
	CropType  string   `json:"cropType" validate:"required,max=30"`
}

type PlanRequest struct {
	CropName            string `json:"cropName" validate:"required,max=50"`
	Variety             string `json:"variety" validate:"max=50"`
	PlantingDate        string `json:"plantingDate" validate:"required,datewindow"`
	ExpectedHarvestDate string `json:"expectedHarvestDate" validate:"required,datewindow"`
	SoilType            string `json:"soilType" validate:"max=50"`
	Location            string `json:"location" validate:"max=100"`
}

type WeatherRequest struct {
	Location string `json:"location" validate:"required,max=100,safetext"`
}

type WeatherNotificationRequest struct {
	UserID   string `json:"user_id" validate:"required,uuid"`
	Location string `json:"location" validate:"omitempty,max=100,safetext"`
}

type SoilTestRequest struct {
	Location                string   `json:"location" validate:"required,max=200"`
	Latitude                *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude               *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	PHLevel                 *float64 `json:"ph_level" validate:"omitempty,gte=0,lte=14"`
	NitrogenLevel           *float64 `json:"nitrogen_level" validate:"omitempty,gte=0,lte=1000"`
	PhosphorusLevel         *float64 `json:"phosphorus_level" validate:"omitempty,gte=0,lte=1000"`
	PotassiumLevel          *float64 `json:"potassium_level" validate:"omitempty,gte=0,lte=1000"`
	OrganicMatterPercentage *float64 `json:"organic_matter_percentage" validate:"omitempty,gte=0,lte=100"`
	SoilType                string   `json:"soil_type" validate:"required,max=50"`
	SoilTexture             string   `json:"soil_texture" validate:"required,max=50"`
	DrainageQuality         string   `json:"drainage_quality" validate:"required,max=50"`
	TestDate                string   `json:"test_date" validate:"omitempty,isodate"`
	Notes                   string   `json:"notes" validate:"max=1000"`
}

type CropRequest struct {
	Name                string   `json:"name" validate:"required,max=100"`
	Variety             string   `json:"variety" validate:"max=100"`
	Category            string   `json:"category" validate:"max=50"`
	PlantingDate        string   `json:"planting_date" validate:"omitempty,isodate"`
	ExpectedHarvestDate string   `json:"expected_harvest_date" validate:"omitempty,isodate"`
	GrowthStage         string   `json:"growth_stage" validate:"omitempty,oneof=planning planted growing mature harvested"`
	FieldLocation       string   `json:"field_location" validate:"max=200"`
	AreaPlanted         *float64 `json:"area_planted" validate:"omitempty,gte=0"`
	Notes               string   `json:"notes" validate:"max=1000"`
}

// CropUpdateRequest changes the mutable lifecycle fields of a crop.
type CropUpdateRequest struct {
	GrowthStage *string `json:"growth_stage" validate:"omitempty,oneof=planning planted growing mature harvested"`
	Status      *string `json:"status" validate:"omitempty,oneof=active harvested failed"`
}

type TaskRequest struct {
	CropName        string `json:"crop_name" validate:"max=100"`
	TaskType        string `json:"task_type" validate:"required,max=50"`
	TaskDescription string `json:"task_description" validate:"required,max=500"`
	ScheduledDate   string `json:"scheduled_date" validate:"required,isodate"`
	Priority        string `json:"priority" validate:"required,oneof=low medium high"`
	Notes           string `json:"notes" validate:"max=1000"`
}

// ActivityTaskRequest turns one generated plan activity into a task.
type ActivityTaskRequest struct {
	CropName     string        `json:"crop_name" validate:"required,max=100"`
	PlantingDate string        `json:"planting_date" validate:"required,isodate"`
	Activity     ActivityInput `json:"activity" validate:"required"`
}

type ActivityInput struct {
	DayNumber         int      `json:"day_number" validate:"required,gte=1"`
	Activity          string   `json:"activity" validate:"required,max=200"`
	Description       string   `json:"description" validate:"max=1000"`
	RequiredResources []string `json:"required_resources" validate:"max=50,dive,max=200"`
	EstimatedDuration string   `json:"estimated_duration" validate:"max=100"`
}

type ProfileRequest struct {
	FullName string   `json:"full_name" validate:"required,max=100"`
	Phone    string   `json:"phone" validate:"omitempty,min=10,max=15"`
	Location string   `json:"location" validate:"required,max=200"`
	FarmSize *float64 `json:"farm_size" validate:"omitempty,gte=0,lte=100000"`
	SoilType string   `json:"soil_type" validate:"required,max=50"`
}
