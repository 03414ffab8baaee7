package export

import (
	"strings"

	"github.com/vladimiradmaev/farm-helper/internal/database"
	"github.com/vladimiradmaev/farm-helper/internal/domain"
)

// Dataset names accepted by the export endpoint.
const (
	DatasetSoilTests  = "soil-tests"
	DatasetTasks      = "tasks"
	DatasetDetections = "disease-detections"
	DatasetCrops      = "crops"
)

func SoilTests(rows []database.SoilTest) Table {
	t := Table{
		Name: "Soil Tests",
		Header: []string{"test_date", "location", "latitude", "longitude", "ph_level", "nitrogen_level",
			"phosphorus_level", "potassium_level", "organic_matter_percentage", "soil_type", "soil_texture",
			"drainage_quality", "notes"},
	}
	for _, s := range rows {
		t.Rows = append(t.Rows, []any{
			s.TestDate.Format(domain.DateLayout), s.Location, s.Latitude, s.Longitude, s.PHLevel, s.NitrogenLevel,
			s.PhosphorusLevel, s.PotassiumLevel, s.OrganicMatterPercentage, s.SoilType, s.SoilTexture,
			s.DrainageQuality, s.Notes,
		})
	}
	return t
}

func Tasks(rows []database.FarmTask) Table {
	t := Table{
		Name:   "Tasks",
		Header: []string{"scheduled_date", "crop_name", "task_type", "task_description", "priority", "status", "completed_at", "notes"},
	}
	for _, task := range rows {
		t.Rows = append(t.Rows, []any{
			task.ScheduledDate.Format(domain.DateLayout), task.CropName, task.TaskType, task.TaskDescription,
			string(task.Priority), string(task.Status), task.CompletedAt, task.Notes,
		})
	}
	return t
}

func Detections(rows []database.DiseaseDetection) Table {
	t := Table{
		Name: "Disease Detections",
		Header: []string{"created_at", "crop_type", "detected_disease", "confidence_score", "symptoms",
			"treatment_recommendation", "prevention_methods", "image_url"},
	}
	for _, d := range rows {
		t.Rows = append(t.Rows, []any{
			d.CreatedAt, d.CropType, d.DetectedDisease, d.ConfidenceScore, d.Symptoms,
			d.TreatmentRecommendation, d.PreventionMethods, d.ImageURL,
		})
	}
	return t
}

func Crops(rows []database.Crop) Table {
	t := Table{
		Name: "Crops",
		Header: []string{"name", "variety", "category", "planting_date", "expected_harvest_date", "growth_stage",
			"status", "field_location", "area_planted", "notes"},
	}
	for _, c := range rows {
		t.Rows = append(t.Rows, []any{
			c.Name, c.Variety, c.Category, c.PlantingDate, c.ExpectedHarvestDate, string(c.GrowthStage),
			string(c.Status), c.FieldLocation, c.AreaPlanted, c.Notes,
		})
	}
	return t
}

// Filename builds the download name, e.g. "soil-tests-2026-10-19.csv".
func Filename(dataset, day string, f Format) string {
	return strings.Join([]string{dataset, day}, "-") + "." + string(f)
}
