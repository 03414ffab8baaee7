package ai

import (
	"fmt"
	"strings"
)

func diseasePrompt(cropType string, images int) string {
	subject := "this " + cropType + " plant image"
	if images > 1 {
		subject = fmt.Sprintf("these %d %s plant images", images, cropType)
	}
	return fmt.Sprintf(`You are an expert agricultural pathologist. Analyze %s for diseases, pests, or health issues.

Provide your analysis as a JSON object with these exact keys:
- detectedDisease: string (disease name or "Healthy" if no disease)
- confidenceScore: number (0-100)
- symptoms: string (describe what you observe in detail)
- treatmentRecommendation: string (specific treatment advice with 2-3 actionable steps)
- preventionMethods: string (2-3 prevention strategies)

Return ONLY the JSON object, no additional text.`, subject)
}

const planSystemPrompt = `You are an expert agricultural advisor. Generate a comprehensive day-by-day cultivation plan for crops. Return a JSON array of activities with this structure:
[{
  "day_number": 1,
  "activity": "Activity name",
  "description": "Detailed description",
  "required_resources": ["resource1", "resource2"],
  "estimated_duration": "2 hours"
}]

Guidelines:
- Start from day 1 (planting day)
- Include all critical activities: land preparation, planting, irrigation, fertilization, pest control, monitoring, harvesting
- Space activities realistically throughout the growing period
- Be specific about quantities and methods
- Include preventive measures
- Return ONLY the JSON array, no other text`

func planUserPrompt(in PlanInput) string {
	crop := in.CropName
	if v := strings.TrimSpace(in.Variety); v != "" {
		crop = fmt.Sprintf("%s (%s)", crop, v)
	}
	return fmt.Sprintf(`Generate a complete cultivation plan for:
Crop: %s
Planting Date: %s
Expected Harvest: %s
Soil Type: %s
Location: %s

Calculate the total growing days and distribute activities appropriately. Include:
1. Pre-planting activities (days 1-7)
2. Planting activities (day 7-10)
3. Early growth care (first month)
4. Mid-season management
5. Pre-harvest preparation
6. Harvest activities`, crop, in.PlantingDate, in.ExpectedHarvestDate, in.SoilType, in.Location)
}
