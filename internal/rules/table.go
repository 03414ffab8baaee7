package rules

func f(v float64) *float64 { return &v }

func between(min, max float64) Range { return Range{Min: f(min), Max: f(max)} }
func atLeast(min float64) Range      { return Range{Min: f(min)} }
func atMost(max float64) Range       { return Range{Max: f(max)} }

// DefaultTable is the built-in crop table.
func DefaultTable() []Rule {
	return []Rule{
		{
			Crop: "Wheat", PH: between(6.0, 7.5), SoilContains: "loam", Nitrogen: atLeast(40),
			Score: 90, Season: "Rabi (Winter)", AvgTemperature: 20, AvgRainfall: 500,
			Plan: []WeekPlan{
				{1, "Land preparation", "Plough twice and level the field; apply farmyard manure."},
				{2, "Sowing", "Sow treated seed in rows 20 cm apart at 100 kg/ha."},
				{4, "First irrigation", "Irrigate at crown root initiation, about 21 days after sowing."},
				{6, "Top dressing", "Apply half of the nitrogen dose with the second irrigation."},
				{10, "Weed and pest check", "Remove weeds and scout for aphids and rust."},
				{16, "Harvest", "Harvest when grains are hard and straw turns golden."},
			},
		},
		{
			Crop: "Rice", PH: between(5.5, 7.0), SoilContains: "clay", Nitrogen: atLeast(40),
			Score: 85, Season: "Kharif (Monsoon)", AvgTemperature: 27, AvgRainfall: 1200,
			Plan: []WeekPlan{
				{1, "Nursery", "Raise seedlings in a well-puddled nursery bed."},
				{4, "Transplanting", "Transplant 25-day-old seedlings at 20 x 15 cm spacing."},
				{6, "Water management", "Keep 5 cm standing water through tillering."},
				{8, "Fertilizer", "Top dress nitrogen at panicle initiation."},
				{12, "Pest control", "Watch for stem borer and leaf folder; spray if above threshold."},
				{18, "Harvest", "Drain the field 10 days before harvest and cut at 80% grain maturity."},
			},
		},
		{
			Crop: "Tomato", PH: between(6.0, 7.0), OrganicMatter: atLeast(2.5),
			Score: 80, Season: "Year-round", AvgTemperature: 24, AvgRainfall: 600,
			Plan: []WeekPlan{
				{1, "Nursery", "Sow seeds in raised nursery beds with fine tilth."},
				{4, "Transplanting", "Transplant seedlings at 60 x 45 cm spacing in the evening."},
				{6, "Staking", "Stake plants and remove suckers below the first truss."},
				{8, "Fertigation", "Apply potassium-rich fertilizer at flowering."},
				{10, "Disease watch", "Inspect for early blight and leaf curl; remove infected leaves."},
				{12, "Harvest", "Pick fruit at breaker stage every 3 to 4 days."},
			},
		},
		{
			Crop: "Cotton", PH: between(6.0, 8.0), SoilContains: "black",
			Score: 78, Season: "Kharif (Monsoon)", AvgTemperature: 27, AvgRainfall: 700,
			Plan: []WeekPlan{
				{1, "Land preparation", "Deep plough and form ridges and furrows."},
				{2, "Sowing", "Dibble seeds at 90 x 60 cm on ridges."},
				{6, "Thinning", "Thin to one healthy plant per hill."},
				{10, "Pest control", "Monitor bollworm with pheromone traps."},
				{20, "Picking", "Pick open bolls in the morning in 3 to 4 rounds."},
			},
		},
		{
			Crop: "Maize", PH: between(5.8, 7.5), SoilContains: "loam", Nitrogen: atLeast(30),
			Score: 75, Season: "Kharif (Monsoon)", AvgTemperature: 25, AvgRainfall: 800,
			Plan: []WeekPlan{
				{1, "Land preparation", "Prepare a fine seedbed and apply basal fertilizer."},
				{2, "Sowing", "Sow at 60 x 20 cm, two seeds per hill."},
				{5, "Earthing up", "Earth up and top dress nitrogen at knee height."},
				{8, "Irrigation", "Irrigate at tasselling and silking; avoid water stress."},
				{14, "Harvest", "Harvest when husks dry and kernels show a black layer."},
			},
		},
		{
			Crop: "Groundnut", PH: between(6.0, 7.0), SoilContains: "sand", OrganicMatter: atLeast(1),
			Score: 72, Season: "Kharif (Monsoon)", AvgTemperature: 26, AvgRainfall: 600,
			Plan: []WeekPlan{
				{1, "Land preparation", "Harrow to a loose, friable seedbed."},
				{2, "Sowing", "Sow treated kernels at 30 x 10 cm."},
				{6, "Gypsum", "Apply gypsum at pegging and earth up lightly."},
				{15, "Harvest", "Lift plants when inner shells darken."},
			},
		},
		{
			Crop: "Chickpea", PH: between(6.0, 8.0), Nitrogen: atMost(40),
			Score: 70, Season: "Rabi (Winter)", AvgTemperature: 22, AvgRainfall: 400,
			Plan: []WeekPlan{
				{1, "Seed treatment", "Treat seed with Rhizobium culture before sowing."},
				{2, "Sowing", "Sow in rows 30 cm apart on residual moisture."},
				{6, "Nipping", "Nip shoot tips to encourage branching."},
				{8, "Pod borer check", "Install bird perches and scout for pod borer."},
				{16, "Harvest", "Harvest when leaves turn reddish brown and pods dry."},
			},
		},
		{
			Crop: "Potato", PH: between(5.0, 6.5), OrganicMatter: atLeast(2),
			Score: 68, Season: "Rabi (Winter)", AvgTemperature: 18, AvgRainfall: 500,
			Plan: []WeekPlan{
				{1, "Seed preparation", "Cut sprouted seed tubers and cure for two days."},
				{2, "Planting", "Plant tubers in ridges 60 cm apart."},
				{5, "Earthing up", "Earth up and apply the second nitrogen dose."},
				{9, "Blight watch", "Spray preventive fungicide in cool, humid weather."},
				{14, "Harvest", "Cut haulms 10 days before digging to set the skin."},
			},
		},
	}
}
