// Package rules maps a soil profile onto ranked crop recommendations using a
// fixed decision table. It performs no I/O once the table is built.
package rules

import (
	"sort"
	"strings"
)

// MaxRecommendations caps how many crops Recommend returns.
const MaxRecommendations = 3

// Soil is the subset of a soil test the rules look at. Nil measurements never
// satisfy a rule that constrains them.
type Soil struct {
	PH            *float64
	Nitrogen      *float64
	OrganicMatter *float64
	SoilType      string
}

// Range is an inclusive bound; a nil side is open.
type Range struct {
	Min *float64
	Max *float64
}

func (r Range) constrained() bool { return r.Min != nil || r.Max != nil }

func (r Range) contains(v *float64) bool {
	if !r.constrained() {
		return true
	}
	if v == nil {
		return false
	}
	if r.Min != nil && *v < *r.Min {
		return false
	}
	if r.Max != nil && *v > *r.Max {
		return false
	}
	return true
}

// WeekPlan is one step of a rule's hand-authored cultivation plan.
type WeekPlan struct {
	Week        int    `json:"week"`
	Activity    string `json:"activity"`
	Description string `json:"description"`
}

// Rule is a conjunctive predicate over soil fields plus the recommendation it yields.
type Rule struct {
	Crop          string
	PH            Range
	SoilContains  string
	Nitrogen      Range
	OrganicMatter Range

	Score          int
	Season         string
	AvgTemperature float64
	AvgRainfall    float64
	Plan           []WeekPlan
}

// Matches reports whether every constraint of the rule holds for soil.
func (r Rule) Matches(soil Soil) bool {
	if r.SoilContains != "" &&
		!strings.Contains(strings.ToLower(soil.SoilType), strings.ToLower(r.SoilContains)) {
		return false
	}
	return r.PH.contains(soil.PH) &&
		r.Nitrogen.contains(soil.Nitrogen) &&
		r.OrganicMatter.contains(soil.OrganicMatter)
}

// Recommendation is one matched crop.
type Recommendation struct {
	Crop             string     `json:"recommended_crop"`
	SuitabilityScore int        `json:"suitability_score"`
	Season           string     `json:"season"`
	AvgTemperature   float64    `json:"avg_temperature"`
	AvgRainfall      float64    `json:"avg_rainfall"`
	SoilType         string     `json:"soil_type"`
	Plan             []WeekPlan `json:"cultivation_plan"`
}

// Engine evaluates a decision table.
type Engine struct {
	rules []Rule
}

func NewEngine(table []Rule) *Engine {
	return &Engine{rules: table}
}

// Rules returns the table the engine evaluates.
func (e *Engine) Rules() []Rule {
	return e.rules
}

// Recommend returns at most MaxRecommendations matches, best score first.
// Equal scores keep table order. No match yields an empty slice.
func (e *Engine) Recommend(soil Soil) []Recommendation {
	out := make([]Recommendation, 0, MaxRecommendations)
	for _, r := range e.rules {
		if !r.Matches(soil) {
			continue
		}
		out = append(out, Recommendation{
			Crop:             r.Crop,
			SuitabilityScore: clampScore(r.Score),
			Season:           r.Season,
			AvgTemperature:   r.AvgTemperature,
			AvgRainfall:      r.AvgRainfall,
			SoilType:         soil.SoilType,
			Plan:             r.Plan,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SuitabilityScore > out[j].SuitabilityScore
	})
	if len(out) > MaxRecommendations {
		out = out[:MaxRecommendations]
	}
	return out
}

func clampScore(s int) int {
	switch {
	case s < 0:
		return 0
	case s > 100:
		return 100
	}
	return s
}
