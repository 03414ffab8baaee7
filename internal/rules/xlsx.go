package rules

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	rulesSheet = "Rules"
	plansSheet = "Plans"
)

var (
	rulesHeader = []string{"crop", "ph_min", "ph_max", "soil_contains", "nitrogen_min", "nitrogen_max",
		"organic_matter_min", "organic_matter_max", "score", "season", "avg_temperature", "avg_rainfall"}
	plansHeader = []string{"crop", "week", "activity", "description"}
)

// LoadTable reads a decision table from an .xlsx workbook with a "Rules" sheet
// (one row per crop, in evaluation order) and a "Plans" sheet (weekly steps).
// Empty bound cells leave that side of the range open.
func LoadTable(path string) ([]Rule, error) {
	x, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rules workbook: %w", err)
	}
	defer x.Close()

	rows, err := x.GetRows(rulesSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s sheet: %w", rulesSheet, err)
	}

	var table []Rule
	index := make(map[string]int)
	for i, row := range rows {
		if i == 0 || isBlank(row) {
			continue
		}
		r, err := parseRuleRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", rulesSheet, i+1, err)
		}
		index[strings.ToLower(r.Crop)] = len(table)
		table = append(table, r)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("%s sheet has no rules", rulesSheet)
	}

	planRows, err := x.GetRows(plansSheet)
	if err != nil {
		// Plans are optional.
		return table, nil
	}
	for i, row := range planRows {
		if i == 0 || isBlank(row) {
			continue
		}
		crop := strings.ToLower(cell(row, 0))
		pos, ok := index[crop]
		if !ok {
			return nil, fmt.Errorf("%s row %d: unknown crop %q", plansSheet, i+1, cell(row, 0))
		}
		week, err := strconv.Atoi(cell(row, 1))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: invalid week: %w", plansSheet, i+1, err)
		}
		table[pos].Plan = append(table[pos].Plan, WeekPlan{Week: week, Activity: cell(row, 2), Description: cell(row, 3)})
	}
	return table, nil
}

func parseRuleRow(row []string) (Rule, error) {
	r := Rule{Crop: cell(row, 0), SoilContains: cell(row, 3), Season: cell(row, 9)}
	if r.Crop == "" {
		return r, fmt.Errorf("crop is required")
	}

	var err error
	bounds := []struct {
		dst **float64
		col int
	}{
		{&r.PH.Min, 1}, {&r.PH.Max, 2},
		{&r.Nitrogen.Min, 4}, {&r.Nitrogen.Max, 5},
		{&r.OrganicMatter.Min, 6}, {&r.OrganicMatter.Max, 7},
	}
	for _, b := range bounds {
		if *b.dst, err = optionalFloat(row, b.col); err != nil {
			return r, fmt.Errorf("column %s: %w", rulesHeader[b.col], err)
		}
	}

	if r.Score, err = strconv.Atoi(cell(row, 8)); err != nil {
		return r, fmt.Errorf("column score: %w", err)
	}
	if r.Score < 0 || r.Score > 100 {
		return r, fmt.Errorf("score %d outside 0-100", r.Score)
	}
	if v, err := optionalFloat(row, 10); err != nil {
		return r, fmt.Errorf("column avg_temperature: %w", err)
	} else if v != nil {
		r.AvgTemperature = *v
	}
	if v, err := optionalFloat(row, 11); err != nil {
		return r, fmt.Errorf("column avg_rainfall: %w", err)
	} else if v != nil {
		r.AvgRainfall = *v
	}
	return r, nil
}

// WriteTable renders a table in the layout LoadTable reads.
func WriteTable(w io.Writer, table []Rule) error {
	x := excelize.NewFile()
	defer x.Close()

	if err := x.SetSheetName("Sheet1", rulesSheet); err != nil {
		return err
	}
	if _, err := x.NewSheet(plansSheet); err != nil {
		return err
	}

	if err := setRow(x, rulesSheet, 1, toRow(rulesHeader)); err != nil {
		return err
	}
	if err := setRow(x, plansSheet, 1, toRow(plansHeader)); err != nil {
		return err
	}

	planRow := 2
	for i, r := range table {
		row := []any{r.Crop, num(r.PH.Min), num(r.PH.Max), r.SoilContains, num(r.Nitrogen.Min), num(r.Nitrogen.Max),
			num(r.OrganicMatter.Min), num(r.OrganicMatter.Max), r.Score, r.Season, r.AvgTemperature, r.AvgRainfall}
		if err := setRow(x, rulesSheet, i+2, row); err != nil {
			return err
		}
		for _, p := range r.Plan {
			if err := setRow(x, plansSheet, planRow, []any{r.Crop, p.Week, p.Activity, p.Description}); err != nil {
				return err
			}
			planRow++
		}
	}

	_, err := x.WriteTo(w)
	return err
}

func setRow(x *excelize.File, sheet string, row int, values []any) error {
	cellName, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return x.SetSheetRow(sheet, cellName, &values)
}

func toRow(header []string) []any {
	out := make([]any, len(header))
	for i, h := range header {
		out[i] = h
	}
	return out
}

func num(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func optionalFloat(row []string, i int) (*float64, error) {
	s := cell(row, i)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
