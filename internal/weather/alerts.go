package weather

import (
	"fmt"
	"strconv"

	"github.com/vladimiradmaev/farm-helper/internal/domain"
)

const (
	heavyRainHumidity = 80
	highTemperature   = 35
	strongWind        = 10 // m/s
)

// DeriveAlerts turns a report into notification drafts. The thresholds are
// evaluated independently; when none fires a single low-severity update is
// returned, so the result is never empty.
func DeriveAlerts(r *Report) []domain.NotificationDraft {
	cur := r.Current
	temp := cur.Celsius()
	readings := map[string]any{
		"temperature":       temp,
		"humidity":          cur.Humidity,
		"weather_condition": cur.Condition,
	}

	var alerts []domain.NotificationDraft

	if cur.Condition == "Rain" && cur.Humidity > heavyRainHumidity {
		alerts = append(alerts, draft(domain.SeverityHigh, "Heavy Rain Alert",
			fmt.Sprintf("Heavy rain detected in %s. Consider protecting your crops and check drainage systems.", r.Location.Name),
			readings))
	}

	if temp > highTemperature {
		alerts = append(alerts, draft(domain.SeverityMedium, "High Temperature Warning",
			fmt.Sprintf("Temperature is %s°C. Ensure adequate irrigation for your crops.", formatNumber(temp)),
			readings))
	}

	if cur.WindSpeed > strongWind {
		alerts = append(alerts, draft(domain.SeverityMedium, "Strong Wind Alert",
			fmt.Sprintf("Wind speed is %s m/s. Secure loose equipment and check tree supports.", formatNumber(cur.WindSpeed)),
			map[string]any{"wind_speed": cur.WindSpeed, "weather_condition": cur.Condition}))
	}

	if len(alerts) == 0 {
		alerts = append(alerts, draft(domain.SeverityLow, "Weather Update",
			fmt.Sprintf("Current weather in %s: %s, %s°C", r.Location.Name, cur.Description, formatNumber(temp)),
			readings))
	}
	return alerts
}

func draft(severity domain.Severity, title, message string, data map[string]any) domain.NotificationDraft {
	copied := make(map[string]any, len(data))
	for k, v := range data {
		copied[k] = v
	}
	return domain.NotificationDraft{
		Type:     domain.NotificationWeatherAlert,
		Title:    title,
		Message:  message,
		Severity: severity,
		Data:     copied,
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
