package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/farm-helper/internal/cache"
	"github.com/vladimiradmaev/farm-helper/internal/config"
	"github.com/vladimiradmaev/farm-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/farm-helper/internal/errors"
)

const (
	geoBody     = `[{"name":"Chennai","country":"IN","lat":13.0827,"lon":80.2707},{"name":"Chennai","country":"US","lat":1,"lon":2}]`
	currentBody = `{"weather":[{"main":"Clear","description":"clear sky","icon":"01d"}],"main":{"temp":311.15,"feels_like":314.4,"humidity":60,"pressure":1008},"visibility":6000,"wind":{"speed":5,"deg":120},"name":"Chennai"}`
)

func forecastBody() string {
	item := `{"dt_txt":"2026-10-19 12:00:00","main":{"temp":300.15,"humidity":70},"weather":[{"main":"Clouds","description":"few clouds","icon":"02d"}],"pop":0.35}`
	body := `{"list":[`
	for i := 0; i < 10; i++ {
		if i > 0 {
			body += ","
		}
		body += item
	}
	return body + `]}`
}

type fakeOpenWeather struct {
	geocodeCalls atomic.Int32
	geo          string
	status       int
	delay        time.Duration
}

func (f *fakeOpenWeather) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.Empty(t, r.URL.Query().Get("units"))

		if f.delay > 0 {
			select {
			case <-time.After(f.delay):
			case <-r.Context().Done():
				return
			}
		}
		if f.status != 0 {
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(`{"cod":429,"message":"quota"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/geo/1.0/direct":
			f.geocodeCalls.Add(1)
			assert.Equal(t, "1", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(f.geo))
		case "/data/2.5/weather":
			_, _ = w.Write([]byte(currentBody))
		case "/data/2.5/forecast":
			_, _ = w.Write([]byte(forecastBody()))
		default:
			http.NotFound(w, r)
		}
	})
}

func newTestClient(t *testing.T, fake *fakeOpenWeather, timeout time.Duration) *Client {
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)
	return NewClient(config.WeatherConfig{
		APIKey:     "test-key",
		BaseURL:    srv.URL + "/",
		Timeout:    timeout,
		GeocodeTTL: time.Hour,
	}, cache.NewMemory(time.Hour))
}

func TestGetWeatherReshapes(t *testing.T) {
	fake := &fakeOpenWeather{geo: geoBody}
	client := newTestClient(t, fake, 5*time.Second)

	report, err := client.GetWeather(context.Background(), "Chennai")
	require.NoError(t, err)

	assert.Equal(t, Location{Name: "Chennai", Country: "IN", Lat: 13.0827, Lon: 80.2707}, report.Location)
	assert.Equal(t, 38, report.Current.Temperature)
	assert.Equal(t, 41, report.Current.FeelsLike)
	assert.Equal(t, 60, report.Current.Humidity)
	assert.Equal(t, "Clear", report.Current.Condition)
	assert.InDelta(t, 6.0, report.Current.Visibility, 1e-9)
	assert.Zero(t, report.Current.UVIndex)
	assert.Zero(t, report.Current.RainChance)

	require.Len(t, report.Forecast, 8)
	assert.Equal(t, 27, report.Forecast[0].Temperature)
	assert.InDelta(t, 35.0, report.Forecast[0].RainChance, 1e-9)
	assert.Equal(t, "2026-10-19 12:00:00", report.Forecast[0].Datetime)
}

func TestGeocodeIsCached(t *testing.T) {
	fake := &fakeOpenWeather{geo: geoBody}
	client := newTestClient(t, fake, 5*time.Second)

	_, err := client.GetWeather(context.Background(), "Chennai")
	require.NoError(t, err)
	_, err = client.GetWeather(context.Background(), " chennai ")
	require.NoError(t, err)

	assert.Equal(t, int32(1), fake.geocodeCalls.Load())
}

func TestUnknownLocation(t *testing.T) {
	client := newTestClient(t, &fakeOpenWeather{geo: `[]`}, 5*time.Second)

	_, err := client.GetWeather(context.Background(), "Nowhere")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeNotFound, appErr.Type)
	assert.Equal(t, "Location not found", appErr.Message)
}

func TestUpstreamRateLimit(t *testing.T) {
	client := newTestClient(t, &fakeOpenWeather{status: http.StatusTooManyRequests}, 5*time.Second)

	_, err := client.GetWeather(context.Background(), "Chennai")
	assert.Equal(t, http.StatusTooManyRequests, apperrors.HTTPStatus(err))
}

func TestUpstreamFailureIsGeneric(t *testing.T) {
	client := newTestClient(t, &fakeOpenWeather{status: http.StatusUnauthorized}, 5*time.Second)

	_, err := client.GetWeather(context.Background(), "Chennai")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeExternal, appErr.Type)
	assert.Equal(t, "Failed to fetch weather data", appErr.Message)
}

func TestTimeout(t *testing.T) {
	client := newTestClient(t, &fakeOpenWeather{geo: geoBody, delay: time.Second}, 50*time.Millisecond)

	_, err := client.GetWeather(context.Background(), "Chennai")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusRequestTimeout, appErr.HTTPStatus())
	assert.Equal(t, "Request timeout", appErr.Message)
}

func TestCelsiusRoundsHalfUp(t *testing.T) {
	assert.Equal(t, 0, celsius(273.15))
	assert.Equal(t, 1, celsius(273.8))
	assert.Equal(t, 0, celsius(272.8))
	assert.Equal(t, -3, celsius(269.8))
	assert.Equal(t, 1, celsius(273.65))
	assert.Equal(t, 36, celsius(308.65))
}

func TestHeatAlertUsesUnroundedReading(t *testing.T) {
	cur := &currentResponse{Weather: []condition{{Main: "Clear", Description: "clear sky"}}}
	cur.Main.Temp = 308.55
	cur.Main.Humidity = 60
	cur.Wind.Speed = 5

	r := reshape(Location{Name: "Chennai"}, cur, &forecastResponse{})
	assert.Equal(t, 35, r.Current.Temperature)
	assert.Equal(t, 35.4, r.Current.Celsius())

	alerts := DeriveAlerts(r)
	require.Len(t, alerts, 1)
	assert.Equal(t, "High Temperature Warning", alerts[0].Title)
	assert.Equal(t, "Temperature is 35.4°C. Ensure adequate irrigation for your crops.", alerts[0].Message)
	assert.Equal(t, 35.4, alerts[0].Data["temperature"])

	cur.Main.Temp = 308.15
	alerts = DeriveAlerts(reshape(Location{Name: "Chennai"}, cur, &forecastResponse{}))
	require.Len(t, alerts, 1)
	assert.Equal(t, "Weather Update", alerts[0].Title)
	assert.Equal(t, "Current weather in Chennai: clear sky, 35°C", alerts[0].Message)
}

func report(cond string, temp, humidity int, wind float64) *Report {
	return &Report{
		Current:  Current{Condition: cond, Description: "some sky", Temperature: temp, Humidity: humidity, WindSpeed: wind},
		Location: Location{Name: "Chennai"},
	}
}

func TestDeriveAlertsHighTemperatureOnly(t *testing.T) {
	alerts := DeriveAlerts(report("Clear", 38, 60, 5))

	require.Len(t, alerts, 1)
	assert.Equal(t, "High Temperature Warning", alerts[0].Title)
	assert.Equal(t, domain.SeverityMedium, alerts[0].Severity)
	assert.Equal(t, domain.NotificationWeatherAlert, alerts[0].Type)
	assert.Equal(t, "Temperature is 38°C. Ensure adequate irrigation for your crops.", alerts[0].Message)
	assert.Equal(t, 38.0, alerts[0].Data["temperature"])
}

func TestDeriveAlertsCalmWeather(t *testing.T) {
	alerts := DeriveAlerts(report("Clouds", 22, 50, 3))

	require.Len(t, alerts, 1)
	assert.Equal(t, "Weather Update", alerts[0].Title)
	assert.Equal(t, domain.SeverityLow, alerts[0].Severity)
	assert.Equal(t, "Current weather in Chennai: some sky, 22°C", alerts[0].Message)
}

func TestDeriveAlertsAllThresholds(t *testing.T) {
	alerts := DeriveAlerts(report("Rain", 36, 85, 12.5))

	require.Len(t, alerts, 3)
	assert.Equal(t, "Heavy Rain Alert", alerts[0].Title)
	assert.Equal(t, domain.SeverityHigh, alerts[0].Severity)
	assert.Equal(t, "High Temperature Warning", alerts[1].Title)
	assert.Equal(t, "Strong Wind Alert", alerts[2].Title)
	assert.Equal(t, "Wind speed is 12.5 m/s. Secure loose equipment and check tree supports.", alerts[2].Message)
	assert.Equal(t, map[string]any{"wind_speed": 12.5, "weather_condition": "Rain"}, alerts[2].Data)
}

func TestDeriveAlertsBoundariesAreExclusive(t *testing.T) {
	alerts := DeriveAlerts(report("Rain", 35, 80, 10))

	require.Len(t, alerts, 1)
	assert.Equal(t, "Weather Update", alerts[0].Title)
}
