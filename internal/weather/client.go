package weather

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/vladimiradmaev/farm-helper/internal/cache"
	"github.com/vladimiradmaev/farm-helper/internal/config"
	apperrors "github.com/vladimiradmaev/farm-helper/internal/errors"
	"github.com/vladimiradmaev/farm-helper/internal/logger"
	"github.com/vladimiradmaev/farm-helper/internal/metrics"
)

const (
	serviceName    = "openweather"
	forecastPoints = 8
	kelvinOffset   = 273.15

	msgFetchFailed = "Failed to fetch weather data"
)

type Client struct {
	http       *resty.Client
	apiKey     string
	timeout    time.Duration
	cache      cache.Cache
	geocodeTTL time.Duration
}

func NewClient(cfg config.WeatherConfig, geocodeCache cache.Cache) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json")

	return &Client{
		http:       client,
		apiKey:     cfg.APIKey,
		timeout:    cfg.Timeout,
		cache:      geocodeCache,
		geocodeTTL: cfg.GeocodeTTL,
	}
}

// GetWeather resolves location and returns its current conditions and the
// next 8 forecast points. The whole call is bounded by the configured timeout.
func (c *Client) GetWeather(ctx context.Context, location string) (*Report, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	loc, err := c.geocode(ctx, location)
	if err != nil {
		return nil, err
	}

	coords := map[string]string{
		"lat": strconv.FormatFloat(loc.Lat, 'f', -1, 64),
		"lon": strconv.FormatFloat(loc.Lon, 'f', -1, 64),
	}

	var current currentResponse
	if err := c.get(ctx, "/data/2.5/weather", coords, &current); err != nil {
		return nil, err
	}
	var forecast forecastResponse
	if err := c.get(ctx, "/data/2.5/forecast", coords, &forecast); err != nil {
		return nil, err
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(serviceName, "ok").Inc()
	return reshape(loc, &current, &forecast), nil
}

func (c *Client) geocode(ctx context.Context, location string) (Location, error) {
	key := "geocode:" + strings.ToLower(strings.TrimSpace(location))

	var loc Location
	if c.cache != nil && cache.GetJSON(ctx, c.cache, key, &loc) {
		metrics.GeocodeCacheLookups.WithLabelValues("hit").Inc()
		return loc, nil
	}
	metrics.GeocodeCacheLookups.WithLabelValues("miss").Inc()

	var hits []geocodeHit
	if err := c.get(ctx, "/geo/1.0/direct", map[string]string{"q": location, "limit": "1"}, &hits); err != nil {
		return Location{}, err
	}
	if len(hits) == 0 {
		return Location{}, apperrors.New(apperrors.ErrorTypeNotFound, "NOT_FOUND", "Location not found").
			WithContext("location", location)
	}

	// Ambiguous names resolve to the first match.
	loc = Location{Name: hits[0].Name, Country: hits[0].Country, Lat: hits[0].Lat, Lon: hits[0].Lon}
	if c.cache != nil {
		if err := cache.SetJSON(ctx, c.cache, key, loc, c.geocodeTTL); err != nil {
			logger.FromContext(ctx).Warn("Failed to cache geocode result", "location", location, "error", err)
		}
	}
	return loc, nil
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("appid", c.apiKey).
		SetResult(out).
		Get(path)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			metrics.UpstreamRequestsTotal.WithLabelValues(serviceName, "timeout").Inc()
			return apperrors.NewTimeoutError("weather")
		}
		metrics.UpstreamRequestsTotal.WithLabelValues(serviceName, "error").Inc()
		return apperrors.NewExternalAPIError(err, serviceName, msgFetchFailed)
	}

	if resp.IsError() {
		logger.FromContext(ctx).Error("Weather API error",
			"path", path, "status", resp.StatusCode(), "body", string(resp.Body()))
		upstreamErr := fmt.Errorf("%s returned status %d", path, resp.StatusCode())
		if resp.StatusCode() == http.StatusTooManyRequests {
			metrics.UpstreamRequestsTotal.WithLabelValues(serviceName, "rate_limited").Inc()
			return apperrors.NewUpstreamRateLimitError(upstreamErr, serviceName, retryAfter(resp))
		}
		metrics.UpstreamRequestsTotal.WithLabelValues(serviceName, "error").Inc()
		return apperrors.NewExternalAPIError(upstreamErr, serviceName, msgFetchFailed)
	}
	return nil
}

func retryAfter(resp *resty.Response) time.Duration {
	secs, err := strconv.Atoi(resp.Header().Get("Retry-After"))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func reshape(loc Location, cur *currentResponse, fc *forecastResponse) *Report {
	exact := exactCelsius(cur.Main.Temp)
	report := &Report{
		Current: Current{
			Temperature:   celsius(cur.Main.Temp),
			FeelsLike:     celsius(cur.Main.FeelsLike),
			Humidity:      cur.Main.Humidity,
			Pressure:      cur.Main.Pressure,
			WindSpeed:     cur.Wind.Speed,
			WindDirection: cur.Wind.Deg,
			Visibility:    cur.Visibility / 1000,
			UVIndex:       0, // not offered on the free tier
			exact:         &exact,
		},
		Forecast: make([]ForecastPoint, 0, forecastPoints),
		Location: loc,
	}
	if len(cur.Weather) > 0 {
		report.Current.Condition = cur.Weather[0].Main
		report.Current.Description = cur.Weather[0].Description
		report.Current.Icon = cur.Weather[0].Icon
	}
	if cur.Rain != nil {
		report.Current.RainChance = cur.Rain.OneHour
	}

	for i, item := range fc.List {
		if i == forecastPoints {
			break
		}
		point := ForecastPoint{
			Datetime:    item.DtTxt,
			Temperature: celsius(item.Main.Temp),
			Humidity:    item.Main.Humidity,
			RainChance:  item.Pop * 100,
		}
		if len(item.Weather) > 0 {
			point.Description = item.Weather[0].Description
			point.Icon = item.Weather[0].Icon
		}
		report.Forecast = append(report.Forecast, point)
	}
	return report
}

// exactCelsius converts Kelvin, dropping float noise below 0.01 °C so that
// 273.65 K reads as 0.5 and not 0.4999….
func exactCelsius(kelvin float64) float64 {
	return math.Round((kelvin-kelvinOffset)*100) / 100
}

// celsius converts Kelvin and rounds half up.
func celsius(kelvin float64) int {
	return int(math.Floor(exactCelsius(kelvin) + 0.5))
}
