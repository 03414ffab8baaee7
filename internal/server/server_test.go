package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/farm-helper/internal/ai"
	"github.com/vladimiradmaev/farm-helper/internal/auth"
	"github.com/vladimiradmaev/farm-helper/internal/database"
	"github.com/vladimiradmaev/farm-helper/internal/notify"
	"github.com/vladimiradmaev/farm-helper/internal/repository"
	"github.com/vladimiradmaev/farm-helper/internal/rules"
	"github.com/vladimiradmaev/farm-helper/internal/services"
	"github.com/vladimiradmaev/farm-helper/internal/storage"
	"github.com/vladimiradmaev/farm-helper/internal/validation"
	"github.com/vladimiradmaev/farm-helper/internal/weather"
)

const (
	secret        = "test-secret"
	allowedOrigin = "https://app.farm.test"
)

var clock = func() time.Time { return time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC) }

func init() {
	gin.SetMode(gin.TestMode)
}

type stubProvider struct {
	reply string
	calls int
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Complete(_ context.Context, _ ai.Prompt) (string, error) {
	p.calls++
	return p.reply, nil
}

type stubWeather struct {
	report *weather.Report
}

func (s *stubWeather) GetWeather(_ context.Context, _ string) (*weather.Report, error) {
	return s.report, nil
}

type testEnv struct {
	router   *gin.Engine
	user     uuid.UUID
	token    string
	provider *stubProvider
	locator  storage.Locator
}

func newEnv(t *testing.T, opts ...func(*Deps)) *testEnv {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	repos := repository.New(db)

	store, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	locator := storage.Locator{BaseURL: "http://farm.test", Bucket: "crop-images"}

	provider := &stubProvider{}
	gateway := ai.NewGateway(provider)
	report := &weather.Report{
		Current:  weather.Current{Temperature: 38, Humidity: 60, WindSpeed: 5, Condition: "Clear", Description: "clear sky"},
		Location: weather.Location{Name: "Chennai", Country: "IN"},
	}
	weatherSvc := services.NewWeatherService(&stubWeather{report: report}, repos, notify.Noop{}, "London,UK")

	d := Deps{
		Disease:        services.NewDiseaseService(gateway, repos.Detections, store, locator, 1<<20),
		Plans:          services.NewPlanService(gateway),
		Weather:        weatherSvc,
		Soil:           services.NewSoilService(repos, rules.NewEngine(rules.DefaultTable()), clock),
		Crops:          services.NewCropService(repos.Crops),
		Tasks:          services.NewTaskService(repos.Tasks, clock),
		Notifications:  services.NewNotificationService(repos.Notifications),
		Profiles:       services.NewProfileService(repos.Profiles),
		Exports:        services.NewExportService(repos),
		Verifier:       auth.NewVerifier(secret, ""),
		Validator:      validation.New(clock),
		AllowedOrigins: []string{allowedOrigin},
		MaxUploadBytes: 1 << 20,
		PublicStore:    store,
		Bucket:         locator.Bucket,
		Now:            clock,
	}
	for _, opt := range opts {
		opt(&d)
	}

	user := uuid.New()
	token, err := auth.Sign(secret, user, "", time.Hour)
	require.NoError(t, err)

	return &testEnv{router: NewRouter(d), user: user, token: token, provider: provider, locator: locator}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestMissingBearerIsUnauthorized(t *testing.T) {
	env := newEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/functions/v1/get-weather", strings.NewReader(`{"location":"Chennai"}`))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decode[ErrorResponse](t, rec)
	assert.Equal(t, "Missing authorization header", body.Error)
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
}

func TestForgedTokenIsUnauthorized(t *testing.T) {
	env := newEnv(t)
	forged, err := auth.Sign("other-secret", env.user, "", time.Hour)
	require.NoError(t, err)
	env.token = forged

	rec := env.do(t, http.MethodGet, "/api/v1/crops", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", decode[ErrorResponse](t, rec).Error)
}

func TestWeatherNotificationsForAnotherUserIsForbidden(t *testing.T) {
	env := newEnv(t)
	rec := env.do(t, http.MethodPost, "/functions/v1/weather-notifications", map[string]any{"user_id": uuid.NewString()})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", decode[ErrorResponse](t, rec).Code)
}

func TestWeatherNotificationsCreatesAlerts(t *testing.T) {
	env := newEnv(t)
	rec := env.do(t, http.MethodPost, "/functions/v1/weather-notifications", map[string]any{"user_id": env.user.String(), "location": "Chennai"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[services.WeatherNotificationResult](t, rec)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.NotificationsSent)
	assert.Equal(t, "Chennai", res.Location)

	rec = env.do(t, http.MethodGet, "/api/v1/notifications?unread=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[services.NotificationPage](t, rec)
	require.Len(t, page.Notifications, 1)
	assert.Equal(t, "High Temperature Warning", page.Notifications[0].Title)
	assert.EqualValues(t, 1, page.UnreadCount)
}

func TestCORSOrigins(t *testing.T) {
	env := newEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.test")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", allowedOrigin)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, allowedOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestPreflightAnsweredWithoutAuth(t *testing.T) {
	env := newEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/functions/v1/analyze-disease", nil)
	req.Header.Set("Origin", allowedOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, allowedOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAnalyzeDiseaseProseReply(t *testing.T) {
	env := newEnv(t)
	env.provider.reply = strings.Repeat("Leaves show brown lesions with yellow halos. ", 8)

	rec := env.do(t, http.MethodPost, "/functions/v1/analyze-disease", map[string]any{
		"imageUrls": []string{env.locator.PublicURL(storage.UserKey(env.user, ".jpg"))},
		"cropType":  "Tomato",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[map[string]any](t, rec)
	for _, key := range []string{"detectedDisease", "confidenceScore", "symptoms", "treatmentRecommendation", "preventionMethods"} {
		assert.Contains(t, body, key)
	}
	confidence := body["confidenceScore"].(float64)
	assert.GreaterOrEqual(t, confidence, 70.0)
	assert.LessOrEqual(t, confidence, 75.0)

	rec = env.do(t, http.MethodGet, "/api/v1/disease-detections", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)
}

func TestAnalyzeDiseaseRejectsForeignImage(t *testing.T) {
	env := newEnv(t)
	rec := env.do(t, http.MethodPost, "/functions/v1/analyze-disease", map[string]any{
		"imageUrls": []string{env.locator.PublicURL(storage.UserKey(uuid.New(), ".jpg"))},
		"cropType":  "Tomato",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, env.provider.calls)
}

func TestPlanDateOutsideWindow(t *testing.T) {
	env := newEnv(t)
	rec := env.do(t, http.MethodPost, "/functions/v1/generate-crop-plan", map[string]any{
		"cropName":            "Wheat",
		"plantingDate":        "2020-01-01",
		"expectedHarvestDate": "2027-03-01",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[ErrorResponse](t, rec)
	require.NotEmpty(t, body.Details)
	assert.Equal(t, "plantingDate", body.Details[0].Field)
	assert.Zero(t, env.provider.calls)
}

func TestUnknownFieldRejected(t *testing.T) {
	env := newEnv(t)
	rec := env.do(t, http.MethodPost, "/functions/v1/get-weather", map[string]any{"location": "Chennai", "units": "metric"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFunctionsRateLimited(t *testing.T) {
	env := newEnv(t, func(d *Deps) {
		d.Limiter = httprate.NewRateLimiter(2, time.Minute)
		d.RateLimitWindow = time.Minute
	})

	for range 2 {
		rec := env.do(t, http.MethodPost, "/functions/v1/get-weather", map[string]any{"location": "Chennai"})
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := env.do(t, http.MethodPost, "/functions/v1/get-weather", map[string]any{"location": "Chennai"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	body := decode[ErrorResponse](t, rec)
	assert.Equal(t, "RATE_LIMIT", body.Code)
	assert.Equal(t, 60, body.RetryAfter)

	// the data API is not limited
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/crops", nil).Code)
}

func TestUploadThenServeImage(t *testing.T) {
	env := newEnv(t)

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 1, color.RGBA{R: 120, G: 200, A: 255})
	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, img))

	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	part, err := mw.CreateFormFile("images", "leaf.png")
	require.NoError(t, err)
	_, err = part.Write(pngBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/functions/v1/upload-images", &form)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.token)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	urls := decode[map[string][]string](t, rec)["imageUrls"]
	require.Len(t, urls, 1)
	assert.True(t, env.locator.Owns(urls[0], env.user))

	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, strings.TrimPrefix(urls[0], env.locator.BaseURL), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, pngBuf.Bytes(), rec.Body.Bytes())
}

func TestSoilTestRecommendations(t *testing.T) {
	env := newEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/soil-tests", map[string]any{
		"location":                  "North field",
		"ph_level":                  6.5,
		"nitrogen_level":            50,
		"organic_matter_percentage": 3,
		"soil_type":                 "loamy",
		"soil_texture":              "medium",
		"drainage_quality":          "good",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	test := decode[map[string]any](t, rec)

	rec = env.do(t, http.MethodPost, "/api/v1/soil-tests/"+test["id"].(string)+"/recommendations", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	recs := decode[map[string][]rules.Recommendation](t, rec)["recommendations"]
	require.NotEmpty(t, recs)
	assert.LessOrEqual(t, len(recs), 3)
	assert.Equal(t, "Wheat", recs[0].Crop)
	assert.Equal(t, 90, recs[0].SuitabilityScore)

	rec = env.do(t, http.MethodGet, "/api/v1/recommendations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), len(recs))
}

func TestInvalidPathID(t *testing.T) {
	env := newEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/crops/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/crops/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportTasksCSV(t *testing.T) {
	env := newEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/tasks", map[string]any{
		"task_type":        "irrigation",
		"task_description": "Water the tomatoes",
		"scheduled_date":   "2026-10-20",
		"priority":         "high",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/v1/export/tasks?format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "tasks-2026-10-19.csv")
	assert.Contains(t, rec.Body.String(), "Water the tomatoes")

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/v1/export/livestock", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/v1/export/tasks?format=pdf", nil).Code)
}

func TestHealthz(t *testing.T) {
	env := newEnv(t, func(d *Deps) {
		d.Ping = func(context.Context) error { return errors.New("connection refused") }
	})
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUnknownErrorsUseGenericMessage(t *testing.T) {
	status, body := errorBody(errors.New("pq: relation does not exist"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "An error occurred while processing your request", body.Error)
}

func TestProfileSaveCannotSetTelegramChat(t *testing.T) {
	env := newEnv(t)
	form := map[string]any{"full_name": "Mallory", "location": "Pune", "soil_type": "Loamy"}

	rec := env.do(t, http.MethodPut, "/api/v1/profile", form)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	form["telegram_chat_id"] = 4242
	rec = env.do(t, http.MethodPut, "/api/v1/profile", form)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/profile", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "telegram_chat_id")
}
