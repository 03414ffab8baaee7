package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/farm-helper/internal/ai"
	"github.com/vladimiradmaev/farm-helper/internal/database"
	"github.com/vladimiradmaev/farm-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/farm-helper/internal/errors"
	"github.com/vladimiradmaev/farm-helper/internal/export"
	"github.com/vladimiradmaev/farm-helper/internal/repository"
	"github.com/vladimiradmaev/farm-helper/internal/rules"
	"github.com/vladimiradmaev/farm-helper/internal/storage"
	"github.com/vladimiradmaev/farm-helper/internal/validation"
	"github.com/vladimiradmaev/farm-helper/internal/weather"
	"gorm.io/gorm"
)

var clock = func() time.Time { return time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC) }

func ptr[T any](v T) *T { return &v }

func setup(t *testing.T) (*gorm.DB, *repository.Repositories) {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	return db, repository.New(db)
}

type fakeAnalyzer struct {
	calls  int
	result *domain.DiagnosisResult
	err    error
}

func (f *fakeAnalyzer) AnalyzeDisease(_ context.Context, _ []string, _ string) (*domain.DiagnosisResult, error) {
	f.calls++
	return f.result, f.err
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{G: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newDiseaseService(t *testing.T, repos *repository.Repositories, analyzer DiseaseAnalyzer) (*DiseaseService, storage.Locator) {
	store, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	loc := storage.Locator{BaseURL: "https://farm.test", Bucket: "crop-images"}
	return NewDiseaseService(analyzer, repos.Detections, store, loc, 1024), loc
}

func TestAnalyzeRejectsForeignImagesWithoutUpstreamCall(t *testing.T) {
	_, repos := setup(t)
	analyzer := &fakeAnalyzer{}
	svc, loc := newDiseaseService(t, repos, analyzer)
	user, other := uuid.New(), uuid.New()

	_, err := svc.Analyze(context.Background(), user, validation.DiseaseRequest{
		ImageURLs: []string{loc.PublicURL(storage.UserKey(user, ".jpg")), loc.PublicURL(storage.UserKey(other, ".jpg"))},
		CropType:  "Tomato",
	})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "imageUrls[1]", appErr.Fields[0].Field)
	assert.Zero(t, analyzer.calls)
}

func TestAnalyzeStoresDetectionForFirstImage(t *testing.T) {
	_, repos := setup(t)
	analyzer := &fakeAnalyzer{result: &domain.DiagnosisResult{
		DetectedDisease: "Early Blight", ConfidenceScore: 82, Symptoms: "spots",
		TreatmentRecommendation: "fungicide", PreventionMethods: "rotate",
	}}
	svc, loc := newDiseaseService(t, repos, analyzer)
	user := uuid.New()
	first := loc.PublicURL(storage.UserKey(user, ".jpg"))

	res, err := svc.Analyze(context.Background(), user, validation.DiseaseRequest{
		ImageURLs: []string{first, loc.PublicURL(storage.UserKey(user, ".png"))},
		CropType:  "Tomato",
	})
	require.NoError(t, err)
	assert.Equal(t, "Early Blight", res.DetectedDisease)

	rows, err := svc.ListDetections(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, first, rows[0].ImageURL)
	assert.Equal(t, 82.0, rows[0].ConfidenceScore)
}

func TestAnalyzeUpstreamErrorStoresNothing(t *testing.T) {
	_, repos := setup(t)
	svc, loc := newDiseaseService(t, repos, &fakeAnalyzer{err: apperrors.NewUpstreamBillingError(errors.New("402"), "openai")})
	user := uuid.New()

	_, err := svc.Analyze(context.Background(), user, validation.DiseaseRequest{
		ImageURLs: []string{loc.PublicURL(storage.UserKey(user, ".jpg"))}, CropType: "Rice",
	})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeBilling))

	rows, err := svc.ListDetections(context.Background(), user)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestUploadImages(t *testing.T) {
	_, repos := setup(t)
	svc, loc := newDiseaseService(t, repos, &fakeAnalyzer{})
	user := uuid.New()
	img := pngBytes(t)

	urls, err := svc.UploadImages(context.Background(), user, []Upload{{Filename: "a.png", Data: img}, {Filename: "b.png", Data: img}})
	require.NoError(t, err)
	require.Len(t, urls, 2)
	for _, u := range urls {
		assert.True(t, loc.Owns(u, user), u)
		assert.True(t, strings.HasSuffix(u, ".png"), u)
	}
	assert.NotEqual(t, urls[0], urls[1])
}

func TestUploadImagesRejectsBadInput(t *testing.T) {
	_, repos := setup(t)
	svc, _ := newDiseaseService(t, repos, &fakeAnalyzer{})
	user := uuid.New()

	_, err := svc.UploadImages(context.Background(), user, nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = svc.UploadImages(context.Background(), user, []Upload{{Filename: "notes.txt", Data: []byte("plain text")}})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "must be a JPEG, PNG or WebP image", appErr.Fields[0].Message)

	big := append(pngBytes(t), make([]byte, 2048)...)
	_, err = svc.UploadImages(context.Background(), user, []Upload{{Filename: "big.png", Data: big}})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestActivityTaskMapping(t *testing.T) {
	user := uuid.New()
	planting, _ := domain.ParseDate("2026-06-01")

	early := ActivityTask(user, "Maize", planting, validation.ActivityInput{
		DayNumber: 1, Activity: "Land preparation", Description: "Plough", RequiredResources: []string{"tractor", "plough"},
	})
	assert.Equal(t, "2026-06-01", early.ScheduledDate.Format(domain.DateLayout))
	assert.Equal(t, domain.PriorityHigh, early.Priority)
	assert.Equal(t, "Resources: tractor, plough", early.Notes)
	assert.Equal(t, domain.TaskPending, early.Status)
	assert.Equal(t, "Land preparation", early.TaskType)

	boundary := ActivityTask(user, "Maize", planting, validation.ActivityInput{DayNumber: 30, Activity: "Weeding"})
	assert.Equal(t, domain.PriorityHigh, boundary.Priority)
	assert.Equal(t, "2026-06-30", boundary.ScheduledDate.Format(domain.DateLayout))
	assert.Empty(t, boundary.Notes)

	late := ActivityTask(user, "Maize", planting, validation.ActivityInput{DayNumber: 31, Activity: "Top dressing"})
	assert.Equal(t, domain.PriorityMedium, late.Priority)
	assert.Equal(t, "2026-07-01", late.ScheduledDate.Format(domain.DateLayout))
}

func TestTaskToggle(t *testing.T) {
	_, repos := setup(t)
	svc := NewTaskService(repos.Tasks, clock)
	ctx := context.Background()
	user := uuid.New()

	task, err := svc.AddActivity(ctx, user, validation.ActivityTaskRequest{
		CropName: "Wheat", PlantingDate: "2026-11-01",
		Activity: validation.ActivityInput{DayNumber: 10, Activity: "Irrigation"},
	})
	require.NoError(t, err)

	done, err := svc.Toggle(ctx, user, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	assert.True(t, done.CompletedAt.Equal(clock()))

	reopened, err := svc.Toggle(ctx, user, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskPending, reopened.Status)
	assert.Nil(t, reopened.CompletedAt)

	_, err = svc.Toggle(ctx, uuid.New(), task.ID)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

type fakeWeather struct {
	report   *weather.Report
	err      error
	location string
}

func (f *fakeWeather) GetWeather(_ context.Context, location string) (*weather.Report, error) {
	f.location = location
	return f.report, f.err
}

type fakeNotifier struct {
	mu     sync.Mutex
	chatID int64
	sent   []domain.NotificationDraft
	err    error
}

func (f *fakeNotifier) Notify(_ context.Context, chatID int64, drafts []domain.NotificationDraft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chatID = chatID
	f.sent = append(f.sent, drafts...)
	return f.err
}

func chennai() *weather.Report {
	return &weather.Report{
		Current:  weather.Current{Temperature: 38, Humidity: 60, WindSpeed: 5, Condition: "Clear", Description: "clear sky"},
		Location: weather.Location{Name: "Chennai", Country: "IN"},
	}
}

func TestWeatherNotifyChennai(t *testing.T) {
	_, repos := setup(t)
	provider := &fakeWeather{report: chennai()}
	notifier := &fakeNotifier{err: errors.New("bot blocked")}
	svc := NewWeatherService(provider, repos, notifier, "London,UK")
	ctx := context.Background()
	user := uuid.New()

	require.NoError(t, repos.Profiles.Upsert(ctx, &database.Profile{UserID: user, Location: "Chennai,IN", TelegramChatID: ptr(int64(99))}))

	res, err := svc.Notify(ctx, user, "")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.NotificationsSent)
	assert.Equal(t, "Chennai", res.Location)
	assert.Equal(t, "Chennai,IN", provider.location)

	page, err := NewNotificationService(repos.Notifications).List(ctx, user, false, 0)
	require.NoError(t, err)
	require.Len(t, page.Notifications, 1)
	n := page.Notifications[0]
	assert.Equal(t, "High Temperature Warning", n.Title)
	assert.Equal(t, domain.SeverityMedium, n.Severity)
	assert.Equal(t, domain.NotificationWeatherAlert, n.Type)
	assert.Equal(t, int64(1), page.UnreadCount)

	var data map[string]any
	require.NoError(t, json.Unmarshal(n.Data, &data))
	assert.Equal(t, 38.0, data["temperature"])

	assert.Equal(t, int64(99), notifier.chatID)
	assert.Len(t, notifier.sent, 1)
}

func TestWeatherNotifyLocationFallback(t *testing.T) {
	_, repos := setup(t)
	provider := &fakeWeather{report: chennai()}
	svc := NewWeatherService(provider, repos, nil, "London,UK")

	_, err := svc.Notify(context.Background(), uuid.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "London,UK", provider.location)

	_, err = svc.Notify(context.Background(), uuid.New(), "Pune")
	require.NoError(t, err)
	assert.Equal(t, "Pune", provider.location)
}

func TestWeatherNotifyInsertFailureAborts(t *testing.T) {
	db, repos := setup(t)
	svc := NewWeatherService(&fakeWeather{report: chennai()}, repos, nil, "London,UK")
	require.NoError(t, db.Migrator().DropTable(&database.Notification{}))

	_, err := svc.Notify(context.Background(), uuid.New(), "Chennai")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDatabase))
}

func TestWeatherNotifyUpstreamTimeout(t *testing.T) {
	_, repos := setup(t)
	svc := NewWeatherService(&fakeWeather{err: apperrors.NewTimeoutError("weather")}, repos, nil, "London,UK")

	_, err := svc.Notify(context.Background(), uuid.New(), "Chennai")
	assert.Equal(t, 408, apperrors.HTTPStatus(err))
}

func TestSoilRecommendationsPersisted(t *testing.T) {
	_, repos := setup(t)
	svc := NewSoilService(repos, rules.NewEngine(rules.DefaultTable()), clock)
	ctx := context.Background()
	user := uuid.New()

	test, err := svc.Create(ctx, user, validation.SoilTestRequest{
		Location: "North field", PHLevel: ptr(6.5), NitrogenLevel: ptr(50.0), OrganicMatterPercentage: ptr(3.0),
		SoilType: "loamy", SoilTexture: "medium", DrainageQuality: "good",
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-10-19", test.TestDate.Format(domain.DateLayout))

	recs, err := svc.Recommend(ctx, user, test.ID)
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	assert.Equal(t, "Wheat", recs[0].Crop)
	assert.Equal(t, 90, recs[0].SuitabilityScore)

	stored, err := svc.ListRecommendations(ctx, user)
	require.NoError(t, err)
	assert.Len(t, stored, len(recs))
	for _, r := range stored {
		assert.Equal(t, test.ID, r.SoilTestID)
		assert.NotEqual(t, "Rice", r.RecommendedCrop)
	}

	_, err = svc.Recommend(ctx, uuid.New(), test.ID)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestRecommendLatestWithoutSoilTest(t *testing.T) {
	_, repos := setup(t)
	svc := NewSoilService(repos, rules.NewEngine(rules.DefaultTable()), clock)

	_, err := svc.RecommendLatest(context.Background(), uuid.New())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestCropCreateTwiceAndUpdate(t *testing.T) {
	_, repos := setup(t)
	svc := NewCropService(repos.Crops)
	ctx := context.Background()
	user := uuid.New()
	req := validation.CropRequest{Name: "Tomato", PlantingDate: "2026-07-01"}

	a, err := svc.Create(ctx, user, req)
	require.NoError(t, err)
	b, err := svc.Create(ctx, user, req)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, domain.StagePlanning, a.GrowthStage)

	_, err = svc.Update(ctx, user, a.ID, validation.CropUpdateRequest{})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	updated, err := svc.Update(ctx, user, a.ID, validation.CropUpdateRequest{GrowthStage: ptr("growing")})
	require.NoError(t, err)
	assert.Equal(t, domain.StageGrowing, updated.GrowthStage)
	assert.Equal(t, domain.CropActive, updated.Status)
}

func TestPlanServicePassesInput(t *testing.T) {
	gen := &fakePlanner{plan: []domain.PlanActivity{{DayNumber: 1, Activity: "Sow"}}}
	plan, err := NewPlanService(gen).Generate(context.Background(), validation.PlanRequest{
		CropName: "Wheat", PlantingDate: "2026-11-01", ExpectedHarvestDate: "2027-03-15", SoilType: "loam", Location: "Punjab",
	})
	require.NoError(t, err)
	assert.Len(t, plan, 1)
	assert.Equal(t, ai.PlanInput{CropName: "Wheat", PlantingDate: "2026-11-01", ExpectedHarvestDate: "2027-03-15", SoilType: "loam", Location: "Punjab"}, gen.in)
}

type fakePlanner struct {
	in   ai.PlanInput
	plan []domain.PlanActivity
}

func (f *fakePlanner) GenerateCultivationPlan(_ context.Context, in ai.PlanInput) ([]domain.PlanActivity, error) {
	f.in = in
	return f.plan, nil
}

func TestExportUnknownDataset(t *testing.T) {
	_, repos := setup(t)
	svc := NewExportService(repos)

	var buf bytes.Buffer
	err := svc.Write(context.Background(), &buf, uuid.New(), "inventory", export.CSV)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))

	require.NoError(t, svc.Write(context.Background(), &buf, uuid.New(), export.DatasetCrops, export.CSV))
	assert.True(t, strings.HasPrefix(buf.String(), "name,variety"))
}

func TestProfileSaveKeepsLinkedChat(t *testing.T) {
	_, repos := setup(t)
	ctx := context.Background()
	svc := NewProfileService(repos.Profiles)
	alice, mallory := uuid.New(), uuid.New()
	form := validation.ProfileRequest{FullName: "Alice", Location: "Chennai", SoilType: "Clay"}

	_, err := svc.Save(ctx, alice, form)
	require.NoError(t, err)
	require.NoError(t, svc.LinkTelegram(ctx, alice, 4242))

	form.Phone = "9876543210"
	p, err := svc.Save(ctx, alice, form)
	require.NoError(t, err)
	assert.Equal(t, "9876543210", p.Phone)
	require.NotNil(t, p.TelegramChatID)
	assert.EqualValues(t, 4242, *p.TelegramChatID)

	other, err := svc.Save(ctx, mallory, validation.ProfileRequest{FullName: "Mallory", Location: "Pune", SoilType: "Loamy"})
	require.NoError(t, err)
	assert.Nil(t, other.TelegramChatID)

	p, err = svc.Get(ctx, alice)
	require.NoError(t, err)
	require.NotNil(t, p.TelegramChatID)
	assert.EqualValues(t, 4242, *p.TelegramChatID)
}
