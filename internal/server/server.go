package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	apperrors "github.com/vladimiradmaev/farm-helper/internal/errors"
	"github.com/vladimiradmaev/farm-helper/internal/interfaces"
	"github.com/vladimiradmaev/farm-helper/internal/storage"
	"github.com/vladimiradmaev/farm-helper/internal/validation"
)

// TokenVerifier resolves a bearer token to its subject.
type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

// Deps is everything the router needs. PublicStore is nil unless objects are
// served by this process (local storage backend).
type Deps struct {
	Disease       interfaces.DiseaseServiceInterface
	Plans         interfaces.PlanServiceInterface
	Weather       interfaces.WeatherServiceInterface
	Soil          interfaces.SoilServiceInterface
	Crops         interfaces.CropServiceInterface
	Tasks         interfaces.TaskServiceInterface
	Notifications interfaces.NotificationServiceInterface
	Profiles      interfaces.ProfileServiceInterface
	Exports       interfaces.ExportServiceInterface

	Verifier  TokenVerifier
	Validator *validation.Validator
	Errors    *apperrors.Handler
	Logger    *slog.Logger

	Limiter         *httprate.RateLimiter
	RateLimitWindow time.Duration
	AllowedOrigins  []string
	MaxUploadBytes  int64

	Ping        func(ctx context.Context) error
	PublicStore storage.Store
	Bucket      string
	Now         func() time.Time
}

type handlers struct {
	Deps
}

// NewRouter wires middleware and routes onto a gin engine.
func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Errors == nil {
		d.Errors = apperrors.NewHandler(d.Logger)
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	h := &handlers{Deps: d}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestID())
	r.Use(accessLog(d.Logger))
	r.Use(metricsMiddleware())
	r.Use(cors.New(corsConfig(d.AllowedOrigins)))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	r.GET("/healthz", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if d.PublicStore != nil {
		r.GET("/storage/v1/object/public/:bucket/*key", h.publicObject)
	}

	fn := r.Group("/functions/v1", h.authenticate())
	if d.Limiter != nil {
		fn.Use(h.rateLimit(d.Limiter, d.RateLimitWindow))
	}
	fn.POST("/analyze-disease", h.analyzeDisease)
	fn.POST("/generate-crop-plan", h.generatePlan)
	fn.POST("/get-weather", h.getWeather)
	fn.POST("/weather-notifications", h.weatherNotifications)
	fn.POST("/upload-images", h.uploadImages)

	api := r.Group("/api/v1", h.authenticate())

	api.POST("/soil-tests", h.createSoilTest)
	api.GET("/soil-tests", h.listSoilTests)
	api.GET("/soil-tests/latest", h.latestSoilTest)
	api.GET("/soil-tests/:id", h.getSoilTest)
	api.POST("/soil-tests/latest/recommendations", h.recommendLatest)
	api.POST("/soil-tests/:id/recommendations", h.recommend)
	api.GET("/recommendations", h.listRecommendations)

	api.POST("/crops", h.createCrop)
	api.GET("/crops", h.listCrops)
	api.GET("/crops/:id", h.getCrop)
	api.PATCH("/crops/:id", h.updateCrop)
	api.DELETE("/crops/:id", h.deleteCrop)

	api.POST("/tasks", h.createTask)
	api.GET("/tasks", h.listTasks)
	api.POST("/tasks/from-activity", h.createActivityTask)
	api.PATCH("/tasks/:id/toggle", h.toggleTask)
	api.DELETE("/tasks/:id", h.deleteTask)

	api.GET("/disease-detections", h.listDetections)

	api.GET("/notifications", h.listNotifications)
	api.PATCH("/notifications/:id/read", h.markNotificationRead)
	api.POST("/notifications/read-all", h.markAllNotificationsRead)
	api.DELETE("/notifications/:id", h.deleteNotification)

	api.GET("/profile", h.getProfile)
	api.PUT("/profile", h.saveProfile)

	api.GET("/export/:dataset", h.exportDataset)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Client-Info", "Apikey", HeaderRequestID},
		ExposeHeaders: []string{HeaderRequestID, "Retry-After", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// Server runs the router until its context is cancelled.
type Server struct {
	srv             *http.Server
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

func New(addr string, handler http.Handler, logger *slog.Logger, shutdownTimeout time.Duration) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger:          logger,
		shutdownTimeout: shutdownTimeout,
	}
}

// Run blocks until ctx is done, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
