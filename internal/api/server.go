package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/lucasaraujosgc-hue/crm/internal/api/handlers"
	"github.com/lucasaraujosgc-hue/crm/internal/api/middleware"
	"github.com/lucasaraujosgc-hue/crm/internal/config"
	"github.com/lucasaraujosgc-hue/crm/internal/models"
	"github.com/lucasaraujosgc-hue/crm/internal/services"
)

// multipart framing on top of the document itself
const uploadOverhead = 1 << 20

// Server represents the HTTP server
type Server struct {
	Router      *gin.Engine
	config      *config.Config
	logger      *logrus.Logger
	services    *services.Container
	rateLimiter *middleware.RateLimiter
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, logger *logrus.Logger, services *services.Container) *Server {
	server := &Server{
		config:   cfg,
		logger:   logger,
		services: services,
	}

	registerValidators(logger)
	server.setupRouter()
	return server
}

// registerValidators adds the custom binding tags used by request models
func registerValidators(logger *logrus.Logger) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	err := v.RegisterValidation("campaign_status", func(fl validator.FieldLevel) bool {
		return models.CampaignStatus(fl.Field().String()).IsValid()
	})
	if err != nil {
		logger.WithError(err).Error("Failed to register campaign_status validator")
	}
}

// setupRouter configures the router with all routes and middleware
func (s *Server) setupRouter() {
	s.Router = gin.New()
	s.Router.HandleMethodNotAllowed = true

	s.Router.Use(middleware.RequestID())
	s.Router.Use(middleware.Logger(s.logger))
	s.Router.Use(middleware.Recovery(s.logger))
	s.Router.Use(middleware.CORS(s.config.Security.CORS))
	s.Router.Use(middleware.Security())

	healthHandler := handlers.NewHealthHandler(s.services, s.logger)
	s.Router.GET("/health", healthHandler.GetHealth)
	s.Router.GET("/health/ready", healthHandler.GetReadiness)
	s.Router.GET("/health/live", healthHandler.GetLiveness)
	s.Router.GET("/metrics", handlers.NewMetricsHandler(s.services, s.logger).GetMetrics)

	if s.config.Server.Environment != "production" {
		s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		s.Router.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
		})
	}

	// Only uploads are rate limited; progress streams and listings are cheap reads.
	s.rateLimiter = middleware.NewRateLimiter(s.config.Security.RateLimit)

	batchHandler := handlers.NewBatchHandler(s.services.BatchService, s.services.Progress, s.config.Upload, s.logger)
	resultsHandler := handlers.NewResultsHandler(s.services.BatchService, s.logger)

	maxBody := int64(s.config.Upload.MaxSizeMB)<<20 + uploadOverhead
	s.Router.POST("/start-processing",
		s.rateLimiter.Middleware(),
		middleware.MaxBodySize(maxBody),
		batchHandler.StartProcessing,
	)
	s.Router.GET("/progress/:id", batchHandler.GetProgress)
	s.Router.GET("/get-all-results", resultsHandler.GetAllResults)
	s.Router.GET("/get-results/:id", resultsHandler.GetBatchResults)
	s.Router.PATCH("/results/:id/campaign-status", resultsHandler.UpdateCampaignStatus)

	s.Router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:     "Not Found",
			Message:   "The requested resource was not found",
			Code:      "NOT_FOUND",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
	})

	s.Router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, models.ErrorResponse{
			Error:     "Method Not Allowed",
			Message:   c.Request.Method + " is not allowed for this resource",
			Code:      "METHOD_NOT_ALLOWED",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
	})
}

// Close releases background resources held by the router
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}
