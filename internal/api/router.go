package api

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/ummugulsunn/ai-application-tracker/internal/api/handlers"
	"github.com/ummugulsunn/ai-application-tracker/internal/api/middleware"
	"github.com/ummugulsunn/ai-application-tracker/internal/config"
	"github.com/ummugulsunn/ai-application-tracker/internal/metrics"
	"github.com/ummugulsunn/ai-application-tracker/internal/repository/memory"
	"github.com/ummugulsunn/ai-application-tracker/internal/repository/postgres"
	"github.com/ummugulsunn/ai-application-tracker/internal/service/detection"
	exportservice "github.com/ummugulsunn/ai-application-tracker/internal/service/export"
	importservice "github.com/ummugulsunn/ai-application-tracker/internal/service/import"
	"github.com/ummugulsunn/ai-application-tracker/internal/worker"
)

// Router holds all dependencies for the API router
type Router struct {
	engine           *gin.Engine
	logger           zerolog.Logger
	db               *sqlx.DB
	cfg              *config.Config
	metricsCollector *metrics.Collector
}

// NewRouter creates a new API router
func NewRouter(
	db *sqlx.DB,
	importSvc *importservice.Service,
	exportSvc *exportservice.Service,
	catalog *detection.Catalog,
	appRepo *postgres.ApplicationRepository,
	jobStore *memory.JobStore,
	workerPool *worker.Pool,
	metricsCollector *metrics.Collector,
	logger zerolog.Logger,
	cfg *config.Config,
) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(middleware.Recovery(logger))
	engine.Use(middleware.Logger(logger))

	if metricsCollector != nil {
		engine.Use(middleware.Metrics(metricsCollector))
	}

	healthHandler := handlers.NewHealthHandler(db)
	importHandler := handlers.NewImportHandler(importSvc, jobStore, workerPool, logger, cfg.Import)
	templateHandler := handlers.NewTemplateHandler(catalog, logger)
	applicationHandler := handlers.NewApplicationHandler(appRepo, exportSvc, logger)

	// Health routes (no version prefix)
	engine.GET("/health", healthHandler.Health)
	engine.GET("/ready", healthHandler.Ready)
	engine.GET("/live", healthHandler.Live)

	if cfg.Prometheus.Enabled {
		engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// API v1 routes
	v1 := engine.Group("/v1")
	{
		imports := v1.Group("/imports")
		{
			imports.POST("", importHandler.CreateImport)
			imports.POST("/detect", importHandler.DetectColumns)
			imports.GET("/:job_id", importHandler.GetImportStatus)
			imports.GET("/:job_id/errors", importHandler.GetImportErrors)
			imports.POST("/:job_id/cancel", importHandler.CancelImport)
		}

		templates := v1.Group("/templates")
		{
			templates.GET("", templateHandler.ListTemplates)
			templates.GET("/:id/download", templateHandler.DownloadTemplate)
		}

		applications := v1.Group("/applications")
		{
			applications.GET("", applicationHandler.ListApplications)
			applications.GET("/export", applicationHandler.ExportApplications)
		}
	}

	return &Router{
		engine:           engine,
		logger:           logger,
		db:               db,
		cfg:              cfg,
		metricsCollector: metricsCollector,
	}
}

// Engine returns the gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	r.logger.Info().Str("addr", addr).Msg("Starting HTTP server")
	return r.engine.Run(addr)
}
