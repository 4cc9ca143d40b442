package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/ummugulsunn/ai-application-tracker/internal/repository/postgres"
	exportservice "github.com/ummugulsunn/ai-application-tracker/internal/service/export"
)

// ApplicationHandler handles application listing and export
type ApplicationHandler struct {
	repo      *postgres.ApplicationRepository
	exportSvc *exportservice.Service
	logger    zerolog.Logger
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(repo *postgres.ApplicationRepository, exportSvc *exportservice.Service, logger zerolog.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		repo:      repo,
		exportSvc: exportSvc,
		logger:    logger,
	}
}

// ListApplications handles GET /v1/applications
func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	apps, err := h.repo.GetAll(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list applications")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list applications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applications": apps,
		"total":        len(apps),
	})
}

// ExportApplications handles GET /v1/applications/export
func (h *ApplicationHandler) ExportApplications(c *gin.Context) {
	filename := fmt.Sprintf("applications-%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "text/csv")

	if _, err := h.exportSvc.ExportCSV(c.Request.Context(), c.Writer); err != nil {
		// Headers may already be out; log and abort the stream.
		h.logger.Error().Err(err).Msg("Export stream failed")
		c.Abort()
	}
}
