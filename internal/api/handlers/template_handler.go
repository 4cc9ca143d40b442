package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	apperrors "github.com/ummugulsunn/ai-application-tracker/internal/domain/errors"
	"github.com/ummugulsunn/ai-application-tracker/internal/service/detection"
)

// TemplateHandler serves the built-in import template catalog
type TemplateHandler struct {
	catalog *detection.Catalog
	logger  zerolog.Logger
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(catalog *detection.Catalog, logger zerolog.Logger) *TemplateHandler {
	return &TemplateHandler{catalog: catalog, logger: logger}
}

// TemplateInfo describes one catalog entry
type TemplateInfo struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Source  string   `json:"source"`
	Columns []string `json:"columns"`
}

// ListTemplates handles GET /v1/templates
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	templates := h.catalog.Templates()
	infos := make([]TemplateInfo, 0, len(templates))
	for _, t := range templates {
		infos = append(infos, TemplateInfo{
			ID:      t.ID,
			Name:    t.Name,
			Source:  t.Source,
			Columns: t.Columns(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"templates": infos})
}

// DownloadTemplate handles GET /v1/templates/:id/download
func (h *TemplateHandler) DownloadTemplate(c *gin.Context) {
	id := c.Param("id")

	rows, _ := strconv.Atoi(c.DefaultQuery("rows", "5"))
	if rows < 1 {
		rows = 5
	}
	if rows > 100 {
		rows = 100
	}

	content, err := h.catalog.GenerateTemplateCSV(id, rows)
	if err != nil {
		var notFound *apperrors.TemplateNotFoundError
		if errors.As(err, &notFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error().Err(err).Str("template_id", id).Msg("Failed to generate template file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate template"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-template.csv"`, id))
	c.Data(http.StatusOK, "text/csv", []byte(content))
}
