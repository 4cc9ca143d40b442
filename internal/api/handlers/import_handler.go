package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/ummugulsunn/ai-application-tracker/internal/config"
	apperrors "github.com/ummugulsunn/ai-application-tracker/internal/domain/errors"
	"github.com/ummugulsunn/ai-application-tracker/internal/domain/models"
	"github.com/ummugulsunn/ai-application-tracker/internal/repository/memory"
	importservice "github.com/ummugulsunn/ai-application-tracker/internal/service/import"
	"github.com/ummugulsunn/ai-application-tracker/internal/worker"
)

// ImportHandler handles import-related HTTP requests
type ImportHandler struct {
	importSvc  *importservice.Service
	jobStore   *memory.JobStore
	workerPool *worker.Pool
	logger     zerolog.Logger
	config     config.ImportConfig
}

// NewImportHandler creates a new import handler
func NewImportHandler(
	importSvc *importservice.Service,
	jobStore *memory.JobStore,
	workerPool *worker.Pool,
	logger zerolog.Logger,
	cfg config.ImportConfig,
) *ImportHandler {
	return &ImportHandler{
		importSvc:  importSvc,
		jobStore:   jobStore,
		workerPool: workerPool,
		logger:     logger,
		config:     cfg,
	}
}

// CreateImportResponse represents the response for creating an import
type CreateImportResponse struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	FileName  string `json:"file_name"`
	CreatedAt string `json:"created_at"`
	Links     Links  `json:"links"`
}

// Links represents HATEOAS links
type Links struct {
	Self   string `json:"self"`
	Errors string `json:"errors,omitempty"`
}

// CreateImport handles POST /v1/imports
func (h *ImportHandler) CreateImport(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	defer file.Close()

	if header.Size > int64(h.config.MaxFileSizeMB)*1024*1024 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("file too large, max %dMB", h.config.MaxFileSizeMB)})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
		return
	}

	autoResolve := c.PostForm("auto_resolve") == "true"

	job := models.NewImportJob(header.Filename)
	h.jobStore.Create(job)

	if err := h.workerPool.Submit(&worker.ImportTask{Job: job, Data: data, AutoResolve: autoResolve}); err != nil {
		h.jobStore.Update(job.ID, func(j *models.ImportJob) {
			j.Status = models.JobStatusFailed
			j.ErrorMessage = err.Error()
		})
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, CreateImportResponse{
		JobID:     job.ID.String(),
		Status:    string(job.Status),
		FileName:  job.FileName,
		CreatedAt: job.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Links: Links{
			Self:   fmt.Sprintf("/v1/imports/%s", job.ID.String()),
			Errors: fmt.Sprintf("/v1/imports/%s/errors", job.ID.String()),
		},
	})
}

// GetImportStatusResponse represents the response for getting import status
type GetImportStatusResponse struct {
	JobID        string                  `json:"job_id"`
	Status       string                  `json:"status"`
	FileName     string                  `json:"file_name"`
	Decision     string                  `json:"decision,omitempty"`
	Progress     models.Progress         `json:"progress"`
	Detection    *models.DetectionResult `json:"detection,omitempty"`
	Summary      *models.ImportSummary   `json:"summary,omitempty"`
	StartedAt    *string                 `json:"started_at,omitempty"`
	CompletedAt  *string                 `json:"completed_at,omitempty"`
	ErrorMessage string                  `json:"error_message,omitempty"`
	Links        Links                   `json:"links"`
}

// GetImportStatus handles GET /v1/imports/:job_id
func (h *ImportHandler) GetImportStatus(c *gin.Context) {
	job, ok := h.lookupJob(c)
	if !ok {
		return
	}

	response := GetImportStatusResponse{
		JobID:        job.ID.String(),
		Status:       string(job.Status),
		FileName:     job.FileName,
		Decision:     string(job.Decision),
		Progress:     job.Progress,
		Detection:    job.Detection,
		Summary:      job.Summary,
		ErrorMessage: job.ErrorMessage,
		Links: Links{
			Self:   fmt.Sprintf("/v1/imports/%s", job.ID.String()),
			Errors: fmt.Sprintf("/v1/imports/%s/errors", job.ID.String()),
		},
	}
	if job.StartedAt != nil {
		startedAt := job.StartedAt.Format("2006-01-02T15:04:05Z")
		response.StartedAt = &startedAt
	}
	if job.CompletedAt != nil {
		completedAt := job.CompletedAt.Format("2006-01-02T15:04:05Z")
		response.CompletedAt = &completedAt
	}

	c.JSON(http.StatusOK, response)
}

// GetImportErrorsResponse represents the response for getting import errors
type GetImportErrorsResponse struct {
	JobID    string   `json:"job_id"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// GetImportErrors handles GET /v1/imports/:job_id/errors
func (h *ImportHandler) GetImportErrors(c *gin.Context) {
	job, ok := h.lookupJob(c)
	if !ok {
		return
	}

	response := GetImportErrorsResponse{
		JobID:    job.ID.String(),
		Errors:   job.Progress.Errors,
		Warnings: job.Progress.Warnings,
	}
	if job.Summary != nil && len(job.Summary.Errors) > 0 {
		response.Errors = append(response.Errors, job.Summary.Errors...)
	}
	if response.Errors == nil {
		response.Errors = []string{}
	}
	if response.Warnings == nil {
		response.Warnings = []string{}
	}

	c.JSON(http.StatusOK, response)
}

// CancelImport handles POST /v1/imports/:job_id/cancel
func (h *ImportHandler) CancelImport(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("job_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job_id"})
		return
	}

	if !h.jobStore.Cancel(jobID) {
		if _, ok := h.jobStore.Get(jobID); !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": "job already finished"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job_id": jobID.String(), "status": "cancelling"})
}

// DetectRequest represents the request body for column detection
type DetectRequest struct {
	Headers    []string `json:"headers" binding:"required"`
	TemplateID string   `json:"template_id,omitempty"`
}

// DetectColumns handles POST /v1/imports/detect
func (h *ImportHandler) DetectColumns(c *gin.Context) {
	var req DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	detector := h.importSvc.Detector()
	var result *models.DetectionResult
	if req.TemplateID != "" {
		var err error
		result, err = detector.DetectColumnsWithTemplate(req.Headers, req.TemplateID)
		if err != nil {
			var notFound *apperrors.TemplateNotFoundError
			if errors.As(err, &notFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			h.logger.Error().Err(err).Msg("Detection failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "detection failed"})
			return
		}
	} else {
		result = detector.DetectColumns(req.Headers)
	}

	c.JSON(http.StatusOK, gin.H{
		"detection": result,
		"decision":  detector.Decide(result.Confidence),
	})
}

func (h *ImportHandler) lookupJob(c *gin.Context) (*models.ImportJob, bool) {
	jobID, err := uuid.Parse(c.Param("job_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job_id"})
		return nil, false
	}

	job, ok := h.jobStore.Get(jobID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return nil, false
	}
	return job, true
}
