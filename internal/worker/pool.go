package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/ummugulsunn/ai-application-tracker/internal/config"
	apperrors "github.com/ummugulsunn/ai-application-tracker/internal/domain/errors"
	"github.com/ummugulsunn/ai-application-tracker/internal/domain/models"
	"github.com/ummugulsunn/ai-application-tracker/internal/metrics"
	"github.com/ummugulsunn/ai-application-tracker/internal/repository"
	"github.com/ummugulsunn/ai-application-tracker/internal/repository/memory"
	importservice "github.com/ummugulsunn/ai-application-tracker/internal/service/import"
)

// ImportTask carries one uploaded file through the full pipeline: process,
// resolve duplicates by their suggested resolution, execute, persist.
type ImportTask struct {
	Job  *models.ImportJob
	Data []byte
	// AutoResolve applies each duplicate group's suggested resolution instead
	// of waiting for a manual decision.
	AutoResolve bool
}

// Pool manages import workers processing uploaded files off the request path.
type Pool struct {
	importChan chan *ImportTask
	wg         sync.WaitGroup
	quit       chan struct{}
	logger     zerolog.Logger
	importSvc  *importservice.Service
	appStore   repository.ApplicationStore
	jobStore   *memory.JobStore
	metrics    *metrics.Collector
	cfg        config.WorkerConfig
	mu         sync.Mutex
	running    bool
}

// NewPool creates a new worker pool
func NewPool(
	importSvc *importservice.Service,
	appStore repository.ApplicationStore,
	jobStore *memory.JobStore,
	metricsCollector *metrics.Collector,
	logger zerolog.Logger,
	cfg config.WorkerConfig,
) *Pool {
	return &Pool{
		importChan: make(chan *ImportTask, cfg.QueueSize),
		quit:       make(chan struct{}),
		logger:     logger,
		importSvc:  importSvc,
		appStore:   appStore,
		jobStore:   jobStore,
		metrics:    metricsCollector,
		cfg:        cfg,
	}
}

// Start starts the worker pool
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	for i := 0; i < p.cfg.ImportWorkers; i++ {
		p.wg.Add(1)
		go p.importWorker(ctx, i)
	}

	p.logger.Info().
		Int("import_workers", p.cfg.ImportWorkers).
		Int("queue_size", p.cfg.QueueSize).
		Msg("Worker pool started")
}

// Stop gracefully stops the worker pool
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	close(p.quit)
	p.wg.Wait()
	p.logger.Info().Msg("Worker pool stopped")
}

// Submit queues an import task.
func (p *Pool) Submit(task *ImportTask) error {
	select {
	case p.importChan <- task:
		return nil
	default:
		return fmt.Errorf("import job queue is full")
	}
}

func (p *Pool) importWorker(ctx context.Context, id int) {
	defer p.wg.Done()
	logger := p.logger.With().Int("worker_id", id).Logger()
	logger.Info().Msg("Import worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Import worker stopping (context cancelled)")
			return
		case <-p.quit:
			logger.Info().Msg("Import worker stopping")
			return
		case task := <-p.importChan:
			p.processTask(ctx, task, logger)
		}
	}
}

func (p *Pool) processTask(ctx context.Context, task *ImportTask, logger zerolog.Logger) {
	job := task.Job
	log := logger.With().Str("job_id", job.ID.String()).Logger()
	startTime := time.Now()

	if p.metrics != nil {
		p.metrics.RecordImportJobStarted()
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	p.jobStore.BindCancel(job.ID, cancel)

	now := time.Now().UTC()
	p.jobStore.Update(job.ID, func(j *models.ImportJob) {
		j.Status = models.JobStatusProcessing
		j.StartedAt = &now
	})

	onProgress := func(progress models.Progress) {
		p.jobStore.Update(job.ID, func(j *models.ImportJob) {
			j.Progress = progress
		})
	}

	existing, err := p.appStore.GetAll(taskCtx)
	if err != nil {
		p.failJob(job, log, fmt.Sprintf("failed to load existing applications: %v", err), startTime)
		return
	}

	processed, err := p.importSvc.ProcessFile(taskCtx, task.Data, existing, onProgress)
	if err != nil {
		p.finishWithError(job, log, err, startTime)
		return
	}

	p.jobStore.Update(job.ID, func(j *models.ImportJob) {
		j.Decision = processed.Decision
		j.Detection = &models.DetectionResult{
			DetectedMapping: processed.DetectedMapping,
			Confidence:      processed.Confidence,
			Suggestions:     processed.Suggestions,
			TemplateID:      processed.TemplateID,
			Encoding:        processed.Encoding,
		}
	})

	if processed.Decision == models.DecisionRequireMappingReview && !task.AutoResolve {
		p.jobStore.Update(job.ID, func(j *models.ImportJob) {
			j.Status = models.JobStatusReview
		})
		log.Info().Msg("Import requires mapping review")
		if p.metrics != nil {
			p.metrics.RecordImportJobCompleted("review", time.Since(startTime).Seconds())
		}
		return
	}

	resolutions := make(map[int]models.DuplicateResolution, len(processed.Validation.DuplicateGroups))
	for i, group := range processed.Validation.DuplicateGroups {
		resolutions[i] = group.SuggestedResolution
	}

	result, err := p.importSvc.ImportWithValidation(taskCtx, processed.Data, processed.DetectedMapping,
		importservice.Options{
			ExistingApplications: existing,
			DuplicateResolutions: resolutions,
			OnlyValidRows:        true,
		}, onProgress)
	if err != nil {
		p.finishWithError(job, log, err, startTime)
		return
	}

	if _, err := p.appStore.CreateBatch(taskCtx, result.Applications); err != nil {
		p.failJob(job, log, fmt.Sprintf("failed to persist applications: %v", err), startTime)
		return
	}
	for _, update := range result.Updates {
		if err := p.appStore.Update(taskCtx, update); err != nil {
			log.Error().Err(err).Str("application_id", update.ID).Msg("Failed to apply merge update")
		}
	}

	completed := time.Now().UTC()
	p.jobStore.Update(job.ID, func(j *models.ImportJob) {
		j.Status = models.JobStatusCompleted
		j.Summary = &result.Summary
		j.CompletedAt = &completed
	})
	if p.metrics != nil {
		p.metrics.RecordImportJobCompleted("completed", time.Since(startTime).Seconds())
	}
	log.Info().
		Int("imported", result.Summary.SuccessfulImports).
		Int("skipped", result.Summary.SkippedRows).
		Dur("duration", time.Since(startTime)).
		Msg("Import job completed")
}

func (p *Pool) finishWithError(job *models.ImportJob, log zerolog.Logger, err error, startTime time.Time) {
	if errors.Is(err, apperrors.ErrCancelled) {
		completed := time.Now().UTC()
		p.jobStore.Update(job.ID, func(j *models.ImportJob) {
			j.Status = models.JobStatusCancelled
			j.ErrorMessage = apperrors.ErrCancelled.Error()
			j.CompletedAt = &completed
		})
		if p.metrics != nil {
			p.metrics.RecordImportJobCompleted("cancelled", time.Since(startTime).Seconds())
		}
		log.Info().Msg("Import job cancelled")
		return
	}
	p.failJob(job, log, err.Error(), startTime)
}

func (p *Pool) failJob(job *models.ImportJob, log zerolog.Logger, errMsg string, startTime time.Time) {
	completed := time.Now().UTC()
	p.jobStore.Update(job.ID, func(j *models.ImportJob) {
		j.Status = models.JobStatusFailed
		j.ErrorMessage = errMsg
		j.CompletedAt = &completed
	})
	if p.metrics != nil {
		p.metrics.RecordImportJobCompleted("failed", time.Since(startTime).Seconds())
	}
	log.Error().Str("error", errMsg).Msg("Import job failed")
}

// QueueStats returns current queue statistics
func (p *Pool) QueueStats() map[string]int {
	return map[string]int{
		"import_queue_size": len(p.importChan),
		"import_queue_cap":  cap(p.importChan),
	}
}
