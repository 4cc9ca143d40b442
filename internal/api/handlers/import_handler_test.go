package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/ummugulsunn/ai-application-tracker/internal/config"
	"github.com/ummugulsunn/ai-application-tracker/internal/domain/models"
	"github.com/ummugulsunn/ai-application-tracker/internal/repository/memory"
	"github.com/ummugulsunn/ai-application-tracker/internal/service/detection"
	importservice "github.com/ummugulsunn/ai-application-tracker/internal/service/import"
	"github.com/ummugulsunn/ai-application-tracker/internal/worker"
)

func newImportRouter(t *testing.T) (*gin.Engine, *memory.JobStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	detector := detection.NewDetector(detection.NewCatalog(), config.DefaultDetection(), zerolog.Nop())
	importSvc := importservice.NewService(detector, nil, zerolog.Nop(), config.ImportConfig{BatchSize: 100, IDMaxRetries: 5})
	jobStore := memory.NewJobStore()
	pool := worker.NewPool(importSvc, &noopAppStore{}, jobStore, nil, zerolog.Nop(),
		config.WorkerConfig{ImportWorkers: 1, QueueSize: 4})
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	t.Cleanup(func() {
		pool.Stop()
		cancel()
	})

	h := NewImportHandler(importSvc, jobStore, pool, zerolog.Nop(), config.ImportConfig{MaxFileSizeMB: 5})
	r := gin.New()
	r.POST("/v1/imports", h.CreateImport)
	r.POST("/v1/imports/detect", h.DetectColumns)
	r.GET("/v1/imports/:job_id", h.GetImportStatus)
	r.GET("/v1/imports/:job_id/errors", h.GetImportErrors)
	r.POST("/v1/imports/:job_id/cancel", h.CancelImport)
	return r, jobStore
}

type noopAppStore struct{}

func (noopAppStore) GetAll(ctx context.Context) ([]*models.Application, error) { return nil, nil }
func (noopAppStore) CreateBatch(ctx context.Context, apps []*models.Application) (int, error) {
	return len(apps), nil
}
func (noopAppStore) Update(ctx context.Context, app *models.Application) error { return nil }

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestCreateImportAccepted(t *testing.T) {
	r, jobStore := newImportRouter(t)

	body, contentType := multipartBody(t, "a.csv", "Company,Position,Applied Date\nAcme,Engineer,2024-01-15\n")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/imports", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", w.Code, w.Body.String())
	}

	var resp CreateImportResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.JobID == "" {
		t.Fatal("empty job_id")
	}
	if resp.FileName != "a.csv" {
		t.Errorf("file_name = %q", resp.FileName)
	}

	// The job eventually completes in the background.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		sw := httptest.NewRecorder()
		sreq := httptest.NewRequest(http.MethodGet, "/v1/imports/"+resp.JobID, nil)
		r.ServeHTTP(sw, sreq)
		if sw.Code != http.StatusOK {
			t.Fatalf("status endpoint = %d", sw.Code)
		}
		var status GetImportStatusResponse
		if err := json.Unmarshal(sw.Body.Bytes(), &status); err != nil {
			t.Fatalf("unmarshal status: %v", err)
		}
		if status.Status == string(models.JobStatusCompleted) {
			if status.Summary == nil || status.Summary.SuccessfulImports != 1 {
				t.Errorf("summary = %+v", status.Summary)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	got, _ := jobStore.Get(uuid.MustParse(resp.JobID))
	t.Fatalf("import never completed: %+v", got)
}

func TestCreateImportMissingFile(t *testing.T) {
	r, _ := newImportRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/imports", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetImportStatusNotFound(t *testing.T) {
	r, _ := newImportRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/imports/"+uuid.NewString(), nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetImportStatusBadID(t *testing.T) {
	r, _ := newImportRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/imports/not-a-uuid", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestDetectEndpoint(t *testing.T) {
	r, _ := newImportRouter(t)

	payload := `{"headers": ["Company", "Position", "Applied Date"]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/imports/detect", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Detection models.DetectionResult `json:"detection"`
		Decision  string                 `json:"decision"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Detection.DetectedMapping[models.FieldCompany] != "Company" {
		t.Errorf("mapping = %v", body.Detection.DetectedMapping)
	}
	if body.Decision != string(models.DecisionAutoProceed) {
		t.Errorf("decision = %q", body.Decision)
	}
}

func TestDetectEndpointUnknownTemplate(t *testing.T) {
	r, _ := newImportRouter(t)

	payload := `{"headers": ["Company"], "template_id": "nope"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/imports/detect", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404: %s", w.Code, w.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["error"] != "Template not found: nope" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestCancelImportUnknownJob(t *testing.T) {
	r, _ := newImportRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/imports/"+uuid.NewString()+"/cancel", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
