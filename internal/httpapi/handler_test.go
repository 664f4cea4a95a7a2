package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"

	"TrendsAgent/internal/domain"
	"TrendsAgent/internal/usecase"
)

type fakeRunner struct {
	summary domain.RunSummary
	err     error
}

func (f *fakeRunner) Run(context.Context) (domain.RunSummary, error) {
	return f.summary, f.err
}

type memoryStore struct {
	mu      sync.Mutex
	records []domain.Record
	err     error
}

func (m *memoryStore) Append(_ context.Context, rec domain.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memoryStore) List(context.Context) ([]domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]domain.Record(nil), m.records...), nil
}

func (m *memoryStore) UpdateStatus(_ context.Context, trend string, status domain.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for i := range m.records {
		if m.records[i].TrendText == trend {
			m.records[i].Status = status
			return nil
		}
	}
	return domain.ErrNotFound
}

func seededStore() *memoryStore {
	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	store := &memoryStore{}
	store.records = []domain.Record{
		domain.NewRecord("SBI PO admit card 2025 release date", domain.LabelAdmitCard, domain.ContentBundle{ShortPost: "post"}, base),
		domain.NewRecord("SSC CGL 2025 notification out", domain.LabelJobNotification, domain.ContentBundle{ShortPost: "post"}, base.Add(time.Hour)),
		domain.NewRecord("Delhi Police constable result 2025", domain.LabelResult, domain.ContentBundle{ShortPost: "post"}, base.Add(2*time.Hour)),
	}
	store.records[2].Status = domain.StatusApproved
	return store
}

func newTestRouter(runner PipelineRunner, store *memoryStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(runner, usecase.NewRecords(store, nil), map[string]bool{"classifier": true, "store": true}, nil)
	return NewRouter(h, []string{"http://localhost:3000"})
}

func doRequest(r http.Handler, method, path string, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&fakeRunner{}, seededStore())

	w := doRequest(r, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Status     string          `json:"status"`
		Components map[string]bool `json:"components"`
	}
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, "healthy", res.Status)
	assert.Equal(t, true, res.Components["classifier"])
}

func TestRunAgent_Success(t *testing.T) {
	start := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	rec := domain.NewRecord("RRB NTPC vacancy 2025", domain.LabelJobNotification, domain.ContentBundle{ShortPost: "x"}, start)
	runner := &fakeRunner{summary: domain.RunSummary{
		Processed: 5, Relevant: 4, Skipped: 1, Saved: 4,
		Records:    []domain.Record{rec},
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
	}}
	r := newTestRouter(runner, seededStore())

	w := doRequest(r, "POST", "/run-agent", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var res RunResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, true, res.Success)
	assert.Equal(t, "Agent processed 4 relevant job trends", res.Message)
	assert.Equal(t, 5, res.Stats.Processed)
	assert.Equal(t, 4, res.Stats.Saved)
	assert.Equal(t, 1, len(res.Results))
	assert.Equal(t, "1.5s", res.Duration)
}

func TestRunAgent_Conflict(t *testing.T) {
	runner := &fakeRunner{err: fmt.Errorf("acquire run lock: %w", domain.ErrRunInProgress)}
	r := newTestRouter(runner, seededStore())

	w := doRequest(r, "POST", "/run-agent", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRunAgent_Failure(t *testing.T) {
	r := newTestRouter(&fakeRunner{err: errors.New("fetch trends: boom")}, seededStore())

	w := doRequest(r, "POST", "/run-agent", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, true, strings.Contains(w.Body.String(), "Workflow failed"))
}

func TestGetTrends_Filters(t *testing.T) {
	r := newTestRouter(&fakeRunner{}, seededStore())

	w := doRequest(r, "GET", "/get-trends", "")
	assert.Equal(t, http.StatusOK, w.Code)
	var all struct {
		Data  []domain.Record `json:"data"`
		Count int             `json:"count"`
	}
	json.Unmarshal(w.Body.Bytes(), &all)
	assert.Equal(t, 3, all.Count)
	assert.Equal(t, "Delhi Police constable result 2025", all.Data[0].TrendText)

	w = doRequest(r, "GET", "/get-trends?status=approved", "")
	var approved struct {
		Count int `json:"count"`
	}
	json.Unmarshal(w.Body.Bytes(), &approved)
	assert.Equal(t, 1, approved.Count)

	w = doRequest(r, "GET", "/get-trends?category=Admit%20Card", "")
	var admit struct {
		Data []domain.Record `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &admit)
	assert.Equal(t, 1, len(admit.Data))
	assert.Equal(t, domain.LabelAdmitCard, admit.Data[0].Label)

	w = doRequest(r, "GET", "/get-trends?status=Archived", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, "GET", "/get-trends?category=Sports", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTrends_StoreError(t *testing.T) {
	store := seededStore()
	store.err = errors.New("disk gone")
	r := newTestRouter(&fakeRunner{}, store)

	w := doRequest(r, "GET", "/get-trends", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestUpdateStatus(t *testing.T) {
	store := seededStore()
	r := newTestRouter(&fakeRunner{}, store)

	w := doRequest(r, "POST", "/update-status", `{"trend":"SSC CGL 2025 notification out","status":"Approved"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.StatusApproved, store.records[1].Status)

	w = doRequest(r, "POST", "/update-status", `{"trend":"SSC CGL 2025 notification out"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, "POST", "/update-status", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, "POST", "/update-status", `{"trend":"SSC CGL 2025 notification out","status":"Archived"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, true, strings.Contains(w.Body.String(), "Pending Review, Approved, Rejected"))

	w = doRequest(r, "POST", "/update-status", `{"trend":"never seen","status":"Rejected"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetStats(t *testing.T) {
	r := newTestRouter(&fakeRunner{}, seededStore())

	w := doRequest(r, "GET", "/stats", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Success bool         `json:"success"`
		Stats   domain.Stats `json:"stats"`
	}
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, 3, res.Stats.Total)
	assert.Equal(t, 2, res.Stats.Pending)
	assert.Equal(t, 1, res.Stats.Approved)
	assert.Equal(t, 1, res.Stats.ByCategory[domain.LabelResult])
}

func TestExport(t *testing.T) {
	r := newTestRouter(&fakeRunner{}, seededStore())

	w := doRequest(r, "GET", "/export", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, strings.Contains(w.Header().Get("Content-Disposition"), "trends_export.json"))

	var records []domain.Record
	json.Unmarshal(w.Body.Bytes(), &records)
	assert.Equal(t, 3, len(records))
}

func TestCORSAndNotFound(t *testing.T) {
	r := newTestRouter(&fakeRunner{}, seededStore())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	r.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = doRequest(r, "GET", "/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, true, bytes.Contains(w.Body.Bytes(), []byte("Endpoint not found")))
}
