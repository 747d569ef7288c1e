package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vanshika/fraudsight/internal/config"
	"github.com/vanshika/fraudsight/internal/repository"
	"github.com/vanshika/fraudsight/internal/service"
)

const cycleLedgerCSV = `transaction_id,sender_id,receiver_id,amount,timestamp
TX001,ACC_A,ACC_B,500.00,2024-01-01 10:00:00
TX002,ACC_B,ACC_C,480.00,2024-01-02 10:00:00
TX003,ACC_C,ACC_A,460.00,2024-01-03 10:00:00
`

type stubRunLister struct {
	runs []repository.RunSummary
	err  error
}

func (s *stubRunLister) ListRuns(_ context.Context, _ int) ([]repository.RunSummary, error) {
	return s.runs, s.err
}

func testHandlers(runs RunLister) *APIHandlers {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewAnalysisService(logger, config.EngineConfig{AnalysisTimeout: 10 * time.Second}, nil)
	return NewAPIHandlers(logger, svc, runs, 1<<20)
}

func TestHandleAnalyzeRawCSV(t *testing.T) {
	handlers := testHandlers(nil)

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(cycleLedgerCSV))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()

	handlers.handleAnalyze(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		SuspiciousAccounts []struct {
			AccountID string  `json:"account_id"`
			RingID    *string `json:"ring_id"`
		} `json:"suspicious_accounts"`
		FraudRings []struct {
			RingID string `json:"ring_id"`
		} `json:"fraud_rings"`
		Summary struct {
			TotalAccountsAnalyzed int `json:"total_accounts_analyzed"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Summary.TotalAccountsAnalyzed != 3 {
		t.Fatalf("expected 3 accounts analyzed, got %d", payload.Summary.TotalAccountsAnalyzed)
	}
	if len(payload.FraudRings) != 1 || payload.FraudRings[0].RingID != "RING_001" {
		t.Fatalf("expected one ring RING_001, got %+v", payload.FraudRings)
	}
	if len(payload.SuspiciousAccounts) != 3 {
		t.Fatalf("expected all 3 cycle members flagged, got %d", len(payload.SuspiciousAccounts))
	}
}

func TestHandleAnalyzeMultipart(t *testing.T) {
	handlers := testHandlers(nil)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "ledger.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(cycleLedgerCSV)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/analyze", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()

	handlers.handleAnalyze(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleAnalyzeRejectsBadCSV(t *testing.T) {
	handlers := testHandlers(nil)

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader("not,a,ledger\n1,2,3\n"))
	rec := httptest.NewRecorder()

	handlers.handleAnalyze(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestHandleAnalyzeRejectsDuplicateIDs(t *testing.T) {
	handlers := testHandlers(nil)

	dup := `transaction_id,sender_id,receiver_id,amount,timestamp
TX001,ACC_A,ACC_B,500.00,2024-01-01 10:00:00
TX001,ACC_B,ACC_C,480.00,2024-01-02 10:00:00
`
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(dup))
	rec := httptest.NewRecorder()

	handlers.handleAnalyze(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}
}

func TestHandleAnalyzeMethodNotAllowed(t *testing.T) {
	handlers := testHandlers(nil)

	req := httptest.NewRequest(http.MethodGet, "/analyze", nil)
	rec := httptest.NewRecorder()

	handlers.handleAnalyze(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
}

func TestHandleAnalyzeExtended(t *testing.T) {
	handlers := testHandlers(nil)

	req := httptest.NewRequest(http.MethodPost, "/analyze/extended", strings.NewReader(cycleLedgerCSV))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()

	handlers.handleAnalyzeExtended(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		RunID string `json:"run_id"`
		Graph struct {
			Nodes []json.RawMessage `json:"nodes"`
			Edges []json.RawMessage `json:"edges"`
		} `json:"graph"`
		Casefiles  []json.RawMessage `json:"casefiles"`
		Narratives []json.RawMessage `json:"narratives"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.RunID == "" {
		t.Fatal("expected a run id")
	}
	if len(payload.Graph.Nodes) != 3 || len(payload.Graph.Edges) != 3 {
		t.Fatalf("expected 3 nodes and 3 edges, got %d/%d", len(payload.Graph.Nodes), len(payload.Graph.Edges))
	}
	if len(payload.Casefiles) != 1 {
		t.Fatalf("expected one casefile, got %d", len(payload.Casefiles))
	}
	if len(payload.Narratives) != 3 {
		t.Fatalf("expected three narratives, got %d", len(payload.Narratives))
	}
}

func TestHandleRunsWithoutStore(t *testing.T) {
	handlers := testHandlers(nil)

	req := httptest.NewRequest(http.MethodGet, "/runs", nil)
	rec := httptest.NewRecorder()

	handlers.handleRuns(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestHandleRuns(t *testing.T) {
	lister := &stubRunLister{runs: []repository.RunSummary{{RunID: "run-1", FlaggedCount: 4}}}
	handlers := testHandlers(lister)

	req := httptest.NewRequest(http.MethodGet, "/runs?limit=5", nil)
	rec := httptest.NewRecorder()

	handlers.handleRuns(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var payload struct {
		Runs []repository.RunSummary `json:"runs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload.Runs) != 1 || payload.Runs[0].RunID != "run-1" {
		t.Fatalf("unexpected runs payload: %+v", payload.Runs)
	}
}

func TestRouterHealthz(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(logger, RouterDependencies{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected health payload: %s", rec.Body.String())
	}
}
