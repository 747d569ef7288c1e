package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/vanshika/fraudsight/internal/ingest"
	"github.com/vanshika/fraudsight/internal/ledger"
	"github.com/vanshika/fraudsight/internal/repository"
	"github.com/vanshika/fraudsight/internal/service"
)

// RunLister lists persisted runs from the investigation graph store.
type RunLister interface {
	ListRuns(ctx context.Context, limit int) ([]repository.RunSummary, error)
}

// APIHandlers exposes HTTP handlers for the analysis API.
type APIHandlers struct {
	logger         *slog.Logger
	service        *service.AnalysisService
	runs           RunLister
	maxUploadBytes int64
}

// NewAPIHandlers constructs an APIHandlers instance. The run lister may be
// nil when no graph store is configured.
func NewAPIHandlers(logger *slog.Logger, svc *service.AnalysisService, runs RunLister, maxUploadBytes int64) *APIHandlers {
	return &APIHandlers{
		logger:         logger,
		service:        svc,
		runs:           runs,
		maxUploadBytes: maxUploadBytes,
	}
}

// handleAnalyze accepts a transaction ledger as CSV and responds with the
// strict detection report.
func (h *APIHandlers) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	result, ok := h.runAnalysis(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, result.Report)
}

// handleAnalyzeExtended runs the same pipeline but responds with the
// investigation payload: graph, casefiles and narratives on top of the report.
func (h *APIHandlers) handleAnalyzeExtended(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	result, ok := h.runAnalysis(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, service.BuildExtendedResponse(result))
}

func (h *APIHandlers) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	if h.runs == nil {
		writeError(w, http.StatusNotFound, "no graph store configured")
		return
	}

	limit := parseInt(r.URL.Query().Get("limit"), 20)
	runs, err := h.runs.ListRuns(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list runs", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []repository.RunSummary{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (h *APIHandlers) runAnalysis(w http.ResponseWriter, r *http.Request) (*service.AnalysisResult, bool) {
	body, err := h.ledgerReader(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	defer body.Close()

	txs, err := ingest.ParseCSV(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	result, err := h.service.Analyze(r.Context(), txs)
	if err != nil {
		if errors.Is(err, ledger.ErrDuplicateTransaction) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return nil, false
		}
		h.logger.Error("analysis run failed", "error", err)
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return nil, false
	}
	return result, true
}

// ledgerReader extracts the CSV stream from the request: either the "file"
// part of a multipart form or the raw request body. The upload cap applies
// either way.
func (h *APIHandlers) ledgerReader(r *http.Request) (io.ReadCloser, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, h.maxUploadBytes)

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err == nil && mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
			return nil, errors.New("invalid multipart form")
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, errors.New(`multipart form must carry a "file" part`)
		}
		return file, nil
	}
	return r.Body, nil
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
