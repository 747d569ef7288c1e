// Package service orchestrates one analysis run: index construction, the
// parallel detector fan-out, scoring, report assembly, and the optional
// export to the investigation graph store.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vanshika/fraudsight/internal/config"
	"github.com/vanshika/fraudsight/internal/detect"
	"github.com/vanshika/fraudsight/internal/domain"
	"github.com/vanshika/fraudsight/internal/ledger"
	"github.com/vanshika/fraudsight/internal/metrics"
	"github.com/vanshika/fraudsight/internal/scoring"
)

// ResultExporter pushes a finished run into the investigation graph store.
type ResultExporter interface {
	ExportRun(ctx context.Context, export RunExport) error
}

// AnalysisService runs the detection-and-scoring pipeline.
type AnalysisService struct {
	logger   *slog.Logger
	cfg      config.EngineConfig
	exporter ResultExporter
	nowFn    func() time.Time
}

// NewAnalysisService constructs the service. The exporter may be nil, in
// which case runs are not persisted anywhere (each run is stateless).
func NewAnalysisService(logger *slog.Logger, cfg config.EngineConfig, exporter ResultExporter) *AnalysisService {
	return &AnalysisService{
		logger:   logger,
		cfg:      cfg,
		exporter: exporter,
		nowFn:    time.Now,
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (s *AnalysisService) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// AnalysisResult is the full product of one run. The strict Report is the
// published contract; the remaining fields feed the extended output.
type AnalysisResult struct {
	RunID      string
	Report     domain.Report
	Outcome    scoring.Outcome
	Index      *ledger.Index
	Centrality detect.CentralityResult
	Coverage   []string
	Elapsed    time.Duration
}

// Analyze runs the whole pipeline over a validated transaction stream. The
// detectors execute as parallel read-only tasks over the immutable index and
// join before scoring; the engine budget caps the superlinear searches so a
// dense graph degrades to partial coverage instead of hanging.
func (s *AnalysisService) Analyze(ctx context.Context, txs []domain.Transaction) (*AnalysisResult, error) {
	start := s.nowFn()
	runID := uuid.NewString()
	logger := s.logger.With("run_id", runID)

	idx, err := ledger.Build(txs)
	if err != nil {
		metrics.AnalysisRuns.WithLabelValues("error").Inc()
		return nil, err
	}
	logger.Info("ledger index built",
		"transactions", len(idx.Transactions),
		"accounts", len(idx.Accounts),
		"edges", idx.Graph.EdgeCount(),
	)

	runCtx := ctx
	if s.cfg.AnalysisTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.cfg.AnalysisTimeout)
		defer cancel()
	}

	var (
		cycles      detect.CycleResult
		structuring detect.StructuringResult
		shells      detect.ShellChainResult
		centrality  detect.CentralityResult
	)

	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(func() error {
		cycles = detect.FindCycles(groupCtx, idx.Graph, s.cfg.CyclePathBudget)
		return nil
	})
	group.Go(func() error {
		structuring = detect.DetectStructuring(idx)
		return nil
	})
	group.Go(func() error {
		shells = detect.TraceShellChains(groupCtx, idx, s.cfg.ShellStepBudget)
		return nil
	})
	group.Go(func() error {
		centrality = detect.ComputeCentrality(groupCtx, idx.Graph)
		return nil
	})
	// The detectors always return best-effort results instead of errors;
	// Wait is still the join barrier before the scorer touches anything.
	_ = group.Wait()

	var coverage []string
	if cycles.Truncated {
		coverage = append(coverage, "cycle enumeration hit its search budget; cycle coverage is partial")
		metrics.SearchTruncations.WithLabelValues("cycles").Inc()
	}
	if shells.Truncated {
		coverage = append(coverage, "shell chain tracing hit its step budget; chain coverage is partial")
		metrics.SearchTruncations.WithLabelValues("shell_chains").Inc()
	}

	hits := make([]domain.PatternHit, 0, len(cycles.Hits)+len(structuring.Hits)+len(shells.Hits))
	hits = append(hits, cycles.Hits...)
	hits = append(hits, structuring.Hits...)
	hits = append(hits, shells.Hits...)

	candidates := make([]domain.RingCandidate, 0, len(cycles.Rings)+len(structuring.Rings)+len(shells.Rings))
	candidates = append(candidates, cycles.Rings...)
	candidates = append(candidates, structuring.Rings...)
	candidates = append(candidates, shells.Rings...)

	outcome := scoring.Score(scoring.Signals{
		Index:           idx,
		Hits:            hits,
		RingCandidates:  candidates,
		Centrality:      centrality,
		CycleMembers:    cycles.Members,
		CoverageCaveats: coverage,
	})
	if s.cfg.MergeRings {
		outcome = scoring.MergeOverlappingRings(outcome)
	}

	elapsed := s.nowFn().Sub(start)
	report := scoring.BuildReport(outcome, len(idx.Accounts), elapsed)

	metrics.AnalysisRuns.WithLabelValues("ok").Inc()
	metrics.TransactionsAnalyzed.Add(float64(len(idx.Transactions)))
	metrics.AccountsFlagged.Add(float64(len(outcome.Flagged)))
	for _, ring := range outcome.Rings {
		metrics.RingsDetected.WithLabelValues(ring.PatternType).Inc()
	}
	metrics.AnalysisDuration.Observe(elapsed.Seconds())

	logger.Info("analysis run complete",
		"flagged", len(outcome.Flagged),
		"rings", len(outcome.Rings),
		"elapsed_ms", elapsed.Milliseconds(),
	)

	result := &AnalysisResult{
		RunID:      runID,
		Report:     report,
		Outcome:    outcome,
		Index:      idx,
		Centrality: centrality,
		Coverage:   coverage,
		Elapsed:    elapsed,
	}

	if s.exporter != nil {
		if err := s.exporter.ExportRun(ctx, buildRunExport(result, s.nowFn().UTC())); err != nil {
			// Export is advisory; the report already stands on its own.
			logger.Warn("graph export failed", "error", err)
		}
	}

	return result, nil
}
