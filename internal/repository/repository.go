// Package repository persists finished analysis runs into the investigation
// graph store so that flagged accounts and rings can be explored across runs.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vanshika/fraudsight/internal/graph"
	"github.com/vanshika/fraudsight/internal/service"
)

// exportBatchSize caps how many rows a single UNWIND statement carries.
const exportBatchSize = 500

// RunSummary is one persisted run as returned by ListRuns.
type RunSummary struct {
	RunID        string    `json:"run_id"`
	GeneratedAt  time.Time `json:"generated_at"`
	AccountCount int64     `json:"account_count"`
	FlaggedCount int64     `json:"flagged_count"`
	RingCount    int64     `json:"ring_count"`
}

// Repository encapsulates graph persistence operations.
type Repository struct {
	client graph.Client
}

// New instantiates a Repository backed by the supplied graph client.
func New(client graph.Client) *Repository {
	return &Repository{client: client}
}

// ExportRun writes the run node, account verdicts, collapsed flows and rings
// into the graph. Accounts and flows are upserted in batches; ring membership
// rides on the ring batch.
func (r *Repository) ExportRun(ctx context.Context, export service.RunExport) error {
	if export.RunID == "" {
		return errors.New("run id is required")
	}

	flagged := 0
	for _, acct := range export.Accounts {
		if acct.Suspicious {
			flagged++
		}
	}

	_, err := r.client.ExecuteWrite(ctx, upsertRunCypher, map[string]any{
		"runId":        export.RunID,
		"generatedAt":  export.GeneratedAt.UTC().Format(time.RFC3339),
		"accountCount": len(export.Accounts),
		"flaggedCount": flagged,
		"ringCount":    len(export.Rings),
	})
	if err != nil {
		return fmt.Errorf("upsert run %s: %w", export.RunID, err)
	}

	for start := 0; start < len(export.Accounts); start += exportBatchSize {
		end := min(start+exportBatchSize, len(export.Accounts))
		if err := r.exportAccounts(ctx, export.RunID, export.Accounts[start:end]); err != nil {
			return err
		}
	}
	for start := 0; start < len(export.Flows); start += exportBatchSize {
		end := min(start+exportBatchSize, len(export.Flows))
		if err := r.exportFlows(ctx, export.RunID, export.Flows[start:end]); err != nil {
			return err
		}
	}
	for start := 0; start < len(export.Rings); start += exportBatchSize {
		end := min(start+exportBatchSize, len(export.Rings))
		if err := r.exportRings(ctx, export.RunID, export.Rings[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) exportAccounts(ctx context.Context, runID string, accounts []service.AccountExport) error {
	rows := make([]map[string]any, 0, len(accounts))
	for _, acct := range accounts {
		patterns := acct.Patterns
		if patterns == nil {
			patterns = []string{}
		}
		rows = append(rows, map[string]any{
			"accountId":      acct.ID,
			"suspicionScore": acct.SuspicionScore,
			"suspicious":     acct.Suspicious,
			"patterns":       patterns,
			"ringId":         acct.RingID,
			"pagerank":       acct.PageRank,
			"betweenness":    acct.Betweenness,
		})
	}

	_, err := r.client.ExecuteWrite(ctx, upsertAccountsCypher, map[string]any{
		"runId":    runID,
		"accounts": rows,
	})
	if err != nil {
		return fmt.Errorf("export accounts for run %s: %w", runID, err)
	}
	return nil
}

func (r *Repository) exportFlows(ctx context.Context, runID string, flows []service.FlowExport) error {
	rows := make([]map[string]any, 0, len(flows))
	for _, flow := range flows {
		rows = append(rows, map[string]any{
			"from":        flow.From,
			"to":          flow.To,
			"totalAmount": flow.TotalAmount,
			"txnCount":    flow.TransactionCount,
		})
	}

	_, err := r.client.ExecuteWrite(ctx, upsertFlowsCypher, map[string]any{
		"runId": runID,
		"flows": rows,
	})
	if err != nil {
		return fmt.Errorf("export flows for run %s: %w", runID, err)
	}
	return nil
}

func (r *Repository) exportRings(ctx context.Context, runID string, rings []service.RingExport) error {
	rows := make([]map[string]any, 0, len(rings))
	for _, ring := range rings {
		rows = append(rows, map[string]any{
			"ringId":      ring.ID,
			"patternType": ring.PatternType,
			"riskScore":   ring.RiskScore,
			"members":     ring.Members,
		})
	}

	_, err := r.client.ExecuteWrite(ctx, upsertRingsCypher, map[string]any{
		"runId": runID,
		"rings": rows,
	})
	if err != nil {
		return fmt.Errorf("export rings for run %s: %w", runID, err)
	}
	return nil
}

// ListRuns returns the most recent persisted runs, newest first.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	res, err := r.client.ExecuteRead(ctx, listRunsCypher, map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("list runs query: %w", err)
	}

	var runs []RunSummary
	for _, record := range res.Records {
		item := RunSummary{
			RunID:        toString(record["runId"]),
			AccountCount: toInt64(record["accountCount"]),
			FlaggedCount: toInt64(record["flaggedCount"]),
			RingCount:    toInt64(record["ringCount"]),
		}
		if ts := toTimePtr(record["generatedAt"]); ts != nil {
			item.GeneratedAt = *ts
		}
		runs = append(runs, item)
	}
	return runs, nil
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func toTimePtr(v any) *time.Time {
	switch t := v.(type) {
	case time.Time:
		return &t
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return nil
		}
		return &parsed
	default:
		return nil
	}
}

const upsertRunCypher = `
MERGE (run:AnalysisRun {runId: $runId})
SET run.generatedAt = $generatedAt,
	run.accountCount = $accountCount,
	run.flaggedCount = $flaggedCount,
	run.ringCount = $ringCount
RETURN run.runId AS runId
`

const upsertAccountsCypher = `
MATCH (run:AnalysisRun {runId: $runId})
UNWIND $accounts AS row
MERGE (a:Account {accountId: row.accountId})
SET a.suspicionScore = row.suspicionScore,
	a.suspicious = row.suspicious,
	a.patterns = row.patterns,
	a.ringId = row.ringId,
	a.pagerank = row.pagerank,
	a.betweenness = row.betweenness
MERGE (run)-[:ANALYZED]->(a)
RETURN count(a) AS upserted
`

const upsertFlowsCypher = `
UNWIND $flows AS row
MATCH (sender:Account {accountId: row.from})
MATCH (receiver:Account {accountId: row.to})
MERGE (sender)-[flow:SENT_TO {runId: $runId}]->(receiver)
SET flow.totalAmount = row.totalAmount,
	flow.transactionCount = row.txnCount
RETURN count(flow) AS upserted
`

const upsertRingsCypher = `
MATCH (run:AnalysisRun {runId: $runId})
UNWIND $rings AS row
MERGE (ring:FraudRing {ringId: row.ringId, runId: $runId})
SET ring.patternType = row.patternType,
	ring.riskScore = row.riskScore
MERGE (run)-[:DETECTED]->(ring)
WITH ring, row
UNWIND row.members AS memberId
MATCH (member:Account {accountId: memberId})
MERGE (member)-[:MEMBER_OF]->(ring)
RETURN count(ring) AS upserted
`

const listRunsCypher = `
MATCH (run:AnalysisRun)
RETURN run.runId AS runId,
       run.generatedAt AS generatedAt,
       run.accountCount AS accountCount,
       run.flaggedCount AS flaggedCount,
       run.ringCount AS ringCount
ORDER BY run.generatedAt DESC
LIMIT $limit
`
