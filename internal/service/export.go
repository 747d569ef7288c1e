package service

import (
	"time"
)

// RunExport is the flattened shape of one finished run handed to the
// investigation graph store.
type RunExport struct {
	RunID       string
	GeneratedAt time.Time
	Accounts    []AccountExport
	Flows       []FlowExport
	Rings       []RingExport
}

// AccountExport is one account node with its verdict attached.
type AccountExport struct {
	ID             string
	SuspicionScore float64
	Patterns       []string
	RingID         string
	Suspicious     bool
	PageRank       float64
	Betweenness    float64
}

// FlowExport is one collapsed sender→receiver edge.
type FlowExport struct {
	From             string
	To               string
	TotalAmount      string
	TransactionCount int
}

// RingExport is one detected ring.
type RingExport struct {
	ID          string
	PatternType string
	RiskScore   float64
	Members     []string
}

func buildRunExport(result *AnalysisResult, generatedAt time.Time) RunExport {
	export := RunExport{
		RunID:       result.RunID,
		GeneratedAt: generatedAt,
	}

	flaggedIDs := make(map[string]struct{}, len(result.Outcome.Flagged))
	for _, rec := range result.Outcome.Flagged {
		flaggedIDs[rec.AccountID] = struct{}{}
	}

	for _, id := range result.Index.AccountIDs() {
		entry := AccountExport{
			ID:          id,
			PageRank:    result.Centrality.PageRank[id],
			Betweenness: result.Centrality.Betweenness[id],
		}
		if rec, ok := result.Outcome.Records[id]; ok {
			entry.SuspicionScore = rec.NormalizedScore
			entry.RingID = rec.RingID
			for _, kind := range rec.Patterns {
				entry.Patterns = append(entry.Patterns, string(kind))
			}
		}
		_, entry.Suspicious = flaggedIDs[id]
		export.Accounts = append(export.Accounts, entry)
	}

	for _, edge := range result.Index.Graph.Edges() {
		export.Flows = append(export.Flows, FlowExport{
			From:             edge.From,
			To:               edge.To,
			TotalAmount:      edge.Total.StringFixed(2),
			TransactionCount: len(edge.Transactions),
		})
	}

	for _, ring := range result.Outcome.Rings {
		export.Rings = append(export.Rings, RingExport{
			ID:          ring.ID,
			PatternType: ring.PatternType,
			RiskScore:   ring.RiskScore,
			Members:     ring.Members,
		})
	}

	return export
}
