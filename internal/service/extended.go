package service

import (
	"github.com/vanshika/fraudsight/internal/domain"
	"github.com/vanshika/fraudsight/internal/scoring"
)

// ExtendedResponse is the investigation-grade output: the strict report plus
// the account graph, per-ring casefiles and per-account narratives.
type ExtendedResponse struct {
	RunID      string              `json:"run_id"`
	Report     domain.Report       `json:"report"`
	Graph      GraphPayload        `json:"graph"`
	Casefiles  []scoring.Casefile  `json:"casefiles"`
	Narratives []scoring.Narrative `json:"narratives"`
	Coverage   []string            `json:"coverage_caveats"`
	ElapsedMs  int64               `json:"elapsed_ms"`
}

// GraphPayload is the account graph annotated with scoring results, shaped
// for direct rendering by an investigation frontend.
type GraphPayload struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// GraphNode is one account with its verdict and centrality attached.
type GraphNode struct {
	ID             string   `json:"id"`
	SuspicionScore float64  `json:"suspicion_score"`
	Suspicious     bool     `json:"suspicious"`
	Patterns       []string `json:"patterns"`
	RingID         string   `json:"ring_id,omitempty"`
	PageRank       float64  `json:"pagerank"`
	Betweenness    float64  `json:"betweenness"`
	SentCount      int      `json:"sent_count"`
	ReceivedCount  int      `json:"received_count"`
}

// GraphEdge is one collapsed sender→receiver flow.
type GraphEdge struct {
	From             string `json:"from"`
	To               string `json:"to"`
	TotalAmount      string `json:"total_amount"`
	TransactionCount int    `json:"transaction_count"`
}

// BuildExtendedResponse assembles the extended output from a finished run.
func BuildExtendedResponse(result *AnalysisResult) ExtendedResponse {
	resp := ExtendedResponse{
		RunID:      result.RunID,
		Report:     result.Report,
		Casefiles:  scoring.BuildCasefiles(result.Index, result.Outcome),
		Narratives: scoring.BuildNarratives(result.Index, result.Outcome),
		Coverage:   result.Coverage,
		ElapsedMs:  result.Elapsed.Milliseconds(),
	}
	if resp.Coverage == nil {
		resp.Coverage = []string{}
	}

	flagged := make(map[string]struct{}, len(result.Outcome.Flagged))
	for _, rec := range result.Outcome.Flagged {
		flagged[rec.AccountID] = struct{}{}
	}

	resp.Graph.Nodes = make([]GraphNode, 0, len(result.Index.Accounts))
	for _, id := range result.Index.AccountIDs() {
		acct := result.Index.Accounts[id]
		node := GraphNode{
			ID:            id,
			PageRank:      result.Centrality.PageRank[id],
			Betweenness:   result.Centrality.Betweenness[id],
			SentCount:     acct.SentCount,
			ReceivedCount: acct.ReceivedCount,
		}
		if rec, ok := result.Outcome.Records[id]; ok {
			node.SuspicionScore = rec.NormalizedScore
			node.RingID = rec.RingID
			node.Patterns = make([]string, 0, len(rec.Patterns))
			for _, kind := range rec.Patterns {
				node.Patterns = append(node.Patterns, string(kind))
			}
		} else {
			node.Patterns = []string{}
		}
		_, node.Suspicious = flagged[id]
		resp.Graph.Nodes = append(resp.Graph.Nodes, node)
	}

	edges := result.Index.Graph.Edges()
	resp.Graph.Edges = make([]GraphEdge, 0, len(edges))
	for _, edge := range edges {
		resp.Graph.Edges = append(resp.Graph.Edges, GraphEdge{
			From:             edge.From,
			To:               edge.To,
			TotalAmount:      edge.Total.StringFixed(2),
			TransactionCount: len(edge.Transactions),
		})
	}

	return resp
}
