package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vanshika/fraudsight/internal/graph"
	"github.com/vanshika/fraudsight/internal/service"
)

func sampleExport() service.RunExport {
	return service.RunExport{
		RunID:       "run-1",
		GeneratedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Accounts: []service.AccountExport{
			{ID: "ACC001", SuspicionScore: 87.5, Patterns: []string{"cycle_length_3"}, RingID: "RING_001", Suspicious: true},
			{ID: "ACC002", SuspicionScore: 0, Suspicious: false},
		},
		Flows: []service.FlowExport{
			{From: "ACC001", To: "ACC002", TotalAmount: "150.00", TransactionCount: 2},
		},
		Rings: []service.RingExport{
			{ID: "RING_001", PatternType: "cycle", RiskScore: 96.2, Members: []string{"ACC001"}},
		},
	}
}

func TestExportRunWritesAllBatches(t *testing.T) {
	client := graph.NewMemoryClient()
	repo := New(client)

	if err := repo.ExportRun(context.Background(), sampleExport()); err != nil {
		t.Fatalf("ExportRun returned error: %v", err)
	}

	calls := client.WriteCalls()
	if len(calls) != 4 {
		t.Fatalf("expected 4 write statements (run, accounts, flows, rings), got %d", len(calls))
	}

	if !strings.Contains(calls[0].Query, "MERGE (run:AnalysisRun") {
		t.Errorf("first statement should upsert the run node, got: %s", calls[0].Query)
	}
	if got := calls[0].Params["flaggedCount"]; got != 1 {
		t.Errorf("flaggedCount = %v, want 1", got)
	}

	accounts, ok := calls[1].Params["accounts"].([]map[string]any)
	if !ok || len(accounts) != 2 {
		t.Fatalf("account batch malformed: %#v", calls[1].Params["accounts"])
	}
	if accounts[0]["accountId"] != "ACC001" {
		t.Errorf("first account id = %v, want ACC001", accounts[0]["accountId"])
	}
	if accounts[1]["patterns"] == nil {
		t.Error("accounts with no hits should carry an empty pattern list, not nil")
	}

	if !strings.Contains(calls[3].Query, "MEMBER_OF") {
		t.Errorf("ring statement should link members, got: %s", calls[3].Query)
	}
}

func TestExportRunRequiresRunID(t *testing.T) {
	repo := New(graph.NewMemoryClient())

	export := sampleExport()
	export.RunID = ""
	if err := repo.ExportRun(context.Background(), export); err == nil {
		t.Fatal("expected error for missing run id")
	}
}

func TestExportRunPropagatesWriteErrors(t *testing.T) {
	boom := errors.New("bolt connection reset")
	client := graph.NewMemoryClient().WithError(boom)
	repo := New(client)

	err := repo.ExportRun(context.Background(), sampleExport())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped client error, got %v", err)
	}
}

func TestListRuns(t *testing.T) {
	client := graph.NewMemoryClient()
	client.PushReadResult(graph.Result{Records: []graph.Record{
		{
			"runId":        "run-2",
			"generatedAt":  "2024-03-02T09:00:00Z",
			"accountCount": int64(120),
			"flaggedCount": int64(7),
			"ringCount":    int64(2),
		},
	}})
	repo := New(client)

	runs, err := repo.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRuns returned error: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].RunID != "run-2" || runs[0].FlaggedCount != 7 {
		t.Errorf("unexpected summary: %+v", runs[0])
	}
	if runs[0].GeneratedAt.IsZero() {
		t.Error("generatedAt should parse from RFC3339")
	}

	calls := client.ReadCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 read call, got %d", len(calls))
	}
	if got := calls[0].Params["limit"]; got != 10 {
		t.Errorf("limit param = %v, want 10", got)
	}
}

func TestListRunsClampsLimit(t *testing.T) {
	client := graph.NewMemoryClient()
	repo := New(client)

	if _, err := repo.ListRuns(context.Background(), -5); err != nil {
		t.Fatalf("ListRuns returned error: %v", err)
	}
	if _, err := repo.ListRuns(context.Background(), 5000); err != nil {
		t.Fatalf("ListRuns returned error: %v", err)
	}

	calls := client.ReadCalls()
	if calls[0].Params["limit"] != 20 {
		t.Errorf("default limit = %v, want 20", calls[0].Params["limit"])
	}
	if calls[1].Params["limit"] != 100 {
		t.Errorf("clamped limit = %v, want 100", calls[1].Params["limit"])
	}
}
