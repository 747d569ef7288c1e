package detect

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vanshika/fraudsight/internal/domain"
	"github.com/vanshika/fraudsight/internal/ledger"
)

var testBase = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

// edge builds one transfer; test ledgers only care about topology and
// timestamps, so amounts stay constant unless a test says otherwise.
func edge(id, sender, receiver string, offset time.Duration) domain.Transaction {
	return domain.Transaction{
		ID:         id,
		SenderID:   sender,
		ReceiverID: receiver,
		Amount:     decimal.NewFromInt(100),
		Timestamp:  testBase.Add(offset),
	}
}

func buildIndex(t *testing.T, txs []domain.Transaction) *ledger.Index {
	t.Helper()
	idx, err := ledger.Build(txs)
	if err != nil {
		t.Fatalf("ledger.Build failed: %v", err)
	}
	return idx
}

func TestFindCyclesTriangle(t *testing.T) {
	idx := buildIndex(t, []domain.Transaction{
		edge("T1", "A", "B", 0),
		edge("T2", "B", "C", time.Hour),
		edge("T3", "C", "A", 2*time.Hour),
	})

	result := FindCycles(context.Background(), idx.Graph, 0)

	if result.Truncated {
		t.Fatal("tiny graph must not exhaust the budget")
	}
	if len(result.Rings) != 1 {
		t.Fatalf("expected exactly 1 ring, got %d", len(result.Rings))
	}
	ring := result.Rings[0]
	if ring.PatternType != domain.RingPatternCycle {
		t.Errorf("ring pattern = %s, want cycle", ring.PatternType)
	}
	if len(ring.Members) != 3 || ring.Members[0] != "A" || ring.Members[1] != "B" || ring.Members[2] != "C" {
		t.Errorf("ring members = %v, want [A B C]", ring.Members)
	}

	if len(result.Hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(result.Hits))
	}
	for _, hit := range result.Hits {
		if hit.Kind != domain.PatternCycleLength3 {
			t.Errorf("hit kind = %s, want cycle_length_3", hit.Kind)
		}
		if hit.Weight != 35 {
			t.Errorf("hit weight = %v, want 35", hit.Weight)
		}
	}
	if len(result.Members) != 3 {
		t.Errorf("cycle member set size = %d, want 3", len(result.Members))
	}
}

func TestFindCyclesIgnoresMutualPair(t *testing.T) {
	idx := buildIndex(t, []domain.Transaction{
		edge("T1", "A", "B", 0),
		edge("T2", "B", "A", time.Hour),
	})

	result := FindCycles(context.Background(), idx.Graph, 0)

	if len(result.Rings) != 0 || len(result.Hits) != 0 {
		t.Fatalf("2-node mutual pair must not be a cycle, got %d rings", len(result.Rings))
	}
}

func TestFindCyclesLengthFourAndFive(t *testing.T) {
	idx := buildIndex(t, []domain.Transaction{
		edge("T1", "A", "B", 0),
		edge("T2", "B", "C", time.Hour),
		edge("T3", "C", "D", 2*time.Hour),
		edge("T4", "D", "A", 3*time.Hour),
	})

	result := FindCycles(context.Background(), idx.Graph, 0)
	if len(result.Rings) != 1 {
		t.Fatalf("expected 1 ring, got %d", len(result.Rings))
	}
	if result.Hits[0].Kind != domain.PatternCycleLength4 {
		t.Errorf("hit kind = %s, want cycle_length_4", result.Hits[0].Kind)
	}
}

func TestFindCyclesSkipsLongLoops(t *testing.T) {
	idx := buildIndex(t, []domain.Transaction{
		edge("T1", "A", "B", 0),
		edge("T2", "B", "C", time.Hour),
		edge("T3", "C", "D", 2*time.Hour),
		edge("T4", "D", "E", 3*time.Hour),
		edge("T5", "E", "F", 4*time.Hour),
		edge("T6", "F", "A", 5*time.Hour),
	})

	result := FindCycles(context.Background(), idx.Graph, 0)
	if len(result.Rings) != 0 {
		t.Fatalf("length-6 loop must be ignored, got %d rings", len(result.Rings))
	}
}

func TestFindCyclesCanonicalDedup(t *testing.T) {
	// Two triangles sharing an edge; each must be discovered exactly once
	// regardless of rotation.
	idx := buildIndex(t, []domain.Transaction{
		edge("T1", "A", "B", 0),
		edge("T2", "B", "C", time.Hour),
		edge("T3", "C", "A", 2*time.Hour),
		edge("T4", "B", "D", 3*time.Hour),
		edge("T5", "D", "A", 4*time.Hour),
		edge("T6", "A", "B2", 5*time.Hour),
	})

	result := FindCycles(context.Background(), idx.Graph, 0)
	if len(result.Rings) != 2 {
		t.Fatalf("expected 2 rings, got %d", len(result.Rings))
	}
	keys := map[string]struct{}{}
	for _, ring := range result.Rings {
		if _, dup := keys[ring.Key()]; dup {
			t.Fatalf("duplicate ring %s", ring.Key())
		}
		keys[ring.Key()] = struct{}{}
	}
}

func TestFindCyclesBudgetTruncates(t *testing.T) {
	idx := buildIndex(t, []domain.Transaction{
		edge("T1", "A", "B", 0),
		edge("T2", "B", "C", time.Hour),
		edge("T3", "C", "A", 2*time.Hour),
	})

	result := FindCycles(context.Background(), idx.Graph, 1)
	if !result.Truncated {
		t.Fatal("exhausted budget must set Truncated")
	}
}

func TestFindCyclesCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Needs enough edges for the search to pass a cancellation checkpoint;
	// either way the call must return without error or panic.
	idx := buildIndex(t, []domain.Transaction{
		edge("T1", "A", "B", 0),
		edge("T2", "B", "C", time.Hour),
		edge("T3", "C", "A", 2*time.Hour),
	})
	_ = FindCycles(ctx, idx.Graph, 0)
}
