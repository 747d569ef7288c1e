package detect

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/vanshika/fraudsight/internal/domain"
)

func TestTraceShellChainsBasic(t *testing.T) {
	// SRC→S1→S2→DEST with S1 and S2 moving money exactly twice.
	idx := buildIndex(t, []domain.Transaction{
		edge("T1", "SRC", "S1", 0),
		edge("T2", "S1", "S2", time.Hour),
		edge("T3", "S2", "DEST", 2*time.Hour),
	})

	result := TraceShellChains(context.Background(), idx, 0)

	if result.Truncated {
		t.Fatal("tiny graph must not exhaust the budget")
	}
	if len(result.Rings) != 1 {
		t.Fatalf("expected 1 chain, got %d", len(result.Rings))
	}
	ring := result.Rings[0]
	if ring.PatternType != domain.RingPatternLayeredShell {
		t.Errorf("ring pattern = %s, want layered_shell", ring.PatternType)
	}
	if len(ring.Members) != 4 {
		t.Errorf("chain members = %v, want 4 accounts", ring.Members)
	}

	if len(result.Hits) != 4 {
		t.Fatalf("expected 4 hits, got %d", len(result.Hits))
	}
	for _, hit := range result.Hits {
		if hit.Kind != domain.PatternLayeredShell || hit.Weight != 25 {
			t.Errorf("hit = %+v, want layered_shell at weight 25", hit)
		}
	}
}

func TestTraceShellChainsBusyIntermediarySuppresses(t *testing.T) {
	// Same shape, but the first intermediary is an ordinary busy account
	// with 20 lifetime transactions.
	txs := []domain.Transaction{
		edge("T1", "SRC", "BUSY", 0),
		edge("T2", "BUSY", "S2", time.Hour),
		edge("T3", "S2", "DEST", 2*time.Hour),
	}
	for i := 0; i < 18; i++ {
		other := fmt.Sprintf("X%02d", i)
		txs = append(txs, edge(fmt.Sprintf("B%02d", i), "BUSY", other, time.Duration(100+i)*time.Hour))
	}
	idx := buildIndex(t, txs)

	result := TraceShellChains(context.Background(), idx, 0)

	if len(result.Rings) != 0 {
		t.Fatalf("busy intermediary must suppress the chain, got %+v", result.Rings)
	}
}

func TestTraceShellChainsTooShort(t *testing.T) {
	// Three nodes is one hop short of a chain.
	idx := buildIndex(t, []domain.Transaction{
		edge("T1", "SRC", "S1", 0),
		edge("T2", "S1", "DEST", time.Hour),
	})

	result := TraceShellChains(context.Background(), idx, 0)
	if len(result.Rings) != 0 {
		t.Fatalf("3-node path must not qualify, got %+v", result.Rings)
	}
}

func TestTraceShellChainsRecordsQualifyingPrefixes(t *testing.T) {
	// A 5-node chain also contains a qualifying 4-node prefix; both are
	// distinct directed sequences.
	idx := buildIndex(t, []domain.Transaction{
		edge("T1", "SRC", "S1", 0),
		edge("T2", "S1", "S2", time.Hour),
		edge("T3", "S2", "S3", 2*time.Hour),
		edge("T4", "S3", "DEST", 3*time.Hour),
	})

	result := TraceShellChains(context.Background(), idx, 0)

	if len(result.Rings) != 2 {
		t.Fatalf("expected 2 chains (prefix + full), got %d: %+v", len(result.Rings), result.Rings)
	}
	if len(result.Hits) != 5 {
		t.Fatalf("expected 5 member hits, got %d", len(result.Hits))
	}
}

func TestTraceShellChainsBudgetTruncates(t *testing.T) {
	idx := buildIndex(t, []domain.Transaction{
		edge("T1", "SRC", "S1", 0),
		edge("T2", "S1", "S2", time.Hour),
		edge("T3", "S2", "DEST", 2*time.Hour),
	})

	result := TraceShellChains(context.Background(), idx, 1)
	if !result.Truncated {
		t.Fatal("exhausted budget must set Truncated")
	}
}
