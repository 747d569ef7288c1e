package detect

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/vanshika/fraudsight/internal/domain"
)

func TestComputeCentralityBridgeNode(t *testing.T) {
	// M mediates every path from the left side to the right side.
	idx := buildIndex(t, []domain.Transaction{
		edge("T1", "A", "M", 0),
		edge("T2", "B", "M", time.Hour),
		edge("T3", "M", "C", 2*time.Hour),
		edge("T4", "M", "D", 3*time.Hour),
	})

	result := ComputeCentrality(context.Background(), idx.Graph)

	// Four ordered pairs (A,B)×(C,D) route through M; n=5 so the
	// normalizer is 1/12.
	want := 4.0 / 12.0
	if got := result.Betweenness["M"]; math.Abs(got-want) > 1e-9 {
		t.Errorf("betweenness[M] = %f, want %f", got, want)
	}
	for _, leaf := range []string{"A", "B", "C", "D"} {
		if got := result.Betweenness[leaf]; got != 0 {
			t.Errorf("betweenness[%s] = %f, want 0", leaf, got)
		}
	}
}

func TestPageRankSumsToOne(t *testing.T) {
	idx := buildIndex(t, []domain.Transaction{
		edge("T1", "A", "B", 0),
		edge("T2", "B", "C", time.Hour),
		edge("T3", "C", "A", 2*time.Hour),
		edge("T4", "A", "D", 3*time.Hour),
	})

	result := ComputeCentrality(context.Background(), idx.Graph)

	sum := 0.0
	for _, v := range result.PageRank {
		sum += v
	}
	if math.Abs(sum-1.0) > 1e-6 {
		t.Errorf("pagerank sum = %f, want 1.0", sum)
	}
}

func TestPageRankFavorsSink(t *testing.T) {
	// Everyone pays H; H should out-rank every spoke.
	txs := []domain.Transaction{
		edge("T1", "A", "H", 0),
		edge("T2", "B", "H", time.Hour),
		edge("T3", "C", "H", 2*time.Hour),
		edge("T4", "D", "H", 3*time.Hour),
	}
	idx := buildIndex(t, txs)

	result := ComputeCentrality(context.Background(), idx.Graph)

	hub := result.PageRank["H"]
	for _, spoke := range []string{"A", "B", "C", "D"} {
		if hub <= result.PageRank[spoke] {
			t.Errorf("pagerank[H]=%f not above pagerank[%s]=%f", hub, spoke, result.PageRank[spoke])
		}
	}
}

func TestBetweennessTinyGraphIsZero(t *testing.T) {
	idx := buildIndex(t, []domain.Transaction{
		edge("T1", "A", "B", 0),
	})

	result := ComputeCentrality(context.Background(), idx.Graph)
	for node, v := range result.Betweenness {
		if v != 0 {
			t.Errorf("betweenness[%s] = %f, want 0 for a 2-node graph", node, v)
		}
	}
}
