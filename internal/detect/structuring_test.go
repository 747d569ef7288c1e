package detect

import (
	"fmt"
	"testing"
	"time"

	"github.com/vanshika/fraudsight/internal/domain"
)

func fanInLedger(spacing time.Duration) []domain.Transaction {
	txs := make([]domain.Transaction, 0, 10)
	for i := 0; i < 10; i++ {
		sender := fmt.Sprintf("S%02d", i)
		txs = append(txs, edge(fmt.Sprintf("T%02d", i), sender, "HUB", time.Duration(i)*spacing))
	}
	return txs
}

func TestDetectStructuringFanInWithinWindow(t *testing.T) {
	// 10 distinct senders over a 45-hour span — inside the 72-hour window.
	idx := buildIndex(t, fanInLedger(5*time.Hour))

	result := DetectStructuring(idx)

	if len(result.Hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(result.Hits))
	}
	hit := result.Hits[0]
	if hit.AccountID != "HUB" || hit.Kind != domain.PatternFanIn {
		t.Fatalf("hit = %+v, want fan_in on HUB", hit)
	}

	if len(result.Rings) != 1 {
		t.Fatalf("expected 1 ring, got %d", len(result.Rings))
	}
	ring := result.Rings[0]
	if ring.PatternType != domain.RingPatternFanIn {
		t.Errorf("ring pattern = %s, want fan_in", ring.PatternType)
	}
	if len(ring.Members) != 11 {
		t.Errorf("ring members = %d, want 11 (10 senders + hub)", len(ring.Members))
	}
}

func TestDetectStructuringSpreadOutDoesNotTrigger(t *testing.T) {
	// The same 10 transfers spread across 10 days never put 10 distinct
	// counterparties inside one 72-hour window.
	idx := buildIndex(t, fanInLedger(24*time.Hour))

	result := DetectStructuring(idx)

	if len(result.Hits) != 0 {
		t.Fatalf("expected no hits, got %+v", result.Hits)
	}
}

func TestDetectStructuringFanOut(t *testing.T) {
	txs := make([]domain.Transaction, 0, 10)
	for i := 0; i < 10; i++ {
		receiver := fmt.Sprintf("R%02d", i)
		txs = append(txs, edge(fmt.Sprintf("T%02d", i), "HUB", receiver, time.Duration(i)*time.Hour))
	}
	idx := buildIndex(t, txs)

	result := DetectStructuring(idx)

	if len(result.Hits) != 1 || result.Hits[0].Kind != domain.PatternFanOut {
		t.Fatalf("expected fan_out on HUB, got %+v", result.Hits)
	}
}

func TestDetectStructuringRepeatCounterpartyDoesNotCount(t *testing.T) {
	// 9 distinct senders, one of them twice: only 9 distinct counterparties.
	txs := make([]domain.Transaction, 0, 10)
	for i := 0; i < 9; i++ {
		sender := fmt.Sprintf("S%02d", i)
		txs = append(txs, edge(fmt.Sprintf("T%02d", i), sender, "HUB", time.Duration(i)*time.Hour))
	}
	txs = append(txs, edge("T99", "S00", "HUB", 10*time.Hour))
	idx := buildIndex(t, txs)

	result := DetectStructuring(idx)

	if len(result.Hits) != 0 {
		t.Fatalf("expected no hits with 9 distinct counterparties, got %+v", result.Hits)
	}
}
