package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vanshika/fraudsight/internal/domain"
)

func tx(id, sender, receiver string, amount float64, ts time.Time) domain.Transaction {
	return domain.Transaction{
		ID:         id,
		SenderID:   sender,
		ReceiverID: receiver,
		Amount:     decimal.NewFromFloat(amount),
		Timestamp:  ts,
	}
}

func TestBuildAggregatesAccounts(t *testing.T) {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	idx, err := Build([]domain.Transaction{
		tx("TX1", "A", "B", 100, base),
		tx("TX2", "A", "C", 200, base.Add(time.Hour)),
		tx("TX3", "B", "A", 50, base.Add(2*time.Hour)),
	})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if len(idx.Accounts) != 3 {
		t.Fatalf("expected 3 accounts, got %d", len(idx.Accounts))
	}

	a := idx.Accounts["A"]
	if a.SentCount != 2 || a.ReceivedCount != 1 {
		t.Errorf("account A counts = %d sent / %d received, want 2/1", a.SentCount, a.ReceivedCount)
	}
	if !a.SentTotal.Equal(decimal.NewFromInt(300)) {
		t.Errorf("account A sent total = %s, want 300", a.SentTotal)
	}
	if len(a.Counterparties) != 2 {
		t.Errorf("account A counterparties = %d, want 2", len(a.Counterparties))
	}
	if !a.FirstActivity.Equal(base) || !a.LastActivity.Equal(base.Add(2*time.Hour)) {
		t.Errorf("account A activity span wrong: %v .. %v", a.FirstActivity, a.LastActivity)
	}
}

func TestBuildRejectsDuplicateIDs(t *testing.T) {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	_, err := Build([]domain.Transaction{
		tx("TX1", "A", "B", 100, base),
		tx("TX1", "B", "C", 100, base),
	})
	if !errors.Is(err, ErrDuplicateTransaction) {
		t.Fatalf("expected ErrDuplicateTransaction, got %v", err)
	}
}

func TestBuildSelfTransferStaysOffGraph(t *testing.T) {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	idx, err := Build([]domain.Transaction{
		tx("TX1", "A", "A", 100, base),
		tx("TX2", "A", "B", 50, base.Add(time.Hour)),
	})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	// Self-transfers count toward activity but never become edges or
	// counterparties.
	a := idx.Accounts["A"]
	if a.TotalCount() != 3 {
		t.Errorf("account A total count = %d, want 3", a.TotalCount())
	}
	if len(a.Counterparties) != 1 {
		t.Errorf("account A counterparties = %d, want 1", len(a.Counterparties))
	}
	if idx.Graph.HasEdge("A", "A") {
		t.Error("self-loop must not appear in the graph")
	}
	if idx.Graph.EdgeCount() != 1 {
		t.Errorf("edge count = %d, want 1", idx.Graph.EdgeCount())
	}
}

func TestBuildSortsTransactionStreams(t *testing.T) {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	idx, err := Build([]domain.Transaction{
		tx("TX3", "A", "B", 10, base.Add(2*time.Hour)),
		tx("TX1", "C", "A", 10, base),
		tx("TX2", "A", "D", 10, base.Add(time.Hour)),
	})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	outgoing := idx.Outgoing["A"]
	if len(outgoing) != 2 || outgoing[0].ID != "TX2" || outgoing[1].ID != "TX3" {
		t.Fatalf("outgoing stream not chronological: %v", ids(outgoing))
	}
	incoming := idx.Incoming["A"]
	if len(incoming) != 1 || incoming[0].ID != "TX1" {
		t.Fatalf("incoming stream wrong: %v", ids(incoming))
	}
}

func TestBuildCollapsesParallelEdges(t *testing.T) {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	idx, err := Build([]domain.Transaction{
		tx("TX1", "A", "B", 100, base),
		tx("TX2", "A", "B", 200, base.Add(time.Hour)),
	})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if idx.Graph.EdgeCount() != 1 {
		t.Fatalf("edge count = %d, want 1", idx.Graph.EdgeCount())
	}
	edge := idx.Graph.EdgeBetween("A", "B")
	if edge == nil {
		t.Fatal("edge A→B missing")
	}
	if !edge.Total.Equal(decimal.NewFromInt(300)) {
		t.Errorf("edge total = %s, want 300", edge.Total)
	}
	if len(edge.Transactions) != 2 {
		t.Errorf("edge carries %d transactions, want 2", len(edge.Transactions))
	}
}

func TestAccountIDsSorted(t *testing.T) {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	idx, err := Build([]domain.Transaction{
		tx("TX1", "Z", "M", 10, base),
		tx("TX2", "A", "Z", 10, base),
	})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	got := idx.AccountIDs()
	want := []string{"A", "M", "Z"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("AccountIDs = %v, want %v", got, want)
		}
	}
}

func ids(txs []*domain.Transaction) []string {
	out := make([]string, len(txs))
	for i, t := range txs {
		out[i] = t.ID
	}
	return out
}
