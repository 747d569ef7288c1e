package detect

import (
	"sort"
	"time"

	"github.com/vanshika/fraudsight/internal/domain"
	"github.com/vanshika/fraudsight/internal/ledger"
)

const (
	// StructuringWindow is the trailing window evaluated per transaction.
	StructuringWindow = 72 * time.Hour

	// StructuringMinCounterparties is the distinct-counterparty count that
	// flags an account within one window.
	StructuringMinCounterparties = 10
)

// StructuringResult reports fan-in/fan-out hits and their rings.
type StructuringResult struct {
	Hits  []domain.PatternHit
	Rings []domain.RingCandidate
}

// DetectStructuring evaluates every account independently as receiver
// (fan-in) and as sender (fan-out) over a sliding 72-hour window. The scan
// is a single forward pass per account: a two-pointer window over the
// pre-sorted transaction list with per-counterparty reference counts, so
// cost stays linear in the account's transaction count.
func DetectStructuring(idx *ledger.Index) StructuringResult {
	var result StructuringResult

	for _, id := range idx.AccountIDs() {
		if window := scanWindow(idx.Incoming[id], id, incomingCounterparty); window != nil {
			result.Hits = append(result.Hits, domain.NewPatternHit(id, domain.PatternFanIn))
			result.Rings = append(result.Rings, domain.NewRingCandidate(append(window, id), domain.RingPatternFanIn))
		}
		if window := scanWindow(idx.Outgoing[id], id, outgoingCounterparty); window != nil {
			result.Hits = append(result.Hits, domain.NewPatternHit(id, domain.PatternFanOut))
			result.Rings = append(result.Rings, domain.NewRingCandidate(append(window, id), domain.RingPatternFanOut))
		}
	}

	return result
}

func incomingCounterparty(tx *domain.Transaction) string { return tx.SenderID }
func outgoingCounterparty(tx *domain.Transaction) string { return tx.ReceiverID }

// scanWindow returns the counterparties of the first window that reaches the
// trigger count, or nil when the account never triggers. Accounts that could
// never reach the threshold short-circuit before any windowing.
func scanWindow(txs []*domain.Transaction, self string, counterparty func(*domain.Transaction) string) []string {
	if len(txs) < StructuringMinCounterparties {
		return nil
	}

	distinct := make(map[string]struct{}, len(txs))
	for _, tx := range txs {
		if tx.IsSelfTransfer() {
			continue
		}
		distinct[counterparty(tx)] = struct{}{}
	}
	if len(distinct) < StructuringMinCounterparties {
		return nil
	}

	counts := make(map[string]int)
	start := 0
	for i, tx := range txs {
		if tx.IsSelfTransfer() {
			continue
		}
		counts[counterparty(tx)]++

		cutoff := tx.Timestamp.Add(-StructuringWindow)
		for start < i {
			old := txs[start]
			if !old.Timestamp.Before(cutoff) {
				break
			}
			if !old.IsSelfTransfer() {
				other := counterparty(old)
				counts[other]--
				if counts[other] == 0 {
					delete(counts, other)
				}
			}
			start++
		}

		if len(counts) >= StructuringMinCounterparties {
			members := make([]string, 0, len(counts))
			for other := range counts {
				members = append(members, other)
			}
			sort.Strings(members)
			return members
		}
	}

	return nil
}
