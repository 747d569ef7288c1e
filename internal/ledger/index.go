// Package ledger builds the immutable per-run view of a transaction stream:
// account aggregates, the collapsed directed graph, and chronologically
// sorted per-account transaction lists. Everything downstream reads this
// index and nothing mutates it after Build returns.
package ledger

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vanshika/fraudsight/internal/domain"
)

// ErrDuplicateTransaction signals that the validated input stream contained
// the same transaction id twice. This is a caller error, never silently
// deduplicated.
var ErrDuplicateTransaction = errors.New("duplicate transaction id")

// Index is the read-only product of one Build call.
type Index struct {
	Transactions []domain.Transaction
	Accounts     map[string]*domain.Account
	Graph        *Graph

	// Incoming and Outgoing hold each account's transactions sorted by
	// timestamp (ties broken by id) as required by the windowed detectors.
	Incoming map[string][]*domain.Transaction
	Outgoing map[string][]*domain.Transaction
}

// Build consumes an already-validated transaction sequence and produces the
// run index. Self-transfers are counted in the account aggregates but never
// become graph edges; they cannot participate in cycles or chains.
func Build(txs []domain.Transaction) (*Index, error) {
	idx := &Index{
		Transactions: append([]domain.Transaction(nil), txs...),
		Accounts:     make(map[string]*domain.Account),
		Graph:        newGraph(),
		Incoming:     make(map[string][]*domain.Transaction),
		Outgoing:     make(map[string][]*domain.Transaction),
	}

	seen := make(map[string]struct{}, len(idx.Transactions))
	nodes := make(map[string]struct{})

	for i := range idx.Transactions {
		tx := &idx.Transactions[i]
		if _, dup := seen[tx.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTransaction, tx.ID)
		}
		seen[tx.ID] = struct{}{}

		sender := idx.account(tx.SenderID)
		receiver := idx.account(tx.ReceiverID)

		sender.SentCount++
		sender.SentTotal = sender.SentTotal.Add(tx.Amount)
		receiver.ReceivedCount++
		receiver.ReceivedTotal = receiver.ReceivedTotal.Add(tx.Amount)

		touch(sender, tx)
		touch(receiver, tx)

		nodes[tx.SenderID] = struct{}{}
		nodes[tx.ReceiverID] = struct{}{}

		idx.Outgoing[tx.SenderID] = append(idx.Outgoing[tx.SenderID], tx)
		idx.Incoming[tx.ReceiverID] = append(idx.Incoming[tx.ReceiverID], tx)

		if !tx.IsSelfTransfer() {
			sender.Counterparties[tx.ReceiverID] = struct{}{}
			receiver.Counterparties[tx.SenderID] = struct{}{}
			idx.Graph.addEdge(tx)
		}
	}

	idx.Graph.finalize(nodes)

	for _, lists := range []map[string][]*domain.Transaction{idx.Incoming, idx.Outgoing} {
		for id := range lists {
			sortChronological(lists[id])
		}
	}

	return idx, nil
}

// AccountIDs returns every account id in lexicographic order.
func (idx *Index) AccountIDs() []string {
	ids := make([]string, 0, len(idx.Accounts))
	for id := range idx.Accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (idx *Index) account(id string) *domain.Account {
	acc, ok := idx.Accounts[id]
	if !ok {
		acc = &domain.Account{
			ID:             id,
			SentTotal:      decimal.Zero,
			ReceivedTotal:  decimal.Zero,
			Counterparties: make(map[string]struct{}),
		}
		idx.Accounts[id] = acc
	}
	return acc
}

func touch(acc *domain.Account, tx *domain.Transaction) {
	if acc.FirstActivity.IsZero() || tx.Timestamp.Before(acc.FirstActivity) {
		acc.FirstActivity = tx.Timestamp
	}
	if tx.Timestamp.After(acc.LastActivity) {
		acc.LastActivity = tx.Timestamp
	}
}

func sortChronological(txs []*domain.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Timestamp.Equal(txs[j].Timestamp) {
			return txs[i].Timestamp.Before(txs[j].Timestamp)
		}
		return txs[i].ID < txs[j].ID
	})
}
