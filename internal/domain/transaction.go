package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction models a single validated money transfer. Instances are owned
// by the ledger index for the lifetime of one analysis run and never mutated.
type Transaction struct {
	ID         string
	SenderID   string
	ReceiverID string
	Amount     decimal.Decimal
	Timestamp  time.Time
}

// IsSelfTransfer reports whether sender and receiver are the same account.
func (t Transaction) IsSelfTransfer() bool {
	return t.SenderID == t.ReceiverID
}
