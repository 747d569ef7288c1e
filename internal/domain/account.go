package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account aggregates per-account activity derived from the transaction
// stream. It is rebuilt from scratch on every analysis run.
type Account struct {
	ID             string
	SentCount      int
	ReceivedCount  int
	SentTotal      decimal.Decimal
	ReceivedTotal  decimal.Decimal
	FirstActivity  time.Time
	LastActivity   time.Time
	Counterparties map[string]struct{}
}

// TotalCount returns the combined number of sent and received transactions.
func (a *Account) TotalCount() int {
	return a.SentCount + a.ReceivedCount
}

// ActiveSpan returns the duration between first and last observed activity.
func (a *Account) ActiveSpan() time.Duration {
	if a.FirstActivity.IsZero() || a.LastActivity.IsZero() {
		return 0
	}
	return a.LastActivity.Sub(a.FirstActivity)
}

// Velocity returns the transaction rate per 24 hours over the active span.
// Spans shorter than one hour count as one hour so a single burst does not
// divide by zero.
func (a *Account) Velocity() float64 {
	hours := a.ActiveSpan().Hours()
	if hours < 1 {
		hours = 1
	}
	return float64(a.TotalCount()) / (hours / 24.0)
}

// AverageAmount returns the mean amount across all transactions the account
// participated in, as a float for statistical use.
func (a *Account) AverageAmount() float64 {
	total := a.TotalCount()
	if total == 0 {
		return 0
	}
	sum := a.SentTotal.Add(a.ReceivedTotal)
	avg, _ := sum.Div(decimal.NewFromInt(int64(total))).Float64()
	return avg
}
