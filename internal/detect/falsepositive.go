package detect

import (
	"math"
	"time"

	"github.com/vanshika/fraudsight/internal/domain"
	"github.com/vanshika/fraudsight/internal/ledger"
)

const (
	MerchantAdjustment = 30.0
	PayrollAdjustment  = 25.0

	merchantMinCounterparties = 15
	merchantMinSpan           = 7 * 24 * time.Hour
	merchantRecvSentRatio     = 3

	payrollMinOutgoing = 5
	payrollAmountCV    = 0.15
	payrollGapCV       = 0.3
)

// Adjustment is one account's false-positive reduction. Merchant and payroll
// checks are independent and stack; the scorer clamps the result at zero.
type Adjustment struct {
	AccountID string
	Merchant  bool
	Payroll   bool
}

// Total returns the combined reduction in score points.
func (a Adjustment) Total() float64 {
	total := 0.0
	if a.Merchant {
		total += MerchantAdjustment
	}
	if a.Payroll {
		total += PayrollAdjustment
	}
	return total
}

// ClassifyFalsePositives evaluates merchant-like and payroll-like behavior
// for the given accounts. Cycle membership is an input because an account
// routing funds in a loop forfeits the merchant exemption regardless of its
// volume profile.
func ClassifyFalsePositives(idx *ledger.Index, accountIDs []string, cycleMembers map[string]struct{}) map[string]Adjustment {
	adjustments := make(map[string]Adjustment, len(accountIDs))
	for _, id := range accountIDs {
		acc, ok := idx.Accounts[id]
		if !ok {
			continue
		}
		_, inCycle := cycleMembers[id]
		adj := Adjustment{
			AccountID: id,
			Merchant:  merchantLike(acc, inCycle),
			Payroll:   payrollLike(acc, idx.Outgoing[id]),
		}
		if adj.Merchant || adj.Payroll {
			adjustments[id] = adj
		}
	}
	return adjustments
}

// merchantLike matches legitimate high-volume collectors: a broad
// counterparty base, a week or more of activity, and inflow dominating
// outflow by 3:1.
func merchantLike(acc *domain.Account, inCycle bool) bool {
	if inCycle {
		return false
	}
	return len(acc.Counterparties) >= merchantMinCounterparties &&
		acc.ActiveSpan() >= merchantMinSpan &&
		acc.ReceivedCount > acc.SentCount*merchantRecvSentRatio
}

// payrollLike matches periodic disbursement accounts: five or more sends
// with near-constant amounts and near-regular spacing. A zero mean in either
// coefficient of variation means the check does not apply.
func payrollLike(acc *domain.Account, outgoing []*domain.Transaction) bool {
	if len(outgoing) < payrollMinOutgoing {
		return false
	}

	amounts := make([]float64, len(outgoing))
	for i, tx := range outgoing {
		amounts[i], _ = tx.Amount.Float64()
	}
	amountMean := mean(amounts)
	if amountMean <= 0 {
		return false
	}
	if sampleStdDev(amounts, amountMean)/amountMean > payrollAmountCV {
		return false
	}

	gaps := make([]float64, 0, len(outgoing)-1)
	for i := 1; i < len(outgoing); i++ {
		gaps = append(gaps, outgoing[i].Timestamp.Sub(outgoing[i-1].Timestamp).Seconds())
	}
	gapMean := mean(gaps)
	if gapMean <= 0 {
		return false
	}
	return sampleStdDev(gaps, gapMean)/gapMean < payrollGapCV
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev uses the n-1 denominator; a single observation has no spread.
func sampleStdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}
