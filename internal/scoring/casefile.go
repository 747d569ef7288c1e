package scoring

import (
	"fmt"
	"sort"
	"time"

	"github.com/vanshika/fraudsight/internal/domain"
	"github.com/vanshika/fraudsight/internal/ledger"
)

const evidenceLimit = 10

// Casefile is a per-ring evidence dossier for the presentation layer: the
// largest internal transfers, the temporal window, a per-member breakdown
// with point contributions, and the reasons each member did or did not clear
// the false-positive checks.
type Casefile struct {
	RingID      string          `json:"ring_id"`
	PatternType string          `json:"pattern_type"`
	RiskScore   domain.Fixed1   `json:"risk_score"`
	MemberCount int             `json:"member_count"`
	Temporal    TemporalSummary `json:"temporal"`
	TopEvidence []EvidenceTxn   `json:"top_evidence"`
	RiskFactors []RiskFactor    `json:"risk_factors"`
	Members     []MemberCard    `json:"members"`
}

// TemporalSummary describes the activity window inside one ring.
type TemporalSummary struct {
	FirstActivity        string        `json:"first_activity"`
	LastActivity         string        `json:"last_activity"`
	SpanHours            domain.Fixed1 `json:"span_hours"`
	InternalTransactions int           `json:"internal_transactions"`
	InternalVolume       string        `json:"internal_volume"`
}

// EvidenceTxn is one ring-internal transaction cited as evidence.
type EvidenceTxn struct {
	TransactionID string `json:"transaction_id"`
	From          string `json:"from"`
	To            string `json:"to"`
	Amount        string `json:"amount"`
	Timestamp     string `json:"timestamp"`
}

// RiskFactor aggregates the points one pattern contributed across a ring.
type RiskFactor struct {
	Factor      string        `json:"factor"`
	TotalPoints domain.Fixed1 `json:"total_points"`
}

// MemberCard is the per-member section of a casefile.
type MemberCard struct {
	AccountID        string             `json:"account_id"`
	SuspicionScore   domain.Fixed1      `json:"suspicion_score"`
	DetectedPatterns []string           `json:"detected_patterns"`
	Role             string             `json:"role"`
	RiskContribution map[string]float64 `json:"risk_contribution"`
	FPJustification  []string           `json:"fp_justification"`
}

var patternLabels = map[domain.PatternKind]string{
	domain.PatternCycleLength3:    "3-Account Cycle",
	domain.PatternCycleLength4:    "4-Account Cycle",
	domain.PatternCycleLength5:    "5-Account Cycle",
	domain.PatternFanIn:           "Fan-In (Smurfing)",
	domain.PatternFanOut:          "Fan-Out (Distribution)",
	domain.PatternLayeredShell:    "Layered Shell Network",
	domain.PatternHighVelocity:    "High Velocity (>20 txn/day)",
	domain.PatternSmallAmounts:    "Small Amounts (<$500 avg)",
	domain.PatternHighBetweenness: "High Betweenness Centrality",
	domain.PatternHighPageRank:    "High PageRank",
}

// patternLabel returns the display label for a kind; kinds without an entry
// fall back to their wire name so a new signal still renders.
func patternLabel(kind domain.PatternKind) string {
	if label, ok := patternLabels[kind]; ok {
		return label
	}
	return string(kind)
}

// BuildCasefiles produces one casefile per ring, in ring-id order.
func BuildCasefiles(idx *ledger.Index, outcome Outcome) []Casefile {
	casefiles := make([]Casefile, 0, len(outcome.Rings))
	for _, ring := range outcome.Rings {
		casefiles = append(casefiles, buildCasefile(idx, outcome, ring))
	}
	return casefiles
}

func buildCasefile(idx *ledger.Index, outcome Outcome, ring domain.FraudRing) Casefile {
	memberSet := make(map[string]struct{}, len(ring.Members))
	for _, member := range ring.Members {
		memberSet[member] = struct{}{}
	}

	internal := ringInternalTxns(idx, memberSet)

	cf := Casefile{
		RingID:      ring.ID,
		PatternType: ring.PatternType,
		RiskScore:   domain.Fixed1(ring.RiskScore),
		MemberCount: len(ring.Members),
		Temporal:    temporalSummary(internal),
		TopEvidence: topEvidence(internal),
	}

	factorPoints := make(map[string]float64)
	for _, member := range ring.Members {
		card := MemberCard{
			AccountID:        member,
			Role:             "Ring Member (below threshold)",
			RiskContribution: map[string]float64{},
		}
		if rec, ok := outcome.Records[member]; ok {
			card.SuspicionScore = domain.Fixed1(rec.NormalizedScore)
			card.DetectedPatterns = patternStrings(rec.Patterns)
			card.Role = inferRole(rec.Patterns)
			for _, kind := range rec.Patterns {
				label := patternLabel(kind)
				card.RiskContribution[label] = kind.BaseWeight()
				factorPoints[label] += kind.BaseWeight()
			}
			card.FPJustification = fpJustification(idx, outcome, member, rec)
		}
		cf.Members = append(cf.Members, card)
	}

	factors := make([]RiskFactor, 0, len(factorPoints))
	for factor, points := range factorPoints {
		factors = append(factors, RiskFactor{Factor: factor, TotalPoints: domain.Fixed1(points)})
	}
	sort.Slice(factors, func(i, j int) bool {
		if factors[i].TotalPoints != factors[j].TotalPoints {
			return factors[i].TotalPoints > factors[j].TotalPoints
		}
		return factors[i].Factor < factors[j].Factor
	})
	cf.RiskFactors = factors

	return cf
}

func ringInternalTxns(idx *ledger.Index, members map[string]struct{}) []*domain.Transaction {
	var internal []*domain.Transaction
	for i := range idx.Transactions {
		tx := &idx.Transactions[i]
		if _, ok := members[tx.SenderID]; !ok {
			continue
		}
		if _, ok := members[tx.ReceiverID]; !ok {
			continue
		}
		internal = append(internal, tx)
	}
	return internal
}

func temporalSummary(internal []*domain.Transaction) TemporalSummary {
	if len(internal) == 0 {
		return TemporalSummary{FirstActivity: "N/A", LastActivity: "N/A", InternalVolume: "0"}
	}
	first, last := internal[0].Timestamp, internal[0].Timestamp
	volume := internal[0].Amount
	for _, tx := range internal[1:] {
		if tx.Timestamp.Before(first) {
			first = tx.Timestamp
		}
		if tx.Timestamp.After(last) {
			last = tx.Timestamp
		}
		volume = volume.Add(tx.Amount)
	}
	return TemporalSummary{
		FirstActivity:        first.Format(timestampLayout),
		LastActivity:         last.Format(timestampLayout),
		SpanHours:            domain.Fixed1(round1(last.Sub(first).Hours())),
		InternalTransactions: len(internal),
		InternalVolume:       volume.StringFixed(2),
	}
}

func topEvidence(internal []*domain.Transaction) []EvidenceTxn {
	ordered := append([]*domain.Transaction(nil), internal...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Amount.Equal(ordered[j].Amount) {
			return ordered[i].Amount.GreaterThan(ordered[j].Amount)
		}
		return ordered[i].ID < ordered[j].ID
	})
	if len(ordered) > evidenceLimit {
		ordered = ordered[:evidenceLimit]
	}
	evidence := make([]EvidenceTxn, 0, len(ordered))
	for _, tx := range ordered {
		evidence = append(evidence, EvidenceTxn{
			TransactionID: tx.ID,
			From:          tx.SenderID,
			To:            tx.ReceiverID,
			Amount:        tx.Amount.StringFixed(2),
			Timestamp:     tx.Timestamp.Format(timestampLayout),
		})
	}
	return evidence
}

const timestampLayout = "2006-01-02 15:04:05"

var rolePriority = []domain.PatternKind{
	domain.PatternCycleLength3,
	domain.PatternCycleLength4,
	domain.PatternCycleLength5,
	domain.PatternFanIn,
	domain.PatternFanOut,
	domain.PatternLayeredShell,
	domain.PatternHighBetweenness,
	domain.PatternHighVelocity,
}

func inferRole(patterns []domain.PatternKind) string {
	kinds := make(map[domain.PatternKind]struct{}, len(patterns))
	for _, kind := range patterns {
		kinds[kind] = struct{}{}
	}
	for _, kind := range rolePriority {
		if _, ok := kinds[kind]; !ok {
			continue
		}
		switch kind {
		case domain.PatternCycleLength3, domain.PatternCycleLength4, domain.PatternCycleLength5:
			return "Ring Participant"
		case domain.PatternFanIn:
			return "Fund Collector"
		case domain.PatternFanOut:
			return "Fund Distributor"
		case domain.PatternLayeredShell:
			return "Shell Intermediary"
		case domain.PatternHighBetweenness:
			return "Network Bridge"
		case domain.PatternHighVelocity:
			return "Bot / Automated Mule"
		}
	}
	return "Flagged Account"
}

func fpJustification(idx *ledger.Index, outcome Outcome, member string, rec *domain.SuspicionRecord) []string {
	var notes []string
	adj := outcome.Adjustments[member]
	acc := idx.Accounts[member]

	if adj.Merchant {
		notes = append(notes, "Merchant-like traits detected; score reduced accordingly")
	} else if acc != nil {
		var reasons []string
		if len(acc.Counterparties) < 15 {
			reasons = append(reasons, fmt.Sprintf("only %d counterparties (<15)", len(acc.Counterparties)))
		}
		if span := acc.ActiveSpan(); span < 7*24*time.Hour {
			reasons = append(reasons, fmt.Sprintf("activity span %.0fh (<168h)", span.Hours()))
		}
		if acc.ReceivedCount <= acc.SentCount*3 {
			reasons = append(reasons, fmt.Sprintf("recv/sent ratio %d:%d (not >3:1)", acc.ReceivedCount, acc.SentCount))
		}
		if len(reasons) == 0 {
			reasons = append(reasons, "cycle involvement overrides merchant exemption")
		}
		notes = append(notes, "Not merchant-like: "+joinReasons(reasons))
	}

	if adj.Payroll {
		notes = append(notes, "Payroll-like traits detected; score reduced accordingly")
	} else {
		notes = append(notes, "Not payroll: irregular amounts or timing")
	}
	return notes
}

func joinReasons(reasons []string) string {
	out := reasons[0]
	for _, r := range reasons[1:] {
		out += "; " + r
	}
	return out
}
