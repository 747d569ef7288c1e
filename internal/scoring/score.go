// Package scoring fuses detector signals into suspicion records and fraud
// rings, and assembles the strict report. It is the only component with
// cross-cutting knowledge of all signals and the sole writer of the
// account→record and ring-id→ring mappings.
package scoring

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/vanshika/fraudsight/internal/detect"
	"github.com/vanshika/fraudsight/internal/domain"
	"github.com/vanshika/fraudsight/internal/ledger"
)

const (
	// SuspicionThreshold excludes accounts whose normalized score rounds
	// below it from the suspicious-account list. Ring membership is not
	// affected; sub-threshold members still pull ring risk averages.
	SuspicionThreshold = 25.0

	velocityBonusThreshold = 20.0
	velocityBonus          = 10.0
	smallAmountThreshold   = 500.0
	smallAmountBonus       = 5.0

	ringRiskBoost = 1.1
)

// Signals collects every detector output for one run.
type Signals struct {
	Index          *ledger.Index
	Hits           []domain.PatternHit
	RingCandidates []domain.RingCandidate
	Centrality     detect.CentralityResult
	CycleMembers   map[string]struct{}

	// CoverageCaveats carries budget-exhaustion notices from the bounded
	// searches; they flow into the extended output untouched.
	CoverageCaveats []string
}

// Outcome is the scored, assembled result set.
type Outcome struct {
	// Records holds every account with at least one pattern hit, including
	// those below the suspicion threshold.
	Records map[string]*domain.SuspicionRecord

	// Flagged is the thresholded, deterministically ordered account list.
	Flagged []*domain.SuspicionRecord

	Rings       []domain.FraudRing
	Adjustments map[string]detect.Adjustment
	Caveats     []string
}

// Score runs the full pipeline: base weights, velocity and centrality
// bonuses, false-positive reductions, clamping, normalization against the
// run maximum, ring identity and risk assignment, and threshold filtering.
func Score(sig Signals) Outcome {
	patterns := collectPatterns(sig.Hits)

	accountIDs := make([]string, 0, len(patterns))
	for id := range patterns {
		accountIDs = append(accountIDs, id)
	}
	sort.Strings(accountIDs)

	adjustments := detect.ClassifyFalsePositives(sig.Index, accountIDs, sig.CycleMembers)

	raw := make(map[string]float64, len(accountIDs))
	for _, id := range accountIDs {
		kinds := patterns[id]
		score := 0.0
		for kind := range kinds {
			score += kind.BaseWeight()
		}

		if acc := sig.Index.Accounts[id]; acc != nil {
			if acc.Velocity() > velocityBonusThreshold {
				score += velocityBonus
				kinds[domain.PatternHighVelocity] = struct{}{}
			}
			if avg := acc.AverageAmount(); avg > 0 && avg < smallAmountThreshold {
				score += smallAmountBonus
				kinds[domain.PatternSmallAmounts] = struct{}{}
			}
		}

		if b := sig.Centrality.Betweenness[id]; b > detect.BetweennessHighThreshold {
			score += detect.BetweennessHighBonus
			kinds[domain.PatternHighBetweenness] = struct{}{}
		} else if b > detect.BetweennessMidThreshold {
			score += detect.BetweennessMidBonus
			kinds[domain.PatternHighBetweenness] = struct{}{}
		}
		if sig.Centrality.PageRank[id] > detect.PageRankThreshold {
			score += detect.PageRankBonus
			kinds[domain.PatternHighPageRank] = struct{}{}
		}

		if adj, ok := adjustments[id]; ok {
			score -= adj.Total()
		}
		if score < 0 {
			score = 0
		}
		raw[id] = score
	}

	maxRaw := 0.0
	for _, score := range raw {
		if score > maxRaw {
			maxRaw = score
		}
	}
	if maxRaw == 0 {
		maxRaw = 1
	}

	records := make(map[string]*domain.SuspicionRecord, len(accountIDs))
	for _, id := range accountIDs {
		records[id] = &domain.SuspicionRecord{
			AccountID:       id,
			RawScore:        raw[id],
			NormalizedScore: round1(math.Min(100, raw[id]/maxRaw*100)),
			Patterns:        sortedKinds(patterns[id]),
		}
	}

	rings, accountRing := assembleRings(sig.RingCandidates, records)
	for id, ringID := range accountRing {
		if rec, ok := records[id]; ok {
			rec.RingID = ringID
		}
	}

	var flagged []*domain.SuspicionRecord
	for _, id := range accountIDs {
		if records[id].NormalizedScore >= SuspicionThreshold {
			flagged = append(flagged, records[id])
		}
	}
	sort.Slice(flagged, func(i, j int) bool {
		if flagged[i].NormalizedScore != flagged[j].NormalizedScore {
			return flagged[i].NormalizedScore > flagged[j].NormalizedScore
		}
		return flagged[i].AccountID < flagged[j].AccountID
	})

	return Outcome{
		Records:     records,
		Flagged:     flagged,
		Rings:       rings,
		Adjustments: adjustments,
		Caveats:     sig.CoverageCaveats,
	}
}

// assembleRings deduplicates candidates by canonical member set + pattern
// kind, orders them by (pattern type, member list) and hands out stable
// sequential ids. An account maps to the first ring, in id order, that
// contains it.
func assembleRings(candidates []domain.RingCandidate, records map[string]*domain.SuspicionRecord) ([]domain.FraudRing, map[string]string) {
	unique := make([]domain.RingCandidate, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		key := candidate.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, candidate)
	}

	sort.Slice(unique, func(i, j int) bool {
		if unique[i].PatternType != unique[j].PatternType {
			return unique[i].PatternType < unique[j].PatternType
		}
		return unique[i].Key() < unique[j].Key()
	})

	rings := make([]domain.FraudRing, 0, len(unique))
	accountRing := make(map[string]string)
	for i, candidate := range unique {
		ring := domain.FraudRing{
			ID:          fmt.Sprintf("RING_%03d", i+1),
			Members:     candidate.Members,
			PatternType: string(candidate.PatternType),
			RiskScore:   ringRisk(candidate.Members, records),
		}
		rings = append(rings, ring)
		for _, member := range candidate.Members {
			if _, taken := accountRing[member]; !taken {
				accountRing[member] = ring.ID
			}
		}
	}
	return rings, accountRing
}

// ringRisk averages member normalized scores with a small boost for the
// coordination itself; members without a record contribute zero.
func ringRisk(members []string, records map[string]*domain.SuspicionRecord) float64 {
	if len(members) == 0 {
		return 0
	}
	sum := 0.0
	for _, member := range members {
		if rec, ok := records[member]; ok {
			sum += rec.NormalizedScore
		}
	}
	return round1(math.Min(100, sum/float64(len(members))*ringRiskBoost))
}

// BuildReport renders the outcome into the strict, reproducible report shape.
func BuildReport(outcome Outcome, totalAccounts int, elapsed time.Duration) domain.Report {
	report := domain.Report{
		SuspiciousAccounts: make([]domain.SuspiciousAccount, 0, len(outcome.Flagged)),
		FraudRings:         make([]domain.ReportRing, 0, len(outcome.Rings)),
	}

	for _, rec := range outcome.Flagged {
		entry := domain.SuspiciousAccount{
			AccountID:        rec.AccountID,
			SuspicionScore:   domain.Fixed1(rec.NormalizedScore),
			DetectedPatterns: patternStrings(rec.Patterns),
		}
		if rec.RingID != "" {
			ringID := rec.RingID
			entry.RingID = &ringID
		}
		report.SuspiciousAccounts = append(report.SuspiciousAccounts, entry)
	}

	for _, ring := range outcome.Rings {
		report.FraudRings = append(report.FraudRings, domain.ReportRing{
			RingID:         ring.ID,
			MemberAccounts: ring.Members,
			PatternType:    ring.PatternType,
			RiskScore:      domain.Fixed1(ring.RiskScore),
		})
	}

	report.Summary = domain.ReportSummary{
		TotalAccountsAnalyzed:     totalAccounts,
		SuspiciousAccountsFlagged: len(report.SuspiciousAccounts),
		FraudRingsDetected:        len(report.FraudRings),
		ProcessingTimeSeconds:     domain.Fixed1(round1(elapsed.Seconds())),
	}
	return report
}

func collectPatterns(hits []domain.PatternHit) map[string]map[domain.PatternKind]struct{} {
	patterns := make(map[string]map[domain.PatternKind]struct{})
	for _, hit := range hits {
		kinds, ok := patterns[hit.AccountID]
		if !ok {
			kinds = make(map[domain.PatternKind]struct{})
			patterns[hit.AccountID] = kinds
		}
		kinds[hit.Kind] = struct{}{}
	}
	return patterns
}

func sortedKinds(kinds map[domain.PatternKind]struct{}) []domain.PatternKind {
	out := make([]domain.PatternKind, 0, len(kinds))
	for kind := range kinds {
		out = append(out, kind)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func patternStrings(kinds []domain.PatternKind) []string {
	out := make([]string, len(kinds))
	for i, kind := range kinds {
		out[i] = string(kind)
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
