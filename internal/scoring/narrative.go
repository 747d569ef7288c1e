package scoring

import (
	"fmt"
	"strings"

	"github.com/vanshika/fraudsight/internal/domain"
	"github.com/vanshika/fraudsight/internal/ledger"
)

// Narrative is a plain-English risk explanation for one flagged account,
// produced by rule-based generation. No model calls are involved.
type Narrative struct {
	AccountID      string   `json:"account_id"`
	Narrative      string   `json:"narrative"`
	RiskLevel      string   `json:"risk_level"`
	Recommendation string   `json:"recommendation"`
	KeyFindings    []string `json:"key_findings"`
	PatternCount   int      `json:"pattern_count"`
}

var patternExplanations = map[domain.PatternKind]string{
	domain.PatternCycleLength3:    "participates in a 3-account circular transfer loop where funds return to origin through intermediaries",
	domain.PatternCycleLength4:    "is part of a 4-account fund rotation ring, adding distance between source and destination",
	domain.PatternCycleLength5:    "belongs to a complex 5-account cycle, a sophisticated layering structure",
	domain.PatternFanIn:           "receives deposits from 10+ unique accounts within a 72-hour window, classic fund collection",
	domain.PatternFanOut:          "disperses funds to 10+ unique accounts within 72 hours, consistent with distribution-phase laundering",
	domain.PatternLayeredShell:    "routes money through shell accounts that have only 2-3 lifetime transactions",
	domain.PatternHighVelocity:    "shows abnormally high transaction velocity (>20 txn/day), suggesting automated activity",
	domain.PatternSmallAmounts:    "operates with unusually small average amounts (<$500), a common structuring tactic",
	domain.PatternHighBetweenness: "sits at a critical junction in the transaction network, bridging multiple account clusters",
	domain.PatternHighPageRank:    "is a high-flow node receiving significant volume from multiple sources across the network",
}

var riskLevels = []struct {
	threshold float64
	level     string
	action    string
}{
	{80, "CRITICAL", "immediate investigation and potential account freeze"},
	{60, "HIGH", "priority review by compliance team within 24 hours"},
	{40, "ELEVATED", "enhanced monitoring and secondary review"},
	{25, "MODERATE", "flagged for routine compliance review"},
}

var ringPatternDescriptions = map[string]string{
	"cycle":         "circular fund routing ring",
	"fan_in":        "fund collection (smurfing) network",
	"fan_out":       "fund distribution network",
	"layered_shell": "layered shell company network",
}

// BuildNarratives generates one narrative per flagged account, in the
// flagged list's deterministic order.
func BuildNarratives(idx *ledger.Index, outcome Outcome) []Narrative {
	ringByID := make(map[string]domain.FraudRing, len(outcome.Rings))
	for _, ring := range outcome.Rings {
		ringByID[ring.ID] = ring
	}

	narratives := make([]Narrative, 0, len(outcome.Flagged))
	for _, rec := range outcome.Flagged {
		narratives = append(narratives, buildNarrative(idx, rec, ringByID))
	}
	return narratives
}

func buildNarrative(idx *ledger.Index, rec *domain.SuspicionRecord, rings map[string]domain.FraudRing) Narrative {
	level, action := "LOW", "no immediate action required"
	for _, band := range riskLevels {
		if rec.NormalizedScore >= band.threshold {
			level, action = band.level, band.action
			break
		}
	}

	findings := make([]string, 0, len(rec.Patterns))
	explanations := make([]string, 0, len(rec.Patterns))
	for _, kind := range rec.Patterns {
		explanation, ok := patternExplanations[kind]
		if !ok {
			explanation = "is flagged for the " + strings.ReplaceAll(string(kind), "_", " ") + " pattern"
		}
		findings = append(findings, "This account "+explanation+".")
		explanations = append(explanations, explanation)
	}

	var paragraphs []string
	paragraphs = append(paragraphs, fmt.Sprintf(
		"Account %s has been flagged with a suspicion score of %.1f/100, classified as %s risk. The engine detected %d suspicious %s associated with this account.",
		rec.AccountID, rec.NormalizedScore, level, len(rec.Patterns), pluralize("pattern", len(rec.Patterns))))

	if len(explanations) > 0 {
		paragraphs = append(paragraphs, "Specifically, this account "+strings.Join(explanations, "; and ")+".")
	}

	if ring, ok := rings[rec.RingID]; ok {
		description, known := ringPatternDescriptions[ring.PatternType]
		if !known {
			description = "fraud ring"
		}
		paragraphs = append(paragraphs, fmt.Sprintf(
			"This account is a member of %s, a %s comprising %d accounts with a collective risk score of %.1f/100.",
			ring.ID, description, len(ring.Members), ring.RiskScore))
	}

	if acc := idx.Accounts[rec.AccountID]; acc != nil {
		paragraphs = append(paragraphs, fmt.Sprintf(
			"Behavioral profile: %.1f transactions/day, $%.2f average transaction size, %d unique counterparties.",
			acc.Velocity(), acc.AverageAmount(), len(acc.Counterparties)))
	}

	paragraphs = append(paragraphs, "Recommended action: "+action+".")

	return Narrative{
		AccountID:      rec.AccountID,
		Narrative:      strings.Join(paragraphs, " "),
		RiskLevel:      level,
		Recommendation: action,
		KeyFindings:    findings,
		PatternCount:   len(rec.Patterns),
	}
}

func pluralize(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
