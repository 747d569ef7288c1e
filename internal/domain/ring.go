package domain

import (
	"sort"
	"strings"
)

// RingCandidate is one pattern instance discovered by a detector before ring
// ids are assigned. Members are kept sorted so that two enumerations of the
// same account set compare equal.
type RingCandidate struct {
	Members     []string
	PatternType RingPatternType
}

// NewRingCandidate sorts and copies the member list into a candidate.
func NewRingCandidate(members []string, patternType RingPatternType) RingCandidate {
	sorted := append([]string(nil), members...)
	sort.Strings(sorted)
	return RingCandidate{Members: sorted, PatternType: patternType}
}

// Key returns the canonical identity of the candidate: the sorted member set
// plus the pattern kind. Candidates with equal keys collapse to one ring.
func (c RingCandidate) Key() string {
	return string(c.PatternType) + "|" + strings.Join(c.Members, ",")
}

// FraudRing is a scored, identified ring in the final record set.
type FraudRing struct {
	ID          string
	Members     []string
	PatternType string
	RiskScore   float64
}

// SuspicionRecord is the final per-account verdict emitted by the scorer.
type SuspicionRecord struct {
	AccountID       string
	RawScore        float64
	NormalizedScore float64
	Patterns        []PatternKind
	RingID          string // empty when the account belongs to no ring
}
