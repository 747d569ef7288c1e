package domain

// PatternKind identifies one of the closed set of detection signals an
// account can accumulate during a run.
type PatternKind string

const (
	PatternCycleLength3 PatternKind = "cycle_length_3"
	PatternCycleLength4 PatternKind = "cycle_length_4"
	PatternCycleLength5 PatternKind = "cycle_length_5"
	PatternFanIn        PatternKind = "fan_in"
	PatternFanOut       PatternKind = "fan_out"
	PatternLayeredShell PatternKind = "layered_shell"

	// Bonus signals attached during scoring; they never create rings.
	PatternHighVelocity    PatternKind = "high_velocity"
	PatternSmallAmounts    PatternKind = "small_amounts"
	PatternHighBetweenness PatternKind = "high_betweenness"
	PatternHighPageRank    PatternKind = "high_pagerank"
)

// RingPatternType labels the structural pattern a fraud ring was built from.
type RingPatternType string

const (
	RingPatternCycle        RingPatternType = "cycle"
	RingPatternFanIn        RingPatternType = "fan_in"
	RingPatternFanOut       RingPatternType = "fan_out"
	RingPatternLayeredShell RingPatternType = "layered_shell"
)

// BaseWeight returns the base score contribution of a pattern kind. Unknown
// kinds carry a conservative default so a future signal cannot zero out.
func (k PatternKind) BaseWeight() float64 {
	switch k {
	case PatternCycleLength3:
		return 35
	case PatternCycleLength4:
		return 30
	case PatternCycleLength5:
		return 25
	case PatternFanIn, PatternFanOut:
		return 30
	case PatternLayeredShell:
		return 25
	case PatternHighVelocity:
		return 10
	case PatternSmallAmounts:
		return 5
	case PatternHighBetweenness, PatternHighPageRank:
		return 0
	default:
		return 10
	}
}

// PatternHit records one detector signal against an account. Multiple hits
// per account are legal and additive; duplicates of the same kind collapse
// during scoring.
type PatternHit struct {
	AccountID string
	Kind      PatternKind
	Weight    float64
}

// NewPatternHit builds a hit carrying the kind's base weight.
func NewPatternHit(accountID string, kind PatternKind) PatternHit {
	return PatternHit{AccountID: accountID, Kind: kind, Weight: kind.BaseWeight()}
}
