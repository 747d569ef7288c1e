package domain

import "strconv"

// Fixed1 is a float that marshals with exactly one decimal place. The strict
// report contract treats numeric formatting as part of the wire format, so
// 30 must serialize as 30.0 and 87.46 as 87.5.
type Fixed1 float64

// MarshalJSON implements json.Marshaler.
func (f Fixed1) MarshalJSON() ([]byte, error) {
	return strconv.AppendFloat(nil, float64(f), 'f', 1, 64), nil
}

// SuspiciousAccount is one entry in the strict report's account list. Field
// order mirrors the published contract.
type SuspiciousAccount struct {
	AccountID        string   `json:"account_id"`
	SuspicionScore   Fixed1   `json:"suspicion_score"`
	DetectedPatterns []string `json:"detected_patterns"`
	RingID           *string  `json:"ring_id"`
}

// ReportRing is one entry in the strict report's ring list.
type ReportRing struct {
	RingID         string   `json:"ring_id"`
	MemberAccounts []string `json:"member_accounts"`
	PatternType    string   `json:"pattern_type"`
	RiskScore      Fixed1   `json:"risk_score"`
}

// ReportSummary closes the strict report.
type ReportSummary struct {
	TotalAccountsAnalyzed     int    `json:"total_accounts_analyzed"`
	SuspiciousAccountsFlagged int    `json:"suspicious_accounts_flagged"`
	FraudRingsDetected        int    `json:"fraud_rings_detected"`
	ProcessingTimeSeconds     Fixed1 `json:"processing_time_seconds"`
}

// Report is the byte-for-byte reproducible output of one analysis run.
type Report struct {
	SuspiciousAccounts []SuspiciousAccount `json:"suspicious_accounts"`
	FraudRings         []ReportRing        `json:"fraud_rings"`
	Summary            ReportSummary       `json:"summary"`
}
