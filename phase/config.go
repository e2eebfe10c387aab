package phase

import "fmt"

// CourtConfig is a snapshot of the court's term-based parameters. Durations
// are counts of terms; TermDuration and timestamps are integer milliseconds.
// The engine always receives the config as an immutable snapshot: on-chain
// config changes only apply to future terms and therefore to future snapshots.
type CourtConfig struct {
	TermDuration            int64 `json:"termDuration"`
	FirstTermStartTime      int64 `json:"firstTermStartTime"`
	EvidenceTerms           int64 `json:"evidenceTerms"`
	CommitTerms             int64 `json:"commitTerms"`
	RevealTerms             int64 `json:"revealTerms"`
	AppealTerms             int64 `json:"appealTerms"`
	AppealConfirmationTerms int64 `json:"appealConfirmationTerms"`
	MaxRegularAppealRounds  int64 `json:"maxRegularAppealRounds"`
}

// Validate rejects configs with negative durations or term counts.
func (c CourtConfig) Validate() error {
	fields := []struct {
		name  string
		value int64
	}{
		{"termDuration", c.TermDuration},
		{"evidenceTerms", c.EvidenceTerms},
		{"commitTerms", c.CommitTerms},
		{"revealTerms", c.RevealTerms},
		{"appealTerms", c.AppealTerms},
		{"appealConfirmationTerms", c.AppealConfirmationTerms},
		{"maxRegularAppealRounds", c.MaxRegularAppealRounds},
	}
	for _, f := range fields {
		if f.value < 0 {
			return fmt.Errorf("%w: %s is negative (%d)", ErrMalformedConfig, f.name, f.value)
		}
	}
	return nil
}

// TermStartTime returns the wall-clock start of the given term.
func (c CourtConfig) TermStartTime(termID int64) int64 {
	return c.FirstTermStartTime + termID*c.TermDuration
}
