package court

import (
	"time"

	"courtflow/phase"
)

// Record mirrors the courts table: one row per tracked court deployment with
// the latest observed term configuration snapshot.
type Record struct {
	ID            string
	Name          string
	ChainID       int64
	CurrentTermID int64

	TermDuration            int64
	FirstTermStartTime      int64
	EvidenceTerms           int64
	CommitTerms             int64
	RevealTerms             int64
	AppealTerms             int64
	AppealConfirmationTerms int64
	MaxRegularAppealRounds  int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Config assembles the engine-facing configuration snapshot.
func (r Record) Config() phase.CourtConfig {
	return phase.CourtConfig{
		TermDuration:            r.TermDuration,
		FirstTermStartTime:      r.FirstTermStartTime,
		EvidenceTerms:           r.EvidenceTerms,
		CommitTerms:             r.CommitTerms,
		RevealTerms:             r.RevealTerms,
		AppealTerms:             r.AppealTerms,
		AppealConfirmationTerms: r.AppealConfirmationTerms,
		MaxRegularAppealRounds:  r.MaxRegularAppealRounds,
	}
}
