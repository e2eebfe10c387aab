package dispute

import (
	"time"

	"courtflow/phase"
)

// Record mirrors the disputes table: a snapshot of one on-chain dispute as
// last observed from the subgraph. On-chain timestamps stay integer
// milliseconds; SyncedAt is the local observation time.
type Record struct {
	ID          string
	CourtID     string
	Subject     string
	CreatedAt   int64
	State       phase.DisputeState
	LastRoundID uint64
	Metadata    string
	SyncedAt    time.Time
}

// RoundRecord mirrors the dispute_rounds table.
type RoundRecord struct {
	DisputeID         string
	Number            uint64
	DraftTermID       int64
	DelayedTerms      int64
	CreatedAt         int64
	AppealedAt        *int64
	AppealedRuling    *int16
	AppealConfirmedAt *int64
}

// Event is one observed coarse-state transition, appended by the snapshot
// upsert in the same transaction as the dispute row itself.
type Event struct {
	ID        int64
	DisputeID string
	Type      string
	Payload   map[string]any
	CreatedAt time.Time
}

// EventStateChanged is the event type recorded when the observed on-chain
// state differs from the previously stored one.
const EventStateChanged = "DISPUTE_STATE_CHANGED"

// Assemble builds the engine-facing dispute snapshot from stored rows.
func Assemble(rec Record, rounds []RoundRecord) phase.Dispute {
	d := phase.Dispute{
		ID:        rec.ID,
		CreatedAt: rec.CreatedAt,
		State:     rec.State,
		Rounds:    make([]phase.Round, 0, len(rounds)),
	}
	for _, r := range rounds {
		round := phase.Round{
			Number:       r.Number,
			DraftTermID:  r.DraftTermID,
			DelayedTerms: r.DelayedTerms,
			CreatedAt:    r.CreatedAt,
		}
		if r.AppealedAt != nil {
			appeal := &phase.Appeal{CreatedAt: *r.AppealedAt, ConfirmedAt: r.AppealConfirmedAt}
			if r.AppealedRuling != nil {
				appeal.AppealedRuling = uint8(*r.AppealedRuling)
			}
			round.Appeal = appeal
		}
		d.Rounds = append(d.Rounds, round)
	}
	return d
}
