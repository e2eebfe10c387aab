// Package actors provides concurrent workloads for the snapshot stress test.
package actors

import (
	"context"
	"math/rand"
	"time"

	"courtflow/dispute"
	"courtflow/phase"
)

var states = []phase.DisputeState{
	phase.StateEvidence,
	phase.StateJuryDrafting,
	phase.StateAdjudicating,
	phase.StateRuled,
}

// Syncer repeatedly upserts snapshots of one dispute, randomly advancing the
// coarse state, appending rounds and appealing them. Transient write errors
// are tolerated: the chaos actor kills backends on purpose.
func Syncer(ctx context.Context, repo *dispute.Repository, courtID, disputeID string, stop <-chan struct{}) error {
	rounds := []dispute.RoundRecord{{DisputeID: disputeID, Number: 0, DraftTermID: 2, CreatedAt: 1000}}
	stateIdx := 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		switch rand.Intn(4) {
		case 0:
			if stateIdx < len(states)-1 {
				stateIdx++
			}
		case 1:
			last := &rounds[len(rounds)-1]
			if last.AppealedAt == nil {
				at := last.CreatedAt + 500
				ruling := int16(rand.Intn(2) + 1)
				last.AppealedAt = &at
				last.AppealedRuling = &ruling
			}
		case 2:
			last := &rounds[len(rounds)-1]
			if last.AppealedAt != nil && last.AppealConfirmedAt == nil {
				at := *last.AppealedAt + 300
				last.AppealConfirmedAt = &at
				rounds = append(rounds, dispute.RoundRecord{
					DisputeID:   disputeID,
					Number:      uint64(len(rounds)),
					DraftTermID: int64(len(rounds)) * 5,
					CreatedAt:   at,
				})
			}
		default:
			// replay the current snapshot unchanged
		}

		_ = repo.UpsertSnapshot(ctx, dispute.SnapshotParams{
			ID:        disputeID,
			CourtID:   courtID,
			Subject:   "0xsub",
			CreatedAt: 1000,
			State:     states[stateIdx],
			Rounds:    rounds,
		})

		time.Sleep(time.Duration(10+rand.Intn(25)) * time.Millisecond)
	}
}

// Reader hammers the read paths while syncers write.
func Reader(ctx context.Context, repo *dispute.Repository, courtID, disputeID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		_, _, _ = repo.Get(ctx, disputeID)
		_, _ = repo.List(ctx, courtID, "")
		_, _ = repo.ListEvents(ctx, disputeID)

		time.Sleep(time.Duration(15+rand.Intn(30)) * time.Millisecond)
	}
}
