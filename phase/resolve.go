package phase

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedConfig signals a missing or negative court config field.
	ErrMalformedConfig = errors.New("phase: malformed court config")
	// ErrEmptyRounds signals a dispute past drafting with no rounds attached.
	ErrEmptyRounds = errors.New("phase: dispute has no rounds")
	// ErrUnknownDisputeState signals a state outside the known enumeration.
	ErrUnknownDisputeState = errors.New("phase: unknown dispute state")
)

// Result is the resolved current phase of a dispute. NextTransition is nil
// for terminal phases. Ruling carries the contested ruling once the current
// round has been appealed, nil otherwise.
type Result struct {
	Phase          Phase  `json:"phase"`
	NextTransition *int64 `json:"nextTransition,omitempty"`
	RoundID        uint64 `json:"roundId"`
	Ruling         *uint8 `json:"ruling,omitempty"`
}

// Resolve derives the current phase of a dispute and the timestamp of its
// next transition from the snapshot, the court configuration and a
// caller-supplied reference time in milliseconds.
func Resolve(d Dispute, cfg CourtConfig, now int64) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	switch d.State {
	case StateRuled:
		last, ok := d.LastRound()
		if !ok {
			return Result{}, fmt.Errorf("%w: state %s", ErrEmptyRounds, d.State)
		}
		return Result{Phase: PhaseClaimRewards, RoundID: last.Number}, nil

	case StateEvidence:
		evidenceEnd := d.CreatedAt + cfg.EvidenceTerms*cfg.TermDuration
		var roundID uint64
		if last, ok := d.LastRound(); ok {
			roundID = last.Number
		}
		if now > evidenceEnd {
			// Evidence window closed but the drafting transaction has
			// not landed yet: report drafting with its fixed allowance.
			next := evidenceEnd + JuryDraftingTerms*cfg.TermDuration
			return Result{Phase: PhaseJuryDrafting, NextTransition: &next, RoundID: roundID}, nil
		}
		return Result{Phase: PhaseEvidence, NextTransition: &evidenceEnd, RoundID: roundID}, nil

	case StateJuryDrafting:
		last, ok := d.LastRound()
		if !ok {
			return Result{}, fmt.Errorf("%w: state %s", ErrEmptyRounds, d.State)
		}
		next := last.CreatedAt + JuryDraftingTerms*cfg.TermDuration
		return Result{Phase: PhaseJuryDrafting, NextTransition: &next, RoundID: last.Number}, nil

	case StateAdjudicating:
		last, ok := d.LastRound()
		if !ok {
			return Result{}, fmt.Errorf("%w: state %s", ErrEmptyRounds, d.State)
		}
		draftTermEnd := cfg.TermStartTime(last.DraftTermID + last.DelayedTerms)
		res := resolveAdjudication(d, last, now, draftTermEnd, cfg)
		res.RoundID = last.Number
		return res, nil

	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownDisputeState, d.State)
	}
}

// resolveAdjudication walks the sequential deadline ladder of one round.
// Comparisons are strict: at exactly a boundary the stage has ended.
func resolveAdjudication(d Dispute, round Round, now, draftTermEnd int64, cfg CourtConfig) Result {
	commitEnd := draftTermEnd + cfg.CommitTerms*cfg.TermDuration
	if now < commitEnd {
		return Result{Phase: PhaseVotingPeriod, NextTransition: &commitEnd}
	}

	revealEnd := commitEnd + cfg.RevealTerms*cfg.TermDuration
	if now < revealEnd {
		return Result{Phase: PhaseRevealVote, NextTransition: &revealEnd}
	}

	// Past the reveal window a dispute over the appeal cap can only be executed.
	if int64(len(d.Rounds)) > cfg.MaxRegularAppealRounds {
		return Result{Phase: PhaseExecuteRuling}
	}

	appealEnd := revealEnd + cfg.AppealTerms*cfg.TermDuration
	if round.Appeal == nil {
		if now < appealEnd {
			return Result{Phase: PhaseAppealRuling, NextTransition: &appealEnd}
		}
		// Round ended unappealed.
		return Result{Phase: PhaseExecuteRuling}
	}

	confirmEnd := appealEnd + cfg.AppealConfirmationTerms*cfg.TermDuration
	ruling := round.Appeal.AppealedRuling
	if now < confirmEnd {
		return Result{Phase: PhaseConfirmAppeal, NextTransition: &confirmEnd, Ruling: &ruling}
	}
	// Appeal never confirmed in time.
	return Result{Phase: PhaseExecuteRuling, Ruling: &ruling}
}
