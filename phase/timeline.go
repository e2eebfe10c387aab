package phase

// TimelineItem is one phase interval of a dispute's history or future.
// EndTime is 0 for open-ended terminal entries. Active marks the interval
// matching the currently resolved phase.
type TimelineItem struct {
	Phase   Phase  `json:"phase"`
	EndTime int64  `json:"endTime,omitempty"`
	Active  bool   `json:"active"`
	RoundID uint64 `json:"roundId"`
}

// ladderEntry pairs a per-round stage with its end boundary. The ladder is
// kept as an explicit ordered list so the truncation rule below stays
// auditable independent of phase ordering.
type ladderEntry struct {
	phase Phase
	end   int64
}

// BuildTimeline produces the ordered phase intervals of a dispute: a
// dispute-level prefix (Created, Evidence), one adjudication ladder per
// round, and a trailing terminal entry when the dispute has reached
// ExecuteRuling or ClaimRewards. Rounds before the one currently being
// adjudicated keep their full ladder; the current round is cut immediately
// after the active stage.
func BuildTimeline(d Dispute, cfg CourtConfig, now int64) ([]TimelineItem, error) {
	current, err := Resolve(d, cfg, now)
	if err != nil {
		return nil, err
	}

	evidenceEnd := d.CreatedAt + cfg.EvidenceTerms*cfg.TermDuration
	items := []TimelineItem{
		{Phase: PhaseCreated, EndTime: d.CreatedAt},
		{Phase: PhaseEvidence, EndTime: evidenceEnd, Active: current.Phase == PhaseEvidence},
	}
	if current.Phase == PhaseEvidence {
		return items, nil
	}

	for _, round := range d.Rounds {
		entries := roundLadder(round, cfg)
		if round.Number == current.RoundID {
			entries = truncateAtPhase(entries, current.Phase, round.Appeal != nil)
		}
		for _, e := range entries {
			items = append(items, TimelineItem{
				Phase:   e.phase,
				EndTime: e.end,
				Active:  round.Number == current.RoundID && e.phase == current.Phase,
				RoundID: round.Number,
			})
		}
	}

	if current.Phase == PhaseExecuteRuling || current.Phase == PhaseClaimRewards {
		items = append(items, TimelineItem{
			Phase:   current.Phase,
			Active:  true,
			RoundID: current.RoundID,
		})
	}
	return items, nil
}

// roundLadder lists the ordered adjudication stages of one round with their
// end boundaries, built with the same arithmetic the resolver uses.
func roundLadder(r Round, cfg CourtConfig) []ladderEntry {
	draftTermEnd := cfg.TermStartTime(r.DraftTermID + r.DelayedTerms)
	commitEnd := draftTermEnd + cfg.CommitTerms*cfg.TermDuration
	revealEnd := commitEnd + cfg.RevealTerms*cfg.TermDuration
	appealEnd := revealEnd + cfg.AppealTerms*cfg.TermDuration
	confirmEnd := appealEnd + cfg.AppealConfirmationTerms*cfg.TermDuration

	return []ladderEntry{
		{PhaseJuryDrafting, r.CreatedAt + JuryDraftingTerms*cfg.TermDuration},
		{PhaseVotingPeriod, commitEnd},
		{PhaseRevealVote, revealEnd},
		{PhaseAppealRuling, appealEnd},
		{PhaseConfirmAppeal, confirmEnd},
	}
}

// truncateAtPhase cuts the ladder immediately after the entry matching the
// current phase, dropping stages the round has not reached. When the current
// phase is dispute-level (ExecuteRuling, ClaimRewards) no entry matches: the
// whole elapsed ladder is kept, minus the confirmation stage of a round that
// was never appealed, since that window never opened.
func truncateAtPhase(entries []ladderEntry, current Phase, appealed bool) []ladderEntry {
	for i, e := range entries {
		if e.phase == current {
			return entries[:i+1]
		}
	}
	if !appealed {
		return entries[:len(entries)-1]
	}
	return entries
}
