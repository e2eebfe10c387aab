// Package phase computes the protocol phase and timeline of an arbitration
// dispute from a snapshot of its on-chain state and the court's term-based
// configuration. It is pure: no I/O, no clocks, no retained state. Callers
// supply the reference time explicitly so results are reproducible and can
// answer "as of" queries for historical disputes.
package phase

// DisputeState is the coarse lifecycle state a dispute carries on chain.
type DisputeState string

const (
	StateEvidence     DisputeState = "Evidence"
	StateJuryDrafting DisputeState = "JuryDrafting"
	StateAdjudicating DisputeState = "Adjudicating"
	StateRuled        DisputeState = "Ruled"
)

// Phase is the fine-grained protocol phase derived from a dispute snapshot.
// Phases are never stored; they are recomputed from (dispute, config, now).
type Phase string

const (
	PhaseCreated       Phase = "Created"
	PhaseEvidence      Phase = "Evidence"
	PhaseJuryDrafting  Phase = "JuryDrafting"
	PhaseVotingPeriod  Phase = "VotingPeriod"
	PhaseRevealVote    Phase = "RevealVote"
	PhaseAppealRuling  Phase = "AppealRuling"
	PhaseConfirmAppeal Phase = "ConfirmAppeal"
	PhaseExecuteRuling Phase = "ExecuteRuling"
	PhaseClaimRewards  Phase = "ClaimRewards"
)

// JuryDraftingTerms is the fixed term allowance for juror drafting. The
// protocol hardcodes this; it is deliberately not part of CourtConfig.
const JuryDraftingTerms = 3

func (p Phase) String() string { return string(p) }

// Terminal reports whether the phase has no further transition.
func (p Phase) Terminal() bool {
	return p == PhaseExecuteRuling || p == PhaseClaimRewards
}
