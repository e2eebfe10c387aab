package phase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func testConfig() CourtConfig {
	return CourtConfig{
		TermDuration:            100,
		EvidenceTerms:           2,
		CommitTerms:             1,
		RevealTerms:             1,
		AppealTerms:             1,
		AppealConfirmationTerms: 1,
		MaxRegularAppealRounds:  1,
	}
}

func TestResolveEvidencePhase(t *testing.T) {
	cfg := testConfig()
	d := Dispute{
		ID:        "d1",
		CreatedAt: 0,
		State:     StateEvidence,
		Rounds:    []Round{{Number: 0, CreatedAt: 0}},
	}

	res, err := Resolve(d, cfg, 150)
	require.NoError(t, err)
	assert.Equal(t, PhaseEvidence, res.Phase)
	assert.Equal(t, ptr(int64(200)), res.NextTransition)
	assert.Equal(t, uint64(0), res.RoundID)
	assert.Nil(t, res.Ruling)
}

func TestResolveEvidenceRollsIntoDrafting(t *testing.T) {
	cfg := testConfig()
	d := Dispute{
		CreatedAt: 0,
		State:     StateEvidence,
		Rounds:    []Round{{Number: 0}},
	}

	res, err := Resolve(d, cfg, 250)
	require.NoError(t, err)
	assert.Equal(t, PhaseJuryDrafting, res.Phase)
	// Drafting allowance is the fixed 3-term constant, not a config field.
	assert.Equal(t, ptr(int64(500)), res.NextTransition)
}

func TestResolveEvidenceExactBoundaryStaysEvidence(t *testing.T) {
	// The evidence branch uses now > end, so the boundary instant itself
	// still reports Evidence.
	cfg := testConfig()
	d := Dispute{CreatedAt: 0, State: StateEvidence}

	res, err := Resolve(d, cfg, 200)
	require.NoError(t, err)
	assert.Equal(t, PhaseEvidence, res.Phase)
}

func TestResolveJuryDrafting(t *testing.T) {
	cfg := testConfig()
	d := Dispute{
		CreatedAt: 0,
		State:     StateJuryDrafting,
		Rounds:    []Round{{Number: 0, CreatedAt: 240}},
	}

	res, err := Resolve(d, cfg, 300)
	require.NoError(t, err)
	assert.Equal(t, PhaseJuryDrafting, res.Phase)
	assert.Equal(t, ptr(int64(540)), res.NextTransition)
	assert.Equal(t, uint64(0), res.RoundID)
}

func TestResolveRuled(t *testing.T) {
	cfg := testConfig()
	d := Dispute{
		CreatedAt: 0,
		State:     StateRuled,
		Rounds:    []Round{{Number: 0}, {Number: 1, Appeal: nil}},
	}

	res, err := Resolve(d, cfg, 99999)
	require.NoError(t, err)
	assert.Equal(t, PhaseClaimRewards, res.Phase)
	assert.Nil(t, res.NextTransition)
	assert.Nil(t, res.Ruling)
	assert.Equal(t, uint64(1), res.RoundID)
}

// adjudicatingDispute anchors the first term so the single round's draft term
// ends exactly at draftTermEnd.
func adjudicatingDispute(draftTermEnd int64, appeal *Appeal) (Dispute, CourtConfig) {
	cfg := CourtConfig{
		TermDuration:            10,
		FirstTermStartTime:      draftTermEnd,
		EvidenceTerms:           2,
		CommitTerms:             2,
		RevealTerms:             2,
		AppealTerms:             2,
		AppealConfirmationTerms: 2,
		MaxRegularAppealRounds:  1,
	}
	d := Dispute{
		CreatedAt: 0,
		State:     StateAdjudicating,
		Rounds:    []Round{{Number: 0, DraftTermID: 0, DelayedTerms: 0, CreatedAt: 0, Appeal: appeal}},
	}
	return d, cfg
}

func TestResolveAdjudicationLadder(t *testing.T) {
	tests := []struct {
		name     string
		now      int64
		appeal   *Appeal
		phase    Phase
		nextTime *int64
	}{
		{"commit window", 1015, nil, PhaseVotingPeriod, ptr(int64(1020))},
		{"reveal window", 1025, nil, PhaseRevealVote, ptr(int64(1040))},
		{"appeal window", 1045, nil, PhaseAppealRuling, ptr(int64(1060))},
		{"unappealed past deadline", 1065, nil, PhaseExecuteRuling, nil},
		{"confirm window", 1065, &Appeal{CreatedAt: 1050}, PhaseConfirmAppeal, ptr(int64(1080))},
		{"appeal unconfirmed past deadline", 1085, &Appeal{CreatedAt: 1050}, PhaseExecuteRuling, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, cfg := adjudicatingDispute(1000, tc.appeal)
			res, err := Resolve(d, cfg, tc.now)
			require.NoError(t, err)
			assert.Equal(t, tc.phase, res.Phase)
			assert.Equal(t, tc.nextTime, res.NextTransition)
			assert.Equal(t, uint64(0), res.RoundID)
		})
	}
}

func TestResolveConfirmCarriesAppealedRuling(t *testing.T) {
	d, cfg := adjudicatingDispute(1000, &Appeal{CreatedAt: 1050, AppealedRuling: 2})

	res, err := Resolve(d, cfg, 1065)
	require.NoError(t, err)
	assert.Equal(t, PhaseConfirmAppeal, res.Phase)
	require.NotNil(t, res.Ruling)
	assert.Equal(t, uint8(2), *res.Ruling)
}

func TestResolveAdjudicationBoundaryIsStrict(t *testing.T) {
	d, cfg := adjudicatingDispute(1000, nil)

	// Exactly at the commit boundary the vote window has ended.
	res, err := Resolve(d, cfg, 1020)
	require.NoError(t, err)
	assert.Equal(t, PhaseRevealVote, res.Phase)

	// Exactly at the appeal boundary the round is executable.
	res, err = Resolve(d, cfg, 1060)
	require.NoError(t, err)
	assert.Equal(t, PhaseExecuteRuling, res.Phase)
}

func TestResolveRoundCapForcesExecution(t *testing.T) {
	d, cfg := adjudicatingDispute(1000, &Appeal{CreatedAt: 1050})
	d.Rounds = append(d.Rounds, Round{Number: 1, DraftTermID: 0, CreatedAt: 1080})

	// Two rounds against a cap of one: past the reveal boundary only
	// execution remains, no matter how far now advances.
	for _, now := range []int64{1040, 1055, 1070, 5000} {
		res, err := Resolve(d, cfg, now)
		require.NoError(t, err)
		assert.Equal(t, PhaseExecuteRuling, res.Phase, "now=%d", now)
		assert.Nil(t, res.NextTransition)
	}
}

func TestResolveMonotonicPhaseProgression(t *testing.T) {
	order := map[Phase]int{
		PhaseVotingPeriod:  0,
		PhaseRevealVote:    1,
		PhaseAppealRuling:  2,
		PhaseExecuteRuling: 3,
	}

	d, cfg := adjudicatingDispute(1000, nil)
	prev := -1
	for now := int64(1000); now <= 1100; now++ {
		res, err := Resolve(d, cfg, now)
		require.NoError(t, err)
		rank, ok := order[res.Phase]
		require.True(t, ok, "unexpected phase %s at now=%d", res.Phase, now)
		require.GreaterOrEqual(t, rank, prev, "phase regressed at now=%d", now)
		prev = rank
	}
}

func TestResolveIdempotent(t *testing.T) {
	d, cfg := adjudicatingDispute(1000, &Appeal{CreatedAt: 1050})

	first, err := Resolve(d, cfg, 1065)
	require.NoError(t, err)
	second, err := Resolve(d, cfg, 1065)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolveUnknownState(t *testing.T) {
	cfg := testConfig()
	d := Dispute{State: DisputeState("Paused"), Rounds: []Round{{}}}

	_, err := Resolve(d, cfg, 0)
	assert.ErrorIs(t, err, ErrUnknownDisputeState)
}

func TestResolveEmptyRounds(t *testing.T) {
	cfg := testConfig()
	for _, state := range []DisputeState{StateJuryDrafting, StateAdjudicating, StateRuled} {
		_, err := Resolve(Dispute{State: state}, cfg, 0)
		assert.ErrorIs(t, err, ErrEmptyRounds, "state %s", state)
	}
}

func TestResolveMalformedConfig(t *testing.T) {
	cfg := testConfig()
	cfg.RevealTerms = -1

	_, err := Resolve(Dispute{State: StateEvidence}, cfg, 0)
	assert.ErrorIs(t, err, ErrMalformedConfig)
}
