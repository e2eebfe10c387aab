package phase

// Dispute is a snapshot of one arbitration case. Rounds are ordered by
// creation and zero-indexed; a new round exists only because the previous one
// was appealed and confirmed.
type Dispute struct {
	ID        string       `json:"id"`
	CreatedAt int64        `json:"createdAt"`
	State     DisputeState `json:"state"`
	Rounds    []Round      `json:"rounds"`
}

// LastRound returns the most recent round, if any.
func (d Dispute) LastRound() (Round, bool) {
	if len(d.Rounds) == 0 {
		return Round{}, false
	}
	return d.Rounds[len(d.Rounds)-1], true
}

// Round is one draft/vote/appeal cycle within a dispute.
type Round struct {
	Number       uint64  `json:"number"`
	DraftTermID  int64   `json:"draftTermId"`
	DelayedTerms int64   `json:"delayedTerms"`
	CreatedAt    int64   `json:"createdAt"`
	Appeal       *Appeal `json:"appeal,omitempty"`
}

// Appeal is present once a round's ruling has been appealed. The engine only
// branches on its presence; the remaining fields are carried for display.
type Appeal struct {
	CreatedAt      int64  `json:"createdAt"`
	AppealedRuling uint8  `json:"appealedRuling"`
	ConfirmedAt    *int64 `json:"confirmedAt,omitempty"`
}
