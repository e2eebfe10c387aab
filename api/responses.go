package api

import (
	"time"

	"courtflow/auth"
	"courtflow/court"
	"courtflow/dispute"
	"courtflow/phase"
)

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

func toUserResponse(u auth.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type courtResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ChainID       int64  `json:"chainId"`
	CurrentTermID int64  `json:"currentTermId"`

	TermDuration            int64 `json:"termDuration"`
	FirstTermStartTime      int64 `json:"firstTermStartTime"`
	EvidenceTerms           int64 `json:"evidenceTerms"`
	CommitTerms             int64 `json:"commitTerms"`
	RevealTerms             int64 `json:"revealTerms"`
	AppealTerms             int64 `json:"appealTerms"`
	AppealConfirmationTerms int64 `json:"appealConfirmationTerms"`
	MaxRegularAppealRounds  int64 `json:"maxRegularAppealRounds"`

	UpdatedAt string `json:"updatedAt"`
}

func toCourtResponse(rec court.Record) courtResponse {
	return courtResponse{
		ID:                      rec.ID,
		Name:                    rec.Name,
		ChainID:                 rec.ChainID,
		CurrentTermID:           rec.CurrentTermID,
		TermDuration:            rec.TermDuration,
		FirstTermStartTime:      rec.FirstTermStartTime,
		EvidenceTerms:           rec.EvidenceTerms,
		CommitTerms:             rec.CommitTerms,
		RevealTerms:             rec.RevealTerms,
		AppealTerms:             rec.AppealTerms,
		AppealConfirmationTerms: rec.AppealConfirmationTerms,
		MaxRegularAppealRounds:  rec.MaxRegularAppealRounds,
		UpdatedAt:               rec.UpdatedAt.Format(time.RFC3339),
	}
}

type disputeResponse struct {
	ID          string `json:"id"`
	CourtID     string `json:"courtId"`
	Subject     string `json:"subject"`
	CreatedAt   int64  `json:"createdAt"`
	State       string `json:"state"`
	LastRoundID uint64 `json:"lastRoundId"`
	SyncedAt    string `json:"syncedAt"`
}

func toDisputeResponse(rec dispute.Record) disputeResponse {
	return disputeResponse{
		ID:          rec.ID,
		CourtID:     rec.CourtID,
		Subject:     rec.Subject,
		CreatedAt:   rec.CreatedAt,
		State:       string(rec.State),
		LastRoundID: rec.LastRoundID,
		SyncedAt:    rec.SyncedAt.Format(time.RFC3339),
	}
}

type roundResponse struct {
	Number            uint64 `json:"number"`
	DraftTermID       int64  `json:"draftTermId"`
	DelayedTerms      int64  `json:"delayedTerms"`
	CreatedAt         int64  `json:"createdAt"`
	AppealedAt        *int64 `json:"appealedAt,omitempty"`
	AppealedRuling    *int16 `json:"appealedRuling,omitempty"`
	AppealConfirmedAt *int64 `json:"appealConfirmedAt,omitempty"`
}

type disputeDetailResponse struct {
	disputeResponse
	Metadata string               `json:"metadata,omitempty"`
	Rounds   []roundResponse      `json:"rounds"`
	Current  phase.Result         `json:"current"`
	Timeline []phase.TimelineItem `json:"timeline"`
}

func toDisputeDetailResponse(view dispute.View) disputeDetailResponse {
	rounds := make([]roundResponse, 0, len(view.Rounds))
	for _, r := range view.Rounds {
		rounds = append(rounds, roundResponse{
			Number:            r.Number,
			DraftTermID:       r.DraftTermID,
			DelayedTerms:      r.DelayedTerms,
			CreatedAt:         r.CreatedAt,
			AppealedAt:        r.AppealedAt,
			AppealedRuling:    r.AppealedRuling,
			AppealConfirmedAt: r.AppealConfirmedAt,
		})
	}
	return disputeDetailResponse{
		disputeResponse: toDisputeResponse(view.Record),
		Metadata:        view.Record.Metadata,
		Rounds:          rounds,
		Current:         view.Current,
		Timeline:        view.Timeline,
	}
}

type eventResponse struct {
	ID        int64          `json:"id"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
	CreatedAt string         `json:"createdAt"`
}

func toEventResponse(ev dispute.Event) eventResponse {
	return eventResponse{
		ID:        ev.ID,
		Type:      ev.Type,
		Payload:   ev.Payload,
		CreatedAt: ev.CreatedAt.Format(time.RFC3339),
	}
}
