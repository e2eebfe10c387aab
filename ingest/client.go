// Package ingest mirrors court and dispute snapshots from the protocol
// subgraph into local storage. It performs plain single-attempt GraphQL
// queries over HTTP; scheduling and natural retry both live in the poller's
// tick cadence.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"courtflow/court"
	"courtflow/dispute"
	"courtflow/phase"
)

// Client is a minimal GraphQL-over-HTTP subgraph client.
type Client struct {
	endpoint string
	http     *http.Client
}

func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) query(ctx context.Context, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("ingest: encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ingest: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ingest: subgraph request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("ingest: subgraph status %d: %s", resp.StatusCode, snippet)
	}

	var envelope graphQLEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("ingest: decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("ingest: subgraph error: %s", envelope.Errors[0].Message)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("ingest: decode data: %w", err)
	}
	return nil
}

const courtQuery = `
query Court($id: ID!) {
  court(id: $id) {
    id
    name
    currentTerm
    termDuration
    firstTermStartTime
    evidenceTerms
    commitTerms
    revealTerms
    appealTerms
    appealConfirmationTerms
    maxRegularAppealRounds
  }
}`

const disputesQuery = `
query Disputes($court: String!) {
  disputes(where: { court: $court }, orderBy: createdAt) {
    id
    createdAt
    state
    metadata
    subject { id }
    rounds(orderBy: number) {
      number
      draftTermId
      delayedTerms
      createdAt
      appeal {
        createdAt
        appealedRuling
        confirmedAt
      }
    }
  }
}`

type courtDTO struct {
	ID                      string `json:"id"`
	Name                    string `json:"name"`
	CurrentTerm             string `json:"currentTerm"`
	TermDuration            string `json:"termDuration"`
	FirstTermStartTime      string `json:"firstTermStartTime"`
	EvidenceTerms           string `json:"evidenceTerms"`
	CommitTerms             string `json:"commitTerms"`
	RevealTerms             string `json:"revealTerms"`
	AppealTerms             string `json:"appealTerms"`
	AppealConfirmationTerms string `json:"appealConfirmationTerms"`
	MaxRegularAppealRounds  string `json:"maxRegularAppealRounds"`
}

type disputeDTO struct {
	ID        string `json:"id"`
	CreatedAt string `json:"createdAt"`
	State     string `json:"state"`
	Metadata  string `json:"metadata"`
	Subject   *struct {
		ID string `json:"id"`
	} `json:"subject"`
	Rounds []roundDTO `json:"rounds"`
}

type roundDTO struct {
	Number       string `json:"number"`
	DraftTermID  string `json:"draftTermId"`
	DelayedTerms string `json:"delayedTerms"`
	CreatedAt    string `json:"createdAt"`
	Appeal       *struct {
		CreatedAt      string  `json:"createdAt"`
		AppealedRuling string  `json:"appealedRuling"`
		ConfirmedAt    *string `json:"confirmedAt"`
	} `json:"appeal"`
}

// FetchCourt returns the court's current configuration snapshot, mapped to
// upsert parameters. Subgraph timestamps are seconds and are widened to the
// engine's millisecond scale here, at the boundary.
func (c *Client) FetchCourt(ctx context.Context, chainID int64, courtID string) (court.UpsertParams, error) {
	var data struct {
		Court *courtDTO `json:"court"`
	}
	if err := c.query(ctx, courtQuery, map[string]any{"id": courtID}, &data); err != nil {
		return court.UpsertParams{}, err
	}
	if data.Court == nil {
		return court.UpsertParams{}, fmt.Errorf("ingest: court %s not in subgraph", courtID)
	}
	dto := data.Court

	params := court.UpsertParams{ID: dto.ID, Name: dto.Name, ChainID: chainID}
	fields := []struct {
		name string
		raw  string
		dst  *int64
	}{
		{"currentTerm", dto.CurrentTerm, &params.CurrentTermID},
		{"termDuration", dto.TermDuration, &params.TermDuration},
		{"firstTermStartTime", dto.FirstTermStartTime, &params.FirstTermStartTime},
		{"evidenceTerms", dto.EvidenceTerms, &params.EvidenceTerms},
		{"commitTerms", dto.CommitTerms, &params.CommitTerms},
		{"revealTerms", dto.RevealTerms, &params.RevealTerms},
		{"appealTerms", dto.AppealTerms, &params.AppealTerms},
		{"appealConfirmationTerms", dto.AppealConfirmationTerms, &params.AppealConfirmationTerms},
		{"maxRegularAppealRounds", dto.MaxRegularAppealRounds, &params.MaxRegularAppealRounds},
	}
	for _, f := range fields {
		v, err := strconv.ParseInt(f.raw, 10, 64)
		if err != nil {
			return court.UpsertParams{}, fmt.Errorf("ingest: court %s field %s: %w", courtID, f.name, err)
		}
		*f.dst = v
	}
	// Duration and anchor arrive in seconds.
	params.TermDuration *= 1000
	params.FirstTermStartTime *= 1000
	return params, nil
}

// FetchDisputes returns snapshot upsert parameters for every dispute of the
// court the subgraph knows about.
func (c *Client) FetchDisputes(ctx context.Context, courtID string) ([]dispute.SnapshotParams, error) {
	var data struct {
		Disputes []disputeDTO `json:"disputes"`
	}
	if err := c.query(ctx, disputesQuery, map[string]any{"court": courtID}, &data); err != nil {
		return nil, err
	}

	out := make([]dispute.SnapshotParams, 0, len(data.Disputes))
	for _, dto := range data.Disputes {
		params, err := mapDispute(courtID, dto)
		if err != nil {
			return nil, err
		}
		out = append(out, params)
	}
	return out, nil
}

func mapDispute(courtID string, dto disputeDTO) (dispute.SnapshotParams, error) {
	createdAt, err := parseMillis(dto.CreatedAt)
	if err != nil {
		return dispute.SnapshotParams{}, fmt.Errorf("ingest: dispute %s createdAt: %w", dto.ID, err)
	}

	params := dispute.SnapshotParams{
		ID:        dto.ID,
		CourtID:   courtID,
		CreatedAt: createdAt,
		State:     phase.DisputeState(dto.State),
		Metadata:  dto.Metadata,
	}
	if dto.Subject != nil {
		params.Subject = dto.Subject.ID
	}

	for _, r := range dto.Rounds {
		round, err := mapRound(dto.ID, r)
		if err != nil {
			return dispute.SnapshotParams{}, err
		}
		params.Rounds = append(params.Rounds, round)
	}
	return params, nil
}

func mapRound(disputeID string, dto roundDTO) (dispute.RoundRecord, error) {
	round := dispute.RoundRecord{DisputeID: disputeID}

	number, err := strconv.ParseUint(dto.Number, 10, 64)
	if err != nil {
		return dispute.RoundRecord{}, fmt.Errorf("ingest: dispute %s round number: %w", disputeID, err)
	}
	round.Number = number

	if round.DraftTermID, err = strconv.ParseInt(dto.DraftTermID, 10, 64); err != nil {
		return dispute.RoundRecord{}, fmt.Errorf("ingest: dispute %s draftTermId: %w", disputeID, err)
	}
	if round.DelayedTerms, err = strconv.ParseInt(dto.DelayedTerms, 10, 64); err != nil {
		return dispute.RoundRecord{}, fmt.Errorf("ingest: dispute %s delayedTerms: %w", disputeID, err)
	}
	if round.CreatedAt, err = parseMillis(dto.CreatedAt); err != nil {
		return dispute.RoundRecord{}, fmt.Errorf("ingest: dispute %s round createdAt: %w", disputeID, err)
	}

	if dto.Appeal != nil {
		appealedAt, err := parseMillis(dto.Appeal.CreatedAt)
		if err != nil {
			return dispute.RoundRecord{}, fmt.Errorf("ingest: dispute %s appeal createdAt: %w", disputeID, err)
		}
		round.AppealedAt = &appealedAt

		ruling, err := strconv.ParseInt(dto.Appeal.AppealedRuling, 10, 16)
		if err != nil {
			return dispute.RoundRecord{}, fmt.Errorf("ingest: dispute %s appealedRuling: %w", disputeID, err)
		}
		r16 := int16(ruling)
		round.AppealedRuling = &r16

		if dto.Appeal.ConfirmedAt != nil {
			confirmedAt, err := parseMillis(*dto.Appeal.ConfirmedAt)
			if err != nil {
				return dispute.RoundRecord{}, fmt.Errorf("ingest: dispute %s appeal confirmedAt: %w", disputeID, err)
			}
			round.AppealConfirmedAt = &confirmedAt
		}
	}
	return round, nil
}

// parseMillis converts a subgraph seconds timestamp to milliseconds.
func parseMillis(raw string) (int64, error) {
	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return seconds * 1000, nil
}
