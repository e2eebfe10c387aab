package dispute

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"courtflow/phase"
)

// ErrNotFound signals the requested dispute has not been mirrored yet.
var ErrNotFound = errors.New("dispute: not found")

// Repository stores mirrored dispute snapshots and their rounds.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const disputeColumns = `
	id, court_id, subject, created_at_ms, state, last_round_id, metadata, synced_at
`

func scanDispute(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID,
		&rec.CourtID,
		&rec.Subject,
		&rec.CreatedAt,
		&rec.State,
		&rec.LastRoundID,
		&rec.Metadata,
		&rec.SyncedAt,
	)
	return rec, err
}

// List returns mirrored disputes, optionally filtered by court and state,
// newest first.
func (r *Repository) List(ctx context.Context, courtID string, state phase.DisputeState) ([]Record, error) {
	query := `SELECT ` + disputeColumns + ` FROM disputes WHERE 1=1`
	args := make([]any, 0, 2)
	if courtID != "" {
		args = append(args, courtID)
		query += fmt.Sprintf(" AND court_id = $%d", len(args))
	}
	if state != "" {
		args = append(args, string(state))
		query += fmt.Sprintf(" AND state = $%d", len(args))
	}
	query += " ORDER BY created_at_ms DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("dispute: list: %w", err)
	}
	defer rows.Close()

	out := make([]Record, 0, 16)
	for rows.Next() {
		rec, err := scanDispute(rows)
		if err != nil {
			return nil, fmt.Errorf("dispute: scan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dispute: iterate: %w", err)
	}
	return out, nil
}

// Get fetches one dispute with its rounds ordered by round number.
func (r *Repository) Get(ctx context.Context, id string) (Record, []RoundRecord, error) {
	query := `SELECT ` + disputeColumns + ` FROM disputes WHERE id = $1`

	rec, err := scanDispute(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, nil, ErrNotFound
		}
		return Record{}, nil, fmt.Errorf("dispute: get: %w", err)
	}

	const roundQuery = `
		SELECT dispute_id, number, draft_term_id, delayed_terms, created_at_ms,
		       appealed_at_ms, appealed_ruling, appeal_confirmed_at_ms
		FROM dispute_rounds
		WHERE dispute_id = $1
		ORDER BY number ASC
	`
	rows, err := r.pool.Query(ctx, roundQuery, id)
	if err != nil {
		return Record{}, nil, fmt.Errorf("dispute: query rounds: %w", err)
	}
	defer rows.Close()

	rounds := make([]RoundRecord, 0, 4)
	for rows.Next() {
		var round RoundRecord
		if err := rows.Scan(
			&round.DisputeID,
			&round.Number,
			&round.DraftTermID,
			&round.DelayedTerms,
			&round.CreatedAt,
			&round.AppealedAt,
			&round.AppealedRuling,
			&round.AppealConfirmedAt,
		); err != nil {
			return Record{}, nil, fmt.Errorf("dispute: scan round: %w", err)
		}
		rounds = append(rounds, round)
	}
	if err := rows.Err(); err != nil {
		return Record{}, nil, fmt.Errorf("dispute: iterate rounds: %w", err)
	}
	return rec, rounds, nil
}

// SnapshotParams carries one freshly observed dispute snapshot.
type SnapshotParams struct {
	ID        string
	CourtID   string
	Subject   string
	CreatedAt int64
	State     phase.DisputeState
	Metadata  string
	Rounds    []RoundRecord
}

// UpsertSnapshot writes the dispute and its rounds in one transaction. When
// the observed coarse state differs from the stored one, a DISPUTE_STATE_CHANGED
// event is appended in the same transaction so the API can show when each
// transition was first observed.
func (r *Repository) UpsertSnapshot(ctx context.Context, params SnapshotParams) error {
	if params.ID == "" {
		return fmt.Errorf("dispute: missing dispute id")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("dispute: begin snapshot tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var previous *string
	err = tx.QueryRow(ctx, `SELECT state FROM disputes WHERE id = $1 FOR UPDATE`, params.ID).Scan(&previous)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("dispute: fetch current state: %w", err)
	}

	lastRoundID := uint64(0)
	if n := len(params.Rounds); n > 0 {
		lastRoundID = params.Rounds[n-1].Number
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO disputes (id, court_id, subject, created_at_ms, state, last_round_id, metadata, synced_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7, now())
		ON CONFLICT (id) DO UPDATE SET
			subject = EXCLUDED.subject,
			state = EXCLUDED.state,
			last_round_id = EXCLUDED.last_round_id,
			metadata = EXCLUDED.metadata,
			synced_at = now()
	`, params.ID, params.CourtID, params.Subject, params.CreatedAt, string(params.State), lastRoundID, params.Metadata); err != nil {
		return fmt.Errorf("dispute: upsert dispute: %w", err)
	}

	for _, round := range params.Rounds {
		if _, err := tx.Exec(ctx, `
			INSERT INTO dispute_rounds (dispute_id, number, draft_term_id, delayed_terms, created_at_ms,
				appealed_at_ms, appealed_ruling, appeal_confirmed_at_ms)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			ON CONFLICT (dispute_id, number) DO UPDATE SET
				draft_term_id = EXCLUDED.draft_term_id,
				delayed_terms = EXCLUDED.delayed_terms,
				appealed_at_ms = EXCLUDED.appealed_at_ms,
				appealed_ruling = EXCLUDED.appealed_ruling,
				appeal_confirmed_at_ms = EXCLUDED.appeal_confirmed_at_ms
		`, params.ID, round.Number, round.DraftTermID, round.DelayedTerms, round.CreatedAt,
			round.AppealedAt, round.AppealedRuling, round.AppealConfirmedAt); err != nil {
			return fmt.Errorf("dispute: upsert round %d: %w", round.Number, err)
		}
	}

	if previous != nil && *previous != string(params.State) {
		payload := map[string]any{
			"previous_state": *previous,
			"next_state":     string(params.State),
			"last_round_id":  lastRoundID,
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO dispute_events (dispute_id, type, payload)
			VALUES ($1,$2,$3::jsonb)
		`, params.ID, EventStateChanged, toJSON(payload)); err != nil {
			return fmt.Errorf("dispute: insert event: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("dispute: commit snapshot: %w", err)
	}
	return nil
}

// ListEvents returns the observed-transition trail for a dispute, oldest first.
func (r *Repository) ListEvents(ctx context.Context, disputeID string) ([]Event, error) {
	const query = `
		SELECT id, dispute_id, type, payload, created_at
		FROM dispute_events
		WHERE dispute_id = $1
		ORDER BY id ASC
	`
	rows, err := r.pool.Query(ctx, query, disputeID)
	if err != nil {
		return nil, fmt.Errorf("dispute: list events: %w", err)
	}
	defer rows.Close()

	out := make([]Event, 0, 8)
	for rows.Next() {
		var (
			ev  Event
			raw []byte
		)
		if err := rows.Scan(&ev.ID, &ev.DisputeID, &ev.Type, &raw, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("dispute: scan event: %w", err)
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &ev.Payload); err != nil {
				return nil, fmt.Errorf("dispute: decode event payload: %w", err)
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dispute: iterate events: %w", err)
	}
	return out, nil
}

func toJSON(m map[string]any) string {
	b, err := json.Marshal(m)
	if err != nil {
		panic(err)
	}
	return string(b)
}
