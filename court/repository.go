package court

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound signals the requested court is not tracked.
var ErrNotFound = errors.New("court: not found")

// Repository provides access to tracked courts and their config snapshots.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wires a pgxpool-backed repository implementation.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const courtColumns = `
	id, name, chain_id, current_term_id,
	term_duration, first_term_start_time, evidence_terms, commit_terms,
	reveal_terms, appeal_terms, appeal_confirmation_terms,
	max_regular_appeal_rounds, created_at, updated_at
`

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID,
		&rec.Name,
		&rec.ChainID,
		&rec.CurrentTermID,
		&rec.TermDuration,
		&rec.FirstTermStartTime,
		&rec.EvidenceTerms,
		&rec.CommitTerms,
		&rec.RevealTerms,
		&rec.AppealTerms,
		&rec.AppealConfirmationTerms,
		&rec.MaxRegularAppealRounds,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	return rec, err
}

// GetByID fetches a court by its on-chain address.
func (r *Repository) GetByID(ctx context.Context, id string) (Record, error) {
	query := `SELECT ` + courtColumns + ` FROM courts WHERE id = $1`

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("court: query by id: %w", err)
	}
	return rec, nil
}

// List fetches up to limit tracked courts ordered by name.
func (r *Repository) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	query := `SELECT ` + courtColumns + ` FROM courts ORDER BY name ASC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("court: list: %w", err)
	}
	defer rows.Close()

	out := make([]Record, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("court: scan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("court: iterate: %w", err)
	}
	return out, nil
}

// UpsertParams carries one observed court configuration snapshot.
type UpsertParams struct {
	ID            string
	Name          string
	ChainID       int64
	CurrentTermID int64

	TermDuration            int64
	FirstTermStartTime      int64
	EvidenceTerms           int64
	CommitTerms             int64
	RevealTerms             int64
	AppealTerms             int64
	AppealConfirmationTerms int64
	MaxRegularAppealRounds  int64
}

// UpsertConfig inserts the court or refreshes its config snapshot.
func (r *Repository) UpsertConfig(ctx context.Context, params UpsertParams) (Record, error) {
	query := `
		INSERT INTO courts (
			id, name, chain_id, current_term_id,
			term_duration, first_term_start_time, evidence_terms, commit_terms,
			reveal_terms, appeal_terms, appeal_confirmation_terms,
			max_regular_appeal_rounds
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			current_term_id = EXCLUDED.current_term_id,
			term_duration = EXCLUDED.term_duration,
			first_term_start_time = EXCLUDED.first_term_start_time,
			evidence_terms = EXCLUDED.evidence_terms,
			commit_terms = EXCLUDED.commit_terms,
			reveal_terms = EXCLUDED.reveal_terms,
			appeal_terms = EXCLUDED.appeal_terms,
			appeal_confirmation_terms = EXCLUDED.appeal_confirmation_terms,
			max_regular_appeal_rounds = EXCLUDED.max_regular_appeal_rounds,
			updated_at = now()
		RETURNING ` + courtColumns

	rec, err := scanRecord(r.pool.QueryRow(ctx, query,
		params.ID,
		params.Name,
		params.ChainID,
		params.CurrentTermID,
		params.TermDuration,
		params.FirstTermStartTime,
		params.EvidenceTerms,
		params.CommitTerms,
		params.RevealTerms,
		params.AppealTerms,
		params.AppealConfirmationTerms,
		params.MaxRegularAppealRounds,
	))
	if err != nil {
		return Record{}, fmt.Errorf("court: upsert config: %w", err)
	}
	return rec, nil
}
