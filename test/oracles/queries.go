// Package oracles holds SQL invariants checked while the stress test runs.
package oracles

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Oracle struct {
	Name string
	SQL  string
}

func All() []Oracle {
	return []Oracle{
		{
			Name: "O1_last_round_matches_rounds",
			SQL: `SELECT d.id FROM disputes d
                  LEFT JOIN (SELECT dispute_id, MAX(number) AS max_number
                             FROM dispute_rounds GROUP BY dispute_id) r
                    ON r.dispute_id = d.id
                  WHERE COALESCE(r.max_number, 0) <> d.last_round_id`,
		},
		{
			Name: "O2_round_numbers_contiguous",
			SQL: `WITH seqs AS (
                      SELECT dispute_id, number,
                             LAG(number) OVER (PARTITION BY dispute_id ORDER BY number) AS prev
                      FROM dispute_rounds)
                  SELECT * FROM seqs
                  WHERE (prev IS NULL AND number <> 0)
                     OR (prev IS NOT NULL AND number <> prev + 1)`,
		},
		{
			Name: "O3_confirm_requires_appeal",
			SQL: `SELECT dispute_id, number FROM dispute_rounds
                  WHERE appeal_confirmed_at_ms IS NOT NULL AND appealed_at_ms IS NULL`,
		},
		{
			Name: "O4_known_states_only",
			SQL: `SELECT id FROM disputes
                  WHERE state NOT IN ('Evidence','JuryDrafting','Adjudicating','Ruled')`,
		},
		{
			Name: "O5_transition_changes_state",
			SQL: `SELECT id FROM dispute_events
                  WHERE type = 'DISPUTE_STATE_CHANGED'
                    AND payload->>'previous_state' = payload->>'next_state'`,
		},
		{
			Name: "O6_event_trail_chained",
			SQL: `WITH trail AS (
                      SELECT id, dispute_id,
                             payload->>'previous_state' AS prev_state,
                             LAG(payload->>'next_state') OVER (PARTITION BY dispute_id ORDER BY id) AS last_next
                      FROM dispute_events
                      WHERE type = 'DISPUTE_STATE_CHANGED')
                  SELECT id FROM trail
                  WHERE last_next IS NOT NULL AND prev_state <> last_next`,
		},
	}
}

// Run executes all oracles and returns the first failure (name and sample row
// text) or an empty name if all pass.
func Run(ctx context.Context, pool *pgxpool.Pool) (string, string, error) {
	for _, o := range All() {
		rows, err := pool.Query(ctx, o.SQL)
		if err != nil {
			return o.Name, "", fmt.Errorf("oracle %s: %w", o.Name, err)
		}
		has := rows.Next()
		if has {
			vals, err := rows.Values()
			rows.Close()
			if err != nil {
				return o.Name, "", err
			}
			return o.Name, fmt.Sprintf("%v", vals), nil
		}
		rows.Close()
	}
	return "", "", nil
}
