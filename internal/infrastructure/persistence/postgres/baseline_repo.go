package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Oyasikelly/QuizMentor-sub000/config"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/leaderboard"
	"github.com/Oyasikelly/QuizMentor-sub000/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// BASELINE REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// BaselineRepository implements leaderboard.BaselineStore for PostgreSQL.
// Used when Redis is disabled.
type BaselineRepository struct {
	conn    *Connection
	retrier *retry.Retrier
}

// NewBaselineRepository creates a new BaselineRepository.
func NewBaselineRepository(conn *Connection, cfg config.ResilienceConfig) *BaselineRepository {
	return &BaselineRepository{
		conn:    conn,
		retrier: readRetrier(cfg),
	}
}

// Save replaces the (cohort, period) snapshot atomically.
func (r *BaselineRepository) Save(ctx context.Context, b *leaderboard.Baseline) error {
	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM cohort_baselines WHERE cohort = $1 AND period = $2`,
			b.Cohort, b.Period,
		); err != nil {
			return fmt.Errorf("failed to clear baseline: %w", err)
		}

		if len(b.Values) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for learnerID, value := range b.Values {
			batch.Queue(`
				INSERT INTO cohort_baselines (cohort, period, basis, learner_id, value, recorded_at)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, b.Cohort, b.Period, string(b.Basis), learnerID, value, b.RecordedAt.UTC())
		}

		br := tx.SendBatch(ctx, batch)
		defer br.Close()

		for range b.Values {
			if _, err := br.Exec(); err != nil {
				return fmt.Errorf("failed to insert baseline value: %w", err)
			}
		}
		return br.Close()
	})
}

// Load returns the snapshot or leaderboard.ErrBaselineNotFound.
func (r *BaselineRepository) Load(ctx context.Context, cohort, period string) (*leaderboard.Baseline, error) {
	return retry.DoWithData(ctx, r.retrier, func(ctx context.Context) (*leaderboard.Baseline, error) {
		ctx, cancel := r.conn.withTimeout(ctx)
		defer cancel()

		rows, err := r.conn.Query(ctx, `
			SELECT basis, learner_id, value, recorded_at
			FROM cohort_baselines
			WHERE cohort = $1 AND period = $2
		`, cohort, period)
		if err != nil {
			return nil, fmt.Errorf("failed to query baseline: %w", err)
		}
		defer rows.Close()

		b := &leaderboard.Baseline{
			Cohort: cohort,
			Period: period,
			Values: make(map[string]float64),
		}
		for rows.Next() {
			var basis, learnerID string
			var value float64
			if err := rows.Scan(&basis, &learnerID, &value, &b.RecordedAt); err != nil {
				return nil, fmt.Errorf("failed to scan baseline: %w", err)
			}
			b.Basis = leaderboard.Basis(basis)
			b.Values[learnerID] = value
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate baseline: %w", err)
		}

		if len(b.Values) == 0 {
			return nil, retry.Permanent(leaderboard.ErrBaselineNotFound)
		}
		b.RecordedAt = b.RecordedAt.UTC()
		return b, nil
	})
}
