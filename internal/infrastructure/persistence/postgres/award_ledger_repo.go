package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Oyasikelly/QuizMentor-sub000/config"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/progress"
	"github.com/Oyasikelly/QuizMentor-sub000/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// AWARD LEDGER REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// AwardLedgerRepository implements progress.AwardLedger for PostgreSQL.
type AwardLedgerRepository struct {
	conn    *Connection
	retrier *retry.Retrier
}

// NewAwardLedgerRepository creates a new AwardLedgerRepository.
func NewAwardLedgerRepository(conn *Connection, cfg config.ResilienceConfig) *AwardLedgerRepository {
	return &AwardLedgerRepository{
		conn:    conn,
		retrier: readRetrier(cfg),
	}
}

// ListByLearner returns every recorded award of the learner.
func (r *AwardLedgerRepository) ListByLearner(ctx context.Context, learnerID string) ([]progress.LedgerEntry, error) {
	return retry.DoWithData(ctx, r.retrier, func(ctx context.Context) ([]progress.LedgerEntry, error) {
		ctx, cancel := r.conn.withTimeout(ctx)
		defer cancel()

		rows, err := r.conn.Query(ctx, `
			SELECT learner_id, award_id, rule_id, subject_id, subject_name, earned_at, recorded_at
			FROM award_ledger
			WHERE learner_id = $1
			ORDER BY earned_at, award_id
		`, learnerID)
		if err != nil {
			return nil, fmt.Errorf("failed to query award ledger: %w", err)
		}
		defer rows.Close()

		entries := make([]progress.LedgerEntry, 0)
		for rows.Next() {
			e, err := scanLedgerEntry(rows)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
		return entries, rows.Err()
	})
}

// Append inserts entries that are not yet recorded and returns those it inserted.
// Existing rows keep their earned_at: ON CONFLICT DO NOTHING never overwrites.
func (r *AwardLedgerRepository) Append(ctx context.Context, entries []progress.LedgerEntry) ([]progress.LedgerEntry, error) {
	if len(entries) == 0 {
		return []progress.LedgerEntry{}, nil
	}

	inserted := make([]progress.LedgerEntry, 0, len(entries))
	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, e := range entries {
			batch.Queue(`
				INSERT INTO award_ledger
				(learner_id, award_id, rule_id, subject_id, subject_name, earned_at, recorded_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (learner_id, award_id) DO NOTHING
				RETURNING learner_id, award_id, rule_id, subject_id, subject_name, earned_at, recorded_at
			`,
				e.LearnerID,
				e.Award.ID,
				e.Award.RuleID,
				e.Award.SubjectID,
				e.Award.SubjectName,
				e.Award.EarnedAt.UTC(),
				e.RecordedAt.UTC(),
			)
		}

		br := tx.SendBatch(ctx, batch)
		defer br.Close()

		for range entries {
			e, err := scanLedgerEntry(br.QueryRow())
			if IsNoRows(err) {
				// already recorded
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to insert award: %w", err)
			}
			inserted = append(inserted, e)
		}
		return br.Close()
	})
	if err != nil {
		return nil, err
	}

	return inserted, nil
}

func scanLedgerEntry(row pgx.Row) (progress.LedgerEntry, error) {
	var e progress.LedgerEntry
	err := row.Scan(
		&e.LearnerID,
		&e.Award.ID,
		&e.Award.RuleID,
		&e.Award.SubjectID,
		&e.Award.SubjectName,
		&e.Award.EarnedAt,
		&e.RecordedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return e, err
		}
		return e, fmt.Errorf("failed to scan ledger entry: %w", err)
	}
	e.Award.EarnedAt = e.Award.EarnedAt.UTC()
	e.RecordedAt = e.RecordedAt.UTC()
	return e, nil
}
