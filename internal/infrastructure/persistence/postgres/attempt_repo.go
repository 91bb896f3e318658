package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Oyasikelly/QuizMentor-sub000/config"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/attempt"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/shared"
	"github.com/Oyasikelly/QuizMentor-sub000/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// ATTEMPT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// AttemptRepository implements attempt.Source for PostgreSQL.
type AttemptRepository struct {
	conn    *Connection
	retrier *retry.Retrier
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(conn *Connection, cfg config.ResilienceConfig) *AttemptRepository {
	return &AttemptRepository{
		conn:    conn,
		retrier: readRetrier(cfg),
	}
}

const attemptColumns = `
	id, learner_id, quiz_id, quiz_title, subject_id, subject_name,
	score, total_points, completed_at, created_at
`

// ListByLearner returns every attempt of the learner, in progress ones included.
// An unknown learner yields an empty slice.
func (r *AttemptRepository) ListByLearner(ctx context.Context, learnerID string) ([]attempt.Record, error) {
	query := `SELECT ` + attemptColumns + `
		FROM quiz_attempts
		WHERE learner_id = $1
		ORDER BY created_at, id
	`

	return retry.DoWithData(ctx, r.retrier, func(ctx context.Context) ([]attempt.Record, error) {
		ctx, cancel := r.conn.withTimeout(ctx)
		defer cancel()

		rows, err := r.conn.Query(ctx, query, learnerID)
		if err != nil {
			return nil, fmt.Errorf("failed to query attempts: %w", err)
		}
		defer rows.Close()

		return scanAttempts(rows)
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

func scanAttempt(row pgx.Row) (attempt.Record, error) {
	var rec attempt.Record
	var score *int
	var completedAt *time.Time

	err := row.Scan(
		&rec.ID,
		&rec.LearnerID,
		&rec.QuizID,
		&rec.QuizTitle,
		&rec.SubjectID,
		&rec.SubjectName,
		&score,
		&rec.TotalPoints,
		&completedAt,
		&rec.CreatedAt,
	)
	if err != nil {
		return attempt.Record{}, fmt.Errorf("failed to scan attempt: %w", err)
	}

	rec.Score = shared.FromPtr(score)
	rec.CompletedAt = shared.FromPtr(completedAt)
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, nil
}

func scanAttempts(rows pgx.Rows) ([]attempt.Record, error) {
	records := make([]attempt.Record, 0)
	for rows.Next() {
		rec, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attempts: %w", err)
	}
	return records, nil
}
