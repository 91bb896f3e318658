package postgres

import (
	"context"
	"fmt"

	"github.com/Oyasikelly/QuizMentor-sub000/config"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/leaderboard"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/shared"
	"github.com/Oyasikelly/QuizMentor-sub000/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// COHORT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// CohortRepository implements leaderboard.CohortRepository for PostgreSQL.
type CohortRepository struct {
	conn    *Connection
	retrier *retry.Retrier
}

// NewCohortRepository creates a new CohortRepository.
func NewCohortRepository(conn *Connection, cfg config.ResilienceConfig) *CohortRepository {
	return &CohortRepository{
		conn:    conn,
		retrier: readRetrier(cfg),
	}
}

// CohortOf returns the learner profile without attempts.
func (r *CohortRepository) CohortOf(ctx context.Context, learnerID string) (leaderboard.Member, error) {
	return retry.DoWithData(ctx, r.retrier, func(ctx context.Context) (leaderboard.Member, error) {
		ctx, cancel := r.conn.withTimeout(ctx)
		defer cancel()

		m := leaderboard.Member{}
		err := r.conn.QueryRow(ctx, `
			SELECT id, display_name, cohort
			FROM learners
			WHERE id = $1
		`, learnerID).Scan(&m.LearnerID, &m.DisplayName, &m.Cohort)

		if IsNoRows(err) {
			return leaderboard.Member{}, retry.Permanent(shared.ErrLearnerNotFound)
		}
		if err != nil {
			return leaderboard.Member{}, fmt.Errorf("failed to get learner: %w", err)
		}
		return m, nil
	})
}

// Members returns all cohort members with their attempts.
// Two round trips regardless of cohort size.
func (r *CohortRepository) Members(ctx context.Context, cohort string) ([]leaderboard.Member, error) {
	return retry.DoWithData(ctx, r.retrier, func(ctx context.Context) ([]leaderboard.Member, error) {
		ctx, cancel := r.conn.withTimeout(ctx)
		defer cancel()

		rows, err := r.conn.Query(ctx, `
			SELECT id, display_name, cohort
			FROM learners
			WHERE cohort = $1
			ORDER BY id
		`, cohort)
		if err != nil {
			return nil, fmt.Errorf("failed to query cohort members: %w", err)
		}

		members := make([]leaderboard.Member, 0)
		index := make(map[string]int)
		ids := make([]string, 0)
		for rows.Next() {
			var m leaderboard.Member
			if err := rows.Scan(&m.LearnerID, &m.DisplayName, &m.Cohort); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan member: %w", err)
			}
			index[m.LearnerID] = len(members)
			ids = append(ids, m.LearnerID)
			members = append(members, m)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate members: %w", err)
		}

		if len(ids) == 0 {
			return members, nil
		}

		attemptRows, err := r.conn.Query(ctx, `SELECT `+attemptColumns+`
			FROM quiz_attempts
			WHERE learner_id = ANY($1)
			ORDER BY learner_id, created_at, id
		`, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to query cohort attempts: %w", err)
		}
		defer attemptRows.Close()

		records, err := scanAttempts(attemptRows)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			if i, ok := index[rec.LearnerID]; ok {
				members[i].Attempts = append(members[i].Attempts, rec)
			}
		}

		return members, nil
	})
}

// ListCohorts returns every cohort with at least one learner.
func (r *CohortRepository) ListCohorts(ctx context.Context) ([]string, error) {
	return retry.DoWithData(ctx, r.retrier, func(ctx context.Context) ([]string, error) {
		ctx, cancel := r.conn.withTimeout(ctx)
		defer cancel()

		rows, err := r.conn.Query(ctx, `SELECT DISTINCT cohort FROM learners ORDER BY cohort`)
		if err != nil {
			return nil, fmt.Errorf("failed to query cohorts: %w", err)
		}
		defer rows.Close()

		cohorts := make([]string, 0)
		for rows.Next() {
			var c string
			if err := rows.Scan(&c); err != nil {
				return nil, fmt.Errorf("failed to scan cohort: %w", err)
			}
			cohorts = append(cohorts, c)
		}
		return cohorts, rows.Err()
	})
}
