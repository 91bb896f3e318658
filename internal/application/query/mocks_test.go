package query

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/attempt"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/leaderboard"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/progress"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/shared"
)

type mockSource struct{ mock.Mock }

func (m *mockSource) ListByLearner(ctx context.Context, learnerID string) ([]attempt.Record, error) {
	args := m.Called(ctx, learnerID)
	records, _ := args.Get(0).([]attempt.Record)
	return records, args.Error(1)
}

type mockCohorts struct{ mock.Mock }

func (m *mockCohorts) CohortOf(ctx context.Context, learnerID string) (leaderboard.Member, error) {
	args := m.Called(ctx, learnerID)
	return args.Get(0).(leaderboard.Member), args.Error(1)
}

func (m *mockCohorts) Members(ctx context.Context, cohort string) ([]leaderboard.Member, error) {
	args := m.Called(ctx, cohort)
	members, _ := args.Get(0).([]leaderboard.Member)
	return members, args.Error(1)
}

func (m *mockCohorts) ListCohorts(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	cohorts, _ := args.Get(0).([]string)
	return cohorts, args.Error(1)
}

type mockBaselines struct{ mock.Mock }

func (m *mockBaselines) Save(ctx context.Context, b *leaderboard.Baseline) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockBaselines) Load(ctx context.Context, cohort, period string) (*leaderboard.Baseline, error) {
	args := m.Called(ctx, cohort, period)
	b, _ := args.Get(0).(*leaderboard.Baseline)
	return b, args.Error(1)
}

type mockLedger struct{ mock.Mock }

func (m *mockLedger) ListByLearner(ctx context.Context, learnerID string) ([]progress.LedgerEntry, error) {
	args := m.Called(ctx, learnerID)
	entries, _ := args.Get(0).([]progress.LedgerEntry)
	return entries, args.Error(1)
}

func (m *mockLedger) Append(ctx context.Context, entries []progress.LedgerEntry) ([]progress.LedgerEntry, error) {
	args := m.Called(ctx, entries)
	inserted, _ := args.Get(0).([]progress.LedgerEntry)
	return inserted, args.Error(1)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(event shared.Event) error {
	return m.Called(event).Error(0)
}

type memoryStatsCache struct {
	data map[string]StatsDTO
	puts int
}

func (c *memoryStatsCache) Get(_ context.Context, learnerID string, dest any) (bool, error) {
	v, ok := c.data[learnerID]
	if !ok {
		return false, nil
	}
	*(dest.(*StatsDTO)) = v
	return true, nil
}

func (c *memoryStatsCache) Put(_ context.Context, learnerID string, value any) error {
	c.puts++
	c.data[learnerID] = value.(StatsDTO)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Fixtures
// ─────────────────────────────────────────────────────────────────────────────

var fixedNow = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func day(d int) time.Time {
	return time.Date(2024, 1, d, 10, 0, 0, 0, time.UTC)
}

func done(id, learnerID, quizID, subject string, score, total int, at time.Time) attempt.Record {
	return attempt.Record{
		ID:          id,
		LearnerID:   learnerID,
		QuizID:      quizID,
		QuizTitle:   "Quiz " + quizID,
		SubjectID:   subject,
		SubjectName: "Subject " + subject,
		Score:       shared.Some(score),
		TotalPoints: total,
		CompletedAt: shared.Some(at),
		CreatedAt:   at.Add(-10 * time.Minute),
	}
}

// threePerfectDays - попытки 1-3 января по 100/100.
func threePerfectDays(learnerID string) []attempt.Record {
	return []attempt.Record{
		done("a1", learnerID, "q1", "math", 100, 100, day(1)),
		done("a2", learnerID, "q2", "math", 100, 100, day(2)),
		done("a3", learnerID, "q3", "math", 100, 100, day(3)),
	}
}
