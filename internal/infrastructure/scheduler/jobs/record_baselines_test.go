package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/attempt"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/leaderboard"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/shared"
)

type fakeCohorts struct {
	members map[string][]leaderboard.Member
	failing map[string]bool
}

func (f fakeCohorts) CohortOf(context.Context, string) (leaderboard.Member, error) {
	return leaderboard.Member{}, shared.ErrLearnerNotFound
}

func (f fakeCohorts) Members(_ context.Context, cohort string) ([]leaderboard.Member, error) {
	if f.failing[cohort] {
		return nil, errors.New("source down")
	}
	return f.members[cohort], nil
}

func (f fakeCohorts) ListCohorts(context.Context) ([]string, error) {
	return []string{"c1", "c2"}, nil
}

type memoryBaselines struct {
	saved map[string]*leaderboard.Baseline
}

func (m *memoryBaselines) Save(_ context.Context, b *leaderboard.Baseline) error {
	m.saved[b.Cohort+"/"+b.Period] = b
	return nil
}

func (m *memoryBaselines) Load(_ context.Context, cohort, period string) (*leaderboard.Baseline, error) {
	if b, ok := m.saved[cohort+"/"+period]; ok {
		return b, nil
	}
	return nil, leaderboard.ErrBaselineNotFound
}

type capturePublisher struct{ events []shared.Event }

func (c *capturePublisher) Publish(e shared.Event) error {
	c.events = append(c.events, e)
	return nil
}

func member(id string, scores ...int) leaderboard.Member {
	at := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	records := make([]attempt.Record, 0, len(scores))
	for i, s := range scores {
		records = append(records, attempt.Record{
			ID:          id + "-a",
			LearnerID:   id,
			QuizID:      string(rune('a' + i)),
			Score:       shared.Some(s),
			TotalPoints: 100,
			CompletedAt: shared.Some(at.AddDate(0, 0, i)),
			CreatedAt:   at,
		})
	}
	return leaderboard.Member{LearnerID: id, DisplayName: id, Cohort: "c1", Attempts: records}
}

func newJob(cohorts fakeCohorts) (*RecordBaselinesJob, *memoryBaselines, *capturePublisher) {
	store := &memoryBaselines{saved: map[string]*leaderboard.Baseline{}}
	pub := &capturePublisher{}
	job := NewRecordBaselinesJob(cohorts, store, pub, nil, DefaultRecordBaselinesConfig())
	job.now = func() time.Time { return time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC) }
	return job, store, pub
}

func TestRecordBaselines_SnapshotsEveryCohort(t *testing.T) {
	job, store, pub := newJob(fakeCohorts{members: map[string][]leaderboard.Member{
		"c1": {member("l1", 80, 90), member("l2", 50)},
		"c2": {},
	}})

	require.NoError(t, job.Run(context.Background()))

	b, err := store.Load(context.Background(), "c1", "2024-W10")
	require.NoError(t, err)
	assert.Equal(t, leaderboard.BasisTotalPoints, b.Basis)
	v, ok := b.Value("l1")
	assert.True(t, ok)
	assert.Equal(t, 170.0, v)

	empty, err := store.Load(context.Background(), "c2", "2024-W10")
	require.NoError(t, err)
	assert.Zero(t, empty.Count())

	require.Len(t, pub.events, 2)
	assert.Equal(t, shared.EventBaselineRecorded, pub.events[0].EventType())

	stats := job.LastStats()
	require.NotNil(t, stats)
	assert.Equal(t, 2, stats.CohortsRecorded)
	assert.Equal(t, 2, stats.MembersRecorded)
}

func TestRecordBaselines_FailingCohortDoesNotStopOthers(t *testing.T) {
	job, store, _ := newJob(fakeCohorts{
		members: map[string][]leaderboard.Member{"c2": {member("l3", 10)}},
		failing: map[string]bool{"c1": true},
	})

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cohort c1")

	_, err = store.Load(context.Background(), "c2", "2024-W10")
	assert.NoError(t, err)
	assert.Equal(t, []string{"c1"}, job.LastStats().Failed)
}
