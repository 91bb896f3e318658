package leaderboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cohortOf(points ...int) []Standing {
	names := []string{"ada", "bob", "cyd", "dee", "eve", "fay", "gus"}
	out := make([]Standing, len(points))
	for i, p := range points {
		out[i] = Standing{LearnerID: names[i], DisplayName: names[i], TotalPoints: p, AverageScore: float64(p) / 2}
	}
	return out
}

func TestRank_SharedRanksOnTies(t *testing.T) {
	cohort := cohortOf(100, 80, 80, 50, 10)
	svc := NewService(Options{})

	bob := svc.Rank(cohort[1], cohort, nil, 0)
	cyd := svc.Rank(cohort[2], cohort, nil, 0)
	dee := svc.Rank(cohort[3], cohort, nil, 0)

	assert.Equal(t, Rank(2), bob.Rank)
	assert.Equal(t, Rank(2), cyd.Rank)
	assert.Equal(t, Rank(4), dee.Rank)
	assert.Equal(t, 5, bob.CohortSize)
	assert.Equal(t, 80, bob.Percentile)
	assert.Equal(t, 40, dee.Percentile)

	ranks := make([]Rank, 0, len(bob.Leaderboard))
	for _, e := range bob.Leaderboard {
		ranks = append(ranks, e.Rank)
	}
	assert.Equal(t, []Rank{1, 2, 2, 4, 5}, ranks)
}

func TestRank_LearnerAlwaysInCohort(t *testing.T) {
	svc := NewService(Options{})
	solo := Standing{LearnerID: "zed", DisplayName: "zed", TotalPoints: 0}

	res := svc.Rank(solo, nil, nil, 0)
	assert.Equal(t, Rank(1), res.Rank)
	assert.Equal(t, 1, res.CohortSize)
	assert.Equal(t, 100, res.Percentile)
	assert.Equal(t, TrendNeutral, res.Trend)

	res = svc.Rank(solo, cohortOf(30, 20), nil, 0)
	assert.Equal(t, Rank(3), res.Rank)
	assert.Equal(t, 3, res.CohortSize)
	assert.Equal(t, 33, res.Percentile)
}

func TestRank_UsesFreshLearnerStanding(t *testing.T) {
	svc := NewService(Options{})
	cohort := cohortOf(100, 10)
	fresh := cohort[1]
	fresh.TotalPoints = 150

	res := svc.Rank(fresh, cohort, nil, 0)

	assert.Equal(t, Rank(1), res.Rank)
	assert.Equal(t, 2, res.CohortSize)
}

func TestRank_AverageScoreBasis(t *testing.T) {
	svc := NewService(Options{Basis: BasisAverageScore})
	cohort := []Standing{
		{LearnerID: "a", TotalPoints: 500, AverageScore: 60},
		{LearnerID: "b", TotalPoints: 100, AverageScore: 95},
	}

	res := svc.Rank(cohort[0], cohort, nil, 0)

	assert.Equal(t, Rank(2), res.Rank)
	assert.Equal(t, 77.5, res.Peer.CohortAverage)
	assert.Equal(t, 60.0, res.Peer.LearnerAverage)
	assert.Equal(t, 50, res.Peer.Percentile)
}

func TestRank_TrendAgainstBaseline(t *testing.T) {
	svc := NewService(Options{})
	cohort := cohortOf(100, 80, 80)
	baseline := NewBaseline("c1", "2024-W01", BasisTotalPoints, cohortOf(90, 80, 95), time.Now())

	res := svc.Rank(cohort[0], cohort, baseline, 0)
	assert.Equal(t, TrendUp, res.Trend)

	trends := map[string]Trend{}
	for _, e := range res.Leaderboard {
		trends[e.LearnerID] = e.Trend
	}
	assert.Equal(t, map[string]Trend{"ada": TrendUp, "bob": TrendNeutral, "cyd": TrendDown}, trends)

	newcomer := Standing{LearnerID: "new", TotalPoints: 5}
	assert.Equal(t, TrendNeutral, svc.Rank(newcomer, cohort, baseline, 0).Trend)
}

func TestRank_LeaderboardLimit(t *testing.T) {
	svc := NewService(Options{Limit: 2})
	cohort := cohortOf(10, 20, 30, 40)

	res := svc.Rank(cohort[0], cohort, nil, 0)
	require.Len(t, res.Leaderboard, 2)
	assert.Equal(t, "dee", res.Leaderboard[0].LearnerID)

	res = svc.Rank(cohort[0], cohort, nil, 3)
	assert.Len(t, res.Leaderboard, 3)
}

func TestPercentile(t *testing.T) {
	assert.Equal(t, 100, Percentile(1, 5))
	assert.Equal(t, 20, Percentile(5, 5))
	assert.Equal(t, 0, Percentile(0, 5))
	assert.Equal(t, 0, Percentile(1, 0))
}

func TestParseBasis(t *testing.T) {
	b, err := ParseBasis("")
	require.NoError(t, err)
	assert.Equal(t, BasisTotalPoints, b)

	_, err = ParseBasis("xp")
	assert.ErrorIs(t, err, ErrInvalidBasis)
}

func TestPeriodKeys(t *testing.T) {
	jan3 := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-W01", PeriodWeek.Key(jan3))
	assert.Equal(t, "2023-W52", PeriodWeek.PreviousKey(jan3))
	assert.Equal(t, "2024-01", PeriodMonth.Key(jan3))
	assert.Equal(t, "2023-12", PeriodMonth.PreviousKey(jan3))

	p, err := ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, PeriodWeek, p)
	_, err = ParsePeriod("day")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestBaseline_NilSafe(t *testing.T) {
	var b *Baseline
	_, ok := b.Value("x")
	assert.False(t, ok)
	assert.Equal(t, 0, b.Count())
}
