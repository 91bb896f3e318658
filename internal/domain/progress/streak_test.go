package progress

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/attempt"
)

func TestCalculateStreak_Empty(t *testing.T) {
	s := CalculateStreak(nil, day(2024, 1, 10), DefaultStreakOptions())

	assert.Equal(t, 0, s.CurrentStreak)
	assert.Equal(t, 0, s.LongestStreak)
	assert.Len(t, s.WeeklyActivity, WeeklyWindowDays)
	assert.Equal(t, MonthlyGoal{Target: DefaultMonthlyTarget}, s.MonthlyGoal)
}

func TestCalculateStreak_RunsAndGaps(t *testing.T) {
	records := []attempt.Record{
		completed("a1", "q1", "m", 50, 100, day(2024, 1, 1)),
		completed("a2", "q2", "m", 50, 100, day(2024, 1, 2)),
		completed("a3", "q3", "m", 50, 100, day(2024, 1, 3)),
		completed("a4", "q4", "m", 50, 100, day(2024, 1, 3).Add(5*time.Hour)),
		completed("a5", "q5", "m", 50, 100, day(2024, 1, 6)),
		completed("a6", "q6", "m", 50, 100, day(2024, 1, 7)),
	}

	s := CalculateStreak(records, day(2024, 3, 1), DefaultStreakOptions())

	assert.Equal(t, 3, s.LongestStreak)
	assert.Equal(t, 2, s.CurrentStreak, "terminal run is reported regardless of recency")
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-06", "2024-01-07"}, s.ActiveDays)
}

func TestCalculateStreak_ActiveOnlyPolicy(t *testing.T) {
	records := daily(day(2024, 1, 1), "m", 50, 50, 50)
	opts := StreakOptions{Policy: StreakPolicyActiveOnly}

	stale := CalculateStreak(records, day(2024, 1, 10), opts)
	assert.Equal(t, 0, stale.CurrentStreak)
	assert.Equal(t, 3, stale.LongestStreak)

	yesterday := CalculateStreak(records, day(2024, 1, 4), opts)
	assert.Equal(t, 3, yesterday.CurrentStreak)
}

func TestCalculateStreak_UsesUTCDays(t *testing.T) {
	plus5 := time.FixedZone("UTC+5", 5*60*60)
	records := []attempt.Record{
		completed("a1", "q1", "m", 50, 100, time.Date(2024, 1, 2, 1, 0, 0, 0, plus5)), // Jan 1 UTC
		completed("a2", "q2", "m", 50, 100, time.Date(2024, 1, 2, 12, 0, 0, 0, plus5)),
	}

	s := CalculateStreak(records, day(2024, 1, 2), DefaultStreakOptions())
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, s.ActiveDays)
	assert.Equal(t, 2, s.CurrentStreak)
}

func TestCalculateStreak_WeeklyActivity(t *testing.T) {
	now := day(2024, 1, 10)
	records := []attempt.Record{
		completed("a1", "q1", "m", 50, 100, day(2024, 1, 10)),
		completed("a2", "q2", "m", 50, 100, day(2024, 1, 10).Add(time.Hour)),
		completed("a3", "q3", "m", 50, 100, day(2024, 1, 4)),
		completed("old", "q4", "m", 50, 100, day(2024, 1, 3)),
	}

	s := CalculateStreak(records, now, DefaultStreakOptions())

	require.Len(t, s.WeeklyActivity, 7)
	assert.Equal(t, "2024-01-04", s.WeeklyActivity[0].Date)
	assert.Equal(t, 1, s.WeeklyActivity[0].QuizzesCompleted)
	assert.Equal(t, 15, s.WeeklyActivity[0].StudyTime)
	assert.Equal(t, 0, s.WeeklyActivity[3].QuizzesCompleted)
	assert.Equal(t, "2024-01-10", s.WeeklyActivity[6].Date)
	assert.Equal(t, 2, s.WeeklyActivity[6].QuizzesCompleted)
	assert.Equal(t, 30, s.WeeklyActivity[6].StudyTime)
}

func TestCalculateStreak_MonthlyGoal(t *testing.T) {
	records := daily(day(2024, 1, 25), "m", 50, 50, 50, 50, 50, 50, 50) // Jan 25..31
	s := CalculateStreak(records, day(2024, 1, 31), StreakOptions{MonthlyTarget: 4})
	assert.Equal(t, MonthlyGoal{Target: 4, Achieved: 7, Percentage: 100}, s.MonthlyGoal)

	s = CalculateStreak(records[:3], day(2024, 1, 31), DefaultStreakOptions())
	assert.Equal(t, MonthlyGoal{Target: 20, Achieved: 3, Percentage: 15}, s.MonthlyGoal)

	// A new month starts from zero.
	s = CalculateStreak(records, day(2024, 2, 1), DefaultStreakOptions())
	assert.Equal(t, 0, s.MonthlyGoal.Achieved)
}

func TestCalculateStreak_LongestNeverBelowCurrent(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	base := day(2024, 1, 1)

	for i := 0; i < 200; i++ {
		n := rng.IntN(30)
		records := make([]attempt.Record, 0, n)
		for j := 0; j < n; j++ {
			records = append(records, completed("a", "q", "m", 50, 100, base.AddDate(0, 0, rng.IntN(40))))
		}
		for _, policy := range []StreakPolicy{StreakPolicyTerminalRun, StreakPolicyActiveOnly} {
			s := CalculateStreak(records, base.AddDate(0, 0, 40), StreakOptions{Policy: policy})
			assert.GreaterOrEqual(t, s.LongestStreak, s.CurrentStreak)
		}
	}
}
