package progress

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/attempt"
)

func TestAnalyze_ThreePerfectDays(t *testing.T) {
	records := daily(day(2024, 1, 1), "math", 100, 100, 100)

	report := analyze(records, day(2024, 1, 3))

	assert.Equal(t, 3, report.Streak.LongestStreak)
	assert.Equal(t, 3, report.Streak.CurrentStreak)

	ids := awardIDs(report.Awards)
	assert.Contains(t, ids, RuleFirstQuiz)
	assert.Contains(t, ids, RulePerfectScore)
	assert.NotContains(t, ids, RuleTenQuizzes)
	assert.NotContains(t, ids, RuleImprovement)

	show := DefaultCatalog().Showcase(report.Awards)
	var perfect *Badge
	for i := range show.Badges {
		if show.Badges[i].ID == RulePerfectScore {
			perfect = &show.Badges[i]
		}
	}
	require.NotNil(t, perfect)
	earnedAt, ok := perfect.EarnedAt.Get()
	require.True(t, ok)
	assert.Equal(t, day(2024, 1, 1), earnedAt)

	for _, a := range show.Achievements {
		assert.NotEqual(t, RulePerfectScore, a.ID, "perfect score is badge only")
	}
}

func TestAnalyze_SingleLowScore(t *testing.T) {
	report := analyze(daily(day(2024, 1, 1), "math", 40), day(2024, 1, 1))

	assert.Equal(t, []string{RuleFirstQuiz}, awardIDs(report.Awards))
}

func TestImprovementRule(t *testing.T) {
	tests := []struct {
		name   string
		scores []int
		fires  bool
	}{
		{"twenty percent gain", []int{50, 70}, true},
		{"exactly twenty percent", []int{50, 60}, true},
		{"small gain", []int{50, 55}, false},
		{"zero first score", []int{0, 90}, false},
		{"single attempt", []int{50}, false},
		{"only first and last count", []int{50, 10, 60}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := analyze(daily(day(2024, 2, 1), "bio", tt.scores...), day(2024, 2, 10))
			if tt.fires {
				assert.Contains(t, awardIDs(report.Awards), RuleImprovement)
			} else {
				assert.NotContains(t, awardIDs(report.Awards), RuleImprovement)
			}
		})
	}
}

func TestMasteryRule_OncePerSubject(t *testing.T) {
	records := daily(day(2024, 3, 1), "X", 90, 94, 90, 94, 90, 94, 90, 94, 90, 94)
	engine := DefaultEngine()
	now := day(2024, 3, 20)

	first := NewAnalyzer(engine, DefaultStreakOptions()).Analyze(records, now)
	second := NewAnalyzer(engine, DefaultStreakOptions()).Analyze(records, now)

	mastery := 0
	for _, a := range first.Awards {
		if a.RuleID == RuleMastery {
			mastery++
			assert.Equal(t, "mastery-X", a.ID)
			assert.Equal(t, day(2024, 3, 1), a.EarnedAt)
		}
	}
	assert.Equal(t, 1, mastery)
	assert.Equal(t, first.Awards, second.Awards)

	require.Len(t, first.Mastery, 1)
	assert.InDelta(t, 92.0, first.Mastery[0].AverageScore, 1e-9)
	assert.Contains(t, awardIDs(first.Awards), RuleTenQuizzes)
}

func TestMasteryRule_MultipleSubjects(t *testing.T) {
	records := append(
		daily(day(2024, 3, 1), "X", 95, 95),
		completed("b1", "qb1", "Y", 91, 100, day(2024, 3, 2)),
		completed("b2", "qb2", "Z", 40, 100, day(2024, 3, 2)),
	)

	report := analyze(records, day(2024, 3, 3))

	ids := awardIDs(report.Awards)
	assert.Contains(t, ids, "mastery-X")
	assert.Contains(t, ids, "mastery-Y")
	assert.NotContains(t, ids, "mastery-Z")
}

func TestMasteryRule_UsesQuizScale(t *testing.T) {
	var records []attempt.Record
	for i := 0; i < 5; i++ {
		records = append(records, completed(fmt.Sprintf("s%d", i), fmt.Sprintf("qs%d", i), "x", 10, 10, day(2024, 3, 1+i)))
	}
	records = append(records,
		completed("h1", "qh1", "y", 18, 20, day(2024, 3, 2)),
		completed("h2", "qh2", "y", 17, 20, day(2024, 3, 3)),
	)

	report := analyze(records, day(2024, 3, 6))

	ids := awardIDs(report.Awards)
	assert.Contains(t, ids, "mastery-x")
	assert.Contains(t, ids, RulePerfectScore)
	assert.NotContains(t, ids, "mastery-y")

	require.Len(t, report.Mastery, 2)
	assert.InDelta(t, 100.0, report.Mastery[0].AverageScore, 1e-9)
	assert.InDelta(t, 87.5, report.Mastery[1].AverageScore, 1e-9)
}

func TestTenQuizzesAndStreak_EarnedAt(t *testing.T) {
	records := daily(day(2024, 4, 1), "m", 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10)

	report := analyze(records, day(2024, 4, 11))

	byID := make(map[string]Award)
	for _, a := range report.Awards {
		byID[a.ID] = a
	}
	assert.Equal(t, day(2024, 4, 10), byID[RuleTenQuizzes].EarnedAt)
	assert.Equal(t, day(2024, 4, 11), byID[RuleSevenDayStreak].EarnedAt)
	assert.Equal(t, day(2024, 4, 1), byID[RuleFirstQuiz].EarnedAt)
}

func TestEngine_Idempotent(t *testing.T) {
	records := append(daily(day(2024, 1, 1), "m", 100, 80, 95, 99, 100, 100, 100, 100),
		inProgress("open", "qx", day(2024, 1, 9)))
	engine := DefaultEngine()

	a := NewAnalyzer(engine, DefaultStreakOptions()).Analyze(records, day(2024, 1, 9))
	b := NewAnalyzer(engine, DefaultStreakOptions()).Analyze(records, day(2024, 1, 9))

	assert.Equal(t, awardIDs(a.Awards), awardIDs(b.Awards))
	assert.Equal(t, engine.Catalog().Showcase(a.Awards), engine.Catalog().Showcase(b.Awards))
}

func TestEngine_ThresholdAwardsAreMonotonic(t *testing.T) {
	// Scores fall after the perfect start; threshold awards must survive.
	scores := []int{100, 100, 100, 100, 100, 100, 100, 20, 10, 0, 0, 5}
	all := daily(day(2024, 5, 1), "m", scores...)
	monotonic := []string{RuleFirstQuiz, RuleTenQuizzes, RuleSevenDayStreak, RulePerfectScore}

	held := map[string]bool{}
	for n := 1; n <= len(all); n++ {
		report := analyze(all[:n], day(2024, 6, 1))
		ids := awardIDs(report.Awards)
		for _, rule := range monotonic {
			if held[rule] {
				assert.Contains(t, ids, rule, "prefix %d dropped %s", n, rule)
			}
			for _, id := range ids {
				if id == rule {
					held[rule] = true
				}
			}
		}
	}
	for _, rule := range monotonic {
		assert.True(t, held[rule], rule)
	}
}

func TestShowcase_BadgeShelf(t *testing.T) {
	catalog := DefaultCatalog()

	empty := catalog.Showcase(nil)
	assert.Empty(t, empty.Achievements)
	require.Len(t, empty.Badges, len(catalog.All()))
	for _, b := range empty.Badges {
		assert.False(t, b.EarnedAt.IsPresent(), b.ID)
		assert.NotEmpty(t, b.Requirements)
	}
	assert.Equal(t, "mastery", empty.Badges[4].ID)

	awards := []Award{
		NewAward(RuleMastery, "bio", "Biology", day(2024, 1, 2)),
		NewAward(RuleMastery, "chem", "", day(2024, 1, 1)),
		NewAward(RuleFirstQuiz, "", "", day(2024, 1, 1)),
		NewAward("retired-rule", "", "", day(2024, 1, 1)),
	}
	show := catalog.Showcase(awards)

	require.Len(t, show.Achievements, 3)
	assert.Equal(t, RuleFirstQuiz, show.Achievements[0].ID)
	assert.Equal(t, "mastery-chem", show.Achievements[1].ID)
	assert.Equal(t, "Mastery: chem", show.Achievements[1].Title)
	assert.Equal(t, "Mastery: Biology", show.Achievements[2].Title)
	assert.Equal(t, CelebrationSpecial, show.Achievements[2].CelebrationLevel)
	assert.Equal(t, 25, show.Achievements[2].Points)

	// Six catalog entries, mastery expanded to two subjects.
	assert.Len(t, show.Badges, len(catalog.All())+1)
}

func TestNewEngine_DropsRulesOutsideCatalog(t *testing.T) {
	custom := RuleFunc{RuleID: "unknown", Fn: func(Facts) []Award {
		return []Award{NewAward("unknown", "", "", time.Time{})}
	}}

	engine := NewEngine(DefaultCatalog(), append(DefaultRules(), custom)...)
	awards := engine.Evaluate(Facts{Completed: []attempt.Record{}})

	assert.Empty(t, awards)
}
