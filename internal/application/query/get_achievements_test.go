package query

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Oyasikelly/QuizMentor-sub000/config"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/attempt"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/progress"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/shared"
)

func newAchievementsHandler(src *mockSource, opts ...GetAchievementsOption) *GetAchievementsHandler {
	opts = append([]GetAchievementsOption{WithAchievementsClock(fixedClock)}, opts...)
	return NewGetAchievementsHandler(src, progress.NewAnalyzer(nil, progress.DefaultStreakOptions()), nil, opts...)
}

func achievementIDs(dto *AchievementsDTO) []string {
	ids := make([]string, 0, len(dto.Achievements))
	for _, a := range dto.Achievements {
		ids = append(ids, a.ID)
	}
	return ids
}

func badge(dto *AchievementsDTO, id string) (BadgeDTO, bool) {
	for _, b := range dto.Badges {
		if b.ID == id {
			return b, true
		}
	}
	return BadgeDTO{}, false
}

func TestGetAchievements_RejectsMissingLearner(t *testing.T) {
	src := &mockSource{}
	_, err := newAchievementsHandler(src).Handle(context.Background(), GetAchievementsQuery{})
	assert.True(t, shared.IsInvalidRequest(err))
	src.AssertNotCalled(t, "ListByLearner", mock.Anything, mock.Anything)
}

func TestGetAchievements_ThreePerfectDays(t *testing.T) {
	src := &mockSource{}
	src.On("ListByLearner", mock.Anything, "l1").Return(threePerfectDays("l1"), nil)

	dto, err := newAchievementsHandler(src).Handle(context.Background(), GetAchievementsQuery{LearnerID: "l1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"first-quiz", "mastery-math"}, achievementIDs(dto))
	assert.Equal(t, day(1), dto.Achievements[0].EarnedAt)

	perfect, ok := badge(dto, "perfect-score")
	require.True(t, ok)
	require.NotNil(t, perfect.EarnedAt)
	assert.Equal(t, day(1), *perfect.EarnedAt)

	ten, ok := badge(dto, "ten-quizzes")
	require.True(t, ok)
	assert.Nil(t, ten.EarnedAt)

	require.Len(t, dto.Streaks, 1)
	assert.Equal(t, 3, dto.Streaks[0].CurrentStreak)
	assert.Equal(t, 3, dto.Streaks[0].LongestStreak)
	assert.Len(t, dto.Streaks[0].WeeklyActivity, 7)
	assert.Equal(t, 3, dto.Streaks[0].MonthlyGoal.Achieved)
	assert.Equal(t, 15, dto.Streaks[0].MonthlyGoal.Percentage)
	assert.Len(t, dto.PerformanceMetrics, 3)
}

func TestGetAchievements_ImprovementThreshold(t *testing.T) {
	cases := []struct {
		last  int
		fires bool
	}{
		{last: 70, fires: true},
		{last: 60, fires: true},
		{last: 55, fires: false},
	}
	for _, tc := range cases {
		src := &mockSource{}
		src.On("ListByLearner", mock.Anything, "l1").Return([]attempt.Record{
			done("a1", "l1", "q1", "", 50, 100, day(1)),
			done("a2", "l1", "q2", "", tc.last, 100, day(4)),
		}, nil)

		dto, err := newAchievementsHandler(src).Handle(context.Background(), GetAchievementsQuery{LearnerID: "l1"})
		require.NoError(t, err)
		assert.Equal(t, tc.fires, contains(achievementIDs(dto), "improvement"), "last=%d", tc.last)
	}
}

func TestGetAchievements_EmptyHistoryKeepsShape(t *testing.T) {
	src := &mockSource{}
	src.On("ListByLearner", mock.Anything, "l1").Return(nil, nil)

	dto, err := newAchievementsHandler(src).Handle(context.Background(), GetAchievementsQuery{LearnerID: "l1"})
	require.NoError(t, err)
	assert.Empty(t, dto.Achievements)
	assert.NotEmpty(t, dto.Badges)
	for _, b := range dto.Badges {
		assert.Nil(t, b.EarnedAt, b.ID)
	}

	raw, err := json.Marshal(dto)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"achievements":[]`)
	assert.Contains(t, string(raw), `"performanceMetrics":[]`)
	assert.Contains(t, string(raw), `"earnedAt":null`)
}

func TestGetAchievements_LedgerReconciliation(t *testing.T) {
	src := &mockSource{}
	src.On("ListByLearner", mock.Anything, "l1").Return(threePerfectDays("l1"), nil)

	firstEarned := day(1).Add(-48 * time.Hour)
	ledger := &mockLedger{}
	ledger.On("ListByLearner", mock.Anything, "l1").Return([]progress.LedgerEntry{
		{LearnerID: "l1", Award: progress.NewAward(progress.RuleFirstQuiz, "", "", firstEarned), RecordedAt: firstEarned},
		{LearnerID: "l1", Award: progress.NewAward(progress.RuleTenQuizzes, "", "", day(2)), RecordedAt: day(2)},
	}, nil)

	mastery := progress.NewAward(progress.RuleMastery, "math", "Subject math", day(1))
	ledger.On("Append", mock.Anything, mock.MatchedBy(func(entries []progress.LedgerEntry) bool {
		return len(entries) == 2
	})).Return([]progress.LedgerEntry{{LearnerID: "l1", Award: mastery, RecordedAt: fixedNow}}, nil)

	pub := &mockPublisher{}
	pub.On("Publish", mock.MatchedBy(func(e shared.Event) bool {
		ev, ok := e.(shared.AwardEarnedEvent)
		return ok && ev.AwardID == "mastery-math" && ev.RuleID == progress.RuleMastery
	})).Return(nil).Once()

	dto, err := newAchievementsHandler(src, WithAwardLedger(ledger, pub)).Handle(context.Background(), GetAchievementsQuery{LearnerID: "l1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"first-quiz", "mastery-math", "ten-quizzes"}, achievementIDs(dto))
	assert.Equal(t, firstEarned, dto.Achievements[0].EarnedAt)

	ledger.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestGetAchievements_LedgerAppendFailureStillAnswers(t *testing.T) {
	src := &mockSource{}
	src.On("ListByLearner", mock.Anything, "l1").Return(threePerfectDays("l1"), nil)

	ledger := &mockLedger{}
	ledger.On("ListByLearner", mock.Anything, "l1").Return(nil, nil)
	ledger.On("Append", mock.Anything, mock.Anything).Return(nil, errors.New("write failed"))
	pub := &mockPublisher{}

	dto, err := newAchievementsHandler(src, WithAwardLedger(ledger, pub)).Handle(context.Background(), GetAchievementsQuery{LearnerID: "l1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"first-quiz", "mastery-math"}, achievementIDs(dto))
	pub.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestGetAchievements_LedgerReadFailure(t *testing.T) {
	src := &mockSource{}
	src.On("ListByLearner", mock.Anything, "l1").Return(threePerfectDays("l1"), nil)
	ledger := &mockLedger{}
	ledger.On("ListByLearner", mock.Anything, "l1").Return(nil, errors.New("read failed"))

	_, err := newAchievementsHandler(src, WithAwardLedger(ledger, nil)).Handle(context.Background(), GetAchievementsQuery{LearnerID: "l1"})
	assert.True(t, shared.IsUpstreamFailure(err))
}

func TestGetAchievements_FeatureFlags(t *testing.T) {
	src := &mockSource{}
	src.On("ListByLearner", mock.Anything, mock.Anything).Return(threePerfectDays("l1"), nil)

	flags := config.NewFeatureFlags()
	require.NoError(t, flags.DisableFeature(config.FeatureStreaks))
	h := newAchievementsHandler(src, WithAchievementsFeatures(flags))

	dto, err := h.Handle(context.Background(), GetAchievementsQuery{LearnerID: "l1"})
	require.NoError(t, err)
	assert.Empty(t, dto.Streaks)
	assert.NotNil(t, dto.Streaks)

	flags.SetLearnerOverride("l2", config.FeatureAchievements, false)
	_, err = h.Handle(context.Background(), GetAchievementsQuery{LearnerID: "l2"})
	assert.ErrorIs(t, err, ErrFeatureDisabled)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
