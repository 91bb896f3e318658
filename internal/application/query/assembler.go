package query

import (
	"time"

	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/leaderboard"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/progress"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE ASSEMBLER
// Чистое преобразование доменных результатов в ответы API.
// Ни один блок не пропускается: пустые данные отдаются пустыми массивами.
// ══════════════════════════════════════════════════════════════════════════════

// ─────────────────────────────────────────────────────────────────────────────
// Stats
// ─────────────────────────────────────────────────────────────────────────────

// StatsDTO - ответ запроса статистики.
type StatsDTO struct {
	TotalAttempts int     `json:"totalAttempts"`
	AverageScore  float64 `json:"averageScore"`
	TotalPoints   int     `json:"totalPoints"`

	// StudyStreak - самая длинная серия дней.
	StudyStreak int `json:"studyStreak"`

	CompletedQuizzes []CompletedQuizDTO `json:"completedQuizzes"`
}

// CompletedQuizDTO - последний завершённый проход квиза.
type CompletedQuizDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Score       int       `json:"score"`
	TotalPoints int       `json:"totalPoints"`
	CompletedAt time.Time `json:"completedAt"`
}

// AssembleStats собирает ответ статистики.
func AssembleStats(agg progress.Aggregate, longestStreak int) StatsDTO {
	quizzes := make([]CompletedQuizDTO, 0, len(agg.CompletedQuizzes))
	for _, q := range agg.CompletedQuizzes {
		quizzes = append(quizzes, CompletedQuizDTO{
			ID:          q.QuizID,
			Title:       q.Title,
			Score:       q.Score,
			TotalPoints: q.TotalPoints,
			CompletedAt: q.CompletedAt,
		})
	}

	return StatsDTO{
		TotalAttempts:    agg.TotalAttempts,
		AverageScore:     agg.AverageScore,
		TotalPoints:      agg.TotalPoints,
		StudyStreak:      longestStreak,
		CompletedQuizzes: quizzes,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Achievements
// ─────────────────────────────────────────────────────────────────────────────

// AchievementsDTO - ответ запроса достижений.
type AchievementsDTO struct {
	Achievements       []AchievementDTO `json:"achievements"`
	Badges             []BadgeDTO       `json:"badges"`
	Streaks            []StreakDTO      `json:"streaks"`
	PerformanceMetrics []PerformanceDTO `json:"performanceMetrics"`
}

// AchievementDTO - полученное достижение.
type AchievementDTO struct {
	ID               string    `json:"id"`
	Type             string    `json:"type"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	EarnedAt         time.Time `json:"earnedAt"`
	Points           int       `json:"points"`
	CelebrationLevel string    `json:"celebrationLevel"`
}

// BadgeDTO - значок на полке. EarnedAt равен null, пока значок не получен.
type BadgeDTO struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Icon         string     `json:"icon"`
	Category     string     `json:"category"`
	EarnedAt     *time.Time `json:"earnedAt"`
	Requirements string     `json:"requirements"`
	Rarity       string     `json:"rarity"`
}

// StreakDTO - серии и активность.
type StreakDTO struct {
	CurrentStreak  int              `json:"currentStreak"`
	LongestStreak  int              `json:"longestStreak"`
	WeeklyActivity []DayActivityDTO `json:"weeklyActivity"`
	MonthlyGoal    MonthlyGoalDTO   `json:"monthlyGoal"`
}

// DayActivityDTO - активность за день.
type DayActivityDTO struct {
	Date             string `json:"date"`
	QuizzesCompleted int    `json:"quizzesCompleted"`
	StudyTime        int    `json:"studyTime"`
}

// MonthlyGoalDTO - прогресс месячной цели.
type MonthlyGoalDTO struct {
	Target     int `json:"target"`
	Achieved   int `json:"achieved"`
	Percentage int `json:"percentage"`
}

// PerformanceDTO - точка графика успеваемости.
type PerformanceDTO struct {
	Date    string `json:"date"`
	Score   int    `json:"score"`
	Subject string `json:"subject"`
}

// AssembleAchievements собирает ответ достижений.
// streak == nil даёт пустой массив streaks.
func AssembleAchievements(showcase progress.Showcase, streak *progress.StreakRecord, performance []progress.PerformancePoint) AchievementsDTO {
	dto := AchievementsDTO{
		Achievements:       make([]AchievementDTO, 0, len(showcase.Achievements)),
		Badges:             make([]BadgeDTO, 0, len(showcase.Badges)),
		Streaks:            make([]StreakDTO, 0, 1),
		PerformanceMetrics: make([]PerformanceDTO, 0, len(performance)),
	}

	for _, a := range showcase.Achievements {
		dto.Achievements = append(dto.Achievements, AchievementDTO{
			ID:               a.ID,
			Type:             string(a.Type),
			Title:            a.Title,
			Description:      a.Description,
			EarnedAt:         a.EarnedAt,
			Points:           a.Points,
			CelebrationLevel: string(a.CelebrationLevel),
		})
	}

	for _, b := range showcase.Badges {
		badge := BadgeDTO{
			ID:           b.ID,
			Name:         b.Name,
			Description:  b.Description,
			Icon:         b.Icon,
			Category:     string(b.Category),
			Requirements: b.Requirements,
			Rarity:       string(b.Rarity),
			EarnedAt:     b.EarnedAt.Ptr(),
		}
		dto.Badges = append(dto.Badges, badge)
	}

	if streak != nil {
		week := make([]DayActivityDTO, 0, len(streak.WeeklyActivity))
		for _, d := range streak.WeeklyActivity {
			week = append(week, DayActivityDTO{Date: d.Date, QuizzesCompleted: d.QuizzesCompleted, StudyTime: d.StudyTime})
		}
		dto.Streaks = append(dto.Streaks, StreakDTO{
			CurrentStreak:  streak.CurrentStreak,
			LongestStreak:  streak.LongestStreak,
			WeeklyActivity: week,
			MonthlyGoal: MonthlyGoalDTO{
				Target:     streak.MonthlyGoal.Target,
				Achieved:   streak.MonthlyGoal.Achieved,
				Percentage: streak.MonthlyGoal.Percentage,
			},
		})
	}

	for _, p := range performance {
		dto.PerformanceMetrics = append(dto.PerformanceMetrics, PerformanceDTO{Date: p.Date, Score: p.Score, Subject: p.Subject})
	}

	return dto
}

// ─────────────────────────────────────────────────────────────────────────────
// Ranking
// ─────────────────────────────────────────────────────────────────────────────

// RankingDTO - позиция ученика в когорте.
type RankingDTO struct {
	Cohort         string            `json:"cohort"`
	Rank           int               `json:"rank"`
	CohortSize     int               `json:"cohortSize"`
	Percentile     int               `json:"percentile"`
	Trend          string            `json:"trend"`
	PeerComparison PeerComparisonDTO `json:"peerComparison"`
	Leaderboard    []LeaderboardDTO  `json:"leaderboard"`
}

// PeerComparisonDTO - сравнение с когортой.
type PeerComparisonDTO struct {
	CohortAverage  float64 `json:"cohortAverage"`
	LearnerAverage float64 `json:"learnerAverage"`
	Percentile     int     `json:"percentile"`
}

// LeaderboardDTO - строка лидерборда.
type LeaderboardDTO struct {
	Rank        int    `json:"rank"`
	DisplayName string `json:"displayName"`
	Points      int    `json:"points"`
	Trend       string `json:"trend"`
}

// AssembleRanking собирает ответ рейтинга.
func AssembleRanking(cohort string, r leaderboard.Result) RankingDTO {
	board := make([]LeaderboardDTO, 0, len(r.Leaderboard))
	for _, e := range r.Leaderboard {
		board = append(board, LeaderboardDTO{
			Rank:        int(e.Rank),
			DisplayName: e.DisplayName,
			Points:      e.Points,
			Trend:       string(e.Trend),
		})
	}

	return RankingDTO{
		Cohort:     cohort,
		Rank:       int(r.Rank),
		CohortSize: r.CohortSize,
		Percentile: r.Percentile,
		Trend:      string(r.Trend),
		PeerComparison: PeerComparisonDTO{
			CohortAverage:  r.Peer.CohortAverage,
			LearnerAverage: r.Peer.LearnerAverage,
			Percentile:     r.Peer.Percentile,
		},
		Leaderboard: board,
	}
}
