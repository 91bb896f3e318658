// Package leaderboard содержит доменную модель рейтинга учеников внутри когорты:
// места, перцентили, тренды и сравнение со сверстниками.
package leaderboard

import (
	"fmt"

	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/progress"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Rank представляет позицию ученика в когорте. Начинается с 1.
type Rank int

// IsValid проверяет, что ранг положительный.
func (r Rank) IsValid() bool {
	return r > 0
}

// String возвращает строковое представление ранга.
func (r Rank) String() string {
	return fmt.Sprintf("#%d", r)
}

// Trend - направление изменения показателя относительно прошлого периода.
type Trend string

const (
	// TrendUp - показатель вырос.
	TrendUp Trend = "up"
	// TrendDown - показатель снизился.
	TrendDown Trend = "down"
	// TrendNeutral - без изменений или нет базы для сравнения.
	TrendNeutral Trend = "neutral"
)

// CompareTrend сравнивает текущее значение с базовым.
func CompareTrend(current float64, baseline float64, hasBaseline bool) Trend {
	switch {
	case !hasBaseline:
		return TrendNeutral
	case current > baseline:
		return TrendUp
	case current < baseline:
		return TrendDown
	default:
		return TrendNeutral
	}
}

// Basis - показатель, по которому строится рейтинг.
type Basis string

const (
	// BasisTotalPoints - сумма баллов (по умолчанию).
	BasisTotalPoints Basis = "total_points"
	// BasisAverageScore - средний балл.
	BasisAverageScore Basis = "average_score"
)

// IsValid проверяет корректность базиса.
func (b Basis) IsValid() bool {
	return b == BasisTotalPoints || b == BasisAverageScore
}

// ParseBasis разбирает строку; пустая строка даёт BasisTotalPoints.
func ParseBasis(s string) (Basis, error) {
	if s == "" {
		return BasisTotalPoints, nil
	}
	b := Basis(s)
	if !b.IsValid() {
		return "", ErrInvalidBasis
	}
	return b, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// STANDING
// ══════════════════════════════════════════════════════════════════════════════

// Standing - показатели одного участника когорты.
type Standing struct {
	LearnerID    string
	DisplayName  string
	TotalPoints  int
	AverageScore float64
}

// NewStanding строит Standing из агрегата ученика.
func NewStanding(learnerID, displayName string, agg progress.Aggregate) Standing {
	return Standing{
		LearnerID:    learnerID,
		DisplayName:  displayName,
		TotalPoints:  agg.TotalPoints,
		AverageScore: agg.AverageScore,
	}
}

// Value возвращает показатель для выбранного базиса.
func (s Standing) Value(basis Basis) float64 {
	if basis == BasisAverageScore {
		return s.AverageScore
	}
	return float64(s.TotalPoints)
}

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD ENTRY
// ══════════════════════════════════════════════════════════════════════════════

// Entry - одна строка лидерборда.
type Entry struct {
	Rank        Rank
	LearnerID   string
	DisplayName string
	Points      int
	Value       float64
	Trend       Trend
}

// String возвращает строковое представление для логирования.
func (e Entry) String() string {
	return fmt.Sprintf("Entry{Rank: %d, DisplayName: %s, Points: %d, Trend: %s}",
		e.Rank, e.DisplayName, e.Points, e.Trend)
}
