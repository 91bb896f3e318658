package leaderboard

import (
	"fmt"
	"time"

	"github.com/Oyasikelly/QuizMentor-sub000/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PERIODS
// ══════════════════════════════════════════════════════════════════════════════

// Period - гранулярность базовых снимков для трендов.
type Period string

const (
	// PeriodWeek - ISO-неделя, ключ вида 2024-W01.
	PeriodWeek Period = "week"
	// PeriodMonth - календарный месяц, ключ вида 2024-01.
	PeriodMonth Period = "month"
)

// ParsePeriod разбирает строку; пустая строка даёт PeriodWeek.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "", PeriodWeek:
		return PeriodWeek, nil
	case PeriodMonth:
		return PeriodMonth, nil
	default:
		return "", ErrInvalidPeriod
	}
}

// Key возвращает ключ периода, содержащего t.
func (p Period) Key(t time.Time) string {
	if p == PeriodMonth {
		return timeutil.MonthKey(t)
	}
	return timeutil.WeekKey(t)
}

// PreviousKey возвращает ключ периода, предшествующего периоду t.
func (p Period) PreviousKey(t time.Time) string {
	if p == PeriodMonth {
		return timeutil.MonthKey(timeutil.StartOfMonth(t).AddDate(0, 0, -1))
	}
	return timeutil.WeekKey(timeutil.StartOfWeek(t).AddDate(0, 0, -1))
}

// ══════════════════════════════════════════════════════════════════════════════
// BASELINE
// ══════════════════════════════════════════════════════════════════════════════

// Baseline - снимок показателей когорты за один период.
// Используется как база сравнения для трендов следующего периода.
type Baseline struct {
	Cohort     string
	Period     string
	Basis      Basis
	Values     map[string]float64
	RecordedAt time.Time
}

// NewBaseline строит снимок из показателей участников.
func NewBaseline(cohort, period string, basis Basis, members []Standing, at time.Time) *Baseline {
	values := make(map[string]float64, len(members))
	for _, m := range members {
		values[m.LearnerID] = m.Value(basis)
	}
	return &Baseline{
		Cohort:     cohort,
		Period:     period,
		Basis:      basis,
		Values:     values,
		RecordedAt: at.UTC(),
	}
}

// Value возвращает показатель ученика в снимке.
func (b *Baseline) Value(learnerID string) (float64, bool) {
	if b == nil {
		return 0, false
	}
	v, ok := b.Values[learnerID]
	return v, ok
}

// Count возвращает число участников в снимке.
func (b *Baseline) Count() int {
	if b == nil {
		return 0
	}
	return len(b.Values)
}

// String возвращает строковое представление для логирования.
func (b *Baseline) String() string {
	return fmt.Sprintf("Baseline{Cohort: %s, Period: %s, Members: %d}", b.Cohort, b.Period, b.Count())
}
