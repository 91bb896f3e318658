package progress

import (
	"math"
	"sort"
	"time"

	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/attempt"
	"github.com/Oyasikelly/QuizMentor-sub000/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// STREAK POLICY
// ══════════════════════════════════════════════════════════════════════════════

// StreakPolicy определяет, как считается текущая серия.
type StreakPolicy string

const (
	// StreakPolicyTerminalRun - длина последней серии независимо от давности.
	StreakPolicyTerminalRun StreakPolicy = "terminal_run"

	// StreakPolicyActiveOnly - 0, если последний активный день раньше вчерашнего.
	StreakPolicyActiveOnly StreakPolicy = "active_only"
)

// IsValid проверяет корректность политики.
func (p StreakPolicy) IsValid() bool {
	return p == StreakPolicyTerminalRun || p == StreakPolicyActiveOnly
}

const (
	// DefaultMonthlyTarget - цель по завершённым квизам за календарный месяц.
	DefaultMonthlyTarget = 20

	// WeeklyWindowDays - длина окна недельной активности.
	WeeklyWindowDays = 7
)

// StreakOptions настраивает StreakCalculator.
type StreakOptions struct {
	Policy        StreakPolicy
	MonthlyTarget int
}

// DefaultStreakOptions возвращает настройки по умолчанию.
func DefaultStreakOptions() StreakOptions {
	return StreakOptions{
		Policy:        StreakPolicyTerminalRun,
		MonthlyTarget: DefaultMonthlyTarget,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// STREAK RECORD
// ══════════════════════════════════════════════════════════════════════════════

// DayActivity - активность за один календарный день (UTC).
type DayActivity struct {
	// Date - ключ дня в формате YYYY-MM-DD.
	Date string

	// QuizzesCompleted - завершено попыток за день.
	QuizzesCompleted int

	// StudyTime - суммарное время попыток в минутах.
	StudyTime int
}

// MonthlyGoal - прогресс к месячной цели.
type MonthlyGoal struct {
	Target     int
	Achieved   int
	Percentage int
}

// StreakRecord - серии и активность ученика.
// Инвариант: LongestStreak >= CurrentStreak.
type StreakRecord struct {
	CurrentStreak  int
	LongestStreak  int
	ActiveDays     []string
	WeeklyActivity []DayActivity
	MonthlyGoal    MonthlyGoal
}

// ══════════════════════════════════════════════════════════════════════════════
// STREAK CALCULATOR
// ══════════════════════════════════════════════════════════════════════════════

// CalculateStreak вычисляет серии по завершённым попыткам.
// Незавершённые попытки во входе игнорируются.
func CalculateStreak(records []attempt.Record, now time.Time, opts StreakOptions) StreakRecord {
	if !opts.Policy.IsValid() {
		opts.Policy = StreakPolicyTerminalRun
	}
	if opts.MonthlyTarget <= 0 {
		opts.MonthlyTarget = DefaultMonthlyTarget
	}
	now = now.UTC()

	days := activeDays(records)
	current, longest := walkStreak(days)

	if opts.Policy == StreakPolicyActiveOnly && len(days) > 0 {
		last, err := timeutil.ParseDayKey(days[len(days)-1])
		if err == nil && timeutil.DaysBetween(last, now) > 1 {
			current = 0
		}
	}

	return StreakRecord{
		CurrentStreak:  current,
		LongestStreak:  longest,
		ActiveDays:     days,
		WeeklyActivity: weeklyActivity(records, now),
		MonthlyGoal:    monthlyGoal(records, now, opts.MonthlyTarget),
	}
}

// activeDays возвращает уникальные ключи дней активности по возрастанию.
func activeDays(records []attempt.Record) []string {
	seen := make(map[string]struct{})
	days := make([]string, 0)
	for _, r := range records {
		if !r.IsCompleted() {
			continue
		}
		key := timeutil.DayKey(r.CompletedTime())
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		days = append(days, key)
	}
	// YYYY-MM-DD сортируется лексикографически в хронологическом порядке.
	sort.Strings(days)
	return days
}

// walkStreak проходит по отсортированным дням и возвращает длину последней
// серии и максимальную серию.
func walkStreak(days []string) (current, longest int) {
	var prev time.Time
	for i, key := range days {
		day, err := timeutil.ParseDayKey(key)
		if err != nil {
			continue
		}
		if i > 0 && timeutil.IsConsecutiveDay(prev, day) {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
		prev = day
	}
	return current, longest
}

func weeklyActivity(records []attempt.Record, now time.Time) []DayActivity {
	keys := timeutil.LastNDays(now, WeeklyWindowDays)
	index := make(map[string]int, len(keys))
	result := make([]DayActivity, len(keys))
	for i, key := range keys {
		index[key] = i
		result[i] = DayActivity{Date: key}
	}

	for _, r := range records {
		if !r.IsCompleted() {
			continue
		}
		i, ok := index[timeutil.DayKey(r.CompletedTime())]
		if !ok {
			continue
		}
		result[i].QuizzesCompleted++
		result[i].StudyTime += r.StudyMinutes()
	}
	return result
}

func monthlyGoal(records []attempt.Record, now time.Time, target int) MonthlyGoal {
	achieved := 0
	for _, r := range records {
		if r.IsCompleted() && timeutil.IsSameMonth(r.CompletedTime(), now) {
			achieved++
		}
	}

	pct := int(math.Round(100 * float64(achieved) / float64(target)))
	if pct > 100 {
		pct = 100
	}

	return MonthlyGoal{
		Target:     target,
		Achieved:   achieved,
		Percentage: pct,
	}
}
