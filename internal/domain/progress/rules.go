package progress

import (
	"time"

	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/attempt"
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTS
// ══════════════════════════════════════════════════════════════════════════════

// Facts - всё, что видят правила. Completed упорядочен по времени завершения.
type Facts struct {
	Aggregate Aggregate
	Streak    StreakRecord
	Completed []attempt.Record
	Mastery   []SubjectMastery
}

// ══════════════════════════════════════════════════════════════════════════════
// RULES
// ══════════════════════════════════════════════════════════════════════════════

// Rule - независимый предикат. Правила не видят результатов друг друга.
type Rule interface {
	// ID возвращает идентификатор правила из каталога.
	ID() string

	// Evaluate возвращает сработавшие награды или nil.
	Evaluate(f Facts) []Award
}

// RuleFunc адаптирует функцию к интерфейсу Rule.
type RuleFunc struct {
	RuleID string
	Fn     func(f Facts) []Award
}

// ID implements Rule.
func (r RuleFunc) ID() string { return r.RuleID }

// Evaluate implements Rule.
func (r RuleFunc) Evaluate(f Facts) []Award { return r.Fn(f) }

// Пороги базовых правил.
const (
	TenQuizzesThreshold     = 10
	StreakAchievementLength = 7
)

// DefaultRules возвращает базовые правила в порядке каталога.
func DefaultRules() []Rule {
	return []Rule{
		RuleFunc{RuleFirstQuiz, firstQuiz},
		RuleFunc{RuleTenQuizzes, tenQuizzes},
		RuleFunc{RuleSevenDayStreak, sevenDayStreak},
		RuleFunc{RulePerfectScore, perfectScore},
		RuleFunc{RuleMastery, subjectMastery},
		RuleFunc{RuleImprovement, improvement},
	}
}

// firstQuiz: хотя бы одна завершённая попытка.
func firstQuiz(f Facts) []Award {
	if len(f.Completed) == 0 {
		return nil
	}
	return single(RuleFirstQuiz, f.Completed[0].CompletedTime())
}

// tenQuizzes: не меньше десяти завершённых попыток, засчитывается на десятой.
func tenQuizzes(f Facts) []Award {
	if len(f.Completed) < TenQuizzesThreshold {
		return nil
	}
	return single(RuleTenQuizzes, f.Completed[TenQuizzesThreshold-1].CompletedTime())
}

// sevenDayStreak: максимальная серия не меньше семи дней.
func sevenDayStreak(f Facts) []Award {
	if f.Streak.LongestStreak < StreakAchievementLength || len(f.Completed) == 0 {
		return nil
	}
	return single(RuleSevenDayStreak, lastCompletion(f))
}

// perfectScore: первая попытка с максимальным баллом.
func perfectScore(f Facts) []Award {
	for _, r := range f.Completed {
		if r.IsPerfect() {
			return single(RulePerfectScore, r.CompletedTime())
		}
	}
	return nil
}

// subjectMastery: по награде на каждый освоенный предмет.
func subjectMastery(f Facts) []Award {
	var awards []Award
	for _, m := range f.Mastery {
		if !m.IsMastered() {
			continue
		}
		awards = append(awards, NewAward(RuleMastery, m.SubjectID, m.SubjectName, m.FirstCompletedAt))
	}
	return awards
}

// improvement: последний балл не меньше первого, умноженного на 1.2.
// Сравнение в целых числах: last*5 >= first*6.
func improvement(f Facts) []Award {
	if len(f.Completed) < 2 {
		return nil
	}
	first := f.Completed[0].ScoreOrZero()
	last := f.Completed[len(f.Completed)-1].ScoreOrZero()
	if first <= 0 || last*5 < first*6 {
		return nil
	}
	return single(RuleImprovement, lastCompletion(f))
}

func single(ruleID string, at time.Time) []Award {
	return []Award{NewAward(ruleID, "", "", at)}
}

func lastCompletion(f Facts) time.Time {
	return f.Completed[len(f.Completed)-1].CompletedTime()
}

// ══════════════════════════════════════════════════════════════════════════════
// ENGINE
// ══════════════════════════════════════════════════════════════════════════════

// Engine прогоняет все правила и объединяет результаты.
type Engine struct {
	catalog *Catalog
	rules   []Rule
}

// NewEngine создаёт движок. Правила, которых нет в каталоге, игнорируются.
func NewEngine(catalog *Catalog, rules ...Rule) *Engine {
	known := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if _, ok := catalog.Descriptor(r.ID()); ok {
			known = append(known, r)
		}
	}
	return &Engine{catalog: catalog, rules: known}
}

// DefaultEngine возвращает движок с базовыми каталогом и правилами.
func DefaultEngine() *Engine {
	return NewEngine(DefaultCatalog(), DefaultRules()...)
}

// Catalog возвращает каталог движка.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Evaluate прогоняет все правила без short-circuit. Награды с одинаковым ID
// схлопываются (побеждает первая). Результат упорядочен по EarnedAt, затем ID.
func (e *Engine) Evaluate(f Facts) []Award {
	seen := make(map[string]struct{})
	awards := make([]Award, 0, len(e.rules))
	for _, rule := range e.rules {
		for _, a := range rule.Evaluate(f) {
			if _, dup := seen[a.ID]; dup {
				continue
			}
			seen[a.ID] = struct{}{}
			awards = append(awards, a)
		}
	}
	SortAwards(awards)
	return awards
}
