package progress

import (
	"time"

	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/attempt"
)

// Report - полный результат анализа истории попыток одного ученика.
type Report struct {
	Aggregate   Aggregate
	Streak      StreakRecord
	Mastery     []SubjectMastery
	Performance []PerformancePoint
	Awards      []Award
}

// Analyzer связывает этапы конвейера:
// AggregateBuilder -> StreakCalculator -> AchievementRuleEngine.
// Не имеет изменяемого состояния и безопасен для параллельного использования.
type Analyzer struct {
	engine *Engine
	streak StreakOptions
}

// NewAnalyzer создаёт анализатор. При engine == nil используется DefaultEngine.
func NewAnalyzer(engine *Engine, streak StreakOptions) *Analyzer {
	if engine == nil {
		engine = DefaultEngine()
	}
	return &Analyzer{engine: engine, streak: streak}
}

// Engine возвращает движок правил.
func (a *Analyzer) Engine() *Engine {
	return a.engine
}

// Analyze вычисляет отчёт. now задаёт границы недели и месяца.
func (a *Analyzer) Analyze(records []attempt.Record, now time.Time) Report {
	completed := attempt.Completed(records)

	facts := Facts{
		Aggregate: BuildAggregate(records),
		Streak:    CalculateStreak(completed, now, a.streak),
		Completed: completed,
		Mastery:   ComputeMastery(completed),
	}

	return Report{
		Aggregate:   facts.Aggregate,
		Streak:      facts.Streak,
		Mastery:     facts.Mastery,
		Performance: PerformanceSeries(completed),
		Awards:      a.engine.Evaluate(facts),
	}
}
