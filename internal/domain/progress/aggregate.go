// Package progress содержит аналитический движок прогресса ученика:
// агрегаты, серии, освоение предметов, достижения и значки.
//
// Все функции пакета чистые: они получают список попыток и текущее время
// и ничего не сохраняют. Один и тот же вход всегда даёт один и тот же выход.
package progress

import (
	"sort"
	"time"

	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/attempt"
)

// ══════════════════════════════════════════════════════════════════════════════
// AGGREGATE
// ══════════════════════════════════════════════════════════════════════════════

// CompletedQuiz - последняя завершённая попытка по одному квизу.
type CompletedQuiz struct {
	QuizID      string
	Title       string
	SubjectID   string
	Score       int
	TotalPoints int
	CompletedAt time.Time
}

// Aggregate - итоговые показатели ученика.
type Aggregate struct {
	// TotalAttempts - все попытки, включая незавершённые.
	TotalAttempts int

	// AverageScore - среднее по всем попыткам, отсутствующие баллы считаются 0.
	AverageScore float64

	// TotalPoints - сумма баллов последних завершённых попыток по каждому квизу.
	TotalPoints int

	// CompletedQuizzes - по одной записи на квиз, от новых к старым.
	CompletedQuizzes []CompletedQuiz
}

// BuildAggregate сводит список попыток в Aggregate. Никогда не возвращает ошибку:
// пустой вход даёт нулевые показатели и пустой список квизов.
func BuildAggregate(records []attempt.Record) Aggregate {
	agg := Aggregate{
		TotalAttempts:    len(records),
		CompletedQuizzes: make([]CompletedQuiz, 0),
	}
	if len(records) == 0 {
		return agg
	}

	sum := 0
	latest := make(map[string]attempt.Record)
	for _, r := range records {
		sum += r.ScoreOrZero()

		if !r.IsCompleted() {
			continue
		}
		prev, ok := latest[r.QuizID]
		if !ok || isLater(r, prev) {
			latest[r.QuizID] = r
		}
	}
	agg.AverageScore = float64(sum) / float64(len(records))

	for _, r := range latest {
		agg.TotalPoints += r.ScoreOrZero()
		agg.CompletedQuizzes = append(agg.CompletedQuizzes, CompletedQuiz{
			QuizID:      r.QuizID,
			Title:       r.QuizTitle,
			SubjectID:   r.SubjectID,
			Score:       r.ScoreOrZero(),
			TotalPoints: r.TotalOrZero(),
			CompletedAt: r.CompletedTime(),
		})
	}

	sort.Slice(agg.CompletedQuizzes, func(i, j int) bool {
		a, b := agg.CompletedQuizzes[i], agg.CompletedQuizzes[j]
		if !a.CompletedAt.Equal(b.CompletedAt) {
			return a.CompletedAt.After(b.CompletedAt)
		}
		return a.QuizID < b.QuizID
	})

	return agg
}

// isLater сравнивает две завершённые попытки одного квиза.
// При равном времени завершения побеждает больший ID, чтобы выбор был детерминированным.
func isLater(a, b attempt.Record) bool {
	ta, tb := a.CompletedTime(), b.CompletedTime()
	if !ta.Equal(tb) {
		return ta.After(tb)
	}
	return a.ID > b.ID
}
