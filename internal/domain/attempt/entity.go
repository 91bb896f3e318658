// Package attempt содержит доменную модель попытки прохождения квиза.
// Попытки принадлежат внешнему хранилищу; аналитический движок только читает их.
package attempt

import (
	"context"
	"sort"
	"time"

	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ATTEMPT RECORD
// ══════════════════════════════════════════════════════════════════════════════

// Record представляет одну попытку прохождения квиза.
// Завершённая попытка неизменяема.
type Record struct {
	// ID - идентификатор попытки.
	ID string

	// LearnerID - идентификатор ученика.
	LearnerID string

	// QuizID - идентификатор квиза.
	QuizID string

	// QuizTitle - денормализованное название квиза.
	QuizTitle string

	// SubjectID - идентификатор предмета.
	SubjectID string

	// SubjectName - денормализованное название предмета.
	SubjectName string

	// Score - набранные баллы; отсутствует, если не выставлены.
	Score shared.Optional[int]

	// TotalPoints - максимально возможные баллы.
	TotalPoints int

	// CompletedAt - время завершения; отсутствует, пока попытка не завершена.
	CompletedAt shared.Optional[time.Time]

	// CreatedAt - время начала попытки.
	CreatedAt time.Time
}

// IsCompleted возвращает true, если попытка завершена.
func (r Record) IsCompleted() bool {
	return r.CompletedAt.IsPresent()
}

// CompletedTime возвращает время завершения в UTC или нулевое время.
func (r Record) CompletedTime() time.Time {
	t, ok := r.CompletedAt.Get()
	if !ok {
		return time.Time{}
	}
	return t.UTC()
}

// ScoreOrZero возвращает баллы, приводя отсутствующие и отрицательные к 0.
func (r Record) ScoreOrZero() int {
	s := r.Score.OrElse(0)
	if s < 0 {
		return 0
	}
	return s
}

// TotalOrZero возвращает максимум баллов, приводя отрицательные к 0.
func (r Record) TotalOrZero() int {
	if r.TotalPoints < 0 {
		return 0
	}
	return r.TotalPoints
}

// IsPerfect возвращает true, если набран максимум при ненулевом максимуме.
func (r Record) IsPerfect() bool {
	if !r.Score.IsPresent() || r.TotalOrZero() == 0 {
		return false
	}
	return r.ScoreOrZero() == r.TotalOrZero()
}

// Percent возвращает результат по шкале 0-100. Без максимума баллы
// считаются уже процентными.
func (r Record) Percent() float64 {
	score := float64(r.ScoreOrZero())
	if total := r.TotalOrZero(); total > 0 {
		return 100 * score / float64(total)
	}
	return score
}

// StudyMinutes возвращает длительность попытки в целых минутах.
// Незавершённые попытки и отрицательные интервалы дают 0.
func (r Record) StudyMinutes() int {
	if !r.IsCompleted() || r.CreatedAt.IsZero() {
		return 0
	}
	d := r.CompletedTime().Sub(r.CreatedAt.UTC())
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}

// ══════════════════════════════════════════════════════════════════════════════
// COLLECTION HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// Completed возвращает завершённые попытки в хронологическом порядке.
// При равном времени завершения порядок задают CreatedAt, затем ID.
// Входной слайс не изменяется.
func Completed(records []Record) []Record {
	result := make([]Record, 0, len(records))
	for _, r := range records {
		if r.IsCompleted() {
			result = append(result, r)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		ti, tj := result[i].CompletedTime(), result[j].CompletedTime()
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result
}

// ══════════════════════════════════════════════════════════════════════════════
// SOURCE INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// Source определяет контракт внешнего хранилища попыток.
// Реализация находится в infrastructure слое.
type Source interface {
	// ListByLearner возвращает все попытки ученика, включая незавершённые.
	// Пустой список - не ошибка.
	ListByLearner(ctx context.Context, learnerID string) ([]Record, error)
}
