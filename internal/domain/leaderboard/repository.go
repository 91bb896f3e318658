package leaderboard

import (
	"context"

	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/attempt"
)

// ══════════════════════════════════════════════════════════════════════════════
// COHORT SOURCE
// ══════════════════════════════════════════════════════════════════════════════

// Member - участник когорты вместе с его попытками.
type Member struct {
	LearnerID   string
	DisplayName string
	Cohort      string
	Attempts    []attempt.Record
}

// CohortRepository определяет контракт внешнего источника когорт.
// Реализация находится в infrastructure слое.
type CohortRepository interface {
	// CohortOf возвращает профиль ученика (без попыток).
	// Если ученик не найден, возвращает ошибку ErrNotFound.
	CohortOf(ctx context.Context, learnerID string) (Member, error)

	// Members возвращает всех участников когорты с попытками одной пачкой.
	Members(ctx context.Context, cohort string) ([]Member, error)

	// ListCohorts возвращает идентификаторы всех когорт.
	ListCohorts(ctx context.Context) ([]string, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// BASELINE STORE
// ══════════════════════════════════════════════════════════════════════════════

// BaselineStore хранит снимки когорт по периодам.
type BaselineStore interface {
	// Save перезаписывает снимок (cohort, period).
	Save(ctx context.Context, baseline *Baseline) error

	// Load возвращает снимок или ErrBaselineNotFound.
	Load(ctx context.Context, cohort, period string) (*Baseline, error)
}
