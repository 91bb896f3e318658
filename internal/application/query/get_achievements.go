package query

import (
	"context"
	"time"

	"github.com/Oyasikelly/QuizMentor-sub000/config"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/attempt"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/progress"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/shared"
	"github.com/Oyasikelly/QuizMentor-sub000/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET ACHIEVEMENTS QUERY
// Достижения, полка значков, серии и график успеваемости.
// С журналом наград дата получения фиксируется при первой записи и больше
// не меняется, а однажды полученные награды не пропадают.
// ══════════════════════════════════════════════════════════════════════════════

// GetAchievementsQuery содержит параметры запроса достижений.
type GetAchievementsQuery struct {
	// LearnerID - идентификатор ученика (обязателен).
	LearnerID string `validate:"required,max=128"`
}

// Validate проверяет корректность параметров запроса.
func (q *GetAchievementsQuery) Validate() error {
	return checkLearner("GetAchievements", &q.LearnerID, q)
}

// GetAchievementsHandler обрабатывает запросы достижений.
type GetAchievementsHandler struct {
	attempts  attempt.Source
	analyzer  *progress.Analyzer
	ledger    progress.AwardLedger
	publisher shared.EventPublisher
	features  FeatureGate
	clock     Clock
	logger    *logger.Logger
}

// GetAchievementsOption настраивает обработчик.
type GetAchievementsOption func(*GetAchievementsHandler)

// WithAwardLedger подключает журнал наград и публикацию событий о новых наградах.
// publisher может быть nil.
func WithAwardLedger(ledger progress.AwardLedger, publisher shared.EventPublisher) GetAchievementsOption {
	return func(h *GetAchievementsHandler) {
		h.ledger = ledger
		h.publisher = publisher
	}
}

// WithAchievementsFeatures подключает флаги.
func WithAchievementsFeatures(g FeatureGate) GetAchievementsOption {
	return func(h *GetAchievementsHandler) { h.features = g }
}

// WithAchievementsClock подменяет часы.
func WithAchievementsClock(c Clock) GetAchievementsOption {
	return func(h *GetAchievementsHandler) { h.clock = c }
}

// NewGetAchievementsHandler создаёт новый обработчик.
func NewGetAchievementsHandler(attempts attempt.Source, analyzer *progress.Analyzer, log *logger.Logger, opts ...GetAchievementsOption) *GetAchievementsHandler {
	if analyzer == nil {
		analyzer = progress.NewAnalyzer(nil, progress.DefaultStreakOptions())
	}
	if log == nil {
		log = logger.Nop()
	}
	h := &GetAchievementsHandler{
		attempts: attempts,
		analyzer: analyzer,
		logger:   log.With(logger.Component("get_achievements")),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle выполняет запрос достижений.
func (h *GetAchievementsHandler) Handle(ctx context.Context, query GetAchievementsQuery) (*AchievementsDTO, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if !enabled(h.features, config.FeatureAchievements, query.LearnerID) {
		return nil, ErrFeatureDisabled
	}

	records, err := h.attempts.ListByLearner(ctx, query.LearnerID)
	if err != nil {
		return nil, fetchErr("GetAchievements", err)
	}

	now := h.clock.now()
	report := h.analyzer.Analyze(records, now)

	awards := report.Awards
	if h.ledger != nil && enabled(h.features, config.FeatureAwardLedger, query.LearnerID) {
		awards, err = h.reconcile(ctx, query.LearnerID, awards, now)
		if err != nil {
			return nil, err
		}
	}

	var streak *progress.StreakRecord
	if enabled(h.features, config.FeatureStreaks, query.LearnerID) {
		streak = &report.Streak
	}

	showcase := h.analyzer.Engine().Catalog().Showcase(awards)
	dto := AssembleAchievements(showcase, streak, report.Performance)
	return &dto, nil
}

// reconcile сверяет свежую оценку с журналом и дописывает новые награды.
// Сбой записи не ломает ответ: награды будут дописаны при следующем запросе.
func (h *GetAchievementsHandler) reconcile(ctx context.Context, learnerID string, fresh []progress.Award, now time.Time) ([]progress.Award, error) {
	recorded, err := h.ledger.ListByLearner(ctx, learnerID)
	if err != nil {
		return nil, fetchErr("GetAchievements", err)
	}

	rec := progress.Reconcile(fresh, recorded, h.analyzer.Engine().Catalog())
	if len(rec.Pending) == 0 {
		return rec.Awards, nil
	}

	inserted, err := h.ledger.Append(ctx, progress.ToLedgerEntries(learnerID, rec.Pending, now))
	if err != nil {
		h.logger.Warn("award ledger append failed",
			logger.LearnerID(learnerID),
			logger.Int("pending", len(rec.Pending)),
			logger.Err(err),
		)
		return rec.Awards, nil
	}

	if h.publisher != nil {
		for _, e := range inserted {
			event := shared.NewAwardEarnedEvent(learnerID, e.Award.ID, e.Award.RuleID, e.Award.EarnedAt, e.RecordedAt)
			if err := h.publisher.Publish(event); err != nil {
				h.logger.Warn("award event not published", logger.AwardID(e.Award.ID), logger.Err(err))
			}
		}
	}

	return rec.Awards, nil
}
