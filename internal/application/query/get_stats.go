package query

import (
	"context"

	"github.com/Oyasikelly/QuizMentor-sub000/config"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/attempt"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/progress"
	"github.com/Oyasikelly/QuizMentor-sub000/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STATS QUERY
// Сводка по ученику: попытки, средний балл, очки, лучшая серия
// и последние завершённые квизы.
// ══════════════════════════════════════════════════════════════════════════════

// GetStatsQuery содержит параметры запроса статистики.
type GetStatsQuery struct {
	// LearnerID - идентификатор ученика (обязателен).
	LearnerID string `validate:"required,max=128"`
}

// Validate проверяет корректность параметров запроса.
func (q *GetStatsQuery) Validate() error {
	return checkLearner("GetStats", &q.LearnerID, q)
}

// StatsCache - кэш готовых ответов статистики. Опционален.
// Попадание в кэш отдаёт ответ возрастом до TTL без пересчёта, поэтому
// кэш работает только при включённом флаге FeatureResponseCache.
type StatsCache interface {
	Get(ctx context.Context, learnerID string, dest any) (bool, error)
	Put(ctx context.Context, learnerID string, value any) error
}

// GetStatsHandler обрабатывает запросы статистики.
type GetStatsHandler struct {
	attempts attempt.Source
	streak   progress.StreakOptions
	cache    StatsCache
	features FeatureGate
	clock    Clock
	logger   *logger.Logger
}

// GetStatsOption настраивает обработчик.
type GetStatsOption func(*GetStatsHandler)

// WithStatsCache подключает кэш ответов.
func WithStatsCache(c StatsCache) GetStatsOption {
	return func(h *GetStatsHandler) { h.cache = c }
}

// WithStatsFeatures подключает флаги.
func WithStatsFeatures(g FeatureGate) GetStatsOption {
	return func(h *GetStatsHandler) { h.features = g }
}

// WithStatsClock подменяет часы.
func WithStatsClock(c Clock) GetStatsOption {
	return func(h *GetStatsHandler) { h.clock = c }
}

// NewGetStatsHandler создаёт новый обработчик.
func NewGetStatsHandler(attempts attempt.Source, streak progress.StreakOptions, log *logger.Logger, opts ...GetStatsOption) *GetStatsHandler {
	if log == nil {
		log = logger.Nop()
	}
	h := &GetStatsHandler{
		attempts: attempts,
		streak:   streak,
		logger:   log.With(logger.Component("get_stats")),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle выполняет запрос статистики.
func (h *GetStatsHandler) Handle(ctx context.Context, query GetStatsQuery) (*StatsDTO, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	useCache := h.cache != nil && enabled(h.features, config.FeatureResponseCache, query.LearnerID)
	if useCache {
		var cached StatsDTO
		hit, err := h.cache.Get(ctx, query.LearnerID, &cached)
		if err != nil {
			h.logger.Warn("stats cache read failed", logger.LearnerID(query.LearnerID), logger.Err(err))
		} else if hit {
			return &cached, nil
		}
	}

	records, err := h.attempts.ListByLearner(ctx, query.LearnerID)
	if err != nil {
		return nil, fetchErr("GetStats", err)
	}

	agg := progress.BuildAggregate(records)

	longest := 0
	if enabled(h.features, config.FeatureStreaks, query.LearnerID) {
		longest = progress.CalculateStreak(attempt.Completed(records), h.clock.now(), h.streak).LongestStreak
	}

	dto := AssembleStats(agg, longest)

	if useCache {
		if err := h.cache.Put(ctx, query.LearnerID, dto); err != nil {
			h.logger.Warn("stats cache write failed", logger.LearnerID(query.LearnerID), logger.Err(err))
		}
	}

	return &dto, nil
}
