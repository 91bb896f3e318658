package query

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Oyasikelly/QuizMentor-sub000/config"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/attempt"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/leaderboard"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/progress"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/shared"
	"github.com/Oyasikelly/QuizMentor-sub000/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET RANKING QUERY
// Место ученика в своей когорте, процентиль, тренд относительно прошлого
// периода и верх лидерборда. Когорта определяется по профилю ученика.
// ══════════════════════════════════════════════════════════════════════════════

// GetRankingQuery содержит параметры запроса рейтинга.
type GetRankingQuery struct {
	// LearnerID - идентификатор ученика (обязателен).
	LearnerID string `validate:"required,max=128"`

	// Limit - размер лидерборда (0 = по умолчанию).
	Limit int `validate:"gte=0,lte=100"`
}

// Validate проверяет корректность параметров запроса.
func (q *GetRankingQuery) Validate() error {
	return checkLearner("GetRanking", &q.LearnerID, q)
}

// GetRankingHandler обрабатывает запросы рейтинга.
type GetRankingHandler struct {
	cohorts   leaderboard.CohortRepository
	attempts  attempt.Source
	baselines leaderboard.BaselineStore
	ranking   *leaderboard.Service
	period    leaderboard.Period
	features  FeatureGate
	clock     Clock
	logger    *logger.Logger
}

// GetRankingOption настраивает обработчик.
type GetRankingOption func(*GetRankingHandler)

// WithBaselines подключает хранилище снимков для трендов.
func WithBaselines(store leaderboard.BaselineStore, period leaderboard.Period) GetRankingOption {
	return func(h *GetRankingHandler) {
		h.baselines = store
		h.period = period
	}
}

// WithRankingFeatures подключает флаги.
func WithRankingFeatures(g FeatureGate) GetRankingOption {
	return func(h *GetRankingHandler) { h.features = g }
}

// WithRankingClock подменяет часы.
func WithRankingClock(c Clock) GetRankingOption {
	return func(h *GetRankingHandler) { h.clock = c }
}

// NewGetRankingHandler создаёт новый обработчик.
func NewGetRankingHandler(
	cohorts leaderboard.CohortRepository,
	attempts attempt.Source,
	ranking *leaderboard.Service,
	log *logger.Logger,
	opts ...GetRankingOption,
) *GetRankingHandler {
	if ranking == nil {
		ranking = leaderboard.NewService(leaderboard.Options{})
	}
	if log == nil {
		log = logger.Nop()
	}
	h := &GetRankingHandler{
		cohorts:  cohorts,
		attempts: attempts,
		ranking:  ranking,
		period:   leaderboard.PeriodWeek,
		logger:   log.With(logger.Component("get_ranking")),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle выполняет запрос рейтинга.
func (h *GetRankingHandler) Handle(ctx context.Context, query GetRankingQuery) (*RankingDTO, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if !enabled(h.features, config.FeatureRanking, query.LearnerID) {
		return nil, ErrFeatureDisabled
	}

	profile, err := h.cohorts.CohortOf(ctx, query.LearnerID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, err
		}
		return nil, fetchErr("GetRanking", err)
	}

	var (
		members  []leaderboard.Member
		records  []attempt.Record
		baseline *leaderboard.Baseline
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		members, err = h.cohorts.Members(gctx, profile.Cohort)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = h.attempts.ListByLearner(gctx, query.LearnerID)
		return err
	})
	if h.baselines != nil {
		g.Go(func() error {
			baseline = h.loadBaseline(gctx, profile.Cohort)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fetchErr("GetRanking", err)
	}

	standings := make([]leaderboard.Standing, 0, len(members))
	for _, m := range members {
		standings = append(standings, leaderboard.NewStanding(m.LearnerID, m.DisplayName, progress.BuildAggregate(m.Attempts)))
	}
	self := leaderboard.NewStanding(query.LearnerID, profile.DisplayName, progress.BuildAggregate(records))

	result := h.ranking.Rank(self, standings, baseline, query.Limit)
	dto := AssembleRanking(profile.Cohort, result)
	return &dto, nil
}

// loadBaseline читает снимок прошлого периода. Отсутствие или сбой
// дают nil: тренд тогда нейтральный.
func (h *GetRankingHandler) loadBaseline(ctx context.Context, cohort string) *leaderboard.Baseline {
	period := h.period.PreviousKey(h.clock.now())
	b, err := h.baselines.Load(ctx, cohort, period)
	if err != nil {
		if !shared.IsNotFound(err) {
			h.logger.Warn("baseline unavailable",
				logger.Cohort(cohort),
				logger.String("period", period),
				logger.Err(err),
			)
		}
		return nil
	}
	if b.Basis != h.ranking.Basis() {
		return nil
	}
	return b
}
