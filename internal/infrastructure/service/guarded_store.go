// Package service adapts infrastructure stores to the domain contracts.
// Every store read goes through a circuit breaker, and store failures
// are reported to the application layer as upstream failures.
package service

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Oyasikelly/QuizMentor-sub000/config"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/attempt"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/leaderboard"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/progress"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/shared"
	"github.com/Oyasikelly/QuizMentor-sub000/pkg/circuitbreaker"
	"github.com/Oyasikelly/QuizMentor-sub000/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// BREAKER FACTORY
// ══════════════════════════════════════════════════════════════════════════════

// Breakers builds store breakers and exports their state.
type Breakers struct {
	cfg    config.ResilienceConfig
	logger *logger.Logger
	state  *prometheus.GaugeVec
}

// NewBreakers creates the factory. reg may be nil.
func NewBreakers(cfg config.ResilienceConfig, log *logger.Logger, reg prometheus.Registerer) *Breakers {
	if log == nil {
		log = logger.Nop()
	}
	b := &Breakers{
		cfg:    cfg,
		logger: log.With(logger.Component("circuitbreaker")),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "quizmentor",
			Subsystem: "store",
			Name:      "circuit_state",
			Help:      "Store circuit breaker state (0 closed, 1 open, 2 half-open).",
		}, []string{"breaker"}),
	}
	if reg != nil {
		reg.MustRegister(b.state)
	}
	return b
}

// New returns a breaker named after the guarded store.
// Not-found and invalid-input outcomes do not count as failures.
func (b *Breakers) New(name string) *circuitbreaker.CircuitBreaker {
	b.state.WithLabelValues(name).Set(float64(circuitbreaker.StateClosed))

	return circuitbreaker.StoreBreaker(name,
		b.cfg.CircuitBreakerThreshold,
		b.cfg.CircuitBreakerTimeout,
		func(name string, from, to circuitbreaker.State) {
			b.state.WithLabelValues(name).Set(float64(to))
			b.logger.Warn("circuit state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
		circuitbreaker.WithIsFailure(isStoreFailure),
	)
}

func isStoreFailure(err error) bool {
	return !shared.IsNotFound(err) && !errors.Is(err, shared.ErrInvalidInput)
}

// ══════════════════════════════════════════════════════════════════════════════
// ATTEMPT SOURCE
// ══════════════════════════════════════════════════════════════════════════════

// GuardedAttemptSource wraps an attempt.Source with a circuit breaker.
type GuardedAttemptSource struct {
	next    attempt.Source
	breaker *circuitbreaker.CircuitBreaker
}

// NewGuardedAttemptSource creates the adapter.
func NewGuardedAttemptSource(next attempt.Source, breaker *circuitbreaker.CircuitBreaker) *GuardedAttemptSource {
	return &GuardedAttemptSource{next: next, breaker: breaker}
}

// ListByLearner implements attempt.Source.
func (s *GuardedAttemptSource) ListByLearner(ctx context.Context, learnerID string) ([]attempt.Record, error) {
	records, err := circuitbreaker.ExecuteWithResult(ctx, s.breaker, func(ctx context.Context) ([]attempt.Record, error) {
		return s.next.ListByLearner(ctx, learnerID)
	})
	if err != nil {
		return nil, shared.WrapError("attempt", "ListByLearner", shared.ErrAttemptStoreUnavailable, "failed to list attempts", err)
	}
	return records, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// COHORT REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// GuardedCohortRepository wraps a leaderboard.CohortRepository with a circuit breaker.
type GuardedCohortRepository struct {
	next    leaderboard.CohortRepository
	breaker *circuitbreaker.CircuitBreaker
}

// NewGuardedCohortRepository creates the adapter.
func NewGuardedCohortRepository(next leaderboard.CohortRepository, breaker *circuitbreaker.CircuitBreaker) *GuardedCohortRepository {
	return &GuardedCohortRepository{next: next, breaker: breaker}
}

// CohortOf implements leaderboard.CohortRepository.
// An unknown learner is reported as not found, not as an upstream failure.
// A stored cohort that is empty or malformed is an upstream failure.
func (r *GuardedCohortRepository) CohortOf(ctx context.Context, learnerID string) (leaderboard.Member, error) {
	m, err := circuitbreaker.ExecuteWithResult(ctx, r.breaker, func(ctx context.Context) (leaderboard.Member, error) {
		return r.next.CohortOf(ctx, learnerID)
	})
	if err != nil {
		if shared.IsNotFound(err) {
			return leaderboard.Member{}, err
		}
		return leaderboard.Member{}, shared.WrapError("cohort", "CohortOf", shared.ErrCohortSourceUnavailable, "cohort read failed", err)
	}
	cohort, err := shared.NewCohortID(m.Cohort)
	if err != nil {
		return leaderboard.Member{}, shared.WrapError("cohort", "CohortOf", shared.ErrCohortSourceUnavailable, "learner has no usable cohort", err)
	}
	m.Cohort = cohort.String()
	return m, nil
}

// Members implements leaderboard.CohortRepository.
func (r *GuardedCohortRepository) Members(ctx context.Context, cohort string) ([]leaderboard.Member, error) {
	members, err := circuitbreaker.ExecuteWithResult(ctx, r.breaker, func(ctx context.Context) ([]leaderboard.Member, error) {
		return r.next.Members(ctx, cohort)
	})
	if err != nil {
		return nil, shared.WrapError("cohort", "Members", shared.ErrCohortSourceUnavailable, "cohort read failed", err)
	}
	return members, nil
}

// ListCohorts implements leaderboard.CohortRepository.
func (r *GuardedCohortRepository) ListCohorts(ctx context.Context) ([]string, error) {
	cohorts, err := circuitbreaker.ExecuteWithResult(ctx, r.breaker, r.next.ListCohorts)
	if err != nil {
		return nil, shared.WrapError("cohort", "ListCohorts", shared.ErrCohortSourceUnavailable, "cohort read failed", err)
	}
	return cohorts, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// AWARD LEDGER
// ══════════════════════════════════════════════════════════════════════════════

// GuardedAwardLedger wraps a progress.AwardLedger with a circuit breaker.
type GuardedAwardLedger struct {
	next    progress.AwardLedger
	breaker *circuitbreaker.CircuitBreaker
}

// NewGuardedAwardLedger creates the adapter.
func NewGuardedAwardLedger(next progress.AwardLedger, breaker *circuitbreaker.CircuitBreaker) *GuardedAwardLedger {
	return &GuardedAwardLedger{next: next, breaker: breaker}
}

// ListByLearner implements progress.AwardLedger.
func (l *GuardedAwardLedger) ListByLearner(ctx context.Context, learnerID string) ([]progress.LedgerEntry, error) {
	entries, err := circuitbreaker.ExecuteWithResult(ctx, l.breaker, func(ctx context.Context) ([]progress.LedgerEntry, error) {
		return l.next.ListByLearner(ctx, learnerID)
	})
	if err != nil {
		return nil, shared.Upstream("award_ledger", "ListByLearner", err)
	}
	return entries, nil
}

// Append implements progress.AwardLedger.
func (l *GuardedAwardLedger) Append(ctx context.Context, entries []progress.LedgerEntry) ([]progress.LedgerEntry, error) {
	inserted, err := circuitbreaker.ExecuteWithResult(ctx, l.breaker, func(ctx context.Context) ([]progress.LedgerEntry, error) {
		return l.next.Append(ctx, entries)
	})
	if err != nil {
		return nil, shared.Upstream("award_ledger", "Append", err)
	}
	return inserted, nil
}
