// Package jobs contains implementations of scheduled jobs for QuizMentor.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/leaderboard"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/progress"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/shared"
	"github.com/Oyasikelly/QuizMentor-sub000/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD BASELINES JOB
// ══════════════════════════════════════════════════════════════════════════════

// RecordBaselinesJob snapshots every cohort's ranking values for the current
// period. The ranking query reads the previous period's snapshot to derive trends.
type RecordBaselinesJob struct {
	cohorts   leaderboard.CohortRepository
	baselines leaderboard.BaselineStore
	publisher shared.EventPublisher
	logger    *logger.Logger
	config    RecordBaselinesConfig
	now       func() time.Time

	lastStats atomic.Pointer[RecordStats]
}

// RecordBaselinesConfig contains configuration for the job.
type RecordBaselinesConfig struct {
	Basis  leaderboard.Basis
	Period leaderboard.Period
}

// DefaultRecordBaselinesConfig returns sensible defaults.
func DefaultRecordBaselinesConfig() RecordBaselinesConfig {
	return RecordBaselinesConfig{
		Basis:  leaderboard.BasisTotalPoints,
		Period: leaderboard.PeriodWeek,
	}
}

// RecordStats contains statistics from one run.
type RecordStats struct {
	Period          string
	StartedAt       time.Time
	Duration        time.Duration
	CohortsRecorded int
	MembersRecorded int
	Failed          []string
}

// NewRecordBaselinesJob creates the job. publisher may be nil.
func NewRecordBaselinesJob(
	cohorts leaderboard.CohortRepository,
	baselines leaderboard.BaselineStore,
	publisher shared.EventPublisher,
	log *logger.Logger,
	config RecordBaselinesConfig,
) *RecordBaselinesJob {
	if log == nil {
		log = logger.Nop()
	}
	if !config.Basis.IsValid() {
		config.Basis = leaderboard.BasisTotalPoints
	}
	if config.Period == "" {
		config.Period = leaderboard.PeriodWeek
	}

	return &RecordBaselinesJob{
		cohorts:   cohorts,
		baselines: baselines,
		publisher: publisher,
		logger:    log.With(logger.Component("record_baselines")),
		config:    config,
		now:       time.Now,
	}
}

// Name returns the job name.
func (j *RecordBaselinesJob) Name() string {
	return "record_baselines"
}

// Description returns a human-readable description.
func (j *RecordBaselinesJob) Description() string {
	return "Records per-cohort ranking baselines used for trend comparison"
}

// Run records the current period for every cohort.
// A failing cohort does not stop the others; their errors are joined.
func (j *RecordBaselinesJob) Run(ctx context.Context) error {
	log := j.logger

	startedAt := j.now().UTC()
	stats := &RecordStats{
		Period:    j.config.Period.Key(startedAt),
		StartedAt: startedAt,
	}
	defer func() {
		stats.Duration = j.now().Sub(startedAt)
		j.lastStats.Store(stats)
	}()

	cohorts, err := j.cohorts.ListCohorts(ctx)
	if err != nil {
		return fmt.Errorf("list cohorts: %w", err)
	}

	var errs []error
	for _, cohort := range cohorts {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		members, err := j.recordCohort(ctx, cohort, stats.Period, startedAt)
		if err != nil {
			stats.Failed = append(stats.Failed, cohort)
			errs = append(errs, fmt.Errorf("cohort %s: %w", cohort, err))
			log.Warn("baseline not recorded", logger.Cohort(cohort), logger.Err(err))
			continue
		}

		stats.CohortsRecorded++
		stats.MembersRecorded += members
	}

	log.Info("baselines recorded",
		logger.String("period", stats.Period),
		logger.Int("cohorts", stats.CohortsRecorded),
		logger.Int("members", stats.MembersRecorded),
		logger.Int("failed", len(stats.Failed)),
	)

	return errors.Join(errs...)
}

func (j *RecordBaselinesJob) recordCohort(ctx context.Context, cohort, period string, at time.Time) (int, error) {
	members, err := j.cohorts.Members(ctx, cohort)
	if err != nil {
		return 0, err
	}

	standings := make([]leaderboard.Standing, 0, len(members))
	for _, m := range members {
		standings = append(standings, leaderboard.NewStanding(m.LearnerID, m.DisplayName, progress.BuildAggregate(m.Attempts)))
	}

	baseline := leaderboard.NewBaseline(cohort, period, j.config.Basis, standings, at)
	if err := j.baselines.Save(ctx, baseline); err != nil {
		return 0, err
	}

	if j.publisher != nil {
		if err := j.publisher.Publish(shared.NewBaselineRecordedEvent(cohort, period, baseline.Count(), at)); err != nil {
			j.logger.Warn("baseline event not published", logger.Cohort(cohort), logger.Err(err))
		}
	}
	return baseline.Count(), nil
}

// LastStats returns statistics from the most recent run, or nil.
func (j *RecordBaselinesJob) LastStats() *RecordStats {
	return j.lastStats.Load()
}
