package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "terminal_run", cfg.Analytics.StreakPolicy)
	assert.Equal(t, 20, cfg.Analytics.MonthlyTarget)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Address())
}

func TestLoadFile_YAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := `
app:
  name: progress-test
analytics:
  ranking_basis: average_score
  leaderboard_size: 25
  stats_cache_ttl: 1m
http:
  port: 9000
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	cfg := Default()
	require.NoError(t, cfg.loadFile(path))

	assert.Equal(t, "progress-test", cfg.App.Name)
	assert.Equal(t, "average_score", cfg.Analytics.RankingBasis)
	assert.Equal(t, 25, cfg.Analytics.LeaderboardSize)
	assert.Equal(t, time.Minute, cfg.Analytics.StatsCacheTTL)
	assert.Equal(t, 9000, cfg.HTTP.Port)
	// untouched keys keep defaults
	assert.Equal(t, "week", cfg.Analytics.BaselinePeriod)
}

func TestLoadFile_MissingIsIgnored(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.loadFile(filepath.Join(t.TempDir(), "absent.yaml")))
	assert.Equal(t, "quizmentor-progress", cfg.App.Name)
}

func TestApplyEnv_OverridesFile(t *testing.T) {
	t.Setenv("ANALYTICS_MONTHLY_TARGET", "12")
	t.Setenv("ANALYTICS_STREAK_POLICY", "active_only")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "quiz")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Default()
	cfg.applyEnv()

	assert.Equal(t, 12, cfg.Analytics.MonthlyTarget)
	assert.Equal(t, "active_only", cfg.Analytics.StreakPolicy)
	assert.Equal(t, "postgres://quiz:secret@db:5432/quizmentor?sslmode=disable", cfg.Database.URL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
}

func TestValidate_CollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Analytics.StreakPolicy = "forever"
	cfg.Analytics.RankingBasis = "xp"
	cfg.App.Environment = EnvProduction

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "StreakPolicy")
	assert.Contains(t, err.Error(), "RankingBasis")
	assert.Contains(t, err.Error(), "DATABASE_URL is required in production")
}

func TestValidate_RetryDelays(t *testing.T) {
	cfg := Default()
	cfg.Resilience.RetryMaxDelay = cfg.Resilience.RetryBaseDelay / 2

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RetryMaxDelay")
}

func TestFeatureFlags(t *testing.T) {
	ff := NewFeatureFlags()

	assert.True(t, ff.IsEnabled(FeatureAchievements, nil))
	assert.False(t, ff.IsEnabled(FeatureResponseCache, nil))
	assert.False(t, ff.IsEnabled("unknown.flag", nil))

	require.NoError(t, ff.DisableFeature(FeatureRanking))
	assert.False(t, ff.IsEnabled(FeatureRanking, &FeatureContext{LearnerID: "l1"}))

	ff.SetLearnerOverride("l1", FeatureRanking, true)
	assert.True(t, ff.IsEnabled(FeatureRanking, &FeatureContext{LearnerID: "l1"}))
	ff.ClearLearnerOverrides("l1")
	assert.False(t, ff.IsEnabled(FeatureRanking, &FeatureContext{LearnerID: "l1"}))

	assert.ErrorIs(t, ff.SetRolloutPercent(FeatureRanking, 101), ErrInvalidRolloutPercent)
	assert.ErrorIs(t, ff.EnableFeature("nope"), ErrFeatureNotFound)

	var none *FeatureFlags
	assert.True(t, none.IsEnabled(FeatureStreaks, nil))
}

func TestFeatureFlags_RolloutIsStable(t *testing.T) {
	ff := NewFeatureFlags()
	require.NoError(t, ff.SetRolloutPercent(FeatureRanking, 50))

	ctx := &FeatureContext{LearnerID: "learner-42"}
	first := ff.IsEnabled(FeatureRanking, ctx)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ff.IsEnabled(FeatureRanking, ctx))
	}
}

func TestFeatureFlags_FromEnvironment(t *testing.T) {
	t.Setenv("FEATURE_PROGRESS_RESPONSE_CACHE", "true")
	t.Setenv("FEATURE_PROGRESS_AWARD_LEDGER", "false")

	ff := LoadFeatureFlags()
	assert.True(t, ff.IsEnabled(FeatureResponseCache, nil))
	assert.False(t, ff.IsEnabled(FeatureAwardLedger, nil))
}
