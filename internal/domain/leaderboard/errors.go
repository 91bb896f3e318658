package leaderboard

import "github.com/Oyasikelly/QuizMentor-sub000/internal/domain/shared"

// Ошибки домена лидерборда.
var (
	ErrInvalidBasis     = shared.ErrInvalidBasis
	ErrInvalidCohort    = shared.ErrInvalidCohort
	ErrBaselineNotFound = shared.ErrBaselineNotFound
	ErrInvalidPeriod    = shared.NewDomainError("leaderboard", "Validate", shared.ErrInvalidInput, "unknown baseline period")
)
