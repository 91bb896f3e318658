package shared

import (
	"strings"
	"unicode"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// MaxIDLength bounds learner and cohort identifiers.
const MaxIDLength = 128

// LearnerID identifies a learner. The format is owned by the attempt store,
// so only emptiness, length and printable ASCII are enforced.
type LearnerID string

// IsValid checks if the learner ID is well formed.
func (l LearnerID) IsValid() bool {
	return isValidID(string(l))
}

// String returns the string representation.
func (l LearnerID) String() string {
	return string(l)
}

// IsEmpty checks if the ID is empty.
func (l LearnerID) IsEmpty() bool {
	return l == ""
}

// NewLearnerID trims and validates a raw learner identifier.
func NewLearnerID(raw string) (LearnerID, error) {
	id := LearnerID(strings.TrimSpace(raw))
	if id.IsEmpty() {
		return "", ErrMissingLearnerID
	}
	if !id.IsValid() {
		return "", ErrInvalidLearnerID
	}
	return id, nil
}

// CohortID identifies a comparison group, e.g. a department.
type CohortID string

// IsValid checks if the cohort ID is well formed.
func (c CohortID) IsValid() bool {
	return isValidID(string(c))
}

// String returns the string representation.
func (c CohortID) String() string {
	return string(c)
}

// NewCohortID trims and validates a raw cohort identifier.
func NewCohortID(raw string) (CohortID, error) {
	id := CohortID(strings.TrimSpace(raw))
	if !id.IsValid() {
		return "", ErrInvalidCohort
	}
	return id, nil
}

func isValidID(s string) bool {
	if s == "" || len(s) > MaxIDLength {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) || r == '/' {
			return false
		}
	}
	return true
}

// ═══════════════════════════════════════════════════════════════════════════
// Percentage Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Percentage is an integer in [0, 100].
type Percentage int

// ClampPercentage bounds v to [0, 100].
func ClampPercentage(v int) Percentage {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return Percentage(v)
	}
}

// Int returns the underlying value.
func (p Percentage) Int() int {
	return int(p)
}
