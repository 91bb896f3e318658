package shared

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLearnerID(t *testing.T) {
	id, err := NewLearnerID("  learner-42 ")
	require.NoError(t, err)
	assert.Equal(t, LearnerID("learner-42"), id)

	_, err = NewLearnerID("   ")
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.True(t, IsInvalidRequest(err))

	_, err = NewLearnerID("a/b")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = NewLearnerID(strings.Repeat("x", MaxIDLength+1))
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestDomainError_IsAndWrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Upstream("attempt", "ListByLearner", cause)

	assert.True(t, IsUpstreamFailure(err))
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsInvalidRequest(err))
	assert.Contains(t, err.Error(), "attempt.ListByLearner")

	// Already classified errors pass through untouched.
	assert.Same(t, ErrAttemptStoreUnavailable, Upstream("x", "y", ErrAttemptStoreUnavailable))
	assert.NoError(t, Upstream("x", "y", nil))
}

func TestOptional_Accessors(t *testing.T) {
	n := 3
	assert.Equal(t, 3, FromPtr(&n).OrElse(0))
	assert.Nil(t, FromPtr[int](nil).Ptr())

	at, ok := Some(5).Get()
	assert.True(t, ok)
	assert.Equal(t, 5, at)
	assert.Equal(t, 5, *Some(5).Ptr())
	assert.Equal(t, 7, None[int]().OrElse(7))
}

func TestClampPercentage(t *testing.T) {
	assert.Equal(t, Percentage(0), ClampPercentage(-5))
	assert.Equal(t, Percentage(100), ClampPercentage(250))
	assert.Equal(t, 42, ClampPercentage(42).Int())
}
