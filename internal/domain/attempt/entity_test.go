package attempt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/shared"
)

func at(day, hour int) shared.Optional[time.Time] {
	return shared.Some(time.Date(2024, 1, day, hour, 0, 0, 0, time.UTC))
}

func TestRecord_Coercion(t *testing.T) {
	r := Record{Score: shared.Some(-3), TotalPoints: -1}
	assert.Equal(t, 0, r.ScoreOrZero())
	assert.Equal(t, 0, r.TotalOrZero())
	assert.False(t, r.IsPerfect())

	assert.Equal(t, 0, Record{}.ScoreOrZero())
	assert.False(t, Record{}.IsCompleted())
	assert.True(t, Record{}.CompletedTime().IsZero())
}

func TestRecord_IsPerfect(t *testing.T) {
	assert.True(t, Record{Score: shared.Some(10), TotalPoints: 10}.IsPerfect())
	assert.False(t, Record{Score: shared.Some(0), TotalPoints: 0}.IsPerfect())
	assert.False(t, Record{TotalPoints: 0}.IsPerfect())
	assert.False(t, Record{Score: shared.Some(9), TotalPoints: 10}.IsPerfect())
}

func TestRecord_Percent(t *testing.T) {
	assert.InDelta(t, 100.0, Record{Score: shared.Some(10), TotalPoints: 10}.Percent(), 1e-9)
	assert.InDelta(t, 85.0, Record{Score: shared.Some(17), TotalPoints: 20}.Percent(), 1e-9)
	assert.InDelta(t, 73.0, Record{Score: shared.Some(73)}.Percent(), 1e-9)
	assert.Zero(t, Record{TotalPoints: 10}.Percent())
}

func TestRecord_StudyMinutes(t *testing.T) {
	created := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	r := Record{CreatedAt: created, CompletedAt: shared.Some(created.Add(12*time.Minute + 40*time.Second))}
	assert.Equal(t, 12, r.StudyMinutes())

	r.CompletedAt = shared.Some(created.Add(-time.Hour))
	assert.Equal(t, 0, r.StudyMinutes())

	assert.Equal(t, 0, Record{CreatedAt: created}.StudyMinutes())
}

func TestCompleted_FiltersAndOrders(t *testing.T) {
	records := []Record{
		{ID: "c", CompletedAt: at(3, 9)},
		{ID: "open"},
		{ID: "b", CompletedAt: at(1, 9)},
		{ID: "a", CompletedAt: at(1, 9)},
	}

	got := Completed(records)

	ids := make([]string, 0, len(got))
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
	assert.Equal(t, "c", records[0].ID, "input must not be reordered")
}
