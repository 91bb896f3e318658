package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/attempt"
)

func TestPerformanceSeries_ChronologicalCompletedOnly(t *testing.T) {
	noName := completed("a3", "q3", "phys", 70, 100, day(2024, 1, 4))
	noName.SubjectName = ""

	records := []attempt.Record{
		completed("a2", "q2", "math", 90, 100, day(2024, 1, 3)),
		inProgress("a9", "q9", day(2024, 1, 5)),
		noName,
		completed("a1", "q1", "math", 60, 100, day(2024, 1, 1)),
	}

	assert.Equal(t, []PerformancePoint{
		{Date: "2024-01-01", Score: 60, Subject: "Subject math"},
		{Date: "2024-01-03", Score: 90, Subject: "Subject math"},
		{Date: "2024-01-04", Score: 70, Subject: "phys"},
	}, PerformanceSeries(records))

	assert.Empty(t, PerformanceSeries(nil))
}
