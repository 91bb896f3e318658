package progress

import (
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/attempt"
	"github.com/Oyasikelly/QuizMentor-sub000/pkg/timeutil"
)

// PerformancePoint - одна точка графика успеваемости.
type PerformancePoint struct {
	Date    string
	Score   int
	Subject string
}

// PerformanceSeries возвращает по точке на каждую завершённую попытку
// в хронологическом порядке.
func PerformanceSeries(records []attempt.Record) []PerformancePoint {
	completed := attempt.Completed(records)
	points := make([]PerformancePoint, 0, len(completed))
	for _, r := range completed {
		subject := r.SubjectName
		if subject == "" {
			subject = r.SubjectID
		}
		points = append(points, PerformancePoint{
			Date:    timeutil.DayKey(r.CompletedTime()),
			Score:   r.ScoreOrZero(),
			Subject: subject,
		})
	}
	return points
}
