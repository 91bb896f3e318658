package progress

import (
	"fmt"
	"time"

	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/attempt"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/shared"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 10, 0, 0, 0, time.UTC)
}

func completed(id, quizID, subjectID string, score, total int, at time.Time) attempt.Record {
	return attempt.Record{
		ID:          id,
		LearnerID:   "learner-1",
		QuizID:      quizID,
		QuizTitle:   "Quiz " + quizID,
		SubjectID:   subjectID,
		SubjectName: "Subject " + subjectID,
		Score:       shared.Some(score),
		TotalPoints: total,
		CompletedAt: shared.Some(at),
		CreatedAt:   at.Add(-15 * time.Minute),
	}
}

func inProgress(id, quizID string, created time.Time) attempt.Record {
	return attempt.Record{
		ID:          id,
		LearnerID:   "learner-1",
		QuizID:      quizID,
		TotalPoints: 100,
		CreatedAt:   created,
	}
}

// daily returns one completed attempt per day starting at start, with the given scores.
func daily(start time.Time, subjectID string, scores ...int) []attempt.Record {
	records := make([]attempt.Record, 0, len(scores))
	for i, s := range scores {
		id := fmt.Sprintf("a%02d", i+1)
		records = append(records, completed(id, "q"+id, subjectID, s, 100, start.AddDate(0, 0, i)))
	}
	return records
}

func awardIDs(awards []Award) []string {
	ids := make([]string, 0, len(awards))
	for _, a := range awards {
		ids = append(ids, a.ID)
	}
	return ids
}

func analyze(records []attempt.Record, now time.Time) Report {
	return NewAnalyzer(nil, DefaultStreakOptions()).Analyze(records, now)
}
