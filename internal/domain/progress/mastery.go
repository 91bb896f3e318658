package progress

import (
	"sort"
	"time"

	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/attempt"
)

// MasteryThreshold - минимальный средний балл по предмету для освоения.
// Сравнивается с процентом от максимума квиза.
const MasteryThreshold = 90.0

// SubjectMastery - промежуточный факт по одному предмету.
type SubjectMastery struct {
	SubjectID        string
	SubjectName      string
	AverageScore     float64
	Attempts         int
	FirstCompletedAt time.Time
}

// IsMastered возвращает true, если средний балл достиг порога.
func (m SubjectMastery) IsMastered() bool {
	return m.Attempts > 0 && m.AverageScore >= MasteryThreshold
}

// ComputeMastery считает средний процент по каждому предмету среди завершённых
// попыток. Попытки без предмета пропускаются. Результат упорядочен по первой
// завершённой попытке, затем по SubjectID.
func ComputeMastery(records []attempt.Record) []SubjectMastery {
	type acc struct {
		fact SubjectMastery
		sum  float64
	}

	bySubject := make(map[string]*acc)
	for _, r := range attempt.Completed(records) {
		if r.SubjectID == "" {
			continue
		}
		a, ok := bySubject[r.SubjectID]
		if !ok {
			a = &acc{fact: SubjectMastery{
				SubjectID:        r.SubjectID,
				SubjectName:      r.SubjectName,
				FirstCompletedAt: r.CompletedTime(),
			}}
			bySubject[r.SubjectID] = a
		}
		a.sum += r.Percent()
		a.fact.Attempts++
		if a.fact.SubjectName == "" {
			a.fact.SubjectName = r.SubjectName
		}
	}

	result := make([]SubjectMastery, 0, len(bySubject))
	for _, a := range bySubject {
		a.fact.AverageScore = a.sum / float64(a.fact.Attempts)
		result = append(result, a.fact)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].FirstCompletedAt.Equal(result[j].FirstCompletedAt) {
			return result[i].FirstCompletedAt.Before(result[j].FirstCompletedAt)
		}
		return result[i].SubjectID < result[j].SubjectID
	})

	return result
}
