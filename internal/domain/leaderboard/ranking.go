package leaderboard

import (
	"math"
	"sort"
)

// ══════════════════════════════════════════════════════════════════════════════
// RANKING SERVICE
// ══════════════════════════════════════════════════════════════════════════════

// DefaultLeaderboardSize - число строк лидерборда по умолчанию.
const DefaultLeaderboardSize = 10

// Options настраивает расчёт рейтинга.
type Options struct {
	Basis Basis
	Limit int
}

// PeerComparison - сравнение ученика с когортой.
type PeerComparison struct {
	CohortAverage  float64
	LearnerAverage float64
	Percentile     int
}

// Result - позиция ученика в когорте.
type Result struct {
	Rank        Rank
	CohortSize  int
	Percentile  int
	Trend       Trend
	Peer        PeerComparison
	Leaderboard []Entry
}

// Service считает рейтинг. Чистая функция от входных данных, без состояния.
type Service struct {
	defaults Options
}

// NewService создаёт сервис рейтинга с настройками по умолчанию.
func NewService(defaults Options) *Service {
	if !defaults.Basis.IsValid() {
		defaults.Basis = BasisTotalPoints
	}
	if defaults.Limit <= 0 {
		defaults.Limit = DefaultLeaderboardSize
	}
	return &Service{defaults: defaults}
}

// Basis возвращает базис рейтинга по умолчанию.
func (s *Service) Basis() Basis {
	return s.defaults.Basis
}

// Rank вычисляет место ученика в когорте.
//
// Политика: ранг = 1 + число участников со строго большим показателем,
// поэтому равные показатели делят место. Ученик всегда считается участником
// когорты: если его нет в cohort, он добавляется. baseline может быть nil.
func (s *Service) Rank(learner Standing, cohort []Standing, baseline *Baseline, limit int) Result {
	basis := s.defaults.Basis
	if limit <= 0 {
		limit = s.defaults.Limit
	}

	members := withLearner(learner, cohort)
	ranked := rankMembers(members, basis)

	var self Entry
	for _, e := range ranked {
		if e.LearnerID == learner.LearnerID {
			self = e
			break
		}
	}

	n := len(members)
	pct := Percentile(self.Rank, n)

	trend := TrendNeutral
	if baseline != nil {
		prev, ok := baseline.Value(learner.LearnerID)
		trend = CompareTrend(learner.Value(basis), prev, ok)
	}

	sum := 0.0
	for _, m := range members {
		sum += m.AverageScore
	}

	top := ranked
	if len(top) > limit {
		top = top[:limit]
	}
	board := make([]Entry, len(top))
	for i, e := range top {
		if baseline != nil {
			prev, ok := baseline.Value(e.LearnerID)
			e.Trend = CompareTrend(e.Value, prev, ok)
		}
		board[i] = e
	}

	return Result{
		Rank:       self.Rank,
		CohortSize: n,
		Percentile: pct,
		Trend:      trend,
		Peer: PeerComparison{
			CohortAverage:  sum / float64(n),
			LearnerAverage: learner.AverageScore,
			Percentile:     pct,
		},
		Leaderboard: board,
	}
}

// Percentile = round(100 * (1 - (rank-1)/n)). Для пустой когорты 0.
func Percentile(rank Rank, n int) int {
	if n <= 0 || !rank.IsValid() {
		return 0
	}
	return int(math.Round(100 * (1 - float64(rank-1)/float64(n))))
}

// withLearner возвращает когорту, гарантированно содержащую ученика.
// Запись ученика из когорты заменяется актуальной.
func withLearner(learner Standing, cohort []Standing) []Standing {
	members := make([]Standing, 0, len(cohort)+1)
	found := false
	for _, m := range cohort {
		if m.LearnerID == learner.LearnerID {
			if found {
				continue
			}
			found = true
			m = learner
		}
		members = append(members, m)
	}
	if !found {
		members = append(members, learner)
	}
	return members
}

// rankMembers сортирует участников по убыванию показателя и присваивает
// ранги с общим местом при равенстве.
func rankMembers(members []Standing, basis Basis) []Entry {
	entries := make([]Entry, len(members))
	for i, m := range members {
		entries[i] = Entry{
			LearnerID:   m.LearnerID,
			DisplayName: m.DisplayName,
			Points:      m.TotalPoints,
			Value:       m.Value(basis),
			Trend:       TrendNeutral,
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		// При равном показателе - по имени, затем по ID (стабильный порядок).
		if entries[i].DisplayName != entries[j].DisplayName {
			return entries[i].DisplayName < entries[j].DisplayName
		}
		return entries[i].LearnerID < entries[j].LearnerID
	})

	for i := range entries {
		if i > 0 && entries[i].Value == entries[i-1].Value {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = Rank(i + 1)
		}
	}
	return entries
}
