package progress

import (
	"fmt"
	"sort"
	"time"

	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT & BADGE TYPES
// ══════════════════════════════════════════════════════════════════════════════

// AchievementType - категория достижения.
type AchievementType string

const (
	TypeMilestone   AchievementType = "milestone"
	TypeConsistency AchievementType = "consistency"
	TypeMastery     AchievementType = "mastery"
	TypeImprovement AchievementType = "improvement"
	TypePerformance AchievementType = "performance"
)

// CelebrationLevel - насколько ярко UI отмечает достижение.
type CelebrationLevel string

const (
	CelebrationNormal  CelebrationLevel = "normal"
	CelebrationSpecial CelebrationLevel = "special"
)

// Rarity - редкость значка. Используется только для отображения.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Achievement - полученное достижение.
type Achievement struct {
	ID               string
	Type             AchievementType
	Title            string
	Description      string
	EarnedAt         time.Time
	Points           int
	CelebrationLevel CelebrationLevel
}

// Badge - значок на полке ученика. EarnedAt отсутствует, если значок не получен.
type Badge struct {
	ID           string
	Name         string
	Description  string
	Icon         string
	Category     AchievementType
	Rarity       Rarity
	EarnedAt     shared.Optional[time.Time]
	Requirements string
}

// ══════════════════════════════════════════════════════════════════════════════
// RULE IDS
// ══════════════════════════════════════════════════════════════════════════════

const (
	RuleFirstQuiz      = "first-quiz"
	RuleTenQuizzes     = "ten-quizzes"
	RuleSevenDayStreak = "seven-day-streak"
	RulePerfectScore   = "perfect-score"
	RuleMastery        = "mastery"
	RuleImprovement    = "improvement"
)

// AwardID строит детерминированный ID награды.
func AwardID(ruleID, subjectID string) string {
	if subjectID == "" {
		return ruleID
	}
	return ruleID + "-" + subjectID
}

// Award - факт срабатывания правила. Из него каталог строит достижение и значок.
type Award struct {
	ID          string
	RuleID      string
	SubjectID   string
	SubjectName string
	EarnedAt    time.Time
}

// subjectLabel возвращает название предмета, либо его ID.
func (a Award) subjectLabel() string {
	if a.SubjectName != "" {
		return a.SubjectName
	}
	return a.SubjectID
}

// NewAward создаёт награду с детерминированным ID.
func NewAward(ruleID, subjectID, subjectName string, earnedAt time.Time) Award {
	return Award{
		ID:          AwardID(ruleID, subjectID),
		RuleID:      ruleID,
		SubjectID:   subjectID,
		SubjectName: subjectName,
		EarnedAt:    earnedAt.UTC(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// DESCRIPTORS
// ══════════════════════════════════════════════════════════════════════════════

// Descriptor описывает, как отображать награду одного правила.
// Для правил по предметам Title, Description и BadgeName содержат %s.
type Descriptor struct {
	RuleID       string
	Type         AchievementType
	Title        string
	Description  string
	Points       int
	Celebration  CelebrationLevel
	BadgeOnly    bool
	PerSubject   bool
	BadgeName    string
	BadgeDesc    string
	Icon         string
	Rarity       Rarity
	Requirements string
}

func (d Descriptor) text(format, subject string) string {
	if !d.PerSubject {
		return format
	}
	if subject == "" {
		subject = "any subject"
	}
	return fmt.Sprintf(format, subject)
}

// Achievement строит достижение для награды. Для значков без очков ok = false.
func (d Descriptor) Achievement(a Award) (Achievement, bool) {
	if d.BadgeOnly {
		return Achievement{}, false
	}
	return Achievement{
		ID:               a.ID,
		Type:             d.Type,
		Title:            d.text(d.Title, a.subjectLabel()),
		Description:      d.text(d.Description, a.subjectLabel()),
		EarnedAt:         a.EarnedAt,
		Points:           d.Points,
		CelebrationLevel: d.Celebration,
	}, true
}

// Badge строит значок. При award == nil значок не получен.
func (d Descriptor) Badge(a *Award) Badge {
	b := Badge{
		ID:           d.RuleID,
		Name:         d.text(d.BadgeName, ""),
		Description:  d.text(d.BadgeDesc, ""),
		Icon:         d.Icon,
		Category:     d.Type,
		Rarity:       d.Rarity,
		EarnedAt:     shared.None[time.Time](),
		Requirements: d.text(d.Requirements, ""),
	}
	if a != nil {
		b.ID = a.ID
		b.Name = d.text(d.BadgeName, a.subjectLabel())
		b.Description = d.text(d.BadgeDesc, a.subjectLabel())
		b.Requirements = d.text(d.Requirements, a.subjectLabel())
		b.EarnedAt = shared.Some(a.EarnedAt)
	}
	return b
}

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG
// ══════════════════════════════════════════════════════════════════════════════

// Catalog - неизменяемый набор описаний наград в порядке отображения.
type Catalog struct {
	descriptors []Descriptor
	byRule      map[string]Descriptor
}

// NewCatalog создаёт каталог. Повторяющиеся RuleID отбрасываются.
func NewCatalog(descriptors ...Descriptor) *Catalog {
	c := &Catalog{byRule: make(map[string]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		if _, dup := c.byRule[d.RuleID]; dup {
			continue
		}
		c.descriptors = append(c.descriptors, d)
		c.byRule[d.RuleID] = d
	}
	return c
}

// DefaultCatalog возвращает базовый каталог из шести правил.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		Descriptor{
			RuleID: RuleFirstQuiz, Type: TypeMilestone,
			Title: "First Steps", Description: "Completed your first quiz",
			Points: 10, Celebration: CelebrationNormal,
			BadgeName: "First Quiz", BadgeDesc: "Complete your first quiz",
			Icon: "rocket", Rarity: RarityCommon, Requirements: "Complete 1 quiz",
		},
		Descriptor{
			RuleID: RuleTenQuizzes, Type: TypeMilestone,
			Title: "Quiz Enthusiast", Description: "Completed 10 quizzes",
			Points: 20, Celebration: CelebrationNormal,
			BadgeName: "Ten Quizzes", BadgeDesc: "Complete ten quizzes",
			Icon: "books", Rarity: RarityCommon, Requirements: "Complete 10 quizzes",
		},
		Descriptor{
			RuleID: RuleSevenDayStreak, Type: TypeConsistency,
			Title: "Week Warrior", Description: "Studied 7 days in a row",
			Points: 30, Celebration: CelebrationSpecial,
			BadgeName: "Seven-Day Streak", BadgeDesc: "Keep a 7-day study streak",
			Icon: "flame", Rarity: RarityEpic, Requirements: "Complete a quiz on 7 consecutive days",
		},
		Descriptor{
			RuleID: RulePerfectScore, Type: TypePerformance,
			Title: "Perfect Score", Description: "Scored full points on a quiz",
			Celebration: CelebrationSpecial, BadgeOnly: true,
			BadgeName: "Perfect Score", BadgeDesc: "Score full points on a quiz",
			Icon: "star", Rarity: RarityRare, Requirements: "Score 100% on any quiz",
		},
		Descriptor{
			RuleID: RuleMastery, Type: TypeMastery, PerSubject: true,
			Title: "Mastery: %s", Description: "Averaged 90 or more in %s",
			Points: 25, Celebration: CelebrationSpecial,
			BadgeName: "Mastery: %s", BadgeDesc: "Master %s",
			Icon: "crown", Rarity: RarityRare, Requirements: "Average 90 or more in %s",
		},
		Descriptor{
			RuleID: RuleImprovement, Type: TypeImprovement,
			Title: "Rising Star", Description: "Improved your score by 20% or more",
			Points: 20, Celebration: CelebrationNormal,
			BadgeName: "Improvement", BadgeDesc: "Improve on your first score by 20%",
			Icon: "chart", Rarity: RarityRare, Requirements: "Score at least 20% higher than on your first quiz",
		},
	)
}

// Descriptor возвращает описание правила.
func (c *Catalog) Descriptor(ruleID string) (Descriptor, bool) {
	d, ok := c.byRule[ruleID]
	return d, ok
}

// All возвращает описания в порядке отображения.
func (c *Catalog) All() []Descriptor {
	out := make([]Descriptor, len(c.descriptors))
	copy(out, c.descriptors)
	return out
}

// Showcase - достижения и полка значков для ответа.
type Showcase struct {
	Achievements []Achievement
	Badges       []Badge
}

// Showcase строит достижения и полку значков из наград.
// Награды неизвестных каталогу правил пропускаются.
// Достижения упорядочены по EarnedAt, затем по ID.
// Полка содержит каждый значок каталога; значки по предметам перечисляются
// для каждого освоенного предмета, а при их отсутствии показывается один
// неполученный значок-заглушка.
func (c *Catalog) Showcase(awards []Award) Showcase {
	sorted := make([]Award, len(awards))
	copy(sorted, awards)
	SortAwards(sorted)

	byRule := make(map[string][]Award)
	achievements := make([]Achievement, 0, len(sorted))
	for _, a := range sorted {
		d, ok := c.byRule[a.RuleID]
		if !ok {
			continue
		}
		byRule[a.RuleID] = append(byRule[a.RuleID], a)
		if ach, ok := d.Achievement(a); ok {
			achievements = append(achievements, ach)
		}
	}

	badges := make([]Badge, 0, len(c.descriptors))
	for _, d := range c.descriptors {
		earned := byRule[d.RuleID]
		if len(earned) == 0 {
			badges = append(badges, d.Badge(nil))
			continue
		}
		if !d.PerSubject {
			badges = append(badges, d.Badge(&earned[0]))
			continue
		}
		for i := range earned {
			badges = append(badges, d.Badge(&earned[i]))
		}
	}

	return Showcase{Achievements: achievements, Badges: badges}
}

// SortAwards упорядочивает награды по EarnedAt, затем по ID.
func SortAwards(awards []Award) {
	sort.SliceStable(awards, func(i, j int) bool {
		if !awards[i].EarnedAt.Equal(awards[j].EarnedAt) {
			return awards[i].EarnedAt.Before(awards[j].EarnedAt)
		}
		return awards[i].ID < awards[j].ID
	})
}
