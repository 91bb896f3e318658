package progress

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// AWARD LEDGER
// ══════════════════════════════════════════════════════════════════════════════

// LedgerEntry - запись о полученной награде.
type LedgerEntry struct {
	LearnerID  string
	Award      Award
	RecordedAt time.Time
}

// AwardLedger - идемпотентное хранилище полученных наград.
// Ключ записи - (LearnerID, Award.ID); повторная запись не меняет EarnedAt.
type AwardLedger interface {
	// ListByLearner возвращает все записи ученика.
	ListByLearner(ctx context.Context, learnerID string) ([]LedgerEntry, error)

	// Append сохраняет записи, пропуская уже существующие.
	// Возвращает записи, которые действительно были добавлены.
	Append(ctx context.Context, entries []LedgerEntry) ([]LedgerEntry, error)
}

// Reconciliation - результат сверки свежей оценки с журналом.
type Reconciliation struct {
	// Awards - итоговый набор наград, упорядоченный по EarnedAt, затем ID.
	Awards []Award

	// Pending - награды, которых ещё нет в журнале.
	Pending []Award
}

// Reconcile объединяет свежую оценку с журналом:
//   - для наград из журнала EarnedAt берётся из журнала;
//   - награды из журнала, правило которых больше не срабатывает, сохраняются;
//   - новые награды попадают в Pending.
//
// Записи журнала с правилами, которых нет в каталоге, пропускаются.
func Reconcile(fresh []Award, recorded []LedgerEntry, catalog *Catalog) Reconciliation {
	merged := make(map[string]Award, len(fresh)+len(recorded))

	for _, e := range recorded {
		if _, ok := catalog.Descriptor(e.Award.RuleID); !ok {
			continue
		}
		a := e.Award
		a.ID = AwardID(a.RuleID, a.SubjectID)
		a.EarnedAt = a.EarnedAt.UTC()
		if prev, dup := merged[a.ID]; dup && !a.EarnedAt.Before(prev.EarnedAt) {
			continue
		}
		merged[a.ID] = a
	}

	pending := make([]Award, 0)
	for _, a := range fresh {
		if prev, ok := merged[a.ID]; ok {
			if prev.SubjectName == "" {
				prev.SubjectName = a.SubjectName
				merged[a.ID] = prev
			}
			continue
		}
		merged[a.ID] = a
		pending = append(pending, a)
	}

	awards := make([]Award, 0, len(merged))
	for _, a := range merged {
		awards = append(awards, a)
	}
	SortAwards(awards)
	SortAwards(pending)

	return Reconciliation{Awards: awards, Pending: pending}
}

// ToLedgerEntries превращает награды в записи журнала.
func ToLedgerEntries(learnerID string, awards []Award, recordedAt time.Time) []LedgerEntry {
	entries := make([]LedgerEntry, 0, len(awards))
	for _, a := range awards {
		entries = append(entries, LedgerEntry{
			LearnerID:  learnerID,
			Award:      a,
			RecordedAt: recordedAt.UTC(),
		})
	}
	return entries
}
