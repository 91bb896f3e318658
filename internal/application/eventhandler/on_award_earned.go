// Package eventhandler содержит обработчики доменных событий.
// Обработчики реагируют на запись наград и снимков когорт:
// пишут структурированные логи и обновляют метрики.
package eventhandler

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/shared"
	"github.com/Oyasikelly/QuizMentor-sub000/pkg/logger"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON AWARD EARNED HANDLER
// Срабатывает, когда журнал наград впервые записывает награду ученика.
// ═══════════════════════════════════════════════════════════════════════════

// OnAwardEarnedHandler логирует новые награды и считает их по правилам.
type OnAwardEarnedHandler struct {
	logger *logger.Logger
	earned *prometheus.CounterVec
}

// NewOnAwardEarnedHandler создаёт обработчик и регистрирует счётчик наград.
func NewOnAwardEarnedHandler(log *logger.Logger, reg prometheus.Registerer) *OnAwardEarnedHandler {
	if log == nil {
		log = logger.Nop()
	}

	h := &OnAwardEarnedHandler{
		logger: log.With(logger.Component("on_award_earned")),
		earned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quizmentor",
			Subsystem: "awards",
			Name:      "earned_total",
			Help:      "Awards recorded in the ledger for the first time.",
		}, []string{"rule_id"}),
	}
	if reg != nil {
		reg.MustRegister(h.earned)
	}
	return h
}

// Handle реализует shared.EventHandler.
func (h *OnAwardEarnedHandler) Handle(event shared.Event) error {
	e, ok := event.(shared.AwardEarnedEvent)
	if !ok {
		return fmt.Errorf("on_award_earned: unexpected event %T", event)
	}

	h.earned.WithLabelValues(e.RuleID).Inc()
	h.logger.Info("award earned",
		logger.LearnerID(e.LearnerID),
		logger.AwardID(e.AwardID),
		logger.String("rule_id", e.RuleID),
		logger.Time("earned_at", e.EarnedAt),
	)
	return nil
}

// Register подписывает обработчик на шину.
func (h *OnAwardEarnedHandler) Register(bus shared.EventSubscriber) error {
	return bus.Subscribe(shared.EventAwardEarned, h.Handle)
}
