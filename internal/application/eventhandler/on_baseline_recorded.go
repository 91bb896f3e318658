package eventhandler

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/shared"
	"github.com/Oyasikelly/QuizMentor-sub000/pkg/logger"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON BASELINE RECORDED HANDLER
// Срабатывает после сохранения снимка когорты для трендов.
// ═══════════════════════════════════════════════════════════════════════════

// OnBaselineRecordedHandler публикует размер последнего снимка когорты.
type OnBaselineRecordedHandler struct {
	logger  *logger.Logger
	members *prometheus.GaugeVec
}

// NewOnBaselineRecordedHandler создаёт обработчик и регистрирует метрику.
func NewOnBaselineRecordedHandler(log *logger.Logger, reg prometheus.Registerer) *OnBaselineRecordedHandler {
	if log == nil {
		log = logger.Nop()
	}

	h := &OnBaselineRecordedHandler{
		logger: log.With(logger.Component("on_baseline_recorded")),
		members: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "quizmentor",
			Subsystem: "baselines",
			Name:      "members",
			Help:      "Members captured by the latest cohort baseline.",
		}, []string{"cohort"}),
	}
	if reg != nil {
		reg.MustRegister(h.members)
	}
	return h
}

// Handle реализует shared.EventHandler.
func (h *OnBaselineRecordedHandler) Handle(event shared.Event) error {
	e, ok := event.(shared.BaselineRecordedEvent)
	if !ok {
		return fmt.Errorf("on_baseline_recorded: unexpected event %T", event)
	}

	h.members.WithLabelValues(e.Cohort).Set(float64(e.Members))
	h.logger.Info("baseline recorded",
		logger.Cohort(e.Cohort),
		logger.String("period", e.Period),
		logger.Int("members", e.Members),
	)
	return nil
}

// Register подписывает обработчик на шину.
func (h *OnBaselineRecordedHandler) Register(bus shared.EventSubscriber) error {
	return bus.Subscribe(shared.EventBaselineRecorded, h.Handle)
}
