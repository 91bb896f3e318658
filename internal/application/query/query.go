// Package query contains read operations (CQRS - Queries).
// Каждый запрос проверяет параметры до любого обращения к хранилищам,
// затем прогоняет историю попыток через чистые этапы домена progress.
package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Oyasikelly/QuizMentor-sub000/config"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/shared"
	"github.com/Oyasikelly/QuizMentor-sub000/pkg/timeutil"
)

// validate проверяет теги `validate` у структур запросов.
var validate = validator.New()

// ErrFeatureDisabled возвращается, когда запрос выключен флагом.
var ErrFeatureDisabled = shared.NewDomainError("query", "Feature", shared.ErrNotFound, "feature is disabled")

// FeatureGate - часть config.FeatureFlags, нужная обработчикам.
type FeatureGate interface {
	IsEnabled(featureName string, ctx *config.FeatureContext) bool
}

// Clock возвращает текущее время. Подменяется в тестах.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return timeutil.Now()
	}
	return c().UTC()
}

// checkLearner нормализует ID ученика и проверяет теги запроса.
// Ошибки имеют вид invalid-request.
func checkLearner(op string, raw *string, q any) error {
	id, err := shared.NewLearnerID(*raw)
	if err != nil {
		return err
	}
	*raw = id.String()

	if err := validate.Struct(q); err != nil {
		return shared.WrapError("query", op, shared.ErrValidation, describeValidation(err), err)
	}
	return nil
}

func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

// enabled проверяет флаг; nil-гейт включает всё.
func enabled(gate FeatureGate, feature, learnerID string) bool {
	if gate == nil {
		return true
	}
	return gate.IsEnabled(feature, &config.FeatureContext{LearnerID: learnerID})
}

// fetchErr переводит сбой источника данных в upstream-failure.
func fetchErr(op string, err error) error {
	return shared.Upstream("query", op, err)
}
