package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Events are internal: they feed logs and metrics,
// nothing is pushed to learners.
const (
	// Award events
	EventAwardEarned EventType = "progress.award_earned"

	// Ranking events
	EventBaselineRecorded EventType = "leaderboard.baseline_recorded"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string, at time.Time) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   at.UTC(),
		AggregateId: aggregateID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Award Events
// ═══════════════════════════════════════════════════════════════════════════

// AwardEarnedEvent is emitted when the ledger records an award for the first time.
type AwardEarnedEvent struct {
	BaseEvent
	LearnerID string    `json:"learner_id"`
	AwardID   string    `json:"award_id"`
	RuleID    string    `json:"rule_id"`
	EarnedAt  time.Time `json:"earned_at"`
}

// Payload implements Event interface.
func (e AwardEarnedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"learner_id": e.LearnerID,
		"award_id":   e.AwardID,
		"rule_id":    e.RuleID,
		"earned_at":  e.EarnedAt.Format(time.RFC3339),
	}
}

// NewAwardEarnedEvent creates a new AwardEarnedEvent.
func NewAwardEarnedEvent(learnerID, awardID, ruleID string, earnedAt, recordedAt time.Time) AwardEarnedEvent {
	return AwardEarnedEvent{
		BaseEvent: NewBaseEvent(EventAwardEarned, learnerID, recordedAt),
		LearnerID: learnerID,
		AwardID:   awardID,
		RuleID:    ruleID,
		EarnedAt:  earnedAt,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Ranking Events
// ═══════════════════════════════════════════════════════════════════════════

// BaselineRecordedEvent is emitted after a cohort baseline snapshot is stored.
type BaselineRecordedEvent struct {
	BaseEvent
	Cohort  string `json:"cohort"`
	Period  string `json:"period"`
	Members int    `json:"members"`
}

// Payload implements Event interface.
func (e BaselineRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"cohort":  e.Cohort,
		"period":  e.Period,
		"members": e.Members,
	}
}

// NewBaselineRecordedEvent creates a new BaselineRecordedEvent.
func NewBaselineRecordedEvent(cohort, period string, members int, at time.Time) BaselineRecordedEvent {
	return BaselineRecordedEvent{
		BaseEvent: NewBaseEvent(EventBaselineRecorded, cohort, at),
		Cohort:    cohort,
		Period:    period,
		Members:   members,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Bus contracts
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
