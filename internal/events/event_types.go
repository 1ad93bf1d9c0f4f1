package events

import (
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSlaStarted  EventType = "sla_started"
	EventSlaPaused   EventType = "sla_paused"
	EventSlaResumed  EventType = "sla_resumed"
	EventSlaMet      EventType = "sla_met"
	EventSlaBreached EventType = "sla_breached"
)

// Event represents an SLA lifecycle event emitted by the SLA service.
// PAUSED and RESUMED are point-in-time markers for the audit log, not
// instance states.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	PolicyID  string      `json:"policy_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// SlaStartedPayload payload.
type SlaStartedPayload struct {
	CalendarID string `json:"calendar_id"`
}

// SlaClockPayload accompanies pause/resume markers.
type SlaClockPayload struct {
	Status             domain.TicketStatus `json:"status"`
	AccumulatedMinutes int                 `json:"accumulated_minutes"`
}

// SlaConcludedPayload accompanies met/breached conclusions.
type SlaConcludedPayload struct {
	FirstResponseMinutes *int                 `json:"first_response_minutes,omitempty"`
	ResolutionMinutes    *int                 `json:"resolution_minutes,omitempty"`
	BreachReason         *domain.BreachReason `json:"breach_reason,omitempty"`
}
