package slaclock

import (
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// Engine computes SLA stats as a pure function of (timeline, policy,
// calendar). The counted/paused status partition is fixed at construction;
// it is a global classification, not a per-policy setting.
type Engine struct {
	counted domain.StatusSet
	paused  domain.StatusSet
}

// NewEngine builds an engine with the given clock partition. Statuses in
// counted run the clock; statuses in paused stop it. The two sets must not
// overlap.
func NewEngine(counted, paused domain.StatusSet) *Engine {
	return &Engine{counted: counted, paused: paused}
}

// IsCounted reports whether the SLA clock runs in the given status.
func (e *Engine) IsCounted(status domain.TicketStatus) bool {
	return e.counted.Contains(status)
}

// IsPaused reports whether the SLA clock is stopped in the given status.
func (e *Engine) IsPaused(status domain.TicketStatus) bool {
	return e.paused.Contains(status)
}

// Accumulate sums business minutes across the counted-status segments.
// Segments in paused statuses contribute zero regardless of duration; this
// is how waiting-on-requester time stops the resolution clock.
func (e *Engine) Accumulate(segments []Segment, cal *domain.BusinessCalendar) int {
	total := 0
	for _, segment := range segments {
		if !e.counted.Contains(segment.Status) {
			continue
		}
		total += BusinessMinutesBetween(segment.Start, segment.End, cal)
	}
	return total
}

// FirstResponseMinutes is the plain business time from creation to the
// first response. The response clock stops at a single event; unlike
// Accumulate, pause segments are deliberately not excluded.
func FirstResponseMinutes(createdAt, firstResponseAt time.Time, cal *domain.BusinessCalendar) int {
	return BusinessMinutesBetween(createdAt, firstResponseAt, cal)
}

// ComputeStats runs the full pipeline for one ticket: segment the timeline,
// accumulate business minutes, evaluate the policy, and decide the instance
// lifecycle status. It reads nothing but its arguments, so recomputing over
// the same inputs always yields the same stats and the same terminal status.
//
// The resolution minutes are only materialized once the ticket has resolved;
// for a running ticket the stats carry a nil resolution and only the
// first-response target can flag a breach. The instance status stays RUNNING
// until resolution even when an intermediate breach has occurred.
func (e *Engine) ComputeStats(
	ticket *domain.Ticket,
	timeline []domain.TicketStatusChange,
	policy *domain.SlaPolicy,
	cal *domain.BusinessCalendar,
	now time.Time,
) (*domain.SlaStats, domain.SlaInstanceStatus, error) {
	horizon := now
	if ticket.ResolvedAt != nil {
		horizon = *ticket.ResolvedAt
	}

	segments, err := BuildSegments(ticket.ID, timeline, horizon)
	if err != nil {
		return nil, "", err
	}

	stats := &domain.SlaStats{
		TicketID:   ticket.ID,
		PolicyID:   policy.ID,
		ComputedAt: now,
	}

	if ticket.FirstResponseAt != nil {
		minutes := FirstResponseMinutes(ticket.CreatedAt, *ticket.FirstResponseAt, cal)
		stats.FirstResponseAt = ticket.FirstResponseAt
		stats.FirstResponseMinutes = &minutes
	}

	if ticket.ResolvedAt != nil {
		minutes := e.Accumulate(segments, cal)
		stats.ResolvedAt = ticket.ResolvedAt
		stats.ResolutionMinutes = &minutes
	}

	verdict := Evaluate(stats.FirstResponseMinutes, stats.ResolutionMinutes, policy)
	stats.Breached = verdict.Breached
	stats.BreachReason = verdict.Reason

	status := domain.SlaInstanceRunning
	if ticket.ResolvedAt != nil {
		if verdict.Breached {
			status = domain.SlaInstanceBreached
		} else {
			status = domain.SlaInstanceMet
		}
	}
	return stats, status, nil
}

// RunningMinutes accumulates counted business minutes for a still-open
// ticket up to now. Reporting surfaces use it to show clock progress; it
// plays no part in the persisted stats of an unresolved ticket.
func (e *Engine) RunningMinutes(
	ticket *domain.Ticket,
	timeline []domain.TicketStatusChange,
	cal *domain.BusinessCalendar,
	now time.Time,
) (int, error) {
	horizon := now
	if ticket.ResolvedAt != nil {
		horizon = *ticket.ResolvedAt
	}
	segments, err := BuildSegments(ticket.ID, timeline, horizon)
	if err != nil {
		return 0, err
	}
	return e.Accumulate(segments, cal), nil
}
