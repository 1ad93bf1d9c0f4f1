package domain

import "time"

// BreachReason identifies which target was exceeded. When both are exceeded
// the resolution reason wins.
type BreachReason string

const (
	BreachReasonFirstResponse BreachReason = "FIRST_RESPONSE_EXCEEDED"
	BreachReasonResolution    BreachReason = "RESOLUTION_EXCEEDED"
)

// SlaInstanceStatus is the lifecycle state of an SLA evaluation.
type SlaInstanceStatus string

const (
	SlaInstanceRunning  SlaInstanceStatus = "RUNNING"
	SlaInstanceMet      SlaInstanceStatus = "MET"
	SlaInstanceBreached SlaInstanceStatus = "BREACHED"
)

// SlaPolicy configures business-minute targets against one calendar. The
// selector fields describe which tickets the policy applies to; matching is
// most-specific-wins across the optional fields.
type SlaPolicy struct {
	ID                         string
	Name                       string
	CalendarID                 string
	TargetFirstResponseMinutes *int
	TargetResolutionMinutes    int
	TeamID                     *string
	Category                   *string
	Priority                   *TicketPriority
	TicketType                 *string
	RequesterTeamID            *string
	Active                     bool
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
}

// HasFirstResponseTarget reports whether the policy tracks first response.
func (p *SlaPolicy) HasFirstResponseTarget() bool {
	return p.TargetFirstResponseMinutes != nil
}

// SlaInstance is the per-(ticket, policy) lifecycle record. It transitions
// to a terminal state only when the ticket resolves and never regresses
// from terminal back to running.
type SlaInstance struct {
	ID         string
	TicketID   string
	PolicyID   string
	Status     SlaInstanceStatus
	StartedAt  time.Time
	ResolvedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SlaStats is the derived SLA projection for one ticket. It is always
// reproducible from timeline + policy + calendar alone, never from
// incremental deltas.
type SlaStats struct {
	TicketID             string
	PolicyID             string
	FirstResponseAt      *time.Time
	FirstResponseMinutes *int
	ResolvedAt           *time.Time
	ResolutionMinutes    *int
	Breached             bool
	BreachReason         *BreachReason
	ComputedAt           time.Time
}
