package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen              TicketStatus = "OPEN"
	TicketStatusInProgress        TicketStatus = "IN_PROGRESS"
	TicketStatusPendingUser       TicketStatus = "PENDING_USER"
	TicketStatusPendingThirdParty TicketStatus = "PENDING_THIRD_PARTY"
	TicketStatusResolved          TicketStatus = "RESOLVED"
	TicketStatusClosed            TicketStatus = "CLOSED"
	TicketStatusCancelled         TicketStatus = "CANCELLED"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// StatusSet is a set of ticket statuses, used for the counted/paused
// clock partition.
type StatusSet map[TicketStatus]struct{}

// NewStatusSet builds a set from the given statuses.
func NewStatusSet(statuses ...TicketStatus) StatusSet {
	set := make(StatusSet, len(statuses))
	for _, status := range statuses {
		set[status] = struct{}{}
	}
	return set
}

// Contains reports membership.
func (s StatusSet) Contains(status TicketStatus) bool {
	_, ok := s[status]
	return ok
}

// IsTerminal reports whether a status ends the ticket lifecycle.
func IsTerminal(status TicketStatus) bool {
	switch status {
	case TicketStatusResolved, TicketStatusClosed, TicketStatusCancelled:
		return true
	}
	return false
}

// Ticket carries the fields the SLA pipeline reads. Messaging, attachments
// and field validation belong to the ticketing service proper.
type Ticket struct {
	ID              string
	ExternalKey     string
	TeamID          *string
	RequesterTeamID *string
	Category        *string
	TicketType      *string
	Title           string
	Status          TicketStatus
	Priority        TicketPriority
	CreatedAt       time.Time
	FirstResponseAt *time.Time
	ResolvedAt      *time.Time
	UpdatedAt       time.Time
}
