package dto

import (
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// RegisterTicketRequest payload. CreatedAt defaults to now when omitted;
// upstream systems replaying history supply their own instants.
type RegisterTicketRequest struct {
	ExternalKey     string                `json:"external_key"`
	TeamID          *string               `json:"team_id"`
	RequesterTeamID *string               `json:"requester_team_id"`
	Category        *string               `json:"category"`
	TicketType      *string               `json:"ticket_type"`
	Title           string                `json:"title"`
	Status          domain.TicketStatus   `json:"status"`
	Priority        domain.TicketPriority `json:"priority"`
	CreatedAt       *time.Time            `json:"created_at"`
}

// ToDomain converts the request.
func (r *RegisterTicketRequest) ToDomain() *domain.Ticket {
	ticket := &domain.Ticket{
		ExternalKey:     r.ExternalKey,
		TeamID:          r.TeamID,
		RequesterTeamID: r.RequesterTeamID,
		Category:        r.Category,
		TicketType:      r.TicketType,
		Title:           r.Title,
		Status:          r.Status,
		Priority:        r.Priority,
	}
	if r.CreatedAt != nil {
		ticket.CreatedAt = *r.CreatedAt
	}
	return ticket
}

// StatusChangeRequest appends a status transition.
type StatusChangeRequest struct {
	Status    domain.TicketStatus `json:"status"`
	ChangedAt *time.Time          `json:"changed_at"`
}

// FirstResponseRequest records the first response instant.
type FirstResponseRequest struct {
	At *time.Time `json:"at"`
}

// TicketResponse is the wire shape of a tracked ticket.
type TicketResponse struct {
	ID              string                `json:"id"`
	ExternalKey     string                `json:"external_key"`
	TeamID          *string               `json:"team_id"`
	RequesterTeamID *string               `json:"requester_team_id"`
	Category        *string               `json:"category"`
	TicketType      *string               `json:"ticket_type"`
	Title           string                `json:"title"`
	Status          domain.TicketStatus   `json:"status"`
	Priority        domain.TicketPriority `json:"priority"`
	CreatedAt       time.Time             `json:"created_at"`
	FirstResponseAt *time.Time            `json:"first_response_at"`
	ResolvedAt      *time.Time            `json:"resolved_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// NewTicketResponse converts a domain ticket to its wire shape.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:              ticket.ID,
		ExternalKey:     ticket.ExternalKey,
		TeamID:          ticket.TeamID,
		RequesterTeamID: ticket.RequesterTeamID,
		Category:        ticket.Category,
		TicketType:      ticket.TicketType,
		Title:           ticket.Title,
		Status:          ticket.Status,
		Priority:        ticket.Priority,
		CreatedAt:       ticket.CreatedAt,
		FirstResponseAt: ticket.FirstResponseAt,
		ResolvedAt:      ticket.ResolvedAt,
		UpdatedAt:       ticket.UpdatedAt,
	}
}
