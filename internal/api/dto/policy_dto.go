package dto

import (
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// PolicyRequest is the create/update payload. Selector fields left null
// match any ticket.
type PolicyRequest struct {
	Name                       string                 `json:"name"`
	CalendarID                 string                 `json:"calendar_id"`
	TargetFirstResponseMinutes *int                   `json:"target_first_response_minutes"`
	TargetResolutionMinutes    int                    `json:"target_resolution_minutes"`
	TeamID                     *string                `json:"team_id"`
	Category                   *string                `json:"category"`
	Priority                   *domain.TicketPriority `json:"priority"`
	TicketType                 *string                `json:"ticket_type"`
	RequesterTeamID            *string                `json:"requester_team_id"`
	Active                     bool                   `json:"active"`
}

// ToDomain converts the request.
func (r *PolicyRequest) ToDomain() *domain.SlaPolicy {
	return &domain.SlaPolicy{
		Name:                       r.Name,
		CalendarID:                 r.CalendarID,
		TargetFirstResponseMinutes: r.TargetFirstResponseMinutes,
		TargetResolutionMinutes:    r.TargetResolutionMinutes,
		TeamID:                     r.TeamID,
		Category:                   r.Category,
		Priority:                   r.Priority,
		TicketType:                 r.TicketType,
		RequesterTeamID:            r.RequesterTeamID,
		Active:                     r.Active,
	}
}

// PolicyResponse is the wire shape of a policy.
type PolicyResponse struct {
	ID                         string                 `json:"id"`
	Name                       string                 `json:"name"`
	CalendarID                 string                 `json:"calendar_id"`
	TargetFirstResponseMinutes *int                   `json:"target_first_response_minutes"`
	TargetResolutionMinutes    int                    `json:"target_resolution_minutes"`
	TeamID                     *string                `json:"team_id"`
	Category                   *string                `json:"category"`
	Priority                   *domain.TicketPriority `json:"priority"`
	TicketType                 *string                `json:"ticket_type"`
	RequesterTeamID            *string                `json:"requester_team_id"`
	Active                     bool                   `json:"active"`
	CreatedAt                  time.Time              `json:"created_at"`
	UpdatedAt                  time.Time              `json:"updated_at"`
}

// NewPolicyResponse converts a domain policy to its wire shape.
func NewPolicyResponse(policy *domain.SlaPolicy) PolicyResponse {
	return PolicyResponse{
		ID:                         policy.ID,
		Name:                       policy.Name,
		CalendarID:                 policy.CalendarID,
		TargetFirstResponseMinutes: policy.TargetFirstResponseMinutes,
		TargetResolutionMinutes:    policy.TargetResolutionMinutes,
		TeamID:                     policy.TeamID,
		Category:                   policy.Category,
		Priority:                   policy.Priority,
		TicketType:                 policy.TicketType,
		RequesterTeamID:            policy.RequesterTeamID,
		Active:                     policy.Active,
		CreatedAt:                  policy.CreatedAt,
		UpdatedAt:                  policy.UpdatedAt,
	}
}

// NewPolicyListResponse converts a policy slice.
func NewPolicyListResponse(policies []domain.SlaPolicy) []PolicyResponse {
	out := make([]PolicyResponse, 0, len(policies))
	for i := range policies {
		out = append(out, NewPolicyResponse(&policies[i]))
	}
	return out
}
