package dto

import (
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/service"
)

// SlaStatsResponse is the derived SLA projection for one ticket. Resolution
// fields stay null while the ticket is still open.
type SlaStatsResponse struct {
	TicketID             string               `json:"ticket_id"`
	PolicyID             string               `json:"policy_id"`
	FirstResponseAt      *time.Time           `json:"first_response_at"`
	FirstResponseMinutes *int                 `json:"first_response_minutes"`
	ResolvedAt           *time.Time           `json:"resolved_at"`
	ResolutionMinutes    *int                 `json:"resolution_minutes"`
	Breached             bool                 `json:"breached"`
	BreachReason         *domain.BreachReason `json:"breach_reason"`
	ComputedAt           time.Time            `json:"computed_at"`
}

// NewSlaStatsResponse converts domain stats to the wire shape.
func NewSlaStatsResponse(stats *domain.SlaStats) SlaStatsResponse {
	return SlaStatsResponse{
		TicketID:             stats.TicketID,
		PolicyID:             stats.PolicyID,
		FirstResponseAt:      stats.FirstResponseAt,
		FirstResponseMinutes: stats.FirstResponseMinutes,
		ResolvedAt:           stats.ResolvedAt,
		ResolutionMinutes:    stats.ResolutionMinutes,
		Breached:             stats.Breached,
		BreachReason:         stats.BreachReason,
		ComputedAt:           stats.ComputedAt,
	}
}

// SlaInstanceResponse is the lifecycle record for one (ticket, policy) pair.
type SlaInstanceResponse struct {
	ID         string                   `json:"id"`
	TicketID   string                   `json:"ticket_id"`
	PolicyID   string                   `json:"policy_id"`
	Status     domain.SlaInstanceStatus `json:"status"`
	StartedAt  time.Time                `json:"started_at"`
	ResolvedAt *time.Time               `json:"resolved_at"`
	CreatedAt  time.Time                `json:"created_at"`
	UpdatedAt  time.Time                `json:"updated_at"`
}

// NewSlaInstanceResponse converts a domain instance to the wire shape.
func NewSlaInstanceResponse(instance *domain.SlaInstance) SlaInstanceResponse {
	return SlaInstanceResponse{
		ID:         instance.ID,
		TicketID:   instance.TicketID,
		PolicyID:   instance.PolicyID,
		Status:     instance.Status,
		StartedAt:  instance.StartedAt,
		ResolvedAt: instance.ResolvedAt,
		CreatedAt:  instance.CreatedAt,
		UpdatedAt:  instance.UpdatedAt,
	}
}

// RecomputeRequest narrows a batch recomputation run. Empty means all
// tickets.
type RecomputeRequest struct {
	TeamID      *string    `json:"team_id"`
	Category    *string    `json:"category"`
	CreatedFrom *time.Time `json:"created_from"`
	CreatedTo   *time.Time `json:"created_to"`
}

// ToFilter converts the request.
func (r *RecomputeRequest) ToFilter() service.RecomputeFilter {
	return service.RecomputeFilter{
		TeamID:      r.TeamID,
		Category:    r.Category,
		CreatedFrom: r.CreatedFrom,
		CreatedTo:   r.CreatedTo,
	}
}

// RecomputeResponse summarizes a finished batch run.
type RecomputeResponse struct {
	Processed  int                        `json:"processed"`
	Skipped    int                        `json:"skipped"`
	Failed     int                        `json:"failed"`
	Failures   []service.RecomputeFailure `json:"failures,omitempty"`
	DurationMs int64                      `json:"duration_ms"`
}

// NewRecomputeResponse converts a batch report to the wire shape.
func NewRecomputeResponse(report *service.RecomputeReport) RecomputeResponse {
	return RecomputeResponse{
		Processed:  report.Processed,
		Skipped:    report.Skipped,
		Failed:     report.Failed,
		Failures:   report.Failures,
		DurationMs: report.Duration.Milliseconds(),
	}
}
