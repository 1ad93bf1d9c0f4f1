package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/repository"
	"github.com/spec-kit/sla-engine/internal/slaclock"
	apperrors "github.com/spec-kit/sla-engine/pkg/util"
)

// PolicyResolver selects the applicable SLA policy for a ticket. The engine
// consumes whichever policy the resolver picks; deployments may swap in
// their own matching logic.
type PolicyResolver interface {
	ResolvePolicy(ctx context.Context, ticket *domain.Ticket) (*domain.SlaPolicy, error)
}

// PolicyService manages SLA policies and provides the reference
// most-specific-match resolver.
type PolicyService struct {
	policies repository.PolicyRepository
	logger   *zap.Logger
}

// NewPolicyService constructs the service.
func NewPolicyService(policies repository.PolicyRepository, logger *zap.Logger) *PolicyService {
	return &PolicyService{policies: policies, logger: logger}
}

// Create validates and persists a policy.
func (s *PolicyService) Create(ctx context.Context, policy *domain.SlaPolicy) (*domain.SlaPolicy, error) {
	if err := validatePolicy(policy); err != nil {
		return nil, err
	}
	if err := s.policies.Create(ctx, policy); err != nil {
		return nil, err
	}
	s.logger.Info("sla policy created", zap.String("policy_id", policy.ID), zap.String("name", policy.Name))
	return policy, nil
}

// Update validates and persists policy changes.
func (s *PolicyService) Update(ctx context.Context, policy *domain.SlaPolicy) (*domain.SlaPolicy, error) {
	if err := validatePolicy(policy); err != nil {
		return nil, err
	}
	if err := s.policies.Update(ctx, policy); err != nil {
		return nil, err
	}
	return s.policies.GetByID(ctx, policy.ID)
}

// Delete removes a policy.
func (s *PolicyService) Delete(ctx context.Context, id string) error {
	return s.policies.Delete(ctx, id)
}

// Get fetches one policy.
func (s *PolicyService) Get(ctx context.Context, id string) (*domain.SlaPolicy, error) {
	return s.policies.GetByID(ctx, id)
}

// List returns all policies.
func (s *PolicyService) List(ctx context.Context) ([]domain.SlaPolicy, error) {
	return s.policies.List(ctx)
}

// ResolvePolicy picks the active policy whose selector matches the ticket
// with the highest specificity: every set selector field must equal the
// ticket's value, and the policy with the most set fields wins. Ties fall to
// the earliest created policy so resolution stays deterministic.
func (s *PolicyService) ResolvePolicy(ctx context.Context, ticket *domain.Ticket) (*domain.SlaPolicy, error) {
	policies, err := s.policies.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	var best *domain.SlaPolicy
	bestScore := -1
	for i := range policies {
		policy := &policies[i]
		score, ok := selectorScore(policy, ticket)
		if !ok {
			continue
		}
		if score > bestScore || (score == bestScore && best != nil && policy.CreatedAt.Before(best.CreatedAt)) {
			best = policy
			bestScore = score
		}
	}
	if best == nil {
		return nil, &slaclock.PolicyNotFoundError{TicketID: ticket.ID}
	}
	return best, nil
}

// selectorScore reports whether the policy applies to the ticket and how
// many selector fields constrained the match.
func selectorScore(policy *domain.SlaPolicy, ticket *domain.Ticket) (int, bool) {
	score := 0
	if policy.TeamID != nil {
		if ticket.TeamID == nil || *ticket.TeamID != *policy.TeamID {
			return 0, false
		}
		score++
	}
	if policy.Category != nil {
		if ticket.Category == nil || !strings.EqualFold(*ticket.Category, *policy.Category) {
			return 0, false
		}
		score++
	}
	if policy.Priority != nil {
		if ticket.Priority != *policy.Priority {
			return 0, false
		}
		score++
	}
	if policy.TicketType != nil {
		if ticket.TicketType == nil || !strings.EqualFold(*ticket.TicketType, *policy.TicketType) {
			return 0, false
		}
		score++
	}
	if policy.RequesterTeamID != nil {
		if ticket.RequesterTeamID == nil || *ticket.RequesterTeamID != *policy.RequesterTeamID {
			return 0, false
		}
		score++
	}
	return score, true
}

func validatePolicy(policy *domain.SlaPolicy) error {
	policy.Name = strings.TrimSpace(policy.Name)
	if policy.Name == "" {
		return apperrors.NewValidationError("policy name required", nil)
	}
	if policy.CalendarID == "" {
		return apperrors.NewValidationError("calendar_id required", nil)
	}
	if policy.TargetResolutionMinutes <= 0 {
		return apperrors.NewValidationError("target_resolution_minutes must be positive", nil)
	}
	if policy.TargetFirstResponseMinutes != nil && *policy.TargetFirstResponseMinutes <= 0 {
		return apperrors.NewValidationError("target_first_response_minutes must be positive", nil)
	}
	return nil
}
