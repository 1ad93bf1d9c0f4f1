package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/slaclock"
)

type fakePolicyRepo struct {
	policies []domain.SlaPolicy
}

func (r *fakePolicyRepo) Create(_ context.Context, policy *domain.SlaPolicy) error {
	policy.ID = "pol-new"
	policy.CreatedAt = time.Now()
	r.policies = append(r.policies, *policy)
	return nil
}

func (r *fakePolicyRepo) Update(_ context.Context, policy *domain.SlaPolicy) error {
	for i := range r.policies {
		if r.policies[i].ID == policy.ID {
			r.policies[i] = *policy
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakePolicyRepo) Delete(_ context.Context, id string) error {
	for i := range r.policies {
		if r.policies[i].ID == id {
			r.policies = append(r.policies[:i], r.policies[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakePolicyRepo) GetByID(_ context.Context, id string) (*domain.SlaPolicy, error) {
	for i := range r.policies {
		if r.policies[i].ID == id {
			policy := r.policies[i]
			return &policy, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakePolicyRepo) ListActive(_ context.Context) ([]domain.SlaPolicy, error) {
	var out []domain.SlaPolicy
	for _, policy := range r.policies {
		if policy.Active {
			out = append(out, policy)
		}
	}
	return out, nil
}

func (r *fakePolicyRepo) List(_ context.Context) ([]domain.SlaPolicy, error) {
	return append([]domain.SlaPolicy{}, r.policies...), nil
}

func policyNamed(id, name string) domain.SlaPolicy {
	return domain.SlaPolicy{
		ID:                      id,
		Name:                    name,
		CalendarID:              "cal-1",
		TargetResolutionMinutes: 240,
		Active:                  true,
		CreatedAt:               time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestResolvePolicyMostSpecificWins(t *testing.T) {
	catchAll := policyNamed("pol-any", "catch all")

	teamOnly := policyNamed("pol-team", "team")
	teamOnly.TeamID = strPtr("team-net")

	teamAndPriority := policyNamed("pol-team-prio", "team urgent")
	teamAndPriority.TeamID = strPtr("team-net")
	urgent := domain.TicketPriorityUrgent
	teamAndPriority.Priority = &urgent

	repo := &fakePolicyRepo{policies: []domain.SlaPolicy{catchAll, teamOnly, teamAndPriority}}
	svc := NewPolicyService(repo, zap.NewNop())

	ticket := &domain.Ticket{
		ID:       "tck-1",
		TeamID:   strPtr("team-net"),
		Priority: domain.TicketPriorityUrgent,
	}

	matched, err := svc.ResolvePolicy(context.Background(), ticket)
	require.NoError(t, err)
	assert.Equal(t, "pol-team-prio", matched.ID)
}

func TestResolvePolicySelectorMustFullyMatch(t *testing.T) {
	teamOnly := policyNamed("pol-team", "team")
	teamOnly.TeamID = strPtr("team-net")

	repo := &fakePolicyRepo{policies: []domain.SlaPolicy{teamOnly}}
	svc := NewPolicyService(repo, zap.NewNop())

	// Different team: the only policy does not apply.
	ticket := &domain.Ticket{ID: "tck-1", TeamID: strPtr("team-desk")}
	_, err := svc.ResolvePolicy(context.Background(), ticket)

	var notFound *slaclock.PolicyNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "tck-1", notFound.TicketID)
}

func TestResolvePolicyIgnoresInactive(t *testing.T) {
	inactive := policyNamed("pol-off", "retired")
	inactive.Active = false

	repo := &fakePolicyRepo{policies: []domain.SlaPolicy{inactive}}
	svc := NewPolicyService(repo, zap.NewNop())

	_, err := svc.ResolvePolicy(context.Background(), &domain.Ticket{ID: "tck-1"})
	var notFound *slaclock.PolicyNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestResolvePolicyTieBreaksOnOldest(t *testing.T) {
	older := policyNamed("pol-old", "older")
	newer := policyNamed("pol-new", "newer")
	newer.CreatedAt = older.CreatedAt.Add(24 * time.Hour)

	repo := &fakePolicyRepo{policies: []domain.SlaPolicy{newer, older}}
	svc := NewPolicyService(repo, zap.NewNop())

	matched, err := svc.ResolvePolicy(context.Background(), &domain.Ticket{ID: "tck-1"})
	require.NoError(t, err)
	assert.Equal(t, "pol-old", matched.ID)
}

func TestResolvePolicyCategoryCaseInsensitive(t *testing.T) {
	byCategory := policyNamed("pol-cat", "hardware")
	byCategory.Category = strPtr("Hardware")

	repo := &fakePolicyRepo{policies: []domain.SlaPolicy{byCategory}}
	svc := NewPolicyService(repo, zap.NewNop())

	ticket := &domain.Ticket{ID: "tck-1", Category: strPtr("hardware")}
	matched, err := svc.ResolvePolicy(context.Background(), ticket)
	require.NoError(t, err)
	assert.Equal(t, "pol-cat", matched.ID)
}

func TestCreatePolicyValidation(t *testing.T) {
	svc := NewPolicyService(&fakePolicyRepo{}, zap.NewNop())

	cases := []struct {
		name   string
		policy domain.SlaPolicy
	}{
		{"missing name", domain.SlaPolicy{CalendarID: "cal-1", TargetResolutionMinutes: 240}},
		{"missing calendar", domain.SlaPolicy{Name: "p", TargetResolutionMinutes: 240}},
		{"zero resolution target", domain.SlaPolicy{Name: "p", CalendarID: "cal-1"}},
		{"negative first response target", domain.SlaPolicy{
			Name: "p", CalendarID: "cal-1", TargetResolutionMinutes: 240,
			TargetFirstResponseMinutes: intPtr(-1),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			policy := tc.policy
			_, err := svc.Create(context.Background(), &policy)
			assert.Error(t, err)
		})
	}
}
