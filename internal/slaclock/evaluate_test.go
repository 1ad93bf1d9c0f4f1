package slaclock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-engine/internal/domain"
)

func intPtr(v int) *int { return &v }

func policyWith(firstResponse *int, resolution int) *domain.SlaPolicy {
	return &domain.SlaPolicy{
		ID:                         "pol-1",
		CalendarID:                 "cal-1",
		TargetFirstResponseMinutes: firstResponse,
		TargetResolutionMinutes:    resolution,
		Active:                     true,
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name          string
		firstResponse *int
		resolution    *int
		policy        *domain.SlaPolicy
		wantBreached  bool
		wantReason    *domain.BreachReason
	}{
		{
			name:          "all within targets",
			firstResponse: intPtr(20),
			resolution:    intPtr(100),
			policy:        policyWith(intPtr(60), 240),
			wantBreached:  false,
		},
		{
			name:          "resolution at the boundary is not a breach",
			firstResponse: intPtr(20),
			resolution:    intPtr(240),
			policy:        policyWith(intPtr(60), 240),
			wantBreached:  false,
		},
		{
			name:          "one minute over the boundary breaches",
			firstResponse: intPtr(20),
			resolution:    intPtr(241),
			policy:        policyWith(intPtr(60), 240),
			wantBreached:  true,
			wantReason:    reasonPtr(domain.BreachReasonResolution),
		},
		{
			name:          "first response breach alone",
			firstResponse: intPtr(61),
			resolution:    nil,
			policy:        policyWith(intPtr(60), 240),
			wantBreached:  true,
			wantReason:    reasonPtr(domain.BreachReasonFirstResponse),
		},
		{
			name:          "resolution reason wins when both exceeded",
			firstResponse: intPtr(120),
			resolution:    intPtr(500),
			policy:        policyWith(intPtr(60), 240),
			wantBreached:  true,
			wantReason:    reasonPtr(domain.BreachReasonResolution),
		},
		{
			name:          "no first response target skips that check",
			firstResponse: intPtr(10000),
			resolution:    intPtr(100),
			policy:        policyWith(nil, 240),
			wantBreached:  false,
		},
		{
			name:          "no first response yet",
			firstResponse: nil,
			resolution:    nil,
			policy:        policyWith(intPtr(60), 240),
			wantBreached:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := Evaluate(tt.firstResponse, tt.resolution, tt.policy)
			assert.Equal(t, tt.wantBreached, verdict.Breached)
			if tt.wantReason == nil {
				assert.Nil(t, verdict.Reason)
			} else {
				require.NotNil(t, verdict.Reason)
				assert.Equal(t, *tt.wantReason, *verdict.Reason)
			}
		})
	}
}

func reasonPtr(r domain.BreachReason) *domain.BreachReason { return &r }
