package slaclock

import "github.com/spec-kit/sla-engine/internal/domain"

// Verdict is the outcome of comparing accumulated minutes against a policy.
type Verdict struct {
	Breached bool
	Reason   *domain.BreachReason
}

// Evaluate compares the accumulated business minutes against the policy
// targets. Targets use strict greater-than: equality at the boundary is not
// a breach. A nil minutes value means the corresponding event has not
// happened yet and that target is skipped, so a ticket with no resolution
// can still be flagged for a first-response breach while otherwise running.
// When both targets are exceeded the resolution reason wins.
func Evaluate(firstResponseMinutes, resolutionMinutes *int, policy *domain.SlaPolicy) Verdict {
	breachedFirst := policy.HasFirstResponseTarget() &&
		firstResponseMinutes != nil &&
		*firstResponseMinutes > *policy.TargetFirstResponseMinutes

	breachedResolution := resolutionMinutes != nil &&
		*resolutionMinutes > policy.TargetResolutionMinutes

	verdict := Verdict{Breached: breachedFirst || breachedResolution}
	switch {
	case breachedResolution:
		reason := domain.BreachReasonResolution
		verdict.Reason = &reason
	case breachedFirst:
		reason := domain.BreachReasonFirstResponse
		verdict.Reason = &reason
	}
	return verdict
}
