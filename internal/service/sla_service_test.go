package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/events"
)

func TestRegisterTicketStartsClock(t *testing.T) {
	fx := newSlaFixture(testPolicy(intPtr(60), 240))

	ticket, err := fx.service.RegisterTicket(context.Background(), &domain.Ticket{Title: "printer on fire"})
	require.NoError(t, err)
	require.NotEmpty(t, ticket.ID)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)

	started := fx.dispatcher.ofType(events.EventSlaStarted)
	require.Len(t, started, 1)
	assert.Equal(t, ticket.ID, started[0].TicketID)
	assert.Equal(t, "pol-1", started[0].PolicyID)

	instance, err := fx.slaRepo.GetInstance(context.Background(), ticket.ID, "pol-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SlaInstanceRunning, instance.Status)

	stats, err := fx.slaRepo.GetStats(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, stats.ResolutionMinutes)
	assert.False(t, stats.Breached)
}

func TestRegisterTicketWithoutPolicyStoresNoStats(t *testing.T) {
	fx := newSlaFixture(nil)

	ticket, err := fx.service.RegisterTicket(context.Background(), &domain.Ticket{Title: "untracked"})
	require.NoError(t, err)

	assert.Empty(t, fx.dispatcher.events)
	_, err = fx.slaRepo.GetStats(context.Background(), ticket.ID)
	assert.Error(t, err)
}

func TestRegisterTicketRejectsTerminalStatus(t *testing.T) {
	fx := newSlaFixture(testPolicy(nil, 240))

	_, err := fx.service.RegisterTicket(context.Background(), &domain.Ticket{
		Title:  "already done",
		Status: domain.TicketStatusResolved,
	})
	assert.Error(t, err)
}

func TestStatusChangeEmitsPauseAndResume(t *testing.T) {
	fx := newSlaFixture(testPolicy(nil, 240))
	ticket, err := fx.service.RegisterTicket(context.Background(), &domain.Ticket{Title: "vpn down"})
	require.NoError(t, err)

	fx.now = fx.now.Add(time.Hour)
	_, err = fx.service.RecordStatusChange(context.Background(), ticket.ID, domain.TicketStatusPendingUser, fx.now)
	require.NoError(t, err)

	paused := fx.dispatcher.ofType(events.EventSlaPaused)
	require.Len(t, paused, 1)
	payload, ok := paused[0].Payload.(events.SlaClockPayload)
	require.True(t, ok)
	assert.Equal(t, domain.TicketStatusPendingUser, payload.Status)
	assert.Equal(t, 60, payload.AccumulatedMinutes)

	fx.now = fx.now.Add(2 * time.Hour)
	_, err = fx.service.RecordStatusChange(context.Background(), ticket.ID, domain.TicketStatusInProgress, fx.now)
	require.NoError(t, err)

	resumed := fx.dispatcher.ofType(events.EventSlaResumed)
	require.Len(t, resumed, 1)
	resumePayload, ok := resumed[0].Payload.(events.SlaClockPayload)
	require.True(t, ok)
	// The two paused hours did not run the clock.
	assert.Equal(t, 60, resumePayload.AccumulatedMinutes)
}

func TestStatusChangeSameStatusIsNoOp(t *testing.T) {
	fx := newSlaFixture(testPolicy(nil, 240))
	ticket, err := fx.service.RegisterTicket(context.Background(), &domain.Ticket{Title: "dup"})
	require.NoError(t, err)

	history, _ := fx.history.ListByTicket(context.Background(), ticket.ID)
	before := len(history)

	_, err = fx.service.RecordStatusChange(context.Background(), ticket.ID, domain.TicketStatusOpen, fx.now.Add(time.Minute))
	require.NoError(t, err)

	history, _ = fx.history.ListByTicket(context.Background(), ticket.ID)
	assert.Len(t, history, before)
}

func TestResolutionConcludesMetOnce(t *testing.T) {
	fx := newSlaFixture(testPolicy(nil, 240))
	ticket, err := fx.service.RegisterTicket(context.Background(), &domain.Ticket{Title: "quick fix"})
	require.NoError(t, err)

	fx.now = fx.now.Add(time.Hour)
	_, err = fx.service.RecordStatusChange(context.Background(), ticket.ID, domain.TicketStatusResolved, fx.now)
	require.NoError(t, err)

	met := fx.dispatcher.ofType(events.EventSlaMet)
	require.Len(t, met, 1)
	payload, ok := met[0].Payload.(events.SlaConcludedPayload)
	require.True(t, ok)
	require.NotNil(t, payload.ResolutionMinutes)
	assert.Equal(t, 60, *payload.ResolutionMinutes)

	// Recomputing the same concluded ticket must not re-announce it.
	_, err = fx.service.ComputeForTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Len(t, fx.dispatcher.ofType(events.EventSlaMet), 1)
}

func TestResolutionConcludesBreached(t *testing.T) {
	fx := newSlaFixture(testPolicy(nil, 240))
	ticket, err := fx.service.RegisterTicket(context.Background(), &domain.Ticket{Title: "slow burn"})
	require.NoError(t, err)

	fx.now = fx.now.Add(8 * time.Hour)
	_, err = fx.service.RecordStatusChange(context.Background(), ticket.ID, domain.TicketStatusResolved, fx.now)
	require.NoError(t, err)

	breached := fx.dispatcher.ofType(events.EventSlaBreached)
	require.Len(t, breached, 1)
	payload, ok := breached[0].Payload.(events.SlaConcludedPayload)
	require.True(t, ok)
	require.NotNil(t, payload.BreachReason)
	assert.Equal(t, domain.BreachReasonResolution, *payload.BreachReason)

	instance, err := fx.slaRepo.GetInstance(context.Background(), ticket.ID, "pol-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SlaInstanceBreached, instance.Status)
}

func TestConcludedInstanceDoesNotRegress(t *testing.T) {
	fx := newSlaFixture(testPolicy(nil, 240))
	ticket, err := fx.service.RegisterTicket(context.Background(), &domain.Ticket{Title: "reopened"})
	require.NoError(t, err)

	fx.now = fx.now.Add(time.Hour)
	_, err = fx.service.RecordStatusChange(context.Background(), ticket.ID, domain.TicketStatusResolved, fx.now)
	require.NoError(t, err)

	fx.now = fx.now.Add(time.Hour)
	_, err = fx.service.RecordStatusChange(context.Background(), ticket.ID, domain.TicketStatusInProgress, fx.now)
	require.NoError(t, err)

	// Stats reflect the reopened, running ticket; the instance keeps its
	// terminal verdict.
	stats, err := fx.slaRepo.GetStats(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, stats.ResolutionMinutes)

	instance, err := fx.slaRepo.GetInstance(context.Background(), ticket.ID, "pol-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SlaInstanceMet, instance.Status)
}

func TestRecordFirstResponseIsIdempotent(t *testing.T) {
	fx := newSlaFixture(testPolicy(intPtr(120), 480))
	ticket, err := fx.service.RegisterTicket(context.Background(), &domain.Ticket{Title: "respond"})
	require.NoError(t, err)

	first := fx.now.Add(30 * time.Minute)
	_, err = fx.service.RecordFirstResponse(context.Background(), ticket.ID, first)
	require.NoError(t, err)

	later := fx.now.Add(4 * time.Hour)
	updated, err := fx.service.RecordFirstResponse(context.Background(), ticket.ID, later)
	require.NoError(t, err)

	require.NotNil(t, updated.FirstResponseAt)
	assert.True(t, updated.FirstResponseAt.Equal(first))

	stats, err := fx.slaRepo.GetStats(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, stats.FirstResponseMinutes)
	assert.Equal(t, 30, *stats.FirstResponseMinutes)
}

func TestGetStatsComputesOnDemand(t *testing.T) {
	fx := newSlaFixture(testPolicy(nil, 240))
	ticket, err := fx.service.RegisterTicket(context.Background(), &domain.Ticket{Title: "lazy read"})
	require.NoError(t, err)

	// Drop the stored stats to force the on-demand path.
	delete(fx.slaRepo.stats, ticket.ID)

	stats, err := fx.service.GetStats(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, stats.TicketID)
	assert.Equal(t, "pol-1", stats.PolicyID)
}

func TestStatusChangeBeforeCreationRejected(t *testing.T) {
	fx := newSlaFixture(testPolicy(nil, 240))
	ticket, err := fx.service.RegisterTicket(context.Background(), &domain.Ticket{Title: "time travel"})
	require.NoError(t, err)

	_, err = fx.service.RecordStatusChange(context.Background(), ticket.ID, domain.TicketStatusInProgress, fx.now.Add(-time.Hour))
	assert.Error(t, err)
}
