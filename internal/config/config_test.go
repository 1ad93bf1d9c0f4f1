package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-engine/internal/domain"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sla-engine", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, "@hourly", cfg.Sla.RecomputeSchedule)
	assert.Equal(t, 4, cfg.Sla.RecomputeWorkers)
	assert.Equal(t, 500, cfg.Sla.RecomputeBatchSize)
	assert.ElementsMatch(t, []domain.TicketStatus{
		domain.TicketStatusOpen,
		domain.TicketStatusInProgress,
	}, cfg.Sla.CountedStatuses)
	assert.ElementsMatch(t, []domain.TicketStatus{
		domain.TicketStatusPendingUser,
		domain.TicketStatusPendingThirdParty,
	}, cfg.Sla.PausedStatuses)
}

func TestLoadStatusPartitionFromEnv(t *testing.T) {
	t.Setenv("SLA_COUNTED_STATUSES", "open, in_progress")
	t.Setenv("SLA_PAUSED_STATUSES", "pending_user")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []domain.TicketStatus{
		domain.TicketStatusOpen,
		domain.TicketStatusInProgress,
	}, cfg.Sla.CountedStatuses)
	assert.Equal(t, []domain.TicketStatus{domain.TicketStatusPendingUser}, cfg.Sla.PausedStatuses)
}

func TestLoadRejectsOverlappingPartition(t *testing.T) {
	t.Setenv("SLA_COUNTED_STATUSES", "OPEN,PENDING_USER")
	t.Setenv("SLA_PAUSED_STATUSES", "PENDING_USER")

	_, err := Load()
	assert.Error(t, err)
}

func TestStatsCacheTTL(t *testing.T) {
	cfg := SlaConfig{StatsCacheTTLMinutes: 10}
	assert.Equal(t, "10m0s", cfg.StatsCacheTTL().String())

	disabled := SlaConfig{StatsCacheTTLMinutes: 0}
	assert.Zero(t, disabled.StatsCacheTTL())
}
