package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// SlaRepository persists SLA instances and their derived stats. Writes are
// idempotent upserts keyed by ticket, safe to repeat under at-least-once
// batch retries.
type SlaRepository interface {
	// SaveComputation upserts the stats and the instance in one
	// transaction; a failed computation persists nothing.
	SaveComputation(ctx context.Context, stats *domain.SlaStats, instance *domain.SlaInstance) error
	GetStats(ctx context.Context, ticketID string) (*domain.SlaStats, error)
	GetInstance(ctx context.Context, ticketID, policyID string) (*domain.SlaInstance, error)
}

type slaRepository struct {
	pool *pgxpool.Pool
}

// NewSlaRepository instantiates repository.
func NewSlaRepository(pool *pgxpool.Pool) SlaRepository {
	return &slaRepository{pool: pool}
}

func (r *slaRepository) SaveComputation(ctx context.Context, stats *domain.SlaStats, instance *domain.SlaInstance) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// A concluded instance never regresses to RUNNING; reopened tickets are
	// reflected through recomputed stats instead.
	const instanceQuery = `
        INSERT INTO sla_instances (ticket_id, policy_id, status, started_at, resolved_at)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (ticket_id, policy_id) DO UPDATE SET
            status = CASE WHEN sla_instances.status = 'RUNNING' THEN EXCLUDED.status ELSE sla_instances.status END,
            resolved_at = CASE WHEN sla_instances.status = 'RUNNING' THEN EXCLUDED.resolved_at ELSE sla_instances.resolved_at END,
            updated_at = NOW()
        RETURNING id, status, created_at, updated_at`
	if err := tx.QueryRow(ctx, instanceQuery,
		instance.TicketID,
		instance.PolicyID,
		instance.Status,
		instance.StartedAt,
		instance.ResolvedAt,
	).Scan(&instance.ID, &instance.Status, &instance.CreatedAt, &instance.UpdatedAt); err != nil {
		return err
	}

	const statsQuery = `
        INSERT INTO sla_stats (ticket_id, policy_id, first_response_at, first_response_minutes,
            resolved_at, resolution_minutes, breached, breach_reason, computed_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        ON CONFLICT (ticket_id) DO UPDATE SET
            policy_id = EXCLUDED.policy_id,
            first_response_at = EXCLUDED.first_response_at,
            first_response_minutes = EXCLUDED.first_response_minutes,
            resolved_at = EXCLUDED.resolved_at,
            resolution_minutes = EXCLUDED.resolution_minutes,
            breached = EXCLUDED.breached,
            breach_reason = EXCLUDED.breach_reason,
            computed_at = EXCLUDED.computed_at`
	if _, err := tx.Exec(ctx, statsQuery,
		stats.TicketID,
		stats.PolicyID,
		stats.FirstResponseAt,
		stats.FirstResponseMinutes,
		stats.ResolvedAt,
		stats.ResolutionMinutes,
		stats.Breached,
		stats.BreachReason,
		stats.ComputedAt,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *slaRepository) GetStats(ctx context.Context, ticketID string) (*domain.SlaStats, error) {
	const query = `
        SELECT ticket_id, policy_id, first_response_at, first_response_minutes,
               resolved_at, resolution_minutes, breached, breach_reason, computed_at
        FROM sla_stats WHERE ticket_id=$1`
	var stats domain.SlaStats
	if err := r.pool.QueryRow(ctx, query, ticketID).Scan(
		&stats.TicketID,
		&stats.PolicyID,
		&stats.FirstResponseAt,
		&stats.FirstResponseMinutes,
		&stats.ResolvedAt,
		&stats.ResolutionMinutes,
		&stats.Breached,
		&stats.BreachReason,
		&stats.ComputedAt,
	); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *slaRepository) GetInstance(ctx context.Context, ticketID, policyID string) (*domain.SlaInstance, error) {
	const query = `
        SELECT id, ticket_id, policy_id, status, started_at, resolved_at, created_at, updated_at
        FROM sla_instances WHERE ticket_id=$1 AND policy_id=$2`
	var instance domain.SlaInstance
	if err := r.pool.QueryRow(ctx, query, ticketID, policyID).Scan(
		&instance.ID,
		&instance.TicketID,
		&instance.PolicyID,
		&instance.Status,
		&instance.StartedAt,
		&instance.ResolvedAt,
		&instance.CreatedAt,
		&instance.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &instance, nil
}
