package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// PolicyRepository persists SLA policies.
type PolicyRepository interface {
	Create(ctx context.Context, policy *domain.SlaPolicy) error
	Update(ctx context.Context, policy *domain.SlaPolicy) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.SlaPolicy, error)
	ListActive(ctx context.Context) ([]domain.SlaPolicy, error)
	List(ctx context.Context) ([]domain.SlaPolicy, error)
}

type policyRepository struct {
	pool *pgxpool.Pool
}

// NewPolicyRepository instantiates repository.
func NewPolicyRepository(pool *pgxpool.Pool) PolicyRepository {
	return &policyRepository{pool: pool}
}

const policyColumns = `id, name, calendar_id, target_first_response_minutes, target_resolution_minutes,
       team_id, category, priority, ticket_type, requester_team_id, active, created_at, updated_at`

func (r *policyRepository) Create(ctx context.Context, policy *domain.SlaPolicy) error {
	const query = `
        INSERT INTO sla_policies (name, calendar_id, target_first_response_minutes, target_resolution_minutes,
            team_id, category, priority, ticket_type, requester_team_id, active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		policy.Name,
		policy.CalendarID,
		policy.TargetFirstResponseMinutes,
		policy.TargetResolutionMinutes,
		policy.TeamID,
		policy.Category,
		policy.Priority,
		policy.TicketType,
		policy.RequesterTeamID,
		policy.Active,
	).Scan(&policy.ID, &policy.CreatedAt, &policy.UpdatedAt)
}

func (r *policyRepository) Update(ctx context.Context, policy *domain.SlaPolicy) error {
	const query = `
        UPDATE sla_policies SET name=$1, calendar_id=$2, target_first_response_minutes=$3,
            target_resolution_minutes=$4, team_id=$5, category=$6, priority=$7, ticket_type=$8,
            requester_team_id=$9, active=$10, updated_at=NOW()
        WHERE id=$11`
	cmd, err := r.pool.Exec(ctx, query,
		policy.Name,
		policy.CalendarID,
		policy.TargetFirstResponseMinutes,
		policy.TargetResolutionMinutes,
		policy.TeamID,
		policy.Category,
		policy.Priority,
		policy.TicketType,
		policy.RequesterTeamID,
		policy.Active,
		policy.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *policyRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM sla_policies WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *policyRepository) GetByID(ctx context.Context, id string) (*domain.SlaPolicy, error) {
	query := `SELECT ` + policyColumns + ` FROM sla_policies WHERE id=$1`
	var policy domain.SlaPolicy
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&policy.ID,
		&policy.Name,
		&policy.CalendarID,
		&policy.TargetFirstResponseMinutes,
		&policy.TargetResolutionMinutes,
		&policy.TeamID,
		&policy.Category,
		&policy.Priority,
		&policy.TicketType,
		&policy.RequesterTeamID,
		&policy.Active,
		&policy.CreatedAt,
		&policy.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *policyRepository) ListActive(ctx context.Context) ([]domain.SlaPolicy, error) {
	query := `SELECT ` + policyColumns + ` FROM sla_policies WHERE active ORDER BY name`
	return r.list(ctx, query)
}

func (r *policyRepository) List(ctx context.Context) ([]domain.SlaPolicy, error) {
	query := `SELECT ` + policyColumns + ` FROM sla_policies ORDER BY name`
	return r.list(ctx, query)
}

func (r *policyRepository) list(ctx context.Context, query string) ([]domain.SlaPolicy, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []domain.SlaPolicy
	for rows.Next() {
		var policy domain.SlaPolicy
		if err := rows.Scan(
			&policy.ID,
			&policy.Name,
			&policy.CalendarID,
			&policy.TargetFirstResponseMinutes,
			&policy.TargetResolutionMinutes,
			&policy.TeamID,
			&policy.Category,
			&policy.Priority,
			&policy.TicketType,
			&policy.RequesterTeamID,
			&policy.Active,
			&policy.CreatedAt,
			&policy.UpdatedAt,
		); err != nil {
			return nil, err
		}
		policies = append(policies, policy)
	}
	return policies, rows.Err()
}
