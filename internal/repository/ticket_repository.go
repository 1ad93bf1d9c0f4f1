package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// TicketFilter selects tickets for batch recomputation. All fields are
// optional; the zero filter selects everything.
type TicketFilter struct {
	TeamID      *string
	Category    *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Statuses    []domain.TicketStatus
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListIDsWithFilter(ctx context.Context, filter TicketFilter) ([]string, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (external_key, team_id, requester_team_id, category, ticket_type, title, status, priority, created_at, first_response_at, resolved_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ExternalKey,
		ticket.TeamID,
		ticket.RequesterTeamID,
		ticket.Category,
		ticket.TicketType,
		ticket.Title,
		ticket.Status,
		ticket.Priority,
		ticket.CreatedAt,
		ticket.FirstResponseAt,
		ticket.ResolvedAt,
	).Scan(&ticket.ID, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET team_id=$1, requester_team_id=$2, category=$3, ticket_type=$4, title=$5,
            status=$6, priority=$7, first_response_at=$8, resolved_at=$9, updated_at=NOW()
        WHERE id=$10`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.TeamID,
		ticket.RequesterTeamID,
		ticket.Category,
		ticket.TicketType,
		ticket.Title,
		ticket.Status,
		ticket.Priority,
		ticket.FirstResponseAt,
		ticket.ResolvedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, external_key, team_id, requester_team_id, category, ticket_type,
               title, status, priority, created_at, first_response_at, resolved_at, updated_at
        FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.ExternalKey,
		&ticket.TeamID,
		&ticket.RequesterTeamID,
		&ticket.Category,
		&ticket.TicketType,
		&ticket.Title,
		&ticket.Status,
		&ticket.Priority,
		&ticket.CreatedAt,
		&ticket.FirstResponseAt,
		&ticket.ResolvedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListIDsWithFilter(ctx context.Context, filter TicketFilter) ([]string, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.TeamID != nil {
		args = append(args, *filter.TeamID)
		clauses = append(clauses, fmt.Sprintf("team_id=$%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT id FROM tickets WHERE %s ORDER BY created_at LIMIT %d OFFSET %d`,
		strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
