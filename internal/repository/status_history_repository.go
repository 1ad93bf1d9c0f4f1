package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// StatusHistoryRepository persists the ordered status timeline per ticket.
type StatusHistoryRepository interface {
	Append(ctx context.Context, change *domain.TicketStatusChange) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketStatusChange, error)
}

type statusHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewStatusHistoryRepository instantiates repository.
func NewStatusHistoryRepository(pool *pgxpool.Pool) StatusHistoryRepository {
	return &statusHistoryRepository{pool: pool}
}

func (r *statusHistoryRepository) Append(ctx context.Context, change *domain.TicketStatusChange) error {
	const query = `
        INSERT INTO ticket_status_changes (ticket_id, status, changed_at)
        VALUES ($1,$2,$3)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		change.TicketID,
		change.Status,
		change.ChangedAt,
	).Scan(&change.ID)
}

func (r *statusHistoryRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketStatusChange, error) {
	const query = `
        SELECT id, ticket_id, status, changed_at
        FROM ticket_status_changes
        WHERE ticket_id=$1
        ORDER BY changed_at, id`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []domain.TicketStatusChange
	for rows.Next() {
		var change domain.TicketStatusChange
		if err := rows.Scan(&change.ID, &change.TicketID, &change.Status, &change.ChangedAt); err != nil {
			return nil, err
		}
		history = append(history, change)
	}
	return history, rows.Err()
}
