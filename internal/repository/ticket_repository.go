package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-service/internal/domain"
)

// SLAMutation edits the SLA fields of a locked ticket and reports whether anything changed.
type SLAMutation func(ticket *domain.Ticket) (changed bool, err error)

// TicketRepository reads tickets and rewrites their SLA fields.
type TicketRepository interface {
	ListActive(ctx context.Context) ([]domain.Ticket, error)
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// UpdateSLA runs mutate against the current row under a row lock and persists
	// the SLA fields when mutate reports a change. It returns the resulting ticket.
	UpdateSLA(ctx context.Context, id string, mutate SLAMutation) (*domain.Ticket, bool, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, external_key, title, status, priority, assignee_staff_id, created_at,
               response_deadline, resolution_deadline, response_sla_status, resolution_sla_status,
               sla_paused_at, sla_paused_reason`

func (r *ticketRepository) ListActive(ctx context.Context) ([]domain.Ticket, error) {
	statuses := make([]string, len(domain.ActiveTicketStatuses))
	for i, status := range domain.ActiveTicketStatuses {
		statuses[i] = string(status)
	}
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE status = ANY($1) ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, statuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return scanTicket(r.pool.QueryRow(ctx, query, id))
}

func (r *ticketRepository) UpdateSLA(ctx context.Context, id string, mutate SLAMutation) (*domain.Ticket, bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1 FOR UPDATE`
	ticket, err := scanTicket(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, false, err
	}

	changed, err := mutate(ticket)
	if err != nil {
		return nil, false, err
	}
	if !changed {
		return ticket, false, nil
	}

	const update = `
        UPDATE tickets SET response_deadline=$1, resolution_deadline=$2,
            response_sla_status=$3, resolution_sla_status=$4,
            sla_paused_at=$5, sla_paused_reason=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := tx.Exec(ctx, update,
		ticket.ResponseDeadline,
		ticket.ResolutionDeadline,
		ticket.ResponseStatus,
		ticket.ResolutionStatus,
		ticket.PausedAt,
		ticket.PausedReason,
		ticket.ID,
	)
	if err != nil {
		return nil, false, fmt.Errorf("update sla fields: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return nil, false, pgx.ErrNoRows
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	return ticket, true, nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.ExternalKey,
		&ticket.Title,
		&ticket.Status,
		&ticket.Priority,
		&ticket.AssigneeID,
		&ticket.CreatedAt,
		&ticket.ResponseDeadline,
		&ticket.ResolutionDeadline,
		&ticket.ResponseStatus,
		&ticket.ResolutionStatus,
		&ticket.PausedAt,
		&ticket.PausedReason,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
