package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/campus-helpdesk/internal/domain"
)

// TicketHistoryRepository stores audit entries. It is append-only: there is no update or delete.
type TicketHistoryRepository interface {
	Create(ctx context.Context, entry *domain.TicketHistory) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketHistory, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.TicketHistory, error)
}

type ticketHistoryRepository struct {
	db DBTX
}

// NewTicketHistoryRepository builds repository.
func NewTicketHistoryRepository(db DBTX) TicketHistoryRepository {
	return &ticketHistoryRepository{db: db}
}

const historyColumns = `id, ticket_id, ticket_title, ticket_display_id, owner_id, actor_id, kind, action, note, new_status, created_at`

func (r *ticketHistoryRepository) Create(ctx context.Context, entry *domain.TicketHistory) error {
	const query = `
        INSERT INTO ticket_history (ticket_id, ticket_title, ticket_display_id, owner_id, actor_id, kind, action, note, new_status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at`
	var newStatus *string
	if entry.NewStatus != nil {
		value := string(*entry.NewStatus)
		newStatus = &value
	}
	return r.db.QueryRow(ctx, query,
		entry.TicketID,
		entry.TicketTitle,
		entry.TicketDisplayID,
		entry.OwnerID,
		entry.ActorID,
		entry.Kind,
		entry.Action,
		entry.Note,
		newStatus,
	).Scan(&entry.ID, &entry.Timestamp)
}

func (r *ticketHistoryRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketHistory, error) {
	query := `SELECT ` + historyColumns + ` FROM ticket_history WHERE ticket_id=$1 ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, ticketID)
}

// ListByOwner includes entries whose ticket has been deleted, scoped by the recorded former owner.
func (r *ticketHistoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.TicketHistory, error) {
	query := `SELECT ` + historyColumns + ` FROM ticket_history WHERE owner_id=$1 ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, ownerID)
}

func (r *ticketHistoryRepository) list(ctx context.Context, query string, args ...any) ([]domain.TicketHistory, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.TicketHistory{}
	for rows.Next() {
		entry, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func scanHistory(row pgx.Row) (domain.TicketHistory, error) {
	var (
		entry     domain.TicketHistory
		newStatus *string
	)
	if err := row.Scan(
		&entry.ID,
		&entry.TicketID,
		&entry.TicketTitle,
		&entry.TicketDisplayID,
		&entry.OwnerID,
		&entry.ActorID,
		&entry.Kind,
		&entry.Action,
		&entry.Note,
		&newStatus,
		&entry.Timestamp,
	); err != nil {
		return entry, err
	}
	if newStatus != nil {
		status := domain.TicketStatus(*newStatus)
		entry.NewStatus = &status
	}
	return entry, nil
}
