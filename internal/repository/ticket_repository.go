package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/campus-helpdesk/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	MarkViewed(ctx context.Context, ticketID int64, at time.Time) error
	Delete(ctx context.Context, ticketID int64) error
	GetByID(ctx context.Context, ticketID int64) (*domain.Ticket, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Ticket, error)
	ListByOffice(ctx context.Context, officeID int64) ([]domain.Ticket, error)
	ListAll(ctx context.Context) ([]domain.Ticket, error)
}

type ticketRepository struct {
	db DBTX
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db DBTX) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `id, title, description, category, status, urgency, details, attachment,
               created_by, assigned_to, created_at, updated_at, last_viewed_by_user, last_admin_update`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	details, attachment, err := encodeTicketPayload(ticket)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO tickets (title, description, category, status, urgency, details, attachment, created_by, assigned_to)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Status,
		urgencyArg(ticket.Urgency),
		details,
		attachment,
		ticket.CreatedBy,
		ticket.AssignedTo,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	if !ticket.Status.IsValid() {
		return fmt.Errorf("unknown ticket status %q", ticket.Status)
	}
	details, attachment, err := encodeTicketPayload(ticket)
	if err != nil {
		return err
	}
	const query = `
        UPDATE tickets SET title=$1, description=$2, status=$3, urgency=$4, details=$5, attachment=$6,
            assigned_to=$7, last_admin_update=$8, updated_at=NOW()
        WHERE id=$9
        RETURNING updated_at`
	err = r.db.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		urgencyArg(ticket.Urgency),
		details,
		attachment,
		ticket.AssignedTo,
		ticket.LastAdminUpdate,
		ticket.ID,
	).Scan(&ticket.UpdatedAt)
	return err
}

// MarkViewed records that the owner opened the ticket without touching updated_at.
func (r *ticketRepository) MarkViewed(ctx context.Context, ticketID int64, at time.Time) error {
	cmd, err := r.db.Exec(ctx, `UPDATE tickets SET last_viewed_by_user=$1 WHERE id=$2`, at, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, ticketID int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	ticket, err := scanTicket(r.db.QueryRow(ctx, query, ticketID))
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE created_by=$1 ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, ownerID)
}

func (r *ticketRepository) ListByOffice(ctx context.Context, officeID int64) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets
             WHERE assigned_to IN (SELECT user_id FROM staff_profiles WHERE office_id=$1)
             ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, officeID)
}

func (r *ticketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query)
}

func (r *ticketRepository) list(ctx context.Context, query string, args ...any) ([]domain.Ticket, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket     domain.Ticket
		urgency    *string
		details    []byte
		attachment []byte
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Category,
		&ticket.Status,
		&urgency,
		&details,
		&attachment,
		&ticket.CreatedBy,
		&ticket.AssignedTo,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.LastViewedByUser,
		&ticket.LastAdminUpdate,
	); err != nil {
		return nil, err
	}
	if urgency != nil {
		u := domain.TicketUrgency(*urgency)
		ticket.Urgency = &u
	}
	decoded, err := domain.UnmarshalDetails(ticket.Category, details)
	if err != nil {
		return nil, err
	}
	ticket.Details = decoded
	if len(attachment) > 0 {
		var ref domain.AttachmentReference
		if err := json.Unmarshal(attachment, &ref); err != nil {
			return nil, fmt.Errorf("decode attachment: %w", err)
		}
		ticket.Attachment = &ref
	}
	return &ticket, nil
}

func encodeTicketPayload(ticket *domain.Ticket) ([]byte, []byte, error) {
	details, err := domain.MarshalDetails(ticket.Details)
	if err != nil {
		return nil, nil, fmt.Errorf("encode details: %w", err)
	}
	var attachment []byte
	if ticket.Attachment != nil {
		attachment, err = json.Marshal(ticket.Attachment)
		if err != nil {
			return nil, nil, fmt.Errorf("encode attachment: %w", err)
		}
	}
	return details, attachment, nil
}

func urgencyArg(urgency *domain.TicketUrgency) *string {
	if urgency == nil {
		return nil
	}
	value := string(*urgency)
	return &value
}
