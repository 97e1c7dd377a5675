package repository

import (
	"context"

	"github.com/spec-kit/campus-helpdesk/internal/domain"
)

// NotificationRepository persists per-user notices.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListRecent(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]domain.Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	MarkReadForTicket(ctx context.Context, recipientID string, ticketID int64) (int64, error)
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
}

type notificationRepository struct {
	db DBTX
}

// NewNotificationRepository builds repository.
func NewNotificationRepository(db DBTX) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	const query = `
        INSERT INTO notifications (recipient_id, ticket_id, ticket_display_id, notification_type, title, message, is_read)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		n.RecipientID,
		n.TicketID,
		n.TicketDisplayID,
		n.Type,
		n.Title,
		n.Message,
		n.IsRead,
	).Scan(&n.ID, &n.CreatedAt)
}

func (r *notificationRepository) ListRecent(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `
        SELECT id, recipient_id, ticket_id, ticket_display_id, notification_type, title, message, is_read, created_at
        FROM notifications
        WHERE recipient_id=$1 AND ($2 = FALSE OR is_read = FALSE)
        ORDER BY created_at DESC, id DESC
        LIMIT $3`
	rows, err := r.db.Query(ctx, query, recipientID, unreadOnly, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Notification{}
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.RecipientID,
			&n.TicketID,
			&n.TicketDisplayID,
			&n.Type,
			&n.Title,
			&n.Message,
			&n.IsRead,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id=$1 AND is_read = FALSE`,
		recipientID,
	).Scan(&count)
	return count, err
}

// MarkReadForTicket flips unread notices for one (recipient, ticket) pair and reports how many changed.
func (r *notificationRepository) MarkReadForTicket(ctx context.Context, recipientID string, ticketID int64) (int64, error) {
	cmd, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE recipient_id=$1 AND ticket_id=$2 AND is_read = FALSE`,
		recipientID, ticketID,
	)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	cmd, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE recipient_id=$1 AND is_read = FALSE`,
		recipientID,
	)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
