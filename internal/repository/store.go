package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx so repositories run inside or
// outside a transaction unchanged.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store groups the repositories that take part in a ticket lifecycle operation.
type Store interface {
	Tickets() TicketRepository
	History() TicketHistoryRepository
	Notifications() NotificationRepository
	Directory() DirectoryRepository
	// WithinTx runs fn against a Store bound to one transaction. The transaction
	// commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

type pgStore struct {
	db            DBTX
	tickets       TicketRepository
	history       TicketHistoryRepository
	notifications NotificationRepository
	directory     DirectoryRepository
}

// NewStore builds a Postgres-backed store.
func NewStore(db DBTX) Store {
	return &pgStore{
		db:            db,
		tickets:       NewTicketRepository(db),
		history:       NewTicketHistoryRepository(db),
		notifications: NewNotificationRepository(db),
		directory:     NewDirectoryRepository(db),
	}
}

func (s *pgStore) Tickets() TicketRepository { return s.tickets }
func (s *pgStore) History() TicketHistoryRepository { return s.history }
func (s *pgStore) Notifications() NotificationRepository { return s.notifications }
func (s *pgStore) Directory() DirectoryRepository { return s.directory }

// WithinTx nests as a savepoint when the store is already transactional.
func (s *pgStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(NewStore(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
