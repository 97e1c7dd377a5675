package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/campus-helpdesk/internal/domain"
)

// DirectoryRepository exposes users, offices and the staff-to-office affiliation.
type DirectoryRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	CreateOffice(ctx context.Context, office *domain.Office) error
	GetOffice(ctx context.Context, id int64) (*domain.Office, error)
	GetOfficeByName(ctx context.Context, name string) (*domain.Office, error)
	ListOffices(ctx context.Context) ([]domain.Office, error)

	CreateStaffProfile(ctx context.Context, profile *domain.StaffProfile) error
	// OfficeOf returns nil when the user has no office affiliation.
	OfficeOf(ctx context.Context, userID string) (*int64, error)
	ListStaffByOffice(ctx context.Context, officeID int64) ([]domain.User, error)
	DeleteStaff(ctx context.Context) (int64, error)
}

type directoryRepository struct {
	db DBTX
}

// NewDirectoryRepository returns a Postgres-backed implementation.
func NewDirectoryRepository(db DBTX) DirectoryRepository {
	return &directoryRepository{db: db}
}

const userSelect = `
        SELECT u.id, u.name, u.email, u.password_hash, u.is_superuser, sp.office_id, u.created_at, u.updated_at
        FROM users u
        LEFT JOIN staff_profiles sp ON sp.user_id = u.id`

func (r *directoryRepository) CreateUser(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, is_superuser)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.IsSuperuser,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *directoryRepository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, userSelect+` WHERE u.id=$1`, id))
}

func (r *directoryRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, userSelect+` WHERE u.email=$1`, email))
}

// CreateOffice inserts the office or, when the name already exists, refreshes its contact email.
func (r *directoryRepository) CreateOffice(ctx context.Context, office *domain.Office) error {
	const query = `
        INSERT INTO offices (name, contact_email)
        VALUES ($1, $2)
        ON CONFLICT (name) DO UPDATE SET contact_email = EXCLUDED.contact_email
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query, office.Name, office.ContactEmail).Scan(&office.ID, &office.CreatedAt)
}

func (r *directoryRepository) GetOffice(ctx context.Context, id int64) (*domain.Office, error) {
	return scanOffice(r.db.QueryRow(ctx,
		`SELECT id, name, contact_email, created_at FROM offices WHERE id=$1`, id))
}

func (r *directoryRepository) GetOfficeByName(ctx context.Context, name string) (*domain.Office, error) {
	return scanOffice(r.db.QueryRow(ctx,
		`SELECT id, name, contact_email, created_at FROM offices WHERE name=$1`, name))
}

func (r *directoryRepository) ListOffices(ctx context.Context) ([]domain.Office, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, contact_email, created_at FROM offices ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Office{}
	for rows.Next() {
		office, err := scanOffice(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *office)
	}
	return result, rows.Err()
}

func (r *directoryRepository) CreateStaffProfile(ctx context.Context, profile *domain.StaffProfile) error {
	const query = `
        INSERT INTO staff_profiles (user_id, office_id)
        VALUES ($1, $2)
        RETURNING created_at`
	return r.db.QueryRow(ctx, query, profile.UserID, profile.OfficeID).Scan(&profile.CreatedAt)
}

func (r *directoryRepository) OfficeOf(ctx context.Context, userID string) (*int64, error) {
	var officeID int64
	err := r.db.QueryRow(ctx, `SELECT office_id FROM staff_profiles WHERE user_id=$1`, userID).Scan(&officeID)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &officeID, nil
}

// ListStaffByOffice returns staff in enrolment order, which routing relies on.
func (r *directoryRepository) ListStaffByOffice(ctx context.Context, officeID int64) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, userSelect+`
        WHERE sp.office_id=$1
        ORDER BY sp.created_at ASC, u.id ASC`, officeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

// DeleteStaff removes every non-superuser account that holds a staff profile.
func (r *directoryRepository) DeleteStaff(ctx context.Context) (int64, error) {
	cmd, err := r.db.Exec(ctx, `
        DELETE FROM users
        WHERE is_superuser = FALSE AND id IN (SELECT user_id FROM staff_profiles)`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.IsSuperuser,
		&user.OfficeID,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func scanOffice(row pgx.Row) (*domain.Office, error) {
	var office domain.Office
	if err := row.Scan(&office.ID, &office.Name, &office.ContactEmail, &office.CreatedAt); err != nil {
		return nil, err
	}
	return &office, nil
}
