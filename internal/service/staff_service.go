package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/campus-helpdesk/internal/auth"
	"github.com/spec-kit/campus-helpdesk/internal/config"
	"github.com/spec-kit/campus-helpdesk/internal/domain"
	"github.com/spec-kit/campus-helpdesk/internal/repository"
	apperrors "github.com/spec-kit/campus-helpdesk/pkg/util"
)

// OfficeSeed describes one office and the shared staff account that works it.
type OfficeSeed struct {
	Name     string
	Mailbox  string
	Password string
}

// DefaultOfficeSeeds are the campus offices with their mailbox names.
func DefaultOfficeSeeds() []OfficeSeed {
	return []OfficeSeed{
		{Name: config.OfficeRegistrar, Mailbox: "registrar"},
		{Name: config.OfficeETC, Mailbox: "etc"},
		{Name: config.OfficeFacilities, Mailbox: "ppfmo"},
		{Name: config.OfficePrincipal, Mailbox: "principal"},
		{Name: config.OfficeStudentServices, Mailbox: "studentservices"},
		{Name: config.OfficeGuidance, Mailbox: "guidance"},
		{Name: config.OfficeMediaAlumniPublic, Mailbox: "mapa"},
	}
}

// SeedReport lists what a seeding run did.
type SeedReport struct {
	OfficesSeeded int
	StaffCreated  []string
	StaffSkipped  []string
	StaffRemoved  int64
}

// StaffService manages offices and staff accounts.
type StaffService struct {
	store      repository.Store
	bcryptCost int
}

// NewStaffService constructs the service.
func NewStaffService(cfg config.Config, store repository.Store) *StaffService {
	return &StaffService{store: store, bcryptCost: cfg.Auth.BcryptCost}
}

// SeedOffices creates every office with a contact mailbox at domain and one staff
// account per office. Existing accounts are kept unless reset is set, in which case
// all staff accounts are removed first.
func (s *StaffService) SeedOffices(ctx context.Context, seeds []OfficeSeed, domainName string, reset bool) (*SeedReport, error) {
	domainName = strings.TrimPrefix(strings.TrimSpace(domainName), "@")
	if domainName == "" {
		return nil, apperrors.NewValidationError("invalid seed", map[string]any{"domain": "domain is required"})
	}
	report := &SeedReport{}
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		if reset {
			removed, err := tx.Directory().DeleteStaff(ctx)
			if err != nil {
				return fmt.Errorf("remove staff: %w", err)
			}
			report.StaffRemoved = removed
		}
		for _, seed := range seeds {
			email := fmt.Sprintf("%s@%s", seed.Mailbox, domainName)
			office := &domain.Office{Name: seed.Name, ContactEmail: email}
			if err := tx.Directory().CreateOffice(ctx, office); err != nil {
				return fmt.Errorf("create office %q: %w", seed.Name, err)
			}
			report.OfficesSeeded++

			_, err := tx.Directory().GetUserByEmail(ctx, email)
			if err == nil {
				report.StaffSkipped = append(report.StaffSkipped, email)
				continue
			}
			if !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("lookup %s: %w", email, err)
			}

			password := seed.Password
			if password == "" {
				password = seed.Mailbox + "123"
			}
			hash, err := auth.HashPassword(password, s.bcryptCost)
			if err != nil {
				return fmt.Errorf("hash password for %s: %w", email, err)
			}
			user := &domain.User{Name: seed.Name, Email: email, PasswordHash: hash}
			if err := tx.Directory().CreateUser(ctx, user); err != nil {
				return fmt.Errorf("create user %s: %w", email, err)
			}
			if err := tx.Directory().CreateStaffProfile(ctx, &domain.StaffProfile{UserID: user.ID, OfficeID: office.ID}); err != nil {
				return fmt.Errorf("create staff profile for %s: %w", email, err)
			}
			report.StaffCreated = append(report.StaffCreated, email)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// RemoveStaff deletes every staff account and reports how many were removed.
func (s *StaffService) RemoveStaff(ctx context.Context) (int64, error) {
	return s.store.Directory().DeleteStaff(ctx)
}

// ListOffices returns every office by name.
func (s *StaffService) ListOffices(ctx context.Context) ([]domain.Office, error) {
	return s.store.Directory().ListOffices(ctx)
}

// CreateAccount adds a student or superuser account. Staff accounts come from SeedOffices.
func (s *StaffService) CreateAccount(ctx context.Context, name, email, password string, superuser bool) (*domain.User, error) {
	email = strings.TrimSpace(email)
	problems := map[string]any{}
	if email == "" || !strings.Contains(email, "@") {
		problems["email"] = "email must be a valid email address"
	}
	if len(password) < 8 {
		problems["password"] = "password must be at least 8 characters long"
	}
	if len(problems) > 0 {
		return nil, apperrors.NewValidationError("invalid account", problems)
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{Name: strings.TrimSpace(name), Email: email, PasswordHash: hash, IsSuperuser: superuser}
	if err := s.store.Directory().CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user %s: %w", email, err)
	}
	return user, nil
}

// OfficeOf returns the user's office, or nil for students and unaffiliated superusers.
func (s *StaffService) OfficeOf(ctx context.Context, user *domain.User) (*domain.Office, error) {
	if user == nil || user.OfficeID == nil {
		return nil, nil
	}
	return s.store.Directory().GetOffice(ctx, *user.OfficeID)
}
