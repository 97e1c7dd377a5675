package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/campus-helpdesk/internal/config"
	"github.com/spec-kit/campus-helpdesk/internal/domain"
	"github.com/spec-kit/campus-helpdesk/internal/repository"
)

// RoutingDecision is the outcome of routing a ticket. Both fields may be nil.
type RoutingDecision struct {
	Office   *domain.Office
	Assignee *domain.User
}

// RoutingEngine maps a ticket category to an office and picks the assignee.
type RoutingEngine struct {
	routes map[domain.TicketCategory][]string
}

// NewRoutingEngine builds the engine from a routing table.
func NewRoutingEngine(cfg config.RoutingConfig) *RoutingEngine {
	routes := make(map[domain.TicketCategory][]string, len(cfg.Routes))
	for category, offices := range cfg.Routes {
		routes[domain.TicketCategory(category)] = append([]string{}, offices...)
	}
	return &RoutingEngine{routes: routes}
}

// OfficesFor lists the candidate office names for a category in preference order.
func (r *RoutingEngine) OfficesFor(category domain.TicketCategory) []string {
	return r.routes[category]
}

// Assign resolves the ticket's office and assignee and writes the assignee onto the
// ticket. A missing office or an office without staff is not an error.
//
// Candidates are tried in order and the first office with staff wins. When none has
// staff the first existing office is reported with no assignee. Staff are ordered by
// enrolment time, then user id.
func (r *RoutingEngine) Assign(ctx context.Context, directory repository.DirectoryRepository, ticket *domain.Ticket) (RoutingDecision, error) {
	var decision RoutingDecision
	for _, name := range r.routes[ticket.Category] {
		office, err := directory.GetOfficeByName(ctx, name)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return RoutingDecision{}, fmt.Errorf("lookup office %q: %w", name, err)
		}
		staff, err := directory.ListStaffByOffice(ctx, office.ID)
		if err != nil {
			return RoutingDecision{}, fmt.Errorf("list staff for office %q: %w", name, err)
		}
		if len(staff) > 0 {
			assignee := staff[0]
			decision = RoutingDecision{Office: office, Assignee: &assignee}
			break
		}
		if decision.Office == nil {
			decision.Office = office
		}
	}

	ticket.AssignedTo = nil
	if decision.Assignee != nil {
		id := decision.Assignee.ID
		ticket.AssignedTo = &id
	}
	return decision, nil
}

// CanHandle reports whether officeID is one of the category's mapped offices.
func (r *RoutingEngine) CanHandle(ctx context.Context, directory repository.DirectoryRepository, category domain.TicketCategory, officeID int64) (bool, error) {
	for _, name := range r.routes[category] {
		office, err := directory.GetOfficeByName(ctx, name)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return false, err
		}
		if office.ID == officeID {
			return true, nil
		}
	}
	return false, nil
}

// CandidateStaff lists staff of every office mapped to category, office by office.
func (r *RoutingEngine) CandidateStaff(ctx context.Context, directory repository.DirectoryRepository, category domain.TicketCategory) ([]domain.User, error) {
	result := []domain.User{}
	for _, name := range r.routes[category] {
		office, err := directory.GetOfficeByName(ctx, name)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("lookup office %q: %w", name, err)
		}
		staff, err := directory.ListStaffByOffice(ctx, office.ID)
		if err != nil {
			return nil, fmt.Errorf("list staff for office %q: %w", name, err)
		}
		result = append(result, staff...)
	}
	return result, nil
}
