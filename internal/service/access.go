package service

import (
	"context"

	"github.com/spec-kit/campus-helpdesk/internal/domain"
	"github.com/spec-kit/campus-helpdesk/internal/repository"
	apperrors "github.com/spec-kit/campus-helpdesk/pkg/util"
)

// AccessPath selects which side of the helpdesk a request comes through.
// The owner and staff paths are checked independently and never combined.
type AccessPath string

const (
	AccessPathOwner AccessPath = "owner"
	AccessPathStaff AccessPath = "staff"
)

// AccessGuard decides whether an actor may read or act on a ticket.
type AccessGuard struct{}

// CanAccessAsOwner is true only for the ticket's creator.
func (AccessGuard) CanAccessAsOwner(actor *domain.User, ticket *domain.Ticket) bool {
	return actor != nil && ticket != nil && actor.ID == ticket.CreatedBy
}

// CanAccessAsStaff is true for superusers, and for staff whose office matches the
// office of the ticket's assignee. Unassigned tickets are superuser-only.
func (AccessGuard) CanAccessAsStaff(ctx context.Context, directory repository.DirectoryRepository, actor *domain.User, ticket *domain.Ticket) (bool, error) {
	if actor == nil || ticket == nil {
		return false, nil
	}
	if actor.IsSuperuser {
		return true, nil
	}
	if actor.OfficeID == nil || ticket.AssignedTo == nil {
		return false, nil
	}
	assigneeOffice, err := directory.OfficeOf(ctx, *ticket.AssignedTo)
	if err != nil {
		return false, err
	}
	return assigneeOffice != nil && *assigneeOffice == *actor.OfficeID, nil
}

// Authorize returns an access denied error unless the actor passes the given path.
func (g AccessGuard) Authorize(ctx context.Context, directory repository.DirectoryRepository, actor *domain.User, ticket *domain.Ticket, path AccessPath) error {
	var allowed bool
	switch path {
	case AccessPathOwner:
		allowed = g.CanAccessAsOwner(actor, ticket)
	case AccessPathStaff:
		ok, err := g.CanAccessAsStaff(ctx, directory, actor, ticket)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		allowed = ok
	}
	if !allowed {
		return apperrors.NewAccessDenied()
	}
	return nil
}
