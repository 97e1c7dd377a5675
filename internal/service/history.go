package service

import (
	"fmt"

	"github.com/spec-kit/campus-helpdesk/internal/domain"
)

func newHistoryEntry(ticket *domain.Ticket, actor *domain.User, kind domain.HistoryKind, action string) *domain.TicketHistory {
	ticketID := ticket.ID
	actorID := actor.ID
	return &domain.TicketHistory{
		TicketID:        &ticketID,
		TicketTitle:     ticket.Title,
		TicketDisplayID: ticket.DisplayID(),
		OwnerID:         ticket.CreatedBy,
		ActorID:         &actorID,
		Kind:            kind,
		Action:          action,
	}
}

func createdAction() string {
	return "Ticket created by user"
}

func updatedAction() string {
	return "Ticket updated by user"
}

func statusChangedAction(from, to domain.TicketStatus, actor *domain.User) string {
	return fmt.Sprintf("Status changed from %s to %s by %s", from.Label(), to.Label(), actor.DisplayName())
}

func assignedAction(assignee, actor *domain.User) string {
	return fmt.Sprintf("Ticket assigned to %s by %s", assignee.DisplayName(), actor.DisplayName())
}

func noteAction(actor *domain.User) string {
	return fmt.Sprintf("Note added by %s", actor.DisplayName())
}

func deletedAction(actor *domain.User, path AccessPath) string {
	if path == AccessPathOwner {
		return "Ticket deleted by user"
	}
	return fmt.Sprintf("Ticket deleted by %s", actor.DisplayName())
}
