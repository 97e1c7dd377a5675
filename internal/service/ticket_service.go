package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/campus-helpdesk/internal/domain"
	"github.com/spec-kit/campus-helpdesk/internal/events"
	"github.com/spec-kit/campus-helpdesk/internal/repository"
	apperrors "github.com/spec-kit/campus-helpdesk/pkg/util"
)

// ListScope selects which tickets a listing covers.
type ListScope string

const (
	ScopeOwn    ListScope = "own"
	ScopeOffice ListScope = "office"
	ScopeAll    ListScope = "all"
)

// TicketResult is returned by ticket mutations. Warnings report mail failures that
// happened after the change committed.
type TicketResult struct {
	Ticket       *domain.Ticket
	History      *domain.TicketHistory
	Notification *domain.Notification
	Warnings     []*apperrors.NotificationDeliveryWarning
}

// NoteResult is returned by AddNote.
type NoteResult struct {
	Entry        *domain.TicketHistory
	Notification *domain.Notification
	Warnings     []*apperrors.NotificationDeliveryWarning
}

// DeleteResult is returned by DeleteTicket.
type DeleteResult struct {
	Entry        *domain.TicketHistory
	Notification *domain.Notification
	Warnings     []*apperrors.NotificationDeliveryWarning
}

// TicketDetail is a ticket with its ledger, newest first.
type TicketDetail struct {
	Ticket  *domain.Ticket
	History []domain.TicketHistory
	Notes   []domain.TicketHistory
}

// TicketService runs every ticket lifecycle operation: validate, route, persist,
// record history and notify in one transaction, then deliver mail.
type TicketService struct {
	store         repository.Store
	routing       *RoutingEngine
	guard         AccessGuard
	forms         *TicketForms
	notifications *NotificationService
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	previewLength int
	now           func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Store         repository.Store
	Routing       *RoutingEngine
	Forms         *TicketForms
	Notifications *NotificationService
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	PreviewLength int
	Clock         func() time.Time
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	forms := deps.Forms
	if forms == nil {
		forms = NewTicketForms()
	}
	previewLength := deps.PreviewLength
	if previewLength <= 0 {
		previewLength = 100
	}
	clock := deps.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &TicketService{
		store:         deps.Store,
		routing:       deps.Routing,
		forms:         forms,
		notifications: deps.Notifications,
		dispatcher:    deps.Dispatcher,
		logger:        logger,
		previewLength: previewLength,
		now:           clock,
	}
}

// CreateTicket validates the category form, routes the ticket and stores it.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.User, sub TicketSubmission) (*TicketResult, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	prepared, err := s.forms.Prepare(sub)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		Title:       prepared.Title,
		Description: prepared.Description,
		Category:    sub.Category,
		Status:      domain.TicketStatusOpen,
		Urgency:     prepared.Urgency,
		Details:     prepared.Details,
		Attachment:  prepared.Attachment,
		CreatedBy:   actor.ID,
	}
	result := &TicketResult{Ticket: ticket}
	var decision RoutingDecision

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		decision, err = s.routing.Assign(ctx, tx.Directory(), ticket)
		if err != nil {
			return err
		}
		if err := tx.Tickets().Create(ctx, ticket); err != nil {
			return fmt.Errorf("create ticket: %w", err)
		}
		result.History = newHistoryEntry(ticket, actor, domain.HistoryKindCreated, createdAction())
		if err := tx.History().Create(ctx, result.History); err != nil {
			return fmt.Errorf("record history: %w", err)
		}
		result.Notification, err = s.notifications.Notify(ctx, tx, ticket.CreatedBy, liveRef(ticket),
			domain.NotificationTicketCreated, "Ticket Submitted",
			fmt.Sprintf("Your ticket #%s has been submitted successfully.", ticket.DisplayID()))
		return err
	})
	if err != nil {
		return nil, err
	}

	payload := events.TicketCreatedPayload{
		Title:      ticket.Title,
		Category:   ticket.Category,
		AssigneeID: ticket.AssignedTo,
	}
	if decision.Office != nil {
		officeID := decision.Office.ID
		payload.OfficeID = &officeID
	}
	if decision.Assignee == nil {
		s.logger.Info("ticket left unassigned",
			zap.String("ticket_id", ticket.DisplayID()),
			zap.String("category", string(ticket.Category)))
	}
	result.Warnings = s.afterCommit(ctx, events.EventTicketCreated, ticket.DisplayID(), actor, result.Notification, payload)
	return result, nil
}

// ListTickets returns tickets partitioned by status, newest first within each bucket.
func (s *TicketService) ListTickets(ctx context.Context, actor *domain.User, scope ListScope) (domain.TicketBuckets, error) {
	if actor == nil {
		return domain.TicketBuckets{}, apperrors.NewUnauthorized("authentication required")
	}
	var (
		tickets []domain.Ticket
		err     error
	)
	switch scope {
	case ScopeOwn:
		tickets, err = s.store.Tickets().ListByOwner(ctx, actor.ID)
	case ScopeOffice:
		switch {
		case actor.OfficeID != nil:
			tickets, err = s.store.Tickets().ListByOffice(ctx, *actor.OfficeID)
		case actor.IsSuperuser:
			tickets, err = s.store.Tickets().ListAll(ctx)
		default:
			return domain.TicketBuckets{}, apperrors.NewAccessDenied()
		}
	case ScopeAll:
		if !actor.IsSuperuser {
			return domain.TicketBuckets{}, apperrors.NewAccessDenied()
		}
		tickets, err = s.store.Tickets().ListAll(ctx)
	default:
		return domain.TicketBuckets{}, apperrors.NewValidationError("invalid scope", map[string]any{
			"scope": "scope must be one of [own office all]",
		})
	}
	if err != nil {
		return domain.TicketBuckets{}, err
	}
	return domain.PartitionTickets(tickets), nil
}

// GetTicketDetail returns the ticket with its history and staff notes. An owner
// viewing their ticket marks it viewed and reads its notifications.
func (s *TicketService) GetTicketDetail(ctx context.Context, actor *domain.User, ticketID int64, path AccessPath) (*TicketDetail, error) {
	ticket, err := s.loadTicket(ctx, s.store, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(ctx, s.store.Directory(), actor, ticket, path); err != nil {
		return nil, err
	}

	if path == AccessPathOwner {
		viewedAt := s.now()
		var changed int64
		err := s.store.WithinTx(ctx, func(tx repository.Store) error {
			if err := tx.Tickets().MarkViewed(ctx, ticket.ID, viewedAt); err != nil {
				return fmt.Errorf("mark viewed: %w", err)
			}
			var err error
			changed, err = s.notifications.MarkRead(ctx, tx, actor.ID, ticket.ID)
			return err
		})
		if err != nil {
			return nil, err
		}
		ticket.LastViewedByUser = &viewedAt
		if changed > 0 {
			s.notifications.InvalidateUnread(ctx, actor.ID)
		}
	}

	history, err := s.store.History().ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	return &TicketDetail{Ticket: ticket, History: history, Notes: domain.NotesOf(history)}, nil
}

// UpdateTicket lets the owner edit their submission. The category never changes and
// status is not editable here.
func (s *TicketService) UpdateTicket(ctx context.Context, actor *domain.User, ticketID int64, sub TicketSubmission) (*TicketResult, error) {
	result := &TicketResult{}
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		ticket, err := s.loadTicket(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if err := s.guard.Authorize(ctx, tx.Directory(), actor, ticket, AccessPathOwner); err != nil {
			return err
		}
		if sub.Category != "" && sub.Category != ticket.Category {
			return apperrors.NewValidationError("invalid ticket", map[string]any{
				"category": "category cannot be changed",
			})
		}
		sub.Category = ticket.Category
		prepared, err := s.forms.Prepare(sub)
		if err != nil {
			return err
		}
		ticket.Title = prepared.Title
		ticket.Description = prepared.Description
		ticket.Details = prepared.Details
		ticket.Urgency = prepared.Urgency
		if prepared.Attachment != nil {
			ticket.Attachment = prepared.Attachment
		}
		if err := tx.Tickets().Update(ctx, ticket); err != nil {
			return fmt.Errorf("update ticket: %w", err)
		}
		result.Ticket = ticket
		result.History = newHistoryEntry(ticket, actor, domain.HistoryKindUpdated, updatedAction())
		if err := tx.History().Create(ctx, result.History); err != nil {
			return fmt.Errorf("record history: %w", err)
		}
		result.Notification, err = s.notifications.Notify(ctx, tx, ticket.CreatedBy, liveRef(ticket),
			domain.NotificationTicketUpdated, "Ticket Updated",
			fmt.Sprintf("Your ticket #%s has been updated.", ticket.DisplayID()))
		return err
	})
	if err != nil {
		return nil, err
	}
	result.Warnings = s.afterCommit(ctx, events.EventTicketUpdated, result.Ticket.DisplayID(), actor, result.Notification, nil)
	return result, nil
}

// UpdateTicketStatus moves a ticket to any status. Setting the current status again
// changes nothing and notifies nobody.
func (s *TicketService) UpdateTicketStatus(ctx context.Context, actor *domain.User, ticketID int64, status domain.TicketStatus) (*TicketResult, error) {
	if !status.IsValid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{
			"status": "status must be one of [open in_progress completed]",
		})
	}
	result := &TicketResult{}
	var oldStatus domain.TicketStatus
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		ticket, err := s.loadTicket(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if err := s.guard.Authorize(ctx, tx.Directory(), actor, ticket, AccessPathStaff); err != nil {
			return err
		}
		result.Ticket = ticket
		oldStatus = ticket.Status
		if oldStatus == status {
			return nil
		}

		now := s.now()
		ticket.Status = status
		ticket.LastAdminUpdate = &now
		if err := tx.Tickets().Update(ctx, ticket); err != nil {
			return fmt.Errorf("update ticket: %w", err)
		}
		result.History = newHistoryEntry(ticket, actor, domain.HistoryKindStatusChanged, statusChangedAction(oldStatus, status, actor))
		result.History.NewStatus = &status
		if err := tx.History().Create(ctx, result.History); err != nil {
			return fmt.Errorf("record history: %w", err)
		}

		kind, title, message, err := s.statusNotice(ctx, tx, ticket, oldStatus)
		if err != nil {
			return err
		}
		result.Notification, err = s.notifications.Notify(ctx, tx, ticket.CreatedBy, liveRef(ticket), kind, title, message)
		return err
	})
	if err != nil {
		return nil, err
	}
	if result.History == nil {
		return result, nil
	}
	result.Warnings = s.afterCommit(ctx, events.EventTicketStatusChanged, result.Ticket.DisplayID(), actor, result.Notification,
		events.TicketStatusChangedPayload{OldStatus: oldStatus, NewStatus: status})
	return result, nil
}

// statusNotice picks the owner notice for a status change that already happened on ticket.
func (s *TicketService) statusNotice(ctx context.Context, tx repository.Store, ticket *domain.Ticket, from domain.TicketStatus) (domain.NotificationType, string, string, error) {
	id := ticket.DisplayID()
	switch {
	case ticket.Status == domain.TicketStatusCompleted:
		return domain.NotificationTicketCompleted, "Ticket Completed",
			fmt.Sprintf("Your ticket #%s %q has been marked as completed. Please review the solution.", id, ticket.Title), nil
	case from == domain.TicketStatusOpen && ticket.Status == domain.TicketStatusInProgress:
		handler := "our team"
		if ticket.AssignedTo != nil {
			assignee, err := tx.Directory().GetUser(ctx, *ticket.AssignedTo)
			if err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return "", "", "", fmt.Errorf("lookup assignee: %w", err)
			}
			if assignee != nil {
				handler = assignee.DisplayName()
			}
		}
		return domain.NotificationTicketUpdated, "Ticket In Progress",
			fmt.Sprintf("Your ticket #%s is now being processed by %s.", id, handler), nil
	default:
		return domain.NotificationTicketUpdated, "Ticket Status Updated",
			fmt.Sprintf("Your ticket #%s status has been updated to %s.", id, ticket.Status.Label()), nil
	}
}

// AssignTicket hands the ticket to another staff member of an office that handles its category.
func (s *TicketService) AssignTicket(ctx context.Context, actor *domain.User, ticketID int64, assigneeID string) (*TicketResult, error) {
	if strings.TrimSpace(assigneeID) == "" {
		return nil, apperrors.NewValidationError("invalid assignment", map[string]any{
			"assignee_id": "assignee_id is required",
		})
	}
	result := &TicketResult{}
	var previous *string
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		ticket, err := s.loadTicket(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if err := s.guard.Authorize(ctx, tx.Directory(), actor, ticket, AccessPathStaff); err != nil {
			return err
		}
		result.Ticket = ticket

		assignee, err := tx.Directory().GetUser(ctx, assigneeID)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("staff member", map[string]any{"assignee_id": assigneeID})
		}
		if err != nil {
			return fmt.Errorf("lookup assignee: %w", err)
		}
		if assignee.OfficeID == nil {
			return apperrors.NewValidationError("invalid assignment", map[string]any{
				"assignee_id": "assignee is not a staff member",
			})
		}
		ok, err := s.routing.CanHandle(ctx, tx.Directory(), ticket.Category, *assignee.OfficeID)
		if err != nil {
			return fmt.Errorf("check assignee office: %w", err)
		}
		if !ok {
			return apperrors.NewValidationError("invalid assignment", map[string]any{
				"assignee_id": fmt.Sprintf("assignee's office does not handle %s tickets", ticket.Category),
			})
		}
		if ticket.AssignedTo != nil && *ticket.AssignedTo == assignee.ID {
			return nil
		}

		previous = ticket.AssignedTo
		now := s.now()
		id := assignee.ID
		ticket.AssignedTo = &id
		ticket.LastAdminUpdate = &now
		if err := tx.Tickets().Update(ctx, ticket); err != nil {
			return fmt.Errorf("update ticket: %w", err)
		}
		result.History = newHistoryEntry(ticket, actor, domain.HistoryKindAssigned, assignedAction(assignee, actor))
		if err := tx.History().Create(ctx, result.History); err != nil {
			return fmt.Errorf("record history: %w", err)
		}
		result.Notification, err = s.notifications.Notify(ctx, tx, ticket.CreatedBy, liveRef(ticket),
			domain.NotificationTicketAssigned, "Ticket Assigned",
			fmt.Sprintf("Your ticket #%s has been assigned to %s.", ticket.DisplayID(), assignee.DisplayName()))
		return err
	})
	if err != nil {
		return nil, err
	}
	if result.History == nil {
		return result, nil
	}
	result.Warnings = s.afterCommit(ctx, events.EventTicketAssigned, result.Ticket.DisplayID(), actor, result.Notification,
		events.TicketAssignedPayload{PreviousAssigneeID: previous, AssigneeID: assigneeID})
	return result, nil
}

// AddNote appends a staff response to the ticket's history.
func (s *TicketService) AddNote(ctx context.Context, actor *domain.User, ticketID int64, text string) (*NoteResult, error) {
	text = s.forms.clean(text)
	if text == "" {
		return nil, apperrors.NewValidationError("invalid note", map[string]any{"note": "note is required"})
	}
	result := &NoteResult{}
	var displayID string
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		ticket, err := s.loadTicket(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if err := s.guard.Authorize(ctx, tx.Directory(), actor, ticket, AccessPathStaff); err != nil {
			return err
		}
		displayID = ticket.DisplayID()

		now := s.now()
		ticket.LastAdminUpdate = &now
		if err := tx.Tickets().Update(ctx, ticket); err != nil {
			return fmt.Errorf("update ticket: %w", err)
		}
		result.Entry = newHistoryEntry(ticket, actor, domain.HistoryKindNote, noteAction(actor))
		result.Entry.Note = text
		if err := tx.History().Create(ctx, result.Entry); err != nil {
			return fmt.Errorf("record history: %w", err)
		}
		result.Notification, err = s.notifications.Notify(ctx, tx, ticket.CreatedBy, liveRef(ticket),
			domain.NotificationTicketResponse, "New Response",
			fmt.Sprintf("New response on ticket #%s: %s", displayID, stringPreview(text, s.previewLength)))
		return err
	})
	if err != nil {
		return nil, err
	}
	result.Warnings = s.afterCommit(ctx, events.EventTicketNoteAdded, displayID, actor, result.Notification,
		events.TicketNoteAddedPayload{HistoryID: result.Entry.ID, BodyPreview: stringPreview(text, s.previewLength)})
	return result, nil
}

// DeleteTicket removes the ticket. Its history survives with a snapshot of the title
// and display id, and the owner is told about the deletion.
func (s *TicketService) DeleteTicket(ctx context.Context, actor *domain.User, ticketID int64, path AccessPath) (*DeleteResult, error) {
	result := &DeleteResult{}
	var snapshot domain.Ticket
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		ticket, err := s.loadTicket(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if err := s.guard.Authorize(ctx, tx.Directory(), actor, ticket, path); err != nil {
			return err
		}
		snapshot = *ticket

		if err := tx.Tickets().Delete(ctx, ticket.ID); err != nil {
			return fmt.Errorf("delete ticket: %w", err)
		}
		result.Entry = newHistoryEntry(ticket, actor, domain.HistoryKindDeleted, deletedAction(actor, path))
		result.Entry.TicketID = nil
		if err := tx.History().Create(ctx, result.Entry); err != nil {
			return fmt.Errorf("record history: %w", err)
		}
		result.Notification, err = s.notifications.Notify(ctx, tx, ticket.CreatedBy, snapshotRef(ticket),
			domain.NotificationTicketUpdated, "Ticket Deleted",
			fmt.Sprintf("Your ticket #%s %q has been deleted.", ticket.DisplayID(), ticket.Title))
		return err
	})
	if err != nil {
		return nil, err
	}
	result.Warnings = s.afterCommit(ctx, events.EventTicketDeleted, snapshot.DisplayID(), actor, result.Notification,
		events.TicketDeletedPayload{Title: snapshot.Title, OwnerID: snapshot.CreatedBy})
	return result, nil
}

// ListAssignees lists the staff a ticket may be reassigned to.
func (s *TicketService) ListAssignees(ctx context.Context, actor *domain.User, ticketID int64) ([]domain.User, error) {
	ticket, err := s.loadTicket(ctx, s.store, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(ctx, s.store.Directory(), actor, ticket, AccessPathStaff); err != nil {
		return nil, err
	}
	return s.routing.CandidateStaff(ctx, s.store.Directory(), ticket.Category)
}

// ListOwnerHistory lists the actor's ledger entries, including those of tickets they deleted.
func (s *TicketService) ListOwnerHistory(ctx context.Context, actor *domain.User) ([]domain.TicketHistory, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return s.store.History().ListByOwner(ctx, actor.ID)
}

func (s *TicketService) loadTicket(ctx context.Context, store repository.Store, ticketID int64) (*domain.Ticket, error) {
	ticket, err := store.Tickets().GetByID(ctx, ticketID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": domain.FormatDisplayID(ticketID)})
	}
	if err != nil {
		return nil, fmt.Errorf("load ticket: %w", err)
	}
	return ticket, nil
}

// afterCommit refreshes the recipient's unread counter and publishes the event.
// Handler failures come back as warnings; the committed change stands.
func (s *TicketService) afterCommit(ctx context.Context, eventType events.EventType, displayID string, actor *domain.User, notice *domain.Notification, payload interface{}) []*apperrors.NotificationDeliveryWarning {
	if notice != nil {
		s.notifications.InvalidateUnread(ctx, notice.RecipientID)
	}
	if s.dispatcher == nil {
		return nil
	}
	event := events.Event{
		ID:              uuid.NewString(),
		Type:            eventType,
		TicketDisplayID: displayID,
		Actor:           events.Actor{UserID: actor.ID, DisplayName: actor.DisplayName()},
		Timestamp:       s.now(),
		Notification:    notice,
		Payload:         payload,
	}
	warnings := deliveryWarnings(s.dispatcher.Publish(ctx, event))
	for _, warning := range warnings {
		s.logger.Warn("notification delivery failed",
			zap.String("event_type", string(eventType)),
			zap.String("ticket_id", displayID),
			zap.String("recipient", warning.Recipient),
			zap.Error(warning.Err))
	}
	return warnings
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
