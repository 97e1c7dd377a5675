package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/campus-helpdesk/internal/config"
	"github.com/spec-kit/campus-helpdesk/internal/domain"
	"github.com/spec-kit/campus-helpdesk/internal/events"
	"github.com/spec-kit/campus-helpdesk/internal/mailer"
	"github.com/spec-kit/campus-helpdesk/internal/repository"
	apperrors "github.com/spec-kit/campus-helpdesk/pkg/util"
)

const maxNotificationMessage = 200

// UnreadCache caches unread counters. Implemented by cache.UnreadCounter.
type UnreadCache interface {
	Get(ctx context.Context, userID string) (int64, bool, error)
	Set(ctx context.Context, userID string, count int64) error
	Invalidate(ctx context.Context, userID string) error
}

// NotificationList is a page of notices plus the recipient's total unread count.
type NotificationList struct {
	Items       []domain.Notification
	UnreadCount int64
}

// NotificationService writes in-app notices, tracks read state and mails recipients
// once a lifecycle change has committed.
type NotificationService struct {
	store      repository.Store
	cache      UnreadCache
	mailer     mailer.Mailer
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NotificationDependencies bundles collaborators. Cache may be nil.
type NotificationDependencies struct {
	Store      repository.Store
	Cache      UnreadCache
	Mailer     mailer.Mailer
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Config     config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		store:      deps.Store,
		cache:      deps.Cache,
		mailer:     deps.Mailer,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		cfg:        deps.Config,
	}
}

// TicketRef is what a notice remembers about its ticket. ID is nil once the ticket is gone.
type TicketRef struct {
	ID        *int64
	DisplayID string
}

func liveRef(ticket *domain.Ticket) TicketRef {
	id := ticket.ID
	return TicketRef{ID: &id, DisplayID: ticket.DisplayID()}
}

func snapshotRef(ticket *domain.Ticket) TicketRef {
	return TicketRef{DisplayID: ticket.DisplayID()}
}

// Notify records a notice using store, which is normally bound to the caller's transaction.
func (n *NotificationService) Notify(ctx context.Context, store repository.Store, recipientID string, ref TicketRef, kind domain.NotificationType, title, message string) (*domain.Notification, error) {
	notice := &domain.Notification{
		RecipientID:     recipientID,
		TicketID:        ref.ID,
		TicketDisplayID: ref.DisplayID,
		Type:            kind,
		Title:           stringPreview(title, maxNotificationMessage),
		Message:         stringPreview(message, maxNotificationMessage),
	}
	if err := store.Notifications().Create(ctx, notice); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return notice, nil
}

// MarkRead flips every unread notice for (userID, ticketID). Repeating it is harmless.
func (n *NotificationService) MarkRead(ctx context.Context, store repository.Store, userID string, ticketID int64) (int64, error) {
	changed, err := store.Notifications().MarkReadForTicket(ctx, userID, ticketID)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return changed, nil
}

// MarkAllRead flips every unread notice of the user.
func (n *NotificationService) MarkAllRead(ctx context.Context, actor *domain.User) (int64, error) {
	if actor == nil {
		return 0, apperrors.NewUnauthorized("authentication required")
	}
	changed, err := n.store.Notifications().MarkAllRead(ctx, actor.ID)
	if err != nil {
		return 0, err
	}
	n.InvalidateUnread(ctx, actor.ID)
	return changed, nil
}

// UnreadCount serves from cache when possible. Cache failures fall back to the database.
func (n *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if n.cache != nil {
		count, found, err := n.cache.Get(ctx, userID)
		if err != nil {
			n.logger.Warn("unread cache read failed", zap.String("user_id", userID), zap.Error(err))
		} else if found {
			return count, nil
		}
	}
	count, err := n.store.Notifications().CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	if n.cache != nil {
		if err := n.cache.Set(ctx, userID, count); err != nil {
			n.logger.Warn("unread cache write failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return count, nil
}

// InvalidateUnread drops the cached counter; called after a committed write.
func (n *NotificationService) InvalidateUnread(ctx context.Context, userID string) {
	if n.cache == nil {
		return
	}
	if err := n.cache.Invalidate(ctx, userID); err != nil {
		n.logger.Warn("unread cache invalidation failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// List returns the newest notices for the actor.
func (n *NotificationService) List(ctx context.Context, actor *domain.User, limit int) (*NotificationList, error) {
	return n.list(ctx, actor, false, limit)
}

// Unread returns the newest unread notices, capped at the configured recent limit.
func (n *NotificationService) Unread(ctx context.Context, actor *domain.User) (*NotificationList, error) {
	return n.list(ctx, actor, true, n.cfg.RecentLimit)
}

func (n *NotificationService) list(ctx context.Context, actor *domain.User, unreadOnly bool, limit int) (*NotificationList, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	items, err := n.store.Notifications().ListRecent(ctx, actor.ID, unreadOnly, limit)
	if err != nil {
		return nil, err
	}
	count, err := n.UnreadCount(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return &NotificationList{Items: items, UnreadCount: count}, nil
}

// RegisterHandlers subscribes mail delivery to every lifecycle event.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		n.dispatcher.Subscribe(eventType, n.handleDelivery)
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleOfficeIntake)
}

// handleDelivery mails the notice's recipient unless they caused the event themselves.
func (n *NotificationService) handleDelivery(ctx context.Context, event events.Event) error {
	notice := event.Notification
	if notice == nil || notice.RecipientID == event.Actor.UserID || n.mailer == nil {
		return nil
	}
	recipient, err := n.store.Directory().GetUser(ctx, notice.RecipientID)
	if err != nil {
		return &apperrors.NotificationDeliveryWarning{Recipient: notice.RecipientID, Err: err}
	}
	subject, body := composeMail(event, notice, recipient)
	if err := n.mailer.Send(ctx, recipient.Email, subject, body); err != nil {
		return &apperrors.NotificationDeliveryWarning{Recipient: recipient.Email, Err: err}
	}
	n.logger.Info("notification mailed",
		zap.String("event_type", string(event.Type)),
		zap.String("ticket_id", event.TicketDisplayID),
		zap.String("to", recipient.Email))
	return nil
}

// handleOfficeIntake tells the routed office's shared inbox about a new ticket.
func (n *NotificationService) handleOfficeIntake(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok || payload.OfficeID == nil || n.mailer == nil {
		return nil
	}
	office, err := n.store.Directory().GetOffice(ctx, *payload.OfficeID)
	if err != nil {
		return &apperrors.NotificationDeliveryWarning{Recipient: fmt.Sprintf("office %d", *payload.OfficeID), Err: err}
	}
	if office.ContactEmail == "" {
		return nil
	}
	subject := fmt.Sprintf("New %s ticket #%s", payload.Category, event.TicketDisplayID)
	body := fmt.Sprintf("A new ticket has been routed to %s.\n\n#%s %s", office.Name, event.TicketDisplayID, payload.Title)
	if payload.AssigneeID == nil {
		body += "\n\nNo staff member is available to take it yet."
	}
	if err := n.mailer.Send(ctx, office.ContactEmail, subject, body); err != nil {
		return &apperrors.NotificationDeliveryWarning{Recipient: office.ContactEmail, Err: err}
	}
	return nil
}

func composeMail(event events.Event, notice *domain.Notification, recipient *domain.User) (string, string) {
	if payload, ok := event.Payload.(events.TicketStatusChangedPayload); ok {
		subject := fmt.Sprintf("Ticket %s Status Update", event.TicketDisplayID)
		body := fmt.Sprintf("Hello %s,\n\nYour ticket #%s has been updated to '%s'.",
			recipient.DisplayName(), event.TicketDisplayID, payload.NewStatus.Label())
		return subject, body
	}
	subject := notice.Title
	if notice.TicketDisplayID != "" {
		subject = fmt.Sprintf("%s (#%s)", notice.Title, notice.TicketDisplayID)
	}
	return subject, fmt.Sprintf("Hello %s,\n\n%s", recipient.DisplayName(), notice.Message)
}

// deliveryWarnings flattens the dispatcher's joined handler errors.
func deliveryWarnings(err error) []*apperrors.NotificationDeliveryWarning {
	if err == nil {
		return nil
	}
	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}
	warnings := make([]*apperrors.NotificationDeliveryWarning, 0, len(errs))
	for _, e := range errs {
		var warning *apperrors.NotificationDeliveryWarning
		if errors.As(e, &warning) {
			warnings = append(warnings, warning)
			continue
		}
		warnings = append(warnings, &apperrors.NotificationDeliveryWarning{Recipient: "unknown", Err: e})
	}
	return warnings
}
