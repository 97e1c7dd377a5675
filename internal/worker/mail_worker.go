package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/campus-helpdesk/internal/events"
	"github.com/spec-kit/campus-helpdesk/internal/service"
)

// StartMailWorker registers mail delivery on the dispatcher and an audit log line for
// every lifecycle event. Handlers run synchronously after each commit.
func StartMailWorker(notificationService *service.NotificationService, dispatcher events.Dispatcher, logger *zap.Logger) {
	if dispatcher == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, eventType := range events.AllEventTypes {
		dispatcher.Subscribe(eventType, auditHandler(logger))
	}
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
}

func auditHandler(logger *zap.Logger) events.EventHandler {
	return func(_ context.Context, event events.Event) error {
		fields := []zap.Field{
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketDisplayID),
			zap.String("actor_id", event.Actor.UserID),
			zap.Time("at", event.Timestamp),
		}
		if event.Notification != nil {
			fields = append(fields, zap.String("recipient_id", event.Notification.RecipientID))
		}
		logger.Info("ticket event", fields...)
		return nil
	}
}
