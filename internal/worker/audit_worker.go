package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/support-inbox/internal/events"
)

// StartAuditWorker subscribes an audit logger to every mutation event.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger) {
	if dispatcher == nil {
		return
	}

	handler := func(_ context.Context, event events.Event) error {
		logger.Info("audit",
			zap.String("event", string(event.Type)),
			zap.String("event_id", event.ID),
			zap.Int64("ticket_id", event.TicketID),
			zap.Any("payload", event.Payload),
		)
		return nil
	}

	dispatcher.Subscribe(events.EventTicketUpdated, handler)
	dispatcher.Subscribe(events.EventTicketDeleted, handler)
	dispatcher.Subscribe(events.EventNoteAdded, handler)
}
