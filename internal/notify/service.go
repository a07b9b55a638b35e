package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/it-helpdesk/internal/events"
)

// Service bridges store events to the notification port. Errors from the port
// stay here: the dispatcher already swallows handler errors, and the store
// never learns about delivery failures.
type Service struct {
	dispatcher events.Dispatcher
	notifier   Notifier
	logger     *zap.Logger
}

// NewService creates the service.
func NewService(dispatcher events.Dispatcher, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		dispatcher: dispatcher,
		notifier:   notifier,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to store events.
func (s *Service) RegisterHandlers() {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Subscribe(events.EventTicketCreated, s.handleTicketCreated)
	s.dispatcher.Subscribe(events.EventTechnicianAssigned, s.handleTechnicianAssigned)
}

func (s *Service) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		s.logger.Warn("unexpected payload for ticket_created", zap.String("event_id", event.ID))
		return nil
	}
	if err := s.notifier.NotifyNewTicket(ctx, payload.Ticket); err != nil {
		s.logger.Warn("new-ticket notification failed",
			zap.String("ticket_id", payload.Ticket.ID),
			zap.Error(err))
	}
	return nil
}

func (s *Service) handleTechnicianAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TechnicianAssignedPayload)
	if !ok {
		s.logger.Warn("unexpected payload for technician_assigned", zap.String("event_id", event.ID))
		return nil
	}
	if err := s.notifier.NotifyTechnicianAssigned(ctx, payload.Ticket, payload.Technician); err != nil {
		s.logger.Warn("assignment notification failed",
			zap.String("ticket_id", payload.Ticket.ID),
			zap.String("technician", payload.Technician),
			zap.Error(err))
	}
	return nil
}
