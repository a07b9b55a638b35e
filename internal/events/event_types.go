package events

import (
	"time"

	"github.com/spec-kit/it-helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTechnicianAssigned  EventType = "technician_assigned"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketDataCleared   EventType = "ticket_data_cleared"
)

// Event represents a domain event emitted by the ticket store.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  string    `json:"ticket_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// TicketCreatedPayload carries the freshly created ticket.
type TicketCreatedPayload struct {
	Ticket domain.Ticket `json:"ticket"`
}

// TechnicianAssignedPayload carries the ticket and the newly assigned name.
type TechnicianAssignedPayload struct {
	Ticket     domain.Ticket `json:"ticket"`
	Technician string        `json:"technician"`
}

// TicketStatusChangedPayload records a lifecycle transition.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}
