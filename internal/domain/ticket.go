package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in-progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// Completed reports whether the status is a terminal (resolved/closed) state.
func (s TicketStatus) Completed() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// Valid reports whether the status is one of the known lifecycle states.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// Valid reports whether the priority is a known level.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// Technicians is the fixed roster of assignable technicians. The store treats
// AssignedTechnician as opaque text; only the HTTP layer validates against it.
var Technicians = []string{"William", "Andy", "Anthony"}

// KnownTechnician reports whether name is on the roster.
func KnownTechnician(name string) bool {
	for _, t := range Technicians {
		if t == name {
			return true
		}
	}
	return false
}

// Ticket is the central entity of the helpdesk.
type Ticket struct {
	ID                 string         `json:"id"`
	Title              string         `json:"title"`
	Description        string         `json:"description"`
	Status             TicketStatus   `json:"status"`
	Priority           TicketPriority `json:"priority"`
	Category           string         `json:"category"`
	ContactName        string         `json:"contactName,omitempty"`
	AssignedTo         string         `json:"assignedTo,omitempty"`
	AssignedTechnician string         `json:"assignedTechnician,omitempty"`
	ReportedBy         string         `json:"reportedBy"`
	Department         string         `json:"department"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
	CompletedAt        *time.Time     `json:"completedAt,omitempty"`
	DueDate            *time.Time     `json:"dueDate,omitempty"`
	AdminComments      string         `json:"adminComments,omitempty"`
}

// Overdue reports whether the ticket passed its due date without completion.
func (t Ticket) Overdue(now time.Time) bool {
	if t.DueDate == nil || t.Status.Completed() {
		return false
	}
	return t.DueDate.Before(now)
}
