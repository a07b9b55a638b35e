package dto

import "time"

// CreateTicketRequest is the ticket creation payload.
type CreateTicketRequest struct {
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Priority           string     `json:"priority"`
	Category           string     `json:"category"`
	ContactName        string     `json:"contactName"`
	AssignedTo         string     `json:"assignedTo"`
	AssignedTechnician string     `json:"assignedTechnician"`
	ReportedBy         string     `json:"reportedBy"`
	Department         string     `json:"department"`
	DueDate            *time.Time `json:"dueDate"`
}

// UpdateTicketRequest carries a partial update; absent fields stay untouched.
type UpdateTicketRequest struct {
	Title              *string    `json:"title"`
	Description        *string    `json:"description"`
	Status             *string    `json:"status"`
	Priority           *string    `json:"priority"`
	Category           *string    `json:"category"`
	ContactName        *string    `json:"contactName"`
	AssignedTo         *string    `json:"assignedTo"`
	AssignedTechnician *string    `json:"assignedTechnician"`
	DueDate            *time.Time `json:"dueDate"`
}

// AdminCommentsRequest sets the administrator notes on a ticket.
type AdminCommentsRequest struct {
	AdminComments string `json:"adminComments"`
}

// CreateCommentRequest appends a comment to a ticket.
type CreateCommentRequest struct {
	Content    string `json:"content"`
	IsInternal bool   `json:"isInternal"`
}
