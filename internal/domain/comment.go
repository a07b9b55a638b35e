package domain

import "time"

// Comment is an append-only note attached to a ticket. Comments are never
// mutated or deleted.
type Comment struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticketId"`
	UserID     string    `json:"userId"`
	Content    string    `json:"content"`
	IsInternal bool      `json:"isInternal"`
	CreatedAt  time.Time `json:"createdAt"`
}
