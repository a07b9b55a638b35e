// Package access applies the role-scoped visibility rule on top of the
// store's generic filter.
package access

import (
	"strings"

	"github.com/spec-kit/it-helpdesk/internal/domain"
)

// Visible reports whether the account may see the ticket. Administrators see
// everything. An operator sees a ticket when they reported it, it is assigned
// to them, or either address contains the department keyword.
func Visible(ticket domain.Ticket, account domain.Account) bool {
	if account.IsAdmin() {
		return true
	}
	if ticket.ReportedBy == account.Email {
		return true
	}
	if ticket.AssignedTo != "" && ticket.AssignedTo == account.Email {
		return true
	}
	keyword := DepartmentKeyword(account.Department)
	if keyword == "" {
		return false
	}
	if strings.Contains(ticket.ReportedBy, keyword) {
		return true
	}
	return ticket.AssignedTo != "" && strings.Contains(ticket.AssignedTo, keyword)
}

// Filter keeps the tickets visible to the account, preserving order. The
// result never aliases the input slice.
func Filter(tickets []domain.Ticket, account domain.Account) []domain.Ticket {
	out := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if Visible(t, account) {
			out = append(out, t)
		}
	}
	return out
}

// DepartmentKeyword derives the email keyword for a department: lower-cased
// with whitespace runs replaced by dots ("Office Westfield" -> "office.westfield").
func DepartmentKeyword(department string) string {
	fields := strings.Fields(strings.ToLower(department))
	return strings.Join(fields, ".")
}
