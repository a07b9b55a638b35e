package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/it-helpdesk/internal/domain"
)

// Notifier is the outbound notification port consumed by the ticket store's
// event handlers. Both calls are best-effort; a returned error means the
// delivery attempt failed, never that the triggering mutation should fail.
type Notifier interface {
	NotifyNewTicket(ctx context.Context, ticket domain.Ticket) error
	NotifyTechnicianAssigned(ctx context.Context, ticket domain.Ticket, technician string) error
}

// Sender delivers a composed message. Transport mechanics (SMTP and friends)
// live behind this interface.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogSender writes outbound messages to the structured log instead of a wire.
type LogSender struct {
	Logger *zap.Logger
}

// Send logs the message and reports success.
func (s *LogSender) Send(_ context.Context, to, subject, _ string) error {
	s.Logger.Info("outbound email",
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}

// Mailer composes admin-facing notification emails and records every attempt
// in the history log before handing the message to the sender.
type Mailer struct {
	sender Sender
	log    *Log
	admin  string
	logger *zap.Logger
	now    func() time.Time
}

// NewMailer constructs the mailer.
func NewMailer(sender Sender, log *Log, adminEmail string, logger *zap.Logger) *Mailer {
	return &Mailer{
		sender: sender,
		log:    log,
		admin:  adminEmail,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the timestamp source for notification records. Records
// and the store's recency windows must share one clock.
func (m *Mailer) WithClock(now func() time.Time) *Mailer {
	m.now = now
	return m
}

// NotifyNewTicket emails the administrator about a freshly created ticket.
func (m *Mailer) NotifyNewTicket(ctx context.Context, ticket domain.Ticket) error {
	subject := fmt.Sprintf("New IT Ticket Created - %s", ticket.ID)
	return m.send(ctx, subject, newTicketBody(ticket))
}

// NotifyTechnicianAssigned emails the administrator about an assignment.
func (m *Mailer) NotifyTechnicianAssigned(ctx context.Context, ticket domain.Ticket, technician string) error {
	subject := fmt.Sprintf("Ticket %s Assigned to %s", ticket.ID, technician)
	return m.send(ctx, subject, assignmentBody(ticket, technician, m.now()))
}

// send appends the audit record first so a failed delivery still shows up in
// the notification history, then attempts delivery exactly once.
func (m *Mailer) send(ctx context.Context, subject, body string) error {
	m.log.Append(Record{
		To:        m.admin,
		Subject:   subject,
		Body:      body,
		Timestamp: m.now(),
	})
	if err := m.sender.Send(ctx, m.admin, subject, body); err != nil {
		m.logger.Warn("email delivery failed",
			zap.String("subject", subject),
			zap.Error(err))
		return err
	}
	return nil
}

func newTicketBody(t domain.Ticket) string {
	var b strings.Builder
	b.WriteString("NEW IT TICKET CREATED\n\n")
	fmt.Fprintf(&b, "Ticket ID: %s\n", t.ID)
	fmt.Fprintf(&b, "Title: %s\n", t.Title)
	fmt.Fprintf(&b, "Priority: %s\n", strings.ToUpper(string(t.Priority)))
	fmt.Fprintf(&b, "Department: %s\n", t.Department)
	fmt.Fprintf(&b, "Category: %s\n\n", t.Category)
	fmt.Fprintf(&b, "Description:\n%s\n\n", t.Description)
	fmt.Fprintf(&b, "Reported by: %s\n", t.ReportedBy)
	fmt.Fprintf(&b, "Created: %s\n", t.CreatedAt.Format(time.RFC1123))
	fmt.Fprintf(&b, "Due Date: %s\n\n", formatDueDate(t.DueDate))
	fmt.Fprintf(&b, "Status: %s\n", strings.ToUpper(string(t.Status)))
	fmt.Fprintf(&b, "Assignment: %s\n", formatAssignment(t.AssignedTechnician))
	return b.String()
}

func assignmentBody(t domain.Ticket, technician string, now time.Time) string {
	var b strings.Builder
	b.WriteString("TICKET ASSIGNED TO TECHNICIAN\n\n")
	fmt.Fprintf(&b, "Ticket ID: %s\n", t.ID)
	fmt.Fprintf(&b, "Title: %s\n", t.Title)
	fmt.Fprintf(&b, "Assigned to: %s\n\n", technician)
	fmt.Fprintf(&b, "Priority: %s\n", strings.ToUpper(string(t.Priority)))
	fmt.Fprintf(&b, "Department: %s\n", t.Department)
	fmt.Fprintf(&b, "Due Date: %s\n\n", formatDueDate(t.DueDate))
	fmt.Fprintf(&b, "Description:\n%s\n\n", t.Description)
	fmt.Fprintf(&b, "Updated: %s\n", now.Format(time.RFC1123))
	return b.String()
}

func formatDueDate(due *time.Time) string {
	if due == nil {
		return "Not set"
	}
	return due.Format("2006-01-02")
}

func formatAssignment(technician string) string {
	if technician == "" {
		return "UNASSIGNED"
	}
	return technician
}
