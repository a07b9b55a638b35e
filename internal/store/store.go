package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/it-helpdesk/internal/domain"
	"github.com/spec-kit/it-helpdesk/internal/events"
	"github.com/spec-kit/it-helpdesk/internal/notify"
	"github.com/spec-kit/it-helpdesk/internal/persistence"
)

// Store is the sole mutator of ticket and comment state. It owns the live
// collections for the process lifetime; the persistence adapter only ever sees
// serialized snapshots. A single mutex serializes mutations, and reads copy
// out under the read lock so callers never observe a half-applied update.
type Store struct {
	mu       sync.RWMutex
	tickets  []domain.Ticket
	comments []domain.Comment

	persist    persistence.Adapter
	dispatcher events.Dispatcher
	history    *notify.Log
	logger     *zap.Logger
	now        func() time.Time
}

// Dependencies bundles collaborators for the store.
type Dependencies struct {
	Persistence persistence.Adapter
	Dispatcher  events.Dispatcher
	History     *notify.Log
	Logger      *zap.Logger
	Clock       func() time.Time
}

// New loads both collections from the persistence adapter. A missing blob
// initializes the corresponding collection empty.
func New(ctx context.Context, deps Dependencies) (*Store, error) {
	s := &Store{
		persist:    deps.Persistence,
		dispatcher: deps.Dispatcher,
		history:    deps.History,
		logger:     deps.Logger,
		now:        deps.Clock,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.history == nil {
		s.history = notify.NewLog()
	}

	if blob, found, err := deps.Persistence.Load(ctx, persistence.KeyTickets); err != nil {
		return nil, fmt.Errorf("load tickets: %w", err)
	} else if found {
		if err := json.Unmarshal(blob, &s.tickets); err != nil {
			return nil, fmt.Errorf("decode tickets: %w", err)
		}
	}
	if blob, found, err := deps.Persistence.Load(ctx, persistence.KeyComments); err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	} else if found {
		if err := json.Unmarshal(blob, &s.comments); err != nil {
			return nil, fmt.Errorf("decode comments: %w", err)
		}
	}

	s.logger.Info("ticket store loaded",
		zap.Int("tickets", len(s.tickets)),
		zap.Int("comments", len(s.comments)))
	return s, nil
}

// Filter is a conjunction over optional ticket fields. Zero values mean
// "no restriction"; a Department of "all" is equivalent to no department
// filter.
type Filter struct {
	Status     domain.TicketStatus
	Priority   domain.TicketPriority
	AssignedTo string
	Department string
	Search     string
}

func (f Filter) matches(t domain.Ticket) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.AssignedTo != "" && t.AssignedTo != f.AssignedTo {
		return false
	}
	if f.Department != "" && f.Department != "all" && t.Department != f.Department {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) &&
			!strings.Contains(strings.ToLower(t.ID), needle) {
			return false
		}
	}
	return true
}

// List returns tickets matching the filter, most recently touched first.
// Ties keep their prior relative order.
func (s *Store) List(filter Filter) []domain.Ticket {
	s.mu.RLock()
	out := make([]domain.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		if filter.matches(t) {
			out = append(out, t)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// GetByID returns the ticket or ErrNotFound.
func (s *Store) GetByID(id string) (domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexOf(id); idx >= 0 {
		return s.tickets[idx], nil
	}
	return domain.Ticket{}, ErrNotFound
}

// CreateInput is the caller-supplied part of a new ticket.
type CreateInput struct {
	Title              string
	Description        string
	Status             domain.TicketStatus
	Priority           domain.TicketPriority
	Category           string
	ContactName        string
	AssignedTo         string
	AssignedTechnician string
	ReportedBy         string
	Department         string
	DueDate            *time.Time
}

// Create assigns the next sequential id, stamps timestamps, prepends the
// ticket to the collection, persists, and publishes a new-ticket event.
// Department and ReportedBy are required; everything else is the form layer's
// concern.
func (s *Store) Create(ctx context.Context, input CreateInput) (domain.Ticket, error) {
	if strings.TrimSpace(input.Department) == "" {
		return domain.Ticket{}, fmt.Errorf("%w: department required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.ReportedBy) == "" {
		return domain.Ticket{}, fmt.Errorf("%w: reportedBy required", ErrInvalidInput)
	}
	status := input.Status
	if status == "" {
		status = domain.TicketStatusOpen
	}
	if !status.Valid() {
		return domain.Ticket{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !priority.Valid() {
		return domain.Ticket{}, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, priority)
	}

	s.mu.Lock()
	now := s.now()
	ticket := domain.Ticket{
		// Reference id scheme: collection size + 1, zero padded. Ids can
		// repeat after a full wipe; accepted for backup compatibility.
		ID:                 fmt.Sprintf("TKT-%03d", len(s.tickets)+1),
		Title:              strings.TrimSpace(input.Title),
		Description:        strings.TrimSpace(input.Description),
		Status:             status,
		Priority:           priority,
		Category:           input.Category,
		ContactName:        input.ContactName,
		AssignedTo:         input.AssignedTo,
		AssignedTechnician: input.AssignedTechnician,
		ReportedBy:         strings.TrimSpace(input.ReportedBy),
		Department:         strings.TrimSpace(input.Department),
		CreatedAt:          now,
		UpdatedAt:          now,
		DueDate:            input.DueDate,
	}
	s.tickets = append([]domain.Ticket{ticket}, s.tickets...)
	err := s.persistTicketsLocked(ctx)
	s.mu.Unlock()

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload:  events.TicketCreatedPayload{Ticket: ticket},
	})
	if err != nil {
		// The in-memory create stands even when the save fails; the error
		// surfaces so the caller knows durability was not achieved.
		return ticket, err
	}
	return ticket, nil
}

// UpdateInput holds partial ticket fields; nil pointers leave the field
// untouched.
type UpdateInput struct {
	Title              *string
	Description        *string
	Status             *domain.TicketStatus
	Priority           *domain.TicketPriority
	Category           *string
	ContactName        *string
	AssignedTo         *string
	AssignedTechnician *string
	DueDate            *time.Time
}

// Update merges the patch into the ticket, refreshes UpdatedAt, applies the
// completion-timestamp rule, and publishes an assignment event when a new
// non-empty technician appears.
func (s *Store) Update(ctx context.Context, id string, input UpdateInput) (domain.Ticket, error) {
	if input.Status != nil && !input.Status.Valid() {
		return domain.Ticket{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *input.Status)
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return domain.Ticket{}, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, *input.Priority)
	}

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return domain.Ticket{}, ErrNotFound
	}
	t := &s.tickets[idx]
	prevStatus := t.Status
	prevTechnician := t.AssignedTechnician

	if input.Title != nil {
		t.Title = *input.Title
	}
	if input.Description != nil {
		t.Description = *input.Description
	}
	if input.Priority != nil {
		t.Priority = *input.Priority
	}
	if input.Category != nil {
		t.Category = *input.Category
	}
	if input.ContactName != nil {
		t.ContactName = *input.ContactName
	}
	if input.AssignedTo != nil {
		t.AssignedTo = *input.AssignedTo
	}
	if input.AssignedTechnician != nil {
		t.AssignedTechnician = *input.AssignedTechnician
	}
	if input.DueDate != nil {
		t.DueDate = input.DueDate
	}

	now := s.now()
	t.UpdatedAt = now

	statusChanged := input.Status != nil && *input.Status != prevStatus
	if statusChanged {
		t.Status = *input.Status
		// CompletedAt is stamped on entry into {resolved, closed} and cleared
		// on exit. Moves within the completed set leave it alone, as do
		// re-saves of the same status (statusChanged is false then).
		switch {
		case t.Status.Completed() && !prevStatus.Completed():
			if t.CompletedAt == nil {
				stamped := now
				t.CompletedAt = &stamped
			}
		case !t.Status.Completed() && prevStatus.Completed():
			t.CompletedAt = nil
		}
	}

	technicianAssigned := input.AssignedTechnician != nil &&
		*input.AssignedTechnician != "" &&
		*input.AssignedTechnician != prevTechnician

	updated := *t
	err := s.persistTicketsLocked(ctx)
	s.mu.Unlock()

	if statusChanged {
		s.publish(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: updated.ID,
			Payload: events.TicketStatusChangedPayload{
				OldStatus: prevStatus,
				NewStatus: updated.Status,
			},
		})
	}
	if technicianAssigned {
		s.publish(ctx, events.Event{
			Type:     events.EventTechnicianAssigned,
			TicketID: updated.ID,
			Payload: events.TechnicianAssignedPayload{
				Ticket:     updated,
				Technician: updated.AssignedTechnician,
			},
		})
	}
	if err != nil {
		return updated, err
	}
	return updated, nil
}

// UpdateAdminComments sets the administrator notes. No notification.
func (s *Store) UpdateAdminComments(ctx context.Context, id, text string) (domain.Ticket, error) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return domain.Ticket{}, ErrNotFound
	}
	s.tickets[idx].AdminComments = text
	s.tickets[idx].UpdatedAt = s.now()
	updated := s.tickets[idx]
	err := s.persistTicketsLocked(ctx)
	s.mu.Unlock()

	if err != nil {
		return updated, err
	}
	return updated, nil
}

// AddComment appends a note to the comment collection. Comments reference
// tickets by id without an existence check, matching the append-only model.
func (s *Store) AddComment(ctx context.Context, ticketID, userID, content string, isInternal bool) (domain.Comment, error) {
	s.mu.Lock()
	comment := domain.Comment{
		ID:         fmt.Sprintf("comment-%d", len(s.comments)+1),
		TicketID:   ticketID,
		UserID:     userID,
		Content:    content,
		IsInternal: isInternal,
		CreatedAt:  s.now(),
	}
	s.comments = append(s.comments, comment)
	err := s.persistCommentsLocked(ctx)
	s.mu.Unlock()

	if err != nil {
		return comment, err
	}
	return comment, nil
}

// ListComments returns a ticket's comments ordered oldest first.
func (s *Store) ListComments(ticketID string) []domain.Comment {
	s.mu.RLock()
	out := make([]domain.Comment, 0)
	for _, c := range s.comments {
		if c.TicketID == ticketID {
			out = append(out, c)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// ClearAll irreversibly empties tickets, comments and the notification
// history, then persists the empty state.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	s.tickets = nil
	s.comments = nil
	s.history.Clear()
	ticketsErr := s.persistTicketsLocked(ctx)
	commentsErr := s.persistCommentsLocked(ctx)
	s.mu.Unlock()

	s.publish(ctx, events.Event{Type: events.EventTicketDataCleared})
	if ticketsErr != nil {
		return ticketsErr
	}
	return commentsErr
}

// Snapshot is the backup document: three top-level arrays suitable for full
// state restore.
type Snapshot struct {
	Tickets            []domain.Ticket  `json:"tickets"`
	Comments           []domain.Comment `json:"comments"`
	EmailNotifications []notify.Record  `json:"emailNotifications"`
}

// ExportSnapshot returns a read-only full-state dump.
func (s *Store) ExportSnapshot() Snapshot {
	s.mu.RLock()
	tickets := make([]domain.Ticket, len(s.tickets))
	copy(tickets, s.tickets)
	comments := make([]domain.Comment, len(s.comments))
	copy(comments, s.comments)
	s.mu.RUnlock()

	return Snapshot{
		Tickets:            tickets,
		Comments:           comments,
		EmailNotifications: s.history.All(),
	}
}

func (s *Store) indexOf(id string) int {
	for i := range s.tickets {
		if s.tickets[i].ID == id {
			return i
		}
	}
	return -1
}

// persistTicketsLocked saves the ticket collection. The in-memory mutation is
// not rolled back on failure; the caller surfaces the error instead.
func (s *Store) persistTicketsLocked(ctx context.Context) error {
	blob, err := json.Marshal(s.tickets)
	if err != nil {
		return fmt.Errorf("encode tickets: %w", err)
	}
	if err := s.persist.Save(ctx, persistence.KeyTickets, blob); err != nil {
		return fmt.Errorf("persist tickets: %w", err)
	}
	return nil
}

func (s *Store) persistCommentsLocked(ctx context.Context) error {
	blob, err := json.Marshal(s.comments)
	if err != nil {
		return fmt.Errorf("encode comments: %w", err)
	}
	if err := s.persist.Save(ctx, persistence.KeyComments, blob); err != nil {
		return fmt.Errorf("persist comments: %w", err)
	}
	return nil
}

func (s *Store) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
