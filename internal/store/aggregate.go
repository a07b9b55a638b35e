package store

import (
	"sort"
	"time"

	"github.com/spec-kit/it-helpdesk/internal/domain"
	"github.com/spec-kit/it-helpdesk/internal/notify"
)

// DefaultNotificationWindow is the trailing period that makes a ticket count
// as "new" for alerting purposes.
const DefaultNotificationWindow = 24 * time.Hour

// Stats are simple counts by predicate over the full ticket collection.
type Stats struct {
	Total         int            `json:"total"`
	Open          int            `json:"open"`
	InProgress    int            `json:"inProgress"`
	Resolved      int            `json:"resolved"`
	Closed        int            `json:"closed"`
	Urgent        int            `json:"urgent"`
	High          int            `json:"high"`
	Assigned      int            `json:"assignedCount"`
	PerTechnician map[string]int `json:"byTechnician"`
}

// Stats computes counters over all tickets, unfiltered.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{PerTechnician: make(map[string]int)}
	for _, t := range s.tickets {
		stats.Total++
		switch t.Status {
		case domain.TicketStatusOpen:
			stats.Open++
		case domain.TicketStatusInProgress:
			stats.InProgress++
		case domain.TicketStatusResolved:
			stats.Resolved++
		case domain.TicketStatusClosed:
			stats.Closed++
		}
		switch t.Priority {
		case domain.TicketPriorityUrgent:
			stats.Urgent++
		case domain.TicketPriorityHigh:
			stats.High++
		}
		if t.AssignedTechnician != "" {
			stats.Assigned++
			stats.PerTechnician[t.AssignedTechnician]++
		}
	}
	return stats
}

// Metrics is the KPI roll-up shown to administrators.
type Metrics struct {
	Stats
	AverageResolutionHours float64        `json:"averageResolutionHours"`
	ByDepartment           map[string]int `json:"byDepartment"`
	TicketsThisWeek        int            `json:"ticketsThisWeek"`
	TicketsThisMonth       int            `json:"ticketsThisMonth"`
	Overdue                int            `json:"overdueCount"`
}

// Metrics derives the dashboard view in one pass plus the stats counters.
func (s *Store) Metrics() Metrics {
	m := Metrics{
		Stats:                  s.Stats(),
		AverageResolutionHours: s.AverageResolutionHours(),
		ByDepartment:           make(map[string]int),
	}

	now := s.now()
	weekAgo := now.Add(-7 * 24 * time.Hour)
	monthAgo := now.Add(-30 * 24 * time.Hour)

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tickets {
		m.ByDepartment[t.Department]++
		if t.CreatedAt.After(weekAgo) {
			m.TicketsThisWeek++
		}
		if t.CreatedAt.After(monthAgo) {
			m.TicketsThisMonth++
		}
		if t.Overdue(now) {
			m.Overdue++
		}
	}
	return m
}

// OverdueCount counts uncompleted tickets past their due date.
func (s *Store) OverdueCount() int {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, t := range s.tickets {
		if t.Overdue(now) {
			count++
		}
	}
	return count
}

// Departments returns the sorted unique department values among tickets.
func (s *Store) Departments() []string {
	s.mu.RLock()
	seen := make(map[string]struct{})
	for _, t := range s.tickets {
		seen[t.Department] = struct{}{}
	}
	s.mu.RUnlock()

	out := make([]string, 0, len(seen))
	for dept := range seen {
		out = append(out, dept)
	}
	sort.Strings(out)
	return out
}

// NewTicketCount counts open tickets created within the trailing window.
func (s *Store) NewTicketCount(window time.Duration) int {
	cutoff := s.now().Add(-window)
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, t := range s.tickets {
		if t.Status == domain.TicketStatusOpen && t.CreatedAt.After(cutoff) {
			count++
		}
	}
	return count
}

// UnassignedCount counts active tickets without a technician.
func (s *Store) UnassignedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, t := range s.tickets {
		if isActive(t.Status) && t.AssignedTechnician == "" {
			count++
		}
	}
	return count
}

// NotificationCount counts active tickets that are either newly created
// within the default window or unassigned. A single predicate pass dedups by
// ticket identity: a ticket satisfying both conditions contributes one.
func (s *Store) NotificationCount() int {
	cutoff := s.now().Add(-DefaultNotificationWindow)
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, t := range s.tickets {
		if !isActive(t.Status) {
			continue
		}
		isNew := t.Status == domain.TicketStatusOpen && t.CreatedAt.After(cutoff)
		if isNew || t.AssignedTechnician == "" {
			count++
		}
	}
	return count
}

// WeekRange returns the Sunday-to-Saturday span weeksAgo weeks before the
// week containing ref. Start is Sunday 00:00:00.000, end is Saturday
// 23:59:59.999 in ref's location.
func WeekRange(ref time.Time, weeksAgo int) (start, end time.Time) {
	year, month, day := ref.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, ref.Location())
	start = midnight.AddDate(0, 0, -int(ref.Weekday())-7*weeksAgo)
	end = start.AddDate(0, 0, 7).Add(-time.Millisecond)
	return start, end
}

// TicketsInWeek returns tickets created within WeekRange(weeksAgo), inclusive.
func (s *Store) TicketsInWeek(weeksAgo int) []domain.Ticket {
	start, end := WeekRange(s.now(), weeksAgo)
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Ticket, 0)
	for _, t := range s.tickets {
		if !t.CreatedAt.Before(start) && !t.CreatedAt.After(end) {
			out = append(out, t)
		}
	}
	return out
}

// AverageResolutionHours is the mean time from creation to completion over
// completed tickets; 0 when none are completed.
func (s *Store) AverageResolutionHours() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total time.Duration
	count := 0
	for _, t := range s.tickets {
		if t.CompletedAt != nil {
			total += t.CompletedAt.Sub(t.CreatedAt)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total.Hours() / float64(count)
}

// RecentNotifications returns notification records within the trailing window.
func (s *Store) RecentNotifications(window time.Duration) []notify.Record {
	return s.history.Recent(s.now(), window)
}

func isActive(status domain.TicketStatus) bool {
	return status == domain.TicketStatusOpen || status == domain.TicketStatusInProgress
}
