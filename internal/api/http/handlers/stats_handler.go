package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/it-helpdesk/internal/store"
	"github.com/spec-kit/it-helpdesk/pkg/util/errorutil"
)

// StatsHandler serves the derived, read-only views.
type StatsHandler struct {
	store *store.Store
}

// NewStatsHandler constructs the handler.
func NewStatsHandler(ticketStore *store.Store) *StatsHandler {
	return &StatsHandler{store: ticketStore}
}

// Stats GET /stats.
func (h *StatsHandler) Stats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.store.Stats()})
}

// Metrics GET /stats/metrics returns the full KPI roll-up.
func (h *StatsHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.store.Metrics()})
}

// Alerts GET /stats/alerts returns the counters behind the notification badge.
func (h *StatsHandler) Alerts(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": fiber.Map{
		"notificationCount": h.store.NotificationCount(),
		"newTicketCount":    h.store.NewTicketCount(store.DefaultNotificationWindow),
		"unassignedCount":   h.store.UnassignedCount(),
		"overdueCount":      h.store.OverdueCount(),
	}})
}

// Weekly GET /stats/weekly?weeksAgo=n returns tickets created in the
// Sunday-to-Saturday span n weeks back.
func (h *StatsHandler) Weekly(c *fiber.Ctx) error {
	weeksAgo := 0
	if raw := c.Query("weeksAgo"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return errorutil.NewValidationError("weeksAgo must be a non-negative integer", nil)
		}
		weeksAgo = parsed
	}
	tickets := h.store.TicketsInWeek(weeksAgo)
	return c.JSON(fiber.Map{"data": fiber.Map{
		"weeksAgo": weeksAgo,
		"tickets":  tickets,
	}})
}

// Departments GET /departments returns unique department values among tickets.
func (h *StatsHandler) Departments(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.store.Departments()})
}
