package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/it-helpdesk/internal/observability"
	"github.com/spec-kit/it-helpdesk/internal/store"
	"github.com/spec-kit/it-helpdesk/pkg/util/errorutil"
)

// AdminHandler serves backup, wipe and notification-history endpoints.
type AdminHandler struct {
	store   *store.Store
	metrics *observability.Metrics
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(ticketStore *store.Store, metrics *observability.Metrics) *AdminHandler {
	return &AdminHandler{store: ticketStore, metrics: metrics}
}

// Notifications GET /admin/notifications?hours=n.
func (h *AdminHandler) Notifications(c *fiber.Ctx) error {
	window := store.DefaultNotificationWindow
	if raw := c.Query("hours"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return errorutil.NewValidationError("hours must be a positive integer", nil)
		}
		window = time.Duration(hours) * time.Hour
	}
	return c.JSON(fiber.Map{"data": h.store.RecentNotifications(window)})
}

// Backup GET /admin/backup returns the full-state snapshot document.
func (h *AdminHandler) Backup(c *fiber.Ctx) error {
	return c.JSON(h.store.ExportSnapshot())
}

// HTTPMetrics GET /admin/http-metrics dumps the in-memory request and error
// counters.
func (h *AdminHandler) HTTPMetrics(c *fiber.Ctx) error {
	requests, errs := h.metrics.Snapshot()
	return c.JSON(fiber.Map{"data": fiber.Map{
		"requests": requests,
		"errors":   errs,
	}})
}

// ClearData DELETE /admin/data performs the irreversible full wipe.
func (h *AdminHandler) ClearData(c *fiber.Ctx) error {
	if err := h.store.ClearAll(c.UserContext()); err != nil {
		return errorutil.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"cleared": true}})
}
