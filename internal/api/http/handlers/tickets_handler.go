package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/it-helpdesk/internal/access"
	"github.com/spec-kit/it-helpdesk/internal/api/dto"
	"github.com/spec-kit/it-helpdesk/internal/auth"
	"github.com/spec-kit/it-helpdesk/internal/domain"
	"github.com/spec-kit/it-helpdesk/internal/store"
	"github.com/spec-kit/it-helpdesk/pkg/util/errorutil"
)

// TicketsHandler serves ticket CRUD and comments.
type TicketsHandler struct {
	store *store.Store
}

// NewTicketsHandler constructs the handler.
func NewTicketsHandler(ticketStore *store.Store) *TicketsHandler {
	return &TicketsHandler{store: ticketStore}
}

// List GET /tickets. The store filter runs first, then the role-scoped
// visibility rule.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("authentication required")
	}
	filter := store.Filter{
		Status:     domain.TicketStatus(c.Query("status")),
		Priority:   domain.TicketPriority(c.Query("priority")),
		AssignedTo: c.Query("assignedTo"),
		Department: c.Query("department"),
		Search:     c.Query("search"),
	}
	tickets := access.Filter(h.store.List(filter), account)
	return c.JSON(fiber.Map{"data": tickets})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("authentication required")
	}
	ticket, err := h.store.GetByID(c.Params("id"))
	if err != nil {
		return mapStoreError(err)
	}
	if !access.Visible(ticket, account) {
		return errorutil.NewForbidden("ticket not visible to this department")
	}
	return c.JSON(fiber.Map{"data": ticket})
}

// Create POST /tickets. Title/description presence and the technician roster
// are enforced here; the store only insists on department and reporter.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" {
		return errorutil.NewValidationError("title and description required", nil)
	}
	if req.AssignedTechnician != "" && !domain.KnownTechnician(req.AssignedTechnician) {
		return errorutil.NewValidationError("unknown technician", fiber.Map{"technicians": domain.Technicians})
	}
	if req.ReportedBy == "" {
		req.ReportedBy = account.Email
	}
	if req.Department == "" {
		req.Department = account.Department
	}

	ticket, err := h.store.Create(c.UserContext(), store.CreateInput{
		Title:              req.Title,
		Description:        req.Description,
		Priority:           domain.TicketPriority(req.Priority),
		Category:           req.Category,
		ContactName:        req.ContactName,
		AssignedTo:         req.AssignedTo,
		AssignedTechnician: req.AssignedTechnician,
		ReportedBy:         req.ReportedBy,
		Department:         req.Department,
		DueDate:            req.DueDate,
	})
	if err != nil {
		return mapStoreError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticket})
}

// Update PATCH /tickets/:id (administrator only).
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	if req.AssignedTechnician != nil && *req.AssignedTechnician != "" && !domain.KnownTechnician(*req.AssignedTechnician) {
		return errorutil.NewValidationError("unknown technician", fiber.Map{"technicians": domain.Technicians})
	}

	input := store.UpdateInput{
		Title:              req.Title,
		Description:        req.Description,
		Category:           req.Category,
		ContactName:        req.ContactName,
		AssignedTo:         req.AssignedTo,
		AssignedTechnician: req.AssignedTechnician,
		DueDate:            req.DueDate,
	}
	if req.Status != nil {
		status := domain.TicketStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TicketPriority(*req.Priority)
		input.Priority = &priority
	}

	ticket, err := h.store.Update(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return mapStoreError(err)
	}
	return c.JSON(fiber.Map{"data": ticket})
}

// UpdateAdminComments PUT /tickets/:id/admin-comments (administrator only).
func (h *TicketsHandler) UpdateAdminComments(c *fiber.Ctx) error {
	var req dto.AdminCommentsRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.store.UpdateAdminComments(c.UserContext(), c.Params("id"), req.AdminComments)
	if err != nil {
		return mapStoreError(err)
	}
	return c.JSON(fiber.Map{"data": ticket})
}

// ListComments GET /tickets/:id/comments. Internal notes are withheld from
// operators.
func (h *TicketsHandler) ListComments(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("authentication required")
	}
	comments := h.store.ListComments(c.Params("id"))
	if !account.IsAdmin() {
		visible := make([]domain.Comment, 0, len(comments))
		for _, comment := range comments {
			if !comment.IsInternal {
				visible = append(visible, comment)
			}
		}
		comments = visible
	}
	return c.JSON(fiber.Map{"data": comments})
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("authentication required")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Content) == "" {
		return errorutil.NewValidationError("content required", nil)
	}
	if req.IsInternal && !account.IsAdmin() {
		return errorutil.NewForbidden("internal notes are administrator-only")
	}

	comment, err := h.store.AddComment(c.UserContext(), c.Params("id"), account.ID, req.Content, req.IsInternal)
	if err != nil {
		return mapStoreError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": comment})
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return errorutil.NewNotFound("ticket", nil)
	case errors.Is(err, store.ErrInvalidInput):
		return errorutil.NewValidationError(err.Error(), nil)
	default:
		return errorutil.NewInternalError(err)
	}
}
