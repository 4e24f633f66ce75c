package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-inbox/internal/api/dto"
	"github.com/spec-kit/support-inbox/internal/auth"
	"github.com/spec-kit/support-inbox/internal/service"
	"github.com/spec-kit/support-inbox/pkg/util/errorutil"
)

// NotesHandler serves the per-ticket annotation endpoints.
type NotesHandler struct {
	notes *service.NoteService
}

// NewNotesHandler constructs handler.
func NewNotesHandler(notes *service.NoteService) *NotesHandler {
	return &NotesHandler{notes: notes}
}

// List GET /tickets/:id/notes
func (h *NotesHandler) List(c *fiber.Ctx) error {
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}
	notes, err := h.notes.List(c.UserContext(), ticketID)
	if err != nil {
		return err
	}

	items := make([]dto.NoteResponse, 0, len(notes))
	for i := range notes {
		items = append(items, dto.FromNote(&notes[i]))
	}
	return c.JSON(items)
}

// Create POST /tickets/:id/notes
func (h *NotesHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("agent required")
	}

	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}

	var req dto.CreateNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("Invalid payload")
	}

	note, err := h.notes.Append(c.UserContext(), ticketID, principal.ID, req.Text)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.FromNote(note))
}
