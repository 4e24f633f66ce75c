package dto

import (
	"time"

	"github.com/spec-kit/support-inbox/internal/domain"
)

// TicketResponse is the wire shape of a single ticket.
type TicketResponse struct {
	ID            int64                 `json:"id"`
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	CustomerEmail string                `json:"customer_email"`
	Status        domain.TicketStatus   `json:"status"`
	Priority      domain.TicketPriority `json:"priority"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// Pagination is the envelope accompanying list responses.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// TicketListResponse wraps one page of tickets.
type TicketListResponse struct {
	Data       []TicketResponse `json:"data"`
	Pagination Pagination       `json:"pagination"`
}

// UpdateTicketRequest is the PATCH payload. Absent fields stay nil.
type UpdateTicketRequest struct {
	Status   *string `json:"status"`
	Priority *string `json:"priority"`
}

// FromTicket maps a domain ticket onto the wire shape.
func FromTicket(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		CustomerEmail: t.CustomerEmail,
		Status:        t.Status,
		Priority:      t.Priority,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}
