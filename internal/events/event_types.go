package events

import (
	"time"

	"github.com/spec-kit/support-inbox/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketUpdated EventType = "ticket_updated"
	EventTicketDeleted EventType = "ticket_deleted"
	EventNoteAdded     EventType = "note_added"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	Status   *domain.TicketStatus   `json:"status,omitempty"`
	Priority *domain.TicketPriority `json:"priority,omitempty"`
}

// NoteAddedPayload payload.
type NoteAddedPayload struct {
	NoteID   int64  `json:"note_id"`
	AuthorID *int64 `json:"author_id,omitempty"`
}
