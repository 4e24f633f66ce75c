package dto

import (
	"time"

	"github.com/spec-kit/support-inbox/internal/domain"
)

// NoteResponse is the wire shape of a note with its author joined in.
// UserID is null when the authoring agent was removed.
type NoteResponse struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UserID    *int64    `json:"user_id"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
}

// CreateNoteRequest is the note-append payload.
type CreateNoteRequest struct {
	Text string `json:"text"`
}

// FromNote maps a domain note onto the wire shape.
func FromNote(n *domain.Note) NoteResponse {
	return NoteResponse{
		ID:        n.ID,
		Text:      n.Text,
		CreatedAt: n.CreatedAt,
		UserID:    n.AuthorID,
		UserName:  n.AuthorName,
		UserEmail: n.AuthorEmail,
	}
}
