package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-inbox/internal/domain"
	"github.com/spec-kit/support-inbox/internal/events"
	"github.com/spec-kit/support-inbox/internal/repository"
	"github.com/spec-kit/support-inbox/pkg/util/errorutil"
)

// NoteService is the append-only annotation ledger. Notes depend on a live
// ticket at creation time and are never edited or deleted afterwards.
type NoteService struct {
	notes      repository.NoteRepository
	tickets    repository.TicketRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// NoteDependencies bundles collaborators for the note service.
type NoteDependencies struct {
	NoteRepo   repository.NoteRepository
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
}

// NewNoteService constructs the service.
func NewNoteService(deps NoteDependencies) *NoteService {
	return &NoteService{
		notes:      deps.NoteRepo,
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Append persists a note on a live ticket and returns it with the resolved
// author identity embedded. Text is trimmed before the emptiness check and
// before storage.
func (s *NoteService) Append(ctx context.Context, ticketID, authorID int64, text string) (*domain.Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errorutil.NewValidationError("Note text is required")
	}

	if err := s.ensureTicketLive(ctx, ticketID); err != nil {
		return nil, err
	}

	note := &domain.Note{
		TicketID: ticketID,
		AuthorID: &authorID,
		Text:     text,
	}
	if author, err := s.users.GetByID(ctx, authorID); err == nil {
		note.AuthorName = author.Name
		note.AuthorEmail = author.Email
	}

	if err := s.notes.Insert(ctx, note); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventNoteAdded,
		TicketID: ticketID,
		Payload: events.NoteAddedPayload{
			NoteID:   note.ID,
			AuthorID: note.AuthorID,
		},
	})
	return note, nil
}

// List returns all notes for a live ticket joined with author identity,
// most recent first.
func (s *NoteService) List(ctx context.Context, ticketID int64) ([]domain.Note, error) {
	if err := s.ensureTicketLive(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.notes.ListByTicket(ctx, ticketID)
}

func (s *NoteService) ensureTicketLive(ctx context.Context, ticketID int64) error {
	if _, err := s.tickets.GetLive(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errorutil.NewNotFound("Ticket")
		}
		return err
	}
	return nil
}

func (s *NoteService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
