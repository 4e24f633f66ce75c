package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-inbox/internal/domain"
	"github.com/spec-kit/support-inbox/internal/events"
	"github.com/spec-kit/support-inbox/internal/repository"
	"github.com/spec-kit/support-inbox/pkg/util/errorutil"
)

// Pagination is the envelope returned alongside every ticket page.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// TicketUpdateInput carries the raw PATCH payload. Nil means the field was
// not sent; validation checks enum membership, not workflow ordering — any
// status may move to any other.
type TicketUpdateInput struct {
	Status   *string
	Priority *string
}

// TicketService owns the ticket entity's invariants: listing scoped to
// live rows, membership-validated mutations, and soft deletion.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
	}
}

// List returns one page of live tickets plus the pagination envelope.
func (s *TicketService) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, Pagination, error) {
	filter = filter.Normalized()

	tickets, total, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, Pagination{}, err
	}

	return tickets, Pagination{
		Page:       filter.Page,
		Limit:      filter.PageSize,
		Total:      total,
		TotalPages: totalPages(total, filter.PageSize),
	}, nil
}

// Get fetches a single live ticket.
func (s *TicketService) Get(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetLive(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("Ticket")
		}
		return nil, err
	}
	return ticket, nil
}

// Update applies the provided status/priority fields to a live ticket,
// stamps updated_at, and returns the full updated ticket. No-op updates
// are rejected.
func (s *TicketService) Update(ctx context.Context, id int64, input TicketUpdateInput) (*domain.Ticket, error) {
	update := repository.TicketUpdate{}

	if input.Status != nil {
		status := domain.TicketStatus(*input.Status)
		if !status.Valid() {
			return nil, errorutil.NewValidationError("Invalid status")
		}
		update.Status = &status
	}
	if input.Priority != nil {
		priority := domain.TicketPriority(*input.Priority)
		if !priority.Valid() {
			return nil, errorutil.NewValidationError("Invalid priority")
		}
		update.Priority = &priority
	}
	if update.Empty() {
		return nil, errorutil.NewValidationError("Nothing to update")
	}

	ticket, err := s.tickets.UpdateFields(ctx, id, update)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("Ticket")
		}
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
		Payload: events.TicketUpdatedPayload{
			Status:   update.Status,
			Priority: update.Priority,
		},
	})
	return ticket, nil
}

// SoftDelete stamps deleted_at on a live ticket. A second delete on the
// same id returns NotFound: the row is no longer live.
func (s *TicketService) SoftDelete(ctx context.Context, id int64) error {
	if err := s.tickets.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errorutil.NewNotFound("Ticket")
		}
		return err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: id,
	})
	return nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
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

func totalPages(total, pageSize int) int {
	if total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
