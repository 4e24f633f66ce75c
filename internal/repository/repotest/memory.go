// Package repotest provides in-memory repository implementations for
// tests that exercise services and handlers without a live database.
// Filtering, ordering, and soft-delete visibility match the SQL-backed
// repositories.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-inbox/internal/domain"
	"github.com/spec-kit/support-inbox/internal/repository"
)

type state struct {
	mu           sync.Mutex
	tickets      map[int64]*domain.Ticket
	notes        []*domain.Note
	users        map[int64]*domain.User
	nextTicketID int64
	nextNoteID   int64
	nextUserID   int64
	now          func() time.Time
}

// Store bundles the in-memory repositories over one shared data set.
type Store struct {
	state   *state
	Tickets *TicketRepo
	Notes   *NoteRepo
	Users   *UserRepo
	Stats   *StatsRepo
}

// NewStore creates an empty in-memory record store.
func NewStore() *Store {
	s := &state{
		tickets: make(map[int64]*domain.Ticket),
		users:   make(map[int64]*domain.User),
		now:     time.Now,
	}
	return &Store{
		state:   s,
		Tickets: &TicketRepo{state: s},
		Notes:   &NoteRepo{state: s},
		Users:   &UserRepo{state: s},
		Stats:   &StatsRepo{state: s},
	}
}

// SetClock overrides the store's notion of now.
func (s *Store) SetClock(now func() time.Time) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	s.state.now = now
}

// TicketRepo is the in-memory repository.TicketRepository.
type TicketRepo struct {
	state *state
}

var _ repository.TicketRepository = (*TicketRepo)(nil)

func (r *TicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	s := r.state
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextTicketID++
	ticket.ID = s.nextTicketID
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = s.now()
	}
	ticket.UpdatedAt = ticket.CreatedAt

	stored := *ticket
	s.tickets[ticket.ID] = &stored
	return nil
}

func (r *TicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, int, error) {
	filter = filter.Normalized()
	s := r.state
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]domain.Ticket, 0)
	for _, t := range s.tickets {
		if !t.Live() || !matches(t, filter) {
			continue
		}
		matched = append(matched, *t)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	start := filter.Offset()
	if start > total {
		start = total
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func matches(t *domain.Ticket, filter repository.TicketFilter) bool {
	if status := domain.TicketStatus(filter.Status); filter.Status != "" && status.Valid() && t.Status != status {
		return false
	}
	if priority := domain.TicketPriority(filter.Priority); filter.Priority != "" && priority.Valid() && t.Priority != priority {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.CustomerEmail), needle) {
			return false
		}
	}
	return true
}

func (r *TicketRepo) GetLive(_ context.Context, id int64) (*domain.Ticket, error) {
	s := r.state
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[id]
	if !ok || !t.Live() {
		return nil, pgx.ErrNoRows
	}
	copied := *t
	return &copied, nil
}

func (r *TicketRepo) UpdateFields(_ context.Context, id int64, update repository.TicketUpdate) (*domain.Ticket, error) {
	s := r.state
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[id]
	if !ok || !t.Live() {
		return nil, pgx.ErrNoRows
	}
	if update.Status != nil {
		t.Status = *update.Status
	}
	if update.Priority != nil {
		t.Priority = *update.Priority
	}
	t.UpdatedAt = s.now()

	copied := *t
	return &copied, nil
}

func (r *TicketRepo) SoftDelete(_ context.Context, id int64) error {
	s := r.state
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[id]
	if !ok || !t.Live() {
		return pgx.ErrNoRows
	}
	deletedAt := s.now()
	t.DeletedAt = &deletedAt
	return nil
}

// NoteRepo is the in-memory repository.NoteRepository.
type NoteRepo struct {
	state *state
}

var _ repository.NoteRepository = (*NoteRepo)(nil)

func (r *NoteRepo) Insert(_ context.Context, note *domain.Note) error {
	s := r.state
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextNoteID++
	note.ID = s.nextNoteID
	note.CreatedAt = s.now()

	stored := *note
	s.notes = append(s.notes, &stored)
	return nil
}

func (r *NoteRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.Note, error) {
	s := r.state
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]domain.Note, 0)
	for _, n := range s.notes {
		if n.TicketID != ticketID {
			continue
		}
		copied := *n
		if copied.AuthorID != nil {
			if author, ok := s.users[*copied.AuthorID]; ok {
				copied.AuthorName = author.Name
				copied.AuthorEmail = author.Email
			}
		}
		result = append(result, copied)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

// UserRepo is the in-memory repository.UserRepository.
type UserRepo struct {
	state *state
}

var _ repository.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(_ context.Context, user *domain.User) error {
	s := r.state
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextUserID++
	user.ID = s.nextUserID
	user.CreatedAt = s.now()

	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	s := r.state
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *u
	return &copied, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s := r.state
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// StatsRepo is the in-memory repository.StatsRepository.
type StatsRepo struct {
	state *state
}

var _ repository.StatsRepository = (*StatsRepo)(nil)

func (r *StatsRepo) Summary(_ context.Context) (domain.StatsSummary, error) {
	s := r.state
	s.mu.Lock()
	defer s.mu.Unlock()

	var summary domain.StatsSummary
	for _, t := range s.tickets {
		if !t.Live() {
			continue
		}
		summary.Total++
		switch t.Status {
		case domain.TicketStatusOpen:
			summary.Open++
		case domain.TicketStatusPending:
			summary.Pending++
		case domain.TicketStatusResolved:
			summary.Resolved++
		}
		if t.Priority == domain.TicketPriorityHigh {
			summary.HighPriority++
		}
	}
	return summary, nil
}

func (r *StatsRepo) CreatedCountsSince(_ context.Context, from time.Time) (map[string]int, error) {
	s := r.state
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[string]int)
	for _, t := range s.tickets {
		if !t.Live() || t.CreatedAt.Before(from) {
			continue
		}
		counts[t.CreatedAt.UTC().Format("2006-01-02")]++
	}
	return counts, nil
}
