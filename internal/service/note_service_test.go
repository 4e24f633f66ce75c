package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-inbox/internal/domain"
	"github.com/spec-kit/support-inbox/internal/repository/repotest"
	"github.com/spec-kit/support-inbox/pkg/util/errorutil"
)

func newNoteService(store *repotest.Store) *NoteService {
	return NewNoteService(NoteDependencies{
		NoteRepo:   store.Notes,
		TicketRepo: store.Tickets,
		UserRepo:   store.Users,
	})
}

func seedAgent(t *testing.T, store *repotest.Store) domain.User {
	t.Helper()
	agent := domain.User{Name: "Priya Patel", Email: "priya@support.example"}
	require.NoError(t, store.Users.Create(context.Background(), &agent))
	return agent
}

func TestAppendTrimsAndStoresNote(t *testing.T) {
	store := repotest.NewStore()
	ticket := seedTicket(t, store, domain.Ticket{})
	agent := seedAgent(t, store)
	svc := newNoteService(store)

	note, err := svc.Append(context.Background(), ticket.ID, agent.ID, "  Called the customer back.  ")

	require.NoError(t, err)
	assert.Equal(t, "Called the customer back.", note.Text)
	assert.Equal(t, agent.Name, note.AuthorName)
	assert.Equal(t, agent.Email, note.AuthorEmail)
	require.NotNil(t, note.AuthorID)
	assert.Equal(t, agent.ID, *note.AuthorID)
}

func TestAppendRejectsBlankText(t *testing.T) {
	store := repotest.NewStore()
	ticket := seedTicket(t, store, domain.Ticket{})
	agent := seedAgent(t, store)
	svc := newNoteService(store)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := svc.Append(context.Background(), ticket.ID, agent.ID, text)
		assert.True(t, errorutil.IsValidation(err), "text %q", text)
	}

	notes, err := svc.List(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestAppendToDeletedTicketReturnsNotFound(t *testing.T) {
	store := repotest.NewStore()
	ticket := seedTicket(t, store, domain.Ticket{})
	agent := seedAgent(t, store)
	require.NoError(t, store.Tickets.SoftDelete(context.Background(), ticket.ID))
	svc := newNoteService(store)

	_, err := svc.Append(context.Background(), ticket.ID, agent.ID, "too late")
	assert.True(t, errorutil.IsNotFound(err))
}

func TestListOrdersNotesNewestFirst(t *testing.T) {
	store := repotest.NewStore()
	ticket := seedTicket(t, store, domain.Ticket{})
	agent := seedAgent(t, store)
	svc := newNoteService(store)

	clock := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return clock })
	first, err := svc.Append(context.Background(), ticket.ID, agent.ID, "first")
	require.NoError(t, err)

	clock = clock.Add(time.Minute)
	second, err := svc.Append(context.Background(), ticket.ID, agent.ID, "second")
	require.NoError(t, err)

	notes, err := svc.List(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, second.ID, notes[0].ID)
	assert.Equal(t, first.ID, notes[1].ID)
}

func TestListGatesOnLiveTicket(t *testing.T) {
	store := repotest.NewStore()
	ticket := seedTicket(t, store, domain.Ticket{})
	agent := seedAgent(t, store)
	svc := newNoteService(store)

	_, err := svc.Append(context.Background(), ticket.ID, agent.ID, "before delete")
	require.NoError(t, err)
	require.NoError(t, store.Tickets.SoftDelete(context.Background(), ticket.ID))

	// notes outlive the ticket in storage but are unreachable through it
	_, err = svc.List(context.Background(), ticket.ID)
	assert.True(t, errorutil.IsNotFound(err))
}

func TestListScopesNotesToTicket(t *testing.T) {
	store := repotest.NewStore()
	a := seedTicket(t, store, domain.Ticket{})
	b := seedTicket(t, store, domain.Ticket{})
	agent := seedAgent(t, store)
	svc := newNoteService(store)

	_, err := svc.Append(context.Background(), a.ID, agent.ID, "on a")
	require.NoError(t, err)
	_, err = svc.Append(context.Background(), b.ID, agent.ID, "on b")
	require.NoError(t, err)

	notes, err := svc.List(context.Background(), a.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "on a", notes[0].Text)
}
