package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-inbox/internal/domain"
	"github.com/spec-kit/support-inbox/internal/repository"
	"github.com/spec-kit/support-inbox/internal/repository/repotest"
	"github.com/spec-kit/support-inbox/pkg/util/errorutil"
)

func newTicketService(store *repotest.Store) *TicketService {
	return NewTicketService(TicketDependencies{TicketRepo: store.Tickets})
}

func seedTicket(t *testing.T, store *repotest.Store, ticket domain.Ticket) domain.Ticket {
	t.Helper()
	if ticket.Title == "" {
		ticket.Title = "Unable to login"
	}
	if ticket.CustomerEmail == "" {
		ticket.CustomerEmail = "amit.sharma@gmail.com"
	}
	if ticket.Status == "" {
		ticket.Status = domain.TicketStatusOpen
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}
	require.NoError(t, store.Tickets.Create(context.Background(), &ticket))
	return ticket
}

func strPtr(s string) *string { return &s }

func TestListReturnsPaginationEnvelope(t *testing.T) {
	store := repotest.NewStore()
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		seedTicket(t, store, domain.Ticket{
			Status:    domain.TicketStatusResolved,
			Priority:  domain.TicketPriorityHigh,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	// noise that must not match the filter
	seedTicket(t, store, domain.Ticket{Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityHigh})
	seedTicket(t, store, domain.Ticket{Status: domain.TicketStatusResolved, Priority: domain.TicketPriorityLow})

	svc := newTicketService(store)
	tickets, pagination, err := svc.List(context.Background(), repository.TicketFilter{
		Page:     2,
		PageSize: 5,
		Status:   "resolved",
		Priority: "high",
	})

	require.NoError(t, err)
	assert.Len(t, tickets, 5)
	assert.Equal(t, Pagination{Page: 2, Limit: 5, Total: 12, TotalPages: 3}, pagination)
}

func TestListOrdersNewestFirst(t *testing.T) {
	store := repotest.NewStore()
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	old := seedTicket(t, store, domain.Ticket{CreatedAt: base})
	recent := seedTicket(t, store, domain.Ticket{CreatedAt: base.Add(time.Hour)})
	// same timestamp as old: higher id wins the tie-break
	tied := seedTicket(t, store, domain.Ticket{CreatedAt: base})

	svc := newTicketService(store)
	tickets, _, err := svc.List(context.Background(), repository.TicketFilter{})

	require.NoError(t, err)
	require.Len(t, tickets, 3)
	assert.Equal(t, recent.ID, tickets[0].ID)
	assert.Equal(t, tied.ID, tickets[1].ID)
	assert.Equal(t, old.ID, tickets[2].ID)
}

func TestListInvalidFilterEqualsNoFilter(t *testing.T) {
	store := repotest.NewStore()
	seedTicket(t, store, domain.Ticket{Status: domain.TicketStatusOpen})
	seedTicket(t, store, domain.Ticket{Status: domain.TicketStatusPending})

	svc := newTicketService(store)
	filtered, _, err := svc.List(context.Background(), repository.TicketFilter{Status: "archived"})
	require.NoError(t, err)
	unfiltered, _, err := svc.List(context.Background(), repository.TicketFilter{})
	require.NoError(t, err)

	assert.Equal(t, unfiltered, filtered)
}

func TestGetReturnsNotFoundForMissingOrDeleted(t *testing.T) {
	store := repotest.NewStore()
	ticket := seedTicket(t, store, domain.Ticket{})
	svc := newTicketService(store)

	_, err := svc.Get(context.Background(), 999)
	assert.True(t, errorutil.IsNotFound(err))

	require.NoError(t, svc.SoftDelete(context.Background(), ticket.ID))
	_, err = svc.Get(context.Background(), ticket.ID)
	assert.True(t, errorutil.IsNotFound(err))
}

func TestUpdateAppliesOnlyProvidedFields(t *testing.T) {
	store := repotest.NewStore()
	ticket := seedTicket(t, store, domain.Ticket{
		Status:   domain.TicketStatusOpen,
		Priority: domain.TicketPriorityLow,
	})
	svc := newTicketService(store)

	updated, err := svc.Update(context.Background(), ticket.ID, TicketUpdateInput{
		Status: strPtr("pending"),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusPending, updated.Status)
	assert.Equal(t, domain.TicketPriorityLow, updated.Priority)
	assert.True(t, updated.UpdatedAt.After(ticket.UpdatedAt) || updated.UpdatedAt.Equal(ticket.UpdatedAt))
}

func TestUpdateAllowsAnyStatusTransition(t *testing.T) {
	store := repotest.NewStore()
	ticket := seedTicket(t, store, domain.Ticket{Status: domain.TicketStatusResolved})
	svc := newTicketService(store)

	// membership is enforced, not workflow ordering
	updated, err := svc.Update(context.Background(), ticket.ID, TicketUpdateInput{Status: strPtr("open")})

	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, updated.Status)
}

func TestUpdateRejectsInvalidEnumsWithoutMutating(t *testing.T) {
	store := repotest.NewStore()
	ticket := seedTicket(t, store, domain.Ticket{Status: domain.TicketStatusOpen})
	svc := newTicketService(store)

	_, err := svc.Update(context.Background(), ticket.ID, TicketUpdateInput{Status: strPtr("archived")})
	assert.True(t, errorutil.IsValidation(err))

	_, err = svc.Update(context.Background(), ticket.ID, TicketUpdateInput{Priority: strPtr("urgent")})
	assert.True(t, errorutil.IsValidation(err))

	unchanged, err := svc.Get(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, unchanged.Status)
	assert.Equal(t, ticket.UpdatedAt, unchanged.UpdatedAt)
}

func TestUpdateRejectsNoOp(t *testing.T) {
	store := repotest.NewStore()
	ticket := seedTicket(t, store, domain.Ticket{})
	svc := newTicketService(store)

	_, err := svc.Update(context.Background(), ticket.ID, TicketUpdateInput{})
	assert.True(t, errorutil.IsValidation(err))
}

func TestUpdateMissingTicketReturnsNotFound(t *testing.T) {
	store := repotest.NewStore()
	svc := newTicketService(store)

	_, err := svc.Update(context.Background(), 42, TicketUpdateInput{Status: strPtr("open")})
	assert.True(t, errorutil.IsNotFound(err))
}

func TestSoftDeleteHidesTicketEverywhere(t *testing.T) {
	store := repotest.NewStore()
	ticket := seedTicket(t, store, domain.Ticket{})
	svc := newTicketService(store)

	require.NoError(t, svc.SoftDelete(context.Background(), ticket.ID))

	tickets, pagination, err := svc.List(context.Background(), repository.TicketFilter{})
	require.NoError(t, err)
	assert.Empty(t, tickets)
	assert.Equal(t, 0, pagination.Total)

	_, err = svc.Update(context.Background(), ticket.ID, TicketUpdateInput{Status: strPtr("open")})
	assert.True(t, errorutil.IsNotFound(err))
}

func TestSecondDeleteReturnsNotFound(t *testing.T) {
	store := repotest.NewStore()
	ticket := seedTicket(t, store, domain.Ticket{})
	svc := newTicketService(store)

	require.NoError(t, svc.SoftDelete(context.Background(), ticket.ID))
	err := svc.SoftDelete(context.Background(), ticket.ID)
	assert.True(t, errorutil.IsNotFound(err))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, totalPages(0, 20))
	assert.Equal(t, 1, totalPages(1, 20))
	assert.Equal(t, 1, totalPages(20, 20))
	assert.Equal(t, 2, totalPages(21, 20))
	assert.Equal(t, 3, totalPages(12, 5))
}
