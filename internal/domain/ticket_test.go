package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTicketStatusValid(t *testing.T) {
	assert.True(t, TicketStatusOpen.Valid())
	assert.True(t, TicketStatusPending.Valid())
	assert.True(t, TicketStatusResolved.Valid())

	assert.False(t, TicketStatus("archived").Valid())
	assert.False(t, TicketStatus("Open").Valid(), "values are case sensitive")
	assert.False(t, TicketStatus("").Valid())
}

func TestTicketPriorityValid(t *testing.T) {
	assert.True(t, TicketPriorityLow.Valid())
	assert.True(t, TicketPriorityMedium.Valid())
	assert.True(t, TicketPriorityHigh.Valid())

	assert.False(t, TicketPriority("urgent").Valid())
	assert.False(t, TicketPriority("").Valid())
}

func TestTicketLive(t *testing.T) {
	ticket := Ticket{}
	assert.True(t, ticket.Live())

	deletedAt := time.Now()
	ticket.DeletedAt = &deletedAt
	assert.False(t, ticket.Live())
}
