package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizedClampsPageAndSize(t *testing.T) {
	cases := []struct {
		name     string
		in       TicketFilter
		page     int
		pageSize int
	}{
		{"defaults", TicketFilter{}, 1, 20},
		{"negative page", TicketFilter{Page: -3, PageSize: 10}, 1, 10},
		{"zero size", TicketFilter{Page: 2, PageSize: 0}, 2, 20},
		{"oversized", TicketFilter{Page: 1, PageSize: 500}, 1, 100},
		{"at cap", TicketFilter{Page: 1, PageSize: 100}, 1, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := tc.in.Normalized()
			assert.Equal(t, tc.page, n.Page)
			assert.Equal(t, tc.pageSize, n.PageSize)
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, TicketFilter{Page: 1, PageSize: 20}.Offset())
	assert.Equal(t, 5, TicketFilter{Page: 2, PageSize: 5}.Offset())
	assert.Equal(t, 0, TicketFilter{}.Offset())
}

func TestBuildTicketCountSQLScopesToLiveRows(t *testing.T) {
	query, args := BuildTicketCountSQL(TicketFilter{})

	assert.Contains(t, query, "deleted_at IS NULL")
	assert.Empty(t, args)
}

func TestBuildTicketWhereBindsFiltersPositionally(t *testing.T) {
	query, args := BuildTicketCountSQL(TicketFilter{
		Status:   "resolved",
		Priority: "high",
		Search:   "billing",
	})

	require.Len(t, args, 3)
	assert.Contains(t, query, "status = $1")
	assert.Contains(t, query, "priority = $2")
	assert.Contains(t, query, "(title ILIKE $3 OR customer_email ILIKE $3)")
	assert.Equal(t, "%billing%", args[2])
}

func TestInvalidEnumValuesAreIgnored(t *testing.T) {
	query, args := BuildTicketCountSQL(TicketFilter{
		Status:   "archived",
		Priority: "urgent",
	})

	unfiltered, _ := BuildTicketCountSQL(TicketFilter{})
	assert.Equal(t, unfiltered, query)
	assert.Empty(t, args)
}

func TestBuildTicketPageSQLOrdersAndPaginates(t *testing.T) {
	query, args := BuildTicketPageSQL(TicketFilter{Page: 2, PageSize: 5, Status: "open"})

	assert.Contains(t, query, "ORDER BY created_at DESC, id DESC")
	assert.Contains(t, query, "LIMIT $2 OFFSET $3")

	require.Len(t, args, 3)
	assert.Equal(t, 5, args[1])
	assert.Equal(t, 5, args[2])
}

func TestBuildTicketPageSQLNeverInterpolatesSearchInput(t *testing.T) {
	hostile := `'; DROP TABLE tickets; --`
	query, args := BuildTicketPageSQL(TicketFilter{Search: hostile})

	assert.False(t, strings.Contains(query, "DROP TABLE"))
	require.Len(t, args, 3)
	assert.Equal(t, "%"+hostile+"%", args[0])
}
