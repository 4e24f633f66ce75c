package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-inbox/internal/domain"
	"github.com/spec-kit/support-inbox/internal/repository/repotest"
)

func newStatsService(store *repotest.Store, now time.Time) *StatsService {
	svc := NewStatsService(StatsDependencies{StatsRepo: store.Stats})
	svc.now = func() time.Time { return now }
	return svc
}

func TestOverviewCountsLiveTicketsOnly(t *testing.T) {
	store := repotest.NewStore()
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)

	seedTicket(t, store, domain.Ticket{Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityHigh, CreatedAt: now})
	seedTicket(t, store, domain.Ticket{Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow, CreatedAt: now})
	seedTicket(t, store, domain.Ticket{Status: domain.TicketStatusPending, Priority: domain.TicketPriorityHigh, CreatedAt: now})
	seedTicket(t, store, domain.Ticket{Status: domain.TicketStatusResolved, Priority: domain.TicketPriorityMedium, CreatedAt: now})
	buried := seedTicket(t, store, domain.Ticket{Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityHigh, CreatedAt: now})
	require.NoError(t, store.Tickets.SoftDelete(context.Background(), buried.ID))

	svc := newStatsService(store, now)
	stats, err := svc.Overview(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Open)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.Resolved)
	assert.Equal(t, 2, stats.HighPriority)
}

func TestRecentActivityAlwaysHasSevenAscendingPoints(t *testing.T) {
	store := repotest.NewStore()
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)

	svc := newStatsService(store, now)
	series, err := svc.RecentActivity(context.Background())

	require.NoError(t, err)
	require.Len(t, series, 7)
	assert.Equal(t, "2026-08-22", series[0].Date)
	assert.Equal(t, "2026-08-28", series[6].Date)
	for i, point := range series {
		assert.Zero(t, point.Count, "day %d", i)
	}
}

func TestRecentActivityZeroFillsGaps(t *testing.T) {
	store := repotest.NewStore()
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)

	// two tickets today, one three days ago, nothing on the other days
	seedTicket(t, store, domain.Ticket{CreatedAt: now})
	seedTicket(t, store, domain.Ticket{CreatedAt: now.Add(-time.Hour)})
	seedTicket(t, store, domain.Ticket{CreatedAt: now.AddDate(0, 0, -3)})

	svc := newStatsService(store, now)
	series, err := svc.RecentActivity(context.Background())

	require.NoError(t, err)
	counts := make(map[string]int, len(series))
	for _, point := range series {
		counts[point.Date] = point.Count
	}
	assert.Equal(t, 2, counts["2026-08-28"])
	assert.Equal(t, 1, counts["2026-08-25"])
	assert.Equal(t, 0, counts["2026-08-26"])
	assert.Equal(t, 0, counts["2026-08-22"])
}

func TestRecentActivityExcludesTicketsOutsideWindow(t *testing.T) {
	store := repotest.NewStore()
	now := time.Date(2026, 8, 28, 0, 30, 0, 0, time.UTC)

	seedTicket(t, store, domain.Ticket{CreatedAt: now.AddDate(0, 0, -10)})
	// oldest in-window day: calendar boundary, not a rolling 168h window
	seedTicket(t, store, domain.Ticket{CreatedAt: time.Date(2026, 8, 22, 1, 0, 0, 0, time.UTC)})

	svc := newStatsService(store, now)
	series, err := svc.RecentActivity(context.Background())

	require.NoError(t, err)
	total := 0
	for _, point := range series {
		total += point.Count
	}
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, series[0].Count)
}

func TestRecentActivityBucketsByUTCDay(t *testing.T) {
	store := repotest.NewStore()
	ist := time.FixedZone("IST", 5*3600+1800)
	// 01:00 IST is still the previous day in UTC
	now := time.Date(2026, 8, 28, 1, 0, 0, 0, ist)

	seedTicket(t, store, domain.Ticket{CreatedAt: now})

	svc := newStatsService(store, now)
	series, err := svc.RecentActivity(context.Background())

	require.NoError(t, err)
	require.Len(t, series, 7)
	assert.Equal(t, "2026-08-27", series[6].Date)
	assert.Equal(t, 1, series[6].Count)
}

func TestFillActivitySeries(t *testing.T) {
	from := time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC)
	series := fillActivitySeries(from, map[string]int{
		"2026-08-22": 3,
		"2026-08-24": 1,
	})

	require.Len(t, series, 7)
	assert.Equal(t, domain.ActivityPoint{Date: "2026-08-22", Count: 3}, series[0])
	assert.Equal(t, domain.ActivityPoint{Date: "2026-08-23", Count: 0}, series[1])
	assert.Equal(t, domain.ActivityPoint{Date: "2026-08-24", Count: 1}, series[2])
}
