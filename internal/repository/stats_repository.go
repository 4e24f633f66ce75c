package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-inbox/internal/domain"
)

// StatsRepository reads aggregate counts over live tickets.
type StatsRepository interface {
	Summary(ctx context.Context) (domain.StatsSummary, error)
	CreatedCountsSince(ctx context.Context, from time.Time) (map[string]int, error)
}

type statsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository builds repository.
func NewStatsRepository(pool *pgxpool.Pool) StatsRepository {
	return &statsRepository{pool: pool}
}

func (r *statsRepository) Summary(ctx context.Context) (domain.StatsSummary, error) {
	const query = `
        SELECT
            COUNT(*),
            COUNT(*) FILTER (WHERE status = 'open'),
            COUNT(*) FILTER (WHERE status = 'pending'),
            COUNT(*) FILTER (WHERE status = 'resolved'),
            COUNT(*) FILTER (WHERE priority = 'high')
        FROM tickets
        WHERE deleted_at IS NULL`

	var summary domain.StatsSummary
	if err := r.pool.QueryRow(ctx, query).Scan(
		&summary.Total,
		&summary.Open,
		&summary.Pending,
		&summary.Resolved,
		&summary.HighPriority,
	); err != nil {
		return domain.StatsSummary{}, err
	}
	return summary, nil
}

// CreatedCountsSince groups live-ticket creations by UTC calendar date from
// the given day onward. The cast goes through AT TIME ZONE 'UTC' so the
// buckets do not depend on the DB session timezone. Days with no tickets
// are absent from the map; the service fills the calendar range.
func (r *statsRepository) CreatedCountsSince(ctx context.Context, from time.Time) (map[string]int, error) {
	const query = `
        SELECT (created_at AT TIME ZONE 'UTC')::date, COUNT(*)
        FROM tickets
        WHERE deleted_at IS NULL AND created_at >= $1
        GROUP BY 1`

	rows, err := r.pool.Query(ctx, query, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var day time.Time
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, err
		}
		counts[day.Format("2006-01-02")] = count
	}
	return counts, rows.Err()
}
