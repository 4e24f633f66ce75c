package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/support-inbox/internal/domain"
	"github.com/spec-kit/support-inbox/internal/repository"
)

const (
	activityDays  = 7
	statsCacheKey = "stats:overview"
)

// StatsService computes point-in-time summary counts and the fixed 7-day
// creation histogram. Results are cached in Redis for a few seconds since
// dashboards poll this endpoint; Redis being down falls through to
// Postgres silently.
type StatsService struct {
	stats    repository.StatsRepository
	redis    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// StatsDependencies bundles collaborators for the stats service.
type StatsDependencies struct {
	StatsRepo repository.StatsRepository
	Redis     *redis.Client
	CacheTTL  time.Duration
	Logger    *zap.Logger
}

// NewStatsService constructs the service.
func NewStatsService(deps StatsDependencies) *StatsService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{
		stats:    deps.StatsRepo,
		redis:    deps.Redis,
		cacheTTL: deps.CacheTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// Overview returns the summary counts plus the 7-day series.
func (s *StatsService) Overview(ctx context.Context) (*domain.Stats, error) {
	if cached := s.readCache(ctx); cached != nil {
		return cached, nil
	}

	summary, err := s.stats.Summary(ctx)
	if err != nil {
		return nil, err
	}

	series, err := s.RecentActivity(ctx)
	if err != nil {
		return nil, err
	}

	stats := &domain.Stats{StatsSummary: summary, Last7Days: series}
	s.writeCache(ctx, stats)
	return stats, nil
}

// RecentActivity returns exactly 7 points covering today and the 6
// preceding days in ascending date order. The series is scaffolded over
// the full calendar range so zero-count days are always present. Days are
// UTC calendar days on both sides, so the bucketing does not shift with
// the process or DB session timezone.
func (s *StatsService) RecentActivity(ctx context.Context) ([]domain.ActivityPoint, error) {
	today := startOfDay(s.now().UTC())
	from := today.AddDate(0, 0, -(activityDays - 1))

	counts, err := s.stats.CreatedCountsSince(ctx, from)
	if err != nil {
		return nil, err
	}
	return fillActivitySeries(from, counts), nil
}

// fillActivitySeries expands grouped per-day counts into the fixed
// 7-slot calendar series starting at from.
func fillActivitySeries(from time.Time, counts map[string]int) []domain.ActivityPoint {
	series := make([]domain.ActivityPoint, 0, activityDays)
	for i := 0; i < activityDays; i++ {
		date := from.AddDate(0, 0, i).Format("2006-01-02")
		series = append(series, domain.ActivityPoint{
			Date:  date,
			Count: counts[date],
		})
	}
	return series
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (s *StatsService) readCache(ctx context.Context) *domain.Stats {
	if s.redis == nil || s.cacheTTL <= 0 {
		return nil
	}
	raw, err := s.redis.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		return nil
	}
	var stats domain.Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil
	}
	return &stats
}

func (s *StatsService) writeCache(ctx context.Context, stats *domain.Stats) {
	if s.redis == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, statsCacheKey, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Debug("stats cache write failed", zap.Error(err))
	}
}
