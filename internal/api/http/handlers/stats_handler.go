package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-inbox/internal/service"
)

// StatsHandler serves the aggregate statistics endpoint.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler constructs handler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Get GET /stats
func (h *StatsHandler) Get(c *fiber.Ctx) error {
	stats, err := h.stats.Overview(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
