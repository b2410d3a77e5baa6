package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campuskit/access-service/internal/observability"
)

// AnalyticsHandler serves the in-process security counters, guarded by
// VIEW_ANALYTICS.
type AnalyticsHandler struct {
	metrics *observability.Metrics
}

// NewAnalyticsHandler constructs the handler.
func NewAnalyticsHandler(metrics *observability.Metrics) *AnalyticsHandler {
	return &AnalyticsHandler{metrics: metrics}
}

// Overview handles GET /admin/analytics.
func (h *AnalyticsHandler) Overview(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.metrics.Snapshot()})
}
