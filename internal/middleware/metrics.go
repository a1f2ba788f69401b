package middleware

import (
	"time"

	"storefront/pkg/telemetry"

	"github.com/gofiber/fiber/v2"
)

// Metrics records request count and latency per method, route template and status.
func Metrics(m *telemetry.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := "unmatched"
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		m.RecordHTTPRequest(c.UserContext(), c.Method(), route, statusOf(c, err), time.Since(start))
		return err
	}
}
