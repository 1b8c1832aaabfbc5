package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

const readinessTimeout = 3 * time.Second

// Probe states reported by /health/ready.
const (
	probeHealthy     = "healthy"
	probeUnhealthy   = "unhealthy"
	probeUnavailable = "unavailable"
	probeDegraded    = "degraded"
)

// LivenessCheck answers as long as the process can serve requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "up", "time": time.Now().UTC()})
}

// ReadinessCheck pings PostgreSQL and Redis. Only the database gates
// readiness; without Redis the blog runs with per-process fallbacks.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
	defer cancel()

	checks := fiber.Map{
		"database": s.probeDatabase(ctx),
		"redis":    s.probeRedis(ctx),
	}

	status, overall := fiber.StatusOK, probeHealthy
	if checks["database"] != probeHealthy {
		status, overall = fiber.StatusServiceUnavailable, probeUnhealthy
	} else if checks["redis"] != probeHealthy {
		overall = probeDegraded
	}
	return c.Status(status).JSON(fiber.Map{"status": overall, "checks": checks, "time": time.Now().UTC()})
}

func (s *Server) probeDatabase(ctx context.Context) string {
	sqlDB, err := s.db.DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		return probeUnhealthy
	}
	return probeHealthy
}

func (s *Server) probeRedis(ctx context.Context) string {
	if s.redis == nil {
		return probeUnavailable
	}
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return probeUnhealthy
	}
	return probeHealthy
}
