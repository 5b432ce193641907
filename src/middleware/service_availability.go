package middleware

import (
	"os"
	"strconv"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// ServiceAvailability rejects traffic with 503 during maintenance or when too many requests
// are in flight. /health stays reachable in both cases. Rejections are logged with the number
// of resting orders so an operator can see what the book held while it was shut off.
type ServiceAvailability struct {
	maintenanceMode       atomic.Bool
	maxConcurrentRequests int64
	inFlightRequests      atomic.Int64
	restingOrders         func() int64
}

func NewServiceAvailability(maxConcurrentRequests int64) *ServiceAvailability {
	sa := &ServiceAvailability{
		maxConcurrentRequests: maxConcurrentRequests,
	}

	if os.Getenv("MAINTENANCE_MODE") == "1" {
		sa.maintenanceMode.Store(true)
		log.Warn().Msg("Service is in maintenance mode, book requests will return 503")
	}

	return sa
}

// WithRestingOrders sets the resting order counter logged with rejections.
func (sa *ServiceAvailability) WithRestingOrders(fn func() int64) *ServiceAvailability {
	sa.restingOrders = fn
	return sa
}

func (sa *ServiceAvailability) resting() int64 {
	if sa.restingOrders == nil {
		return -1
	}
	return sa.restingOrders()
}

func (sa *ServiceAvailability) SetMaintenanceMode(enabled bool) {
	sa.maintenanceMode.Store(enabled)
	log.Warn().
		Bool("enabled", enabled).
		Int64("resting_orders", sa.resting()).
		Msg("Service maintenance mode changed")
}

func (sa *ServiceAvailability) IsMaintenanceMode() bool {
	return sa.maintenanceMode.Load()
}

func (sa *ServiceAvailability) InFlightRequests() int64 {
	return sa.inFlightRequests.Load()
}

func (sa *ServiceAvailability) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/health" {
			if sa.maintenanceMode.Load() {
				log.Debug().
					Str("request_id", requestIDFrom(c)).
					Int64("resting_orders", sa.resting()).
					Msg("Health check served during maintenance")
			}
			return c.Next()
		}

		if sa.maintenanceMode.Load() {
			log.Warn().
				Str("request_id", requestIDFrom(c)).
				Str("path", c.Path()).
				Str("method", c.Method()).
				Int64("resting_orders", sa.resting()).
				Msg("Request rejected: service in maintenance mode")
			return unavailable(c, "The order book is under maintenance. Please try again later.")
		}

		if sa.maxConcurrentRequests > 0 {
			inFlight := sa.inFlightRequests.Add(1)
			defer sa.inFlightRequests.Add(-1)

			if inFlight > sa.maxConcurrentRequests {
				log.Warn().
					Str("request_id", requestIDFrom(c)).
					Str("path", c.Path()).
					Int64("in_flight", inFlight-1).
					Int64("max_requests", sa.maxConcurrentRequests).
					Int64("resting_orders", sa.resting()).
					Msg("Request rejected: server overload")
				return unavailable(c, "The order book is overloaded. Please try again later.")
			}
			return c.Next()
		}

		return c.Next()
	}
}

func unavailable(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error":   "Service unavailable",
		"message": message,
	})
}

func DefaultServiceAvailability() *ServiceAvailability {
	var maxConcurrent int64

	if envMax := os.Getenv("MAX_CONCURRENT_REQUESTS"); envMax != "" {
		if parsed, err := strconv.ParseInt(envMax, 10, 64); err == nil && parsed > 0 {
			maxConcurrent = parsed
			log.Info().
				Int64("max_concurrent_requests", maxConcurrent).
				Msg("Server overload detection enabled")
		}
	}

	return NewServiceAvailability(maxConcurrent)
}
