package routes

import (
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"limit-order-book/src/handlers"
	"limit-order-book/src/middleware"
)

func SetupRoutes(app *fiber.App, orderHandler *handlers.OrderHandler) {
	rateLimitDisabled := os.Getenv("RATE_LIMIT_DISABLED") == "1"

	maxRequests := 100
	if envMax := os.Getenv("RATE_LIMIT_MAX"); envMax != "" {
		if parsed, err := strconv.Atoi(envMax); err == nil && parsed > 0 {
			maxRequests = parsed
		}
	}

	windowDuration := time.Second
	if envWindow := os.Getenv("RATE_LIMIT_WINDOW"); envWindow != "" {
		if parsed, err := time.ParseDuration(envWindow); err == nil && parsed > 0 {
			windowDuration = parsed
		}
	}

	serviceAvailability := middleware.DefaultServiceAvailability().WithRestingOrders(orderHandler.RestingOrders)
	app.Use(middleware.RequestID())
	app.Use(serviceAvailability.Middleware())
	app.Use(middleware.RequestLogger())

	api := app.Group("/api/v1")

	if !rateLimitDisabled {
		rateLimiter := middleware.NewRateLimiter(maxRequests, windowDuration)
		api.Use(rateLimiter.Middleware())
	}

	api.Post("/orders", orderHandler.SubmitOrder)
	api.Delete("/orders/:id", orderHandler.CancelOrder)
	api.Get("/orders/:id", orderHandler.GetOrder)

	book := api.Group("/book")
	book.Get("/", orderHandler.GetBookDepth)
	book.Get("/bbo", orderHandler.GetBestBidAsk)
	book.Get("/chart", orderHandler.GetDepthChart)
	book.Get("/export.csv", orderHandler.ExportCSV)

	api.Get("/accounts/:id/orders", orderHandler.GetAccountOrders)

	app.Get("/health", orderHandler.HealthCheck)
	app.Get("/metrics", orderHandler.Metrics)
}

// Endpoints lists the registered routes for the startup log.
func Endpoints() []string {
	return []string{
		"POST   /api/v1/orders",
		"DELETE /api/v1/orders/:id",
		"GET    /api/v1/orders/:id",
		"GET    /api/v1/book",
		"GET    /api/v1/book/bbo",
		"GET    /api/v1/book/chart",
		"GET    /api/v1/book/export.csv",
		"GET    /api/v1/accounts/:id/orders",
		"GET    /health",
		"GET    /metrics",
	}
}
