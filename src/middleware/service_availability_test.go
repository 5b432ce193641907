package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func availabilityApp(sa *ServiceAvailability, block chan struct{}) *fiber.App {
	app := fiber.New()
	app.Use(sa.Middleware())
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/api/v1/book", func(c *fiber.Ctx) error {
		if block != nil {
			<-block
		}
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestMaintenanceModeFromEnv(t *testing.T) {
	t.Setenv("MAINTENANCE_MODE", "1")
	sa := DefaultServiceAvailability()
	app := availabilityApp(sa, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/book", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	sa.SetMaintenanceMode(false)
	assert.False(t, sa.IsMaintenanceMode())
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/book", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServerOverload(t *testing.T) {
	sa := NewServiceAvailability(1)
	block := make(chan struct{})
	app := availabilityApp(sa, block)

	first := make(chan int, 1)
	go func() {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/book", nil), -1)
		if err != nil {
			first <- 0
			return
		}
		first <- resp.StatusCode
	}()

	require.Eventually(t, func() bool { return sa.InFlightRequests() == 1 }, time.Second, time.Millisecond)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/book", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	close(block)
	assert.Equal(t, http.StatusOK, <-first)
	assert.Zero(t, sa.InFlightRequests())
}

func TestRejectionsLogRestingOrders(t *testing.T) {
	var buf bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = previous })

	sa := NewServiceAvailability(0).WithRestingOrders(func() int64 { return 42 })
	sa.SetMaintenanceMode(true)
	app := availabilityApp(sa, nil)

	buf.Reset()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/book", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, buf.String(), `"resting_orders":42`)
	assert.Contains(t, buf.String(), "maintenance mode")
}
