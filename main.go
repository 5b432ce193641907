package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"limit-order-book/src/engine"
	"limit-order-book/src/export"
	"limit-order-book/src/handlers"
	"limit-order-book/src/logger"
	"limit-order-book/src/routes"
)

func main() {
	log := logger.InitLogger()

	config := engine.Config{AutoCross: os.Getenv("AUTO_CROSS") == "1"}
	log.Info().
		Bool("auto_cross", config.AutoCross).
		Msg("Initializing limit order book")

	book := engine.NewOrderBook(config)
	if seedFile := os.Getenv("BOOK_SEED_FILE"); seedFile != "" {
		seedBook(log, book, seedFile)
	}

	orderHandler := handlers.NewOrderHandler(book)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
			}

			log.Error().
				Str("path", c.Path()).
				Str("method", c.Method()).
				Int("status", code).
				Err(err).
				Msg("Request error")

			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	routes.SetupRoutes(app, orderHandler)

	port := ":8080"
	if envPort := os.Getenv("PORT"); envPort != "" {
		port = ":" + envPort
	}

	serverError := make(chan error, 1)

	go func() {
		if err := app.Listen(port); err != nil {
			serverError <- err
		}
	}()

	log.Info().
		Str("port", port).
		Strs("endpoints", routes.Endpoints()).
		Msg("Limit order book started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverError:
		log.Error().
			Err(err).
			Str("port", port).
			Msg("Server failed")
		logger.CloseLogger()
		os.Exit(1)
	case <-quit:
		log.Info().Msg("Received shutdown signal, shutting down...")
	}

	shutdownTimeout := 10 * time.Second
	if envTimeout := os.Getenv("SHUTDOWN_TIMEOUT"); envTimeout != "" {
		if parsed, err := time.ParseDuration(envTimeout); err == nil && parsed > 0 {
			shutdownTimeout = parsed
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		// edge case: timeout during shutdown is acceptable
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn().
				Dur("timeout", shutdownTimeout).
				Msg("Timeout exceeded, shutting down...")
		} else {
			log.Error().
				Err(err).
				Msg("Error during shutdown")
		}
	} else {
		log.Info().Msg("Shutdown complete")
	}

	bids, asks := book.OrderCount()
	log.Info().
		Int64("bid_orders", bids).
		Int64("ask_orders", asks).
		Msg("Book discarded")

	logger.CloseLogger()
}

func seedBook(log zerolog.Logger, book *engine.OrderBook, path string) {
	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("seed_file", path).Msg("Failed to open seed file")
	}
	defer f.Close()

	loaded, err := export.LoadCSV(f, book)
	if err != nil {
		log.Fatal().
			Err(err).
			Str("seed_file", path).
			Int("loaded", loaded).
			Msg("Failed to seed order book")
	}

	log.Info().
		Str("seed_file", path).
		Int("orders", loaded).
		Msg("Order book seeded")
}
