package main

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/worldview-aggregation/internal/api/http"
	"github.com/i474232898/worldview-aggregation/internal/config"
	"github.com/i474232898/worldview-aggregation/internal/logging"
	"github.com/i474232898/worldview-aggregation/internal/scheduler"
	"github.com/i474232898/worldview-aggregation/internal/worldview"
)

func newServeCmd(cfg func() *config.AppConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background cache refresh",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg())
		},
	}
}

func newApp(service *worldview.Service) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "worldview-aggregation",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "worldview-aggregation",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpapi.RegisterRoutes(app, service)
	return app
}

func serve(ctx context.Context, cfg *config.AppConfig) error {
	service := buildService(cfg)

	// Scheduler that keeps layer caches warm.
	sched := scheduler.New(cfg.RefreshIntervals(), 2*cfg.HTTPTimeout, service)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	app := newApp(service)

	errc := make(chan error, 1)
	go func() {
		logging.Info().Str("port", cfg.Port).Msg("http server listening")
		errc <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("error during shutdown")
		return err
	}
	logging.Info().Msg("http server stopped")
	return nil
}
