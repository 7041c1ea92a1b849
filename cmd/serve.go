package cmd

import (
	"fmt"
	"time"

	"shared-save/core/loader"
	"shared-save/core/logger"
	"shared-save/core/middleware/auth"
	"shared-save/core/middleware/rayid"
	"shared-save/feature/history"
	"shared-save/feature/integrity"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// shutdownTimeout bounds draining in-flight requests on exit.
const shutdownTimeout = 10 * time.Second

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the read-only HTTP API",
	Long:  `Serves world heads, publish history, snapshot downloads and integrity checks over HTTP.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := openRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()
		zap.ReplaceGlobals(rt.logger)

		app, err := newServer(rt)
		if err != nil {
			return err
		}

		errCh := make(chan error, 1)
		go func() {
			rt.logger.Info("Starting server", zap.String("addr", rt.cfg.Server.Addr()))
			errCh <- app.Listen(rt.cfg.Server.Addr())
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		rt.logger.Info("Shutting down server...")
		return app.ShutdownWithTimeout(shutdownTimeout)
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}

// newServer builds the Fiber app with middleware and every feature loaded.
func newServer(rt *runtime) (*fiber.App, error) {
	cfg := rt.cfg
	logg := rt.logger

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:          time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	})

	// RayID first so every later log line carries it.
	app.Use(rayid.New())

	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})

	app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey, Skip: []string{"/health"}}))
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	mgr := loader.NewManager(logg)
	mgr.Register(history.NewFeature(rt.ledger, rt.store, logg))
	mgr.Register(integrity.NewFeature(rt.client, cfg.Storage.Bucket, cfg.Storage.Prefix, cfg.Storage.Region, logg, rt.db))

	if _, err := mgr.LoadAll(app); err != nil {
		return nil, fmt.Errorf("failed to load features: %w", err)
	}
	return app, nil
}
