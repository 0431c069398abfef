package cmd

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"upload-manager/core/loader"
	"upload-manager/core/logger"
	"upload-manager/core/metrics"
	"upload-manager/core/middleware/rayid"
	"upload-manager/feature/integrity"
	"upload-manager/feature/uploadedfiles"
	"upload-manager/feature/users"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "upload-manager/docs/swagger"
)

// @title Upload Manager API
// @version 1.0
// @description API for managing users and their uploaded files.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.basic BasicAuth
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the upload manager server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logg, err := bootstrap()
		if err != nil {
			return err
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		db, err := openDatabase(cfg, logg)
		if err != nil {
			return err
		}

		m := metrics.New()
		media := newMedia(cfg, logg, m)

		// A storage outage must not keep the API down; the first storage call retries.
		if err := media.Initialize(cmd.Context()); err != nil {
			logg.Warn("Media storage not ready", zap.String("bucket", cfg.Storage.Bucket), zap.Error(err))
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			BodyLimit:             cfg.Server.BodyLimit(),
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				code := fiber.StatusInternalServerError
				var fe *fiber.Error
				if errors.As(err, &fe) {
					code = fe.Code
				}
				return c.Status(code).JSON(fiber.Map{"error": err.Error()})
			},
		})

		// RayID must be first to trace everything.
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
		app.Use(m.Middleware())

		app.Get("/metrics", m.Handler())
		app.Get("/swagger/*", swagger.HandlerDefault)

		usersFeature := users.NewFeature(db, logg)

		mgr := loader.NewManager(logg)
		mgr.Register(usersFeature)
		mgr.Register(uploadedfiles.NewFeature(db, media, usersFeature.Service(), usersFeature.Authentication(), logg))
		mgr.Register(integrity.NewFeature(db, media, cfg.Server.ApiKey, logg))

		if err := mgr.LoadAll(app); err != nil {
			return err
		}

		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		return app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
