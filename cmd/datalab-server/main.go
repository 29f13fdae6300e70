package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/datalab/datalab/internal/config"
	"github.com/datalab/datalab/internal/domain/audit"
	"github.com/datalab/datalab/internal/domain/catalog"
	"github.com/datalab/datalab/internal/domain/comment"
	"github.com/datalab/datalab/internal/domain/dashboard"
	"github.com/datalab/datalab/internal/domain/export"
	"github.com/datalab/datalab/internal/domain/participant"
	"github.com/datalab/datalab/internal/domain/response"
	"github.com/datalab/datalab/internal/domain/user"
	"github.com/datalab/datalab/internal/platform/auth"
	"github.com/datalab/datalab/internal/platform/db"
	"github.com/datalab/datalab/internal/platform/mail"
	"github.com/datalab/datalab/internal/platform/middleware"
	"github.com/datalab/datalab/internal/platform/reminder"
)

// editorResolver adapts the user service to the response engine's editor
// lookup, mapping account errors onto the response error taxonomy.
type editorResolver struct {
	users *user.Service
}

func (e editorResolver) ResolveEditor(ctx context.Context, key string) (string, error) {
	name, err := e.users.ResolveEditor(ctx, key)
	if err != nil {
		return "", response.ErrEditorNotFound
	}
	return name, nil
}

// recruiterDirectory adapts the user service to the reminder scheduler's
// recruiter lookup.
type recruiterDirectory struct {
	users *user.Service
}

func (d recruiterDirectory) Recruiter(ctx context.Context, id int64) (string, string, error) {
	u, err := d.users.Get(ctx, id)
	if err != nil {
		return "", "", err
	}
	return u.Name, u.Email, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "datalab-server",
		Short: "Clinical study CRF API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	tx := db.NewTransactor(pool)
	issuer := auth.NewIssuer(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)

	// Repositories
	questionRepo := catalog.NewRepoPG(pool)
	participantRepo := participant.NewRepoPG(pool)
	responseRepo := response.NewRepoPG(pool)
	auditRepo := audit.NewRepoPG(pool)
	userRepo := user.NewRepoPG(pool)
	commentRepo := comment.NewRepoPG(pool)
	dashboardRepo := dashboard.NewRepoPG(pool)

	// Services
	auditSvc := audit.NewService(auditRepo, logger)
	catalogSvc := catalog.NewService(questionRepo)
	participantSvc := participant.NewService(participantRepo, auditSvc, tx, logger)
	userSvc := user.NewService(userRepo, issuer, logger)
	responseSvc := response.NewService(
		responseRepo, questionRepo, participantSvc, participantRepo,
		editorResolver{users: userSvc}, auditSvc, tx, logger)
	participantSvc.SetCompletenessChecker(responseSvc)
	commentSvc := comment.NewService(commentRepo, participantRepo, logger)
	exportSvc := export.NewService(questionRepo, participantRepo, responseRepo, auditSvc, logger)
	dashboardSvc := dashboard.NewService(dashboardRepo, questionRepo, cfg.ExportTarget, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	userHandler := user.NewHandler(userSvc)
	userHandler.RegisterPublicRoutes(e.Group("/api/v1"))

	// Authenticated API
	apiV1 := e.Group("/api/v1")
	if cfg.IsDev() && cfg.JWTSecret == "" {
		logger.Warn().Msg("running with development auth, every request is admin")
		apiV1.Use(auth.DevAuthMiddleware())
	} else {
		apiV1.Use(auth.Middleware(issuer))
	}

	catalog.NewHandler(catalogSvc).RegisterRoutes(apiV1)
	participant.NewHandler(participantSvc).RegisterRoutes(apiV1)
	response.NewHandler(responseSvc).RegisterRoutes(apiV1)
	comment.NewHandler(commentSvc).RegisterRoutes(apiV1)
	audit.NewHandler(auditSvc).RegisterRoutes(apiV1)
	export.NewHandler(exportSvc).RegisterRoutes(apiV1)
	dashboard.NewHandler(dashboardSvc).RegisterRoutes(apiV1)
	userHandler.RegisterRoutes(apiV1)

	// Reminder scheduler
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	sender := mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	scheduler := reminder.NewScheduler(
		participantRepo, auditSvc, sender, recruiterDirectory{users: userSvc}, cfg.ReminderDays, logger)
	go scheduler.Run(schedulerCtx)

	// Start server
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	stopScheduler()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
