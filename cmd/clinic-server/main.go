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

	"github.com/clinic/clinic/internal/config"
	"github.com/clinic/clinic/internal/domain/appointment"
	"github.com/clinic/clinic/internal/domain/identity"
	"github.com/clinic/clinic/internal/domain/patient"
	"github.com/clinic/clinic/internal/domain/registry"
	"github.com/clinic/clinic/internal/domain/reporting"
	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/internal/platform/middleware"
)

// catalogAdapter lets the appointment service price bookings from the
// registry catalog without the packages importing each other.
type catalogAdapter struct {
	svc *registry.Service
}

func (a *catalogAdapter) ServicePrice(ctx context.Context, serviceID int64) (int64, error) {
	ms, err := a.svc.GetService(ctx, serviceID)
	if err != nil {
		return 0, err
	}
	return ms.Price, nil
}

type doctorDirectoryAdapter struct {
	svc *identity.Service
}

func (a *doctorDirectoryAdapter) DoctorExists(ctx context.Context, doctorID int64) error {
	_, err := a.svc.GetDoctor(ctx, doctorID)
	return err
}

type patientDirectoryAdapter struct {
	svc *patient.Service
}

func (a *patientDirectoryAdapter) PatientExists(ctx context.Context, patientID int64) error {
	_, err := a.svc.Get(ctx, patientID)
	return err
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Clinic management API server",
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
		Short: "Start the clinic API server",
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
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	txRunner := db.NewRunner(pool)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Services
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.TokenTTLMins)*time.Minute)

	identitySvc := identity.NewService(
		identity.NewPersonRepoPG(pool),
		identity.NewDoctorRepoPG(pool),
		txRunner,
		issuer,
	)
	registrySvc := registry.NewService(
		registry.NewDepartmentRepoPG(pool),
		registry.NewServiceRepoPG(pool),
	)
	patientSvc := patient.NewService(patient.NewRepoPG(pool))
	appointmentSvc := appointment.NewService(
		appointment.NewRepoPG(pool),
		appointment.NewScheduleRepoPG(pool),
		appointment.NewHistoryRepoPG(pool),
		&catalogAdapter{svc: registrySvc},
		&doctorDirectoryAdapter{svc: identitySvc},
		&patientDirectoryAdapter{svc: patientSvc},
		txRunner,
	)
	reportingSvc := reporting.NewService(
		reporting.NewLineSourcePG(pool),
		cfg.DoctorShare,
		cfg.ClinicShare,
	)

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Routes
	public := e.Group("/api/v1")
	identityHandler := identity.NewHandler(identitySvc)
	identityHandler.RegisterPublicRoutes(public)

	api := e.Group("/api/v1", auth.Middleware(cfg.JWTSecret))
	identityHandler.RegisterRoutes(api)
	registry.NewHandler(registrySvc).RegisterRoutes(api)
	patient.NewHandler(patientSvc).RegisterRoutes(api)
	appointment.NewHandler(appointmentSvc).RegisterRoutes(api)
	reporting.NewHandler(reportingSvc).RegisterRoutes(api)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
