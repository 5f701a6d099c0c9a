package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinic/backoffice/internal/config"
	"github.com/clinic/backoffice/internal/domain/admin"
	"github.com/clinic/backoffice/internal/domain/dashboard"
	"github.com/clinic/backoffice/internal/domain/financial"
	"github.com/clinic/backoffice/internal/domain/identity"
	"github.com/clinic/backoffice/internal/domain/period"
	"github.com/clinic/backoffice/internal/domain/scheduling"
	"github.com/clinic/backoffice/internal/platform/auth"
	"github.com/clinic/backoffice/internal/platform/db"
	"github.com/clinic/backoffice/internal/platform/live"
	"github.com/clinic/backoffice/internal/platform/middleware"
	"github.com/clinic/backoffice/internal/platform/rooms"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "clinic-server",
		Short:         "Clinic back-office API server",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(clinicCmd())
	rootCmd.AddCommand(reportCmd())

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

// newLogger builds the process logger: JSON in staging and production, a
// console writer in development.
func newLogger(env, level string, out io.Writer) zerolog.Logger {
	var logger zerolog.Logger
	if env == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(out).With().Timestamp().Logger()
	}
	return logger.Level(parseLevel(level))
}

func parseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// app holds the wired domain services shared by the server and the
// reporting commands.
type app struct {
	identity   *identity.Service
	scheduling *scheduling.Service
	admin      *admin.Service
	financial  *financial.Service
	dashboard  *dashboard.Service
}

func buildApp(pool *pgxpool.Pool, cfg *config.Config, loc *time.Location, logger zerolog.Logger) *app {
	identitySvc := identity.NewService(identity.NewPatientRepo(pool))

	var allocator rooms.Allocator = rooms.Noop{}
	if cfg.RoomAllocationEnabled {
		allocator = rooms.NewPGAllocator(pool, logger)
	}
	schedulingSvc := scheduling.NewService(scheduling.NewAppointmentRepo(pool), identitySvc, allocator, logger)
	schedulingSvc.SetLocation(loc)

	adminSvc := admin.NewService(admin.NewCompanyRepoPG(pool), admin.NewRoomRepoPG(pool))

	financialSvc := financial.NewService(financial.NewEntryRepoPG(pool), financial.NewCategoryRepoPG(pool), adminSvc, logger)
	financialSvc.SetTxFunc(db.TxRunner(pool))

	dashboardSvc := dashboard.NewService(schedulingSvc, financialSvc, adminSvc, logger)
	dashboardSvc.SetTxFunc(db.TxRunner(pool))
	dashboardSvc.SetDefaultSlots(cfg.DefaultSlotCapacity)

	return &app{
		identity:   identitySvc,
		scheduling: schedulingSvc,
		admin:      adminSvc,
		financial:  financialSvc,
		dashboard:  dashboardSvc,
	}
}

// connect loads and validates the configuration and opens the pool.
func connect(ctx context.Context) (*config.Config, *pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.PoolOptions{
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		ApplicationName: "clinic-server",
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, pool, nil
}

func runServer() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg.Env, cfg.LogLevel, os.Stdout)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.IsDev() {
		logger.Warn().Msg("running in development mode: requests are authenticated with the dev identity")
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid clinic timezone")
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.PoolOptions{
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		ApplicationName: "clinic-server",
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", db.ClinicHeader},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware(cfg.DefaultClinic, []byte(cfg.AuthSigningKey)))
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			JWKSURL:    cfg.AuthJWKSURL,
			SigningKey: []byte(cfg.AuthSigningKey),
			Skipper:    auth.AuthSkipper,
		}))
	}

	apiV1 := e.Group("/api/v1")
	apiV1.Use(db.ClinicMiddleware(pool, cfg.DefaultClinic))
	apiV1.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
		IdleTTL:           middleware.DefaultRateLimitConfig().IdleTTL,
	}))
	apiV1.Use(middleware.Audit(logger))

	svc := buildApp(pool, cfg, loc, logger)
	clock := period.ClockIn(loc)

	hub := live.NewHub(logger)
	svc.scheduling.SetPublisher(hub)
	live.NewHandler(hub, cfg.CORSOrigins).RegisterRoutes(apiV1)

	period.NewHandler(clock).RegisterRoutes(apiV1)
	identity.NewHandler(svc.identity).RegisterRoutes(apiV1)
	scheduling.NewHandler(svc.scheduling, clock).RegisterRoutes(apiV1)
	admin.NewHandler(svc.admin).RegisterRoutes(apiV1)
	financial.NewHandler(svc.financial, clock).RegisterRoutes(apiV1)
	dashboard.NewHandler(svc.dashboard, clock).RegisterRoutes(apiV1)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("timezone", loc.String()).Msg("starting server")
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
