package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/salesopshq/salesops/internal"
	"github.com/salesopshq/salesops/internal/admin"
	adminpg "github.com/salesopshq/salesops/internal/admin/postgres"
	"github.com/salesopshq/salesops/internal/audit"
	auditpg "github.com/salesopshq/salesops/internal/audit/postgres"
	"github.com/salesopshq/salesops/internal/auth"
	authpg "github.com/salesopshq/salesops/internal/auth/postgres"
	authredis "github.com/salesopshq/salesops/internal/auth/redis"
	"github.com/salesopshq/salesops/internal/calendar"
	"github.com/salesopshq/salesops/internal/customer"
	customerpg "github.com/salesopshq/salesops/internal/customer/postgres"
	"github.com/salesopshq/salesops/internal/meeting"
	meetingpg "github.com/salesopshq/salesops/internal/meeting/postgres"
	"github.com/salesopshq/salesops/internal/pipeline"
	pipelinepg "github.com/salesopshq/salesops/internal/pipeline/postgres"
	"github.com/salesopshq/salesops/internal/transport/rest"
	"github.com/salesopshq/salesops/internal/transport/swagger"
	"github.com/salesopshq/salesops/internal/user"
	userpg "github.com/salesopshq/salesops/internal/user/postgres"
	"github.com/salesopshq/salesops/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Redis  *goredis.Client
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
		if err := deps.Redis.Close(); err != nil {
			slog.Error("Redis close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.LoggerWrapper()

	// A broken OpenAPI document should fail the boot, not the Swagger UI.
	if _, err := swagger.LoadSpec(context.Background(), "./api/openapi.yml"); err != nil {
		return nil, err
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	redisClient, err := authredis.Connect(context.Background(), authredis.Config{
		Addr:    config.Redis.Addr,
		DB:      config.Redis.DB,
		Timeout: config.Redis.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	// Audit first; every other service records through it.
	auditService := audit.NewService(auditpg.NewRepository(gormDB), lg)

	sessionStore := authredis.NewSessionStore(redisClient)
	tokenGen := auth.NewJWTTokenGenerator(config.Security.AccessTokenSecret, config.Security.AccessTokenDuration)
	authService := auth.NewService(authpg.NewRepository(gormDB), sessionStore, tokenGen, auditService,
		config.Security.BCryptCost, config.Security.ResetTokenDuration)

	userRepo := userpg.NewRepository(gormDB)
	userService := user.NewService(userRepo, auditService)
	adminService := admin.NewService(adminpg.NewRepository(gormDB), auditService,
		config.Security.BCryptCost, config.Security.InviteTokenDuration)
	customerService := customer.NewService(customerpg.NewRepository(gormDB), auditService)
	pipelineService := pipeline.NewService(pipelinepg.NewRepository(gormDB), userRepo, auditService)
	meetingService := meeting.NewService(meetingpg.NewRepository(gormDB), auditService)

	handlers := rest.Handlers{
		Auth:     auth.NewHandler(authService),
		User:     user.NewHandler(userService),
		Admin:    admin.NewHandler(adminService),
		Customer: customer.NewHandler(customerService),
		Pipeline: pipeline.NewHandler(pipelineService, config.Upload.MaxFileSizeMB, config.Upload.MaxRows),
		Meeting:  meeting.NewHandler(meetingService, config.Upload.MaxFileSizeMB, config.Upload.MaxRows),
		Calendar: calendar.NewHandler(meetingService, pipelineService),
		Audit:    audit.NewHandler(auditService),
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, redisPinger{redisClient}, handlers,
		auth.NewRoleGuard(lg), config.Server.AllowedOrigins, lg)

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		Redis:  redisClient,
		Router: router,
	}, nil
}

// redisPinger adapts the redis client to the health checker.
type redisPinger struct {
	client *goredis.Client
}

func (p redisPinger) PingContext(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm layers the ORM over the already-open pgx connection pool so both
// share one pool and one set of limits.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{})
}
