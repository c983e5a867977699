// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/gurkanbulca/taskapproval/internal/api"
	"github.com/gurkanbulca/taskapproval/internal/config"
	"github.com/gurkanbulca/taskapproval/internal/database"
	"github.com/gurkanbulca/taskapproval/internal/logging"
	"github.com/gurkanbulca/taskapproval/internal/repository"
	"github.com/gurkanbulca/taskapproval/internal/service"
	"github.com/gurkanbulca/taskapproval/internal/session"
	"github.com/gurkanbulca/taskapproval/pkg/auth"
)

const healthCheckInterval = 10 * time.Second

// stores bundles the persistence chosen by DB_DRIVER
type stores struct {
	users repository.UserRepository
	tasks repository.TaskRepository
	db    *database.DB // nil for the memory driver
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ValidateConfig(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logging.New(cfg.Log)
	ctx := context.Background()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open stores", "error", err)
		os.Exit(1)
	}

	passwordManager := auth.NewPasswordManager()
	tokenManager := auth.NewTokenManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenDuration,
		cfg.JWT.RefreshTokenDuration,
	)

	// Notifications and revocations move to Redis when it is configured
	var (
		redisClient *redis.Client
		notifier    service.Notifier        = service.NewLogNotifier(logger)
		revocations session.RevocationStore = session.NewMemoryRevocationStore()
	)
	if cfg.RedisEnabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to redis", "addr", cfg.Redis.Addr, "error", err)
			os.Exit(1)
		}
		notifier = service.MultiNotifier{notifier, service.NewRedisNotifier(redisClient, cfg.Redis.NotifyChannel)}
		revocations = session.NewRedisRevocationStore(redisClient, "")
		logger.Info("redis connected", "addr", cfg.Redis.Addr, "channel", cfg.Redis.NotifyChannel)
	}

	emitter := service.NewEventEmitter(notifier, logger, cfg.Tasks.NotifyTimeout)
	taskService := service.NewTaskService(st.tasks, st.users, emitter, logger,
		service.WithRequirePending(cfg.Tasks.RequirePending))
	userService := service.NewUserService(st.users, passwordManager, emitter, logger)
	authService := service.NewAuthService(st.users, tokenManager, passwordManager, revocations, emitter, logger)

	if cfg.Server.SeedData {
		if _, err := service.NewSeeder(st.users, st.tasks, passwordManager, logger).Seed(ctx); err != nil {
			logger.Error("failed to seed data", "error", err)
			os.Exit(1)
		}
	}

	deps := api.Dependencies{
		Tasks:  taskService,
		Users:  userService,
		Auth:   authService,
		Logger: logger,
	}
	if st.db != nil {
		deps.Health = st.db
	}
	httpServer := api.NewServer(deps)

	// gRPC carries only the health service
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	if cfg.Server.EnableReflection {
		reflection.Register(grpcServer)
		logger.Warn("gRPC reflection enabled (disable in production)")
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.Server.GRPCPort))
	if err != nil {
		logger.Error("failed to listen", "port", cfg.Server.GRPCPort, "error", err)
		os.Exit(1)
	}

	runCtx, stopRunning := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		return httpServer.Listen(":" + cfg.Server.HTTPPort)
	})
	g.Go(func() error {
		logger.Info("gRPC health server listening", "port", cfg.Server.GRPCPort)
		if err := grpcServer.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve grpc: %w", err)
		}
		return nil
	})
	if st.db != nil {
		g.Go(func() error {
			watchDatabase(gctx, st.db, healthServer, logger)
			return nil
		})
	}

	operations := map[string]gfshutdown.Operation{
		"http": func(ctx context.Context) error {
			return httpServer.Shutdown(ctx)
		},
		"grpc": func(ctx context.Context) error {
			healthServer.Shutdown()
			grpcServer.GracefulStop()
			return nil
		},
		"watchers": func(ctx context.Context) error {
			stopRunning()
			return nil
		},
	}
	if st.db != nil {
		operations["database"] = func(ctx context.Context) error {
			return st.db.Close()
		}
	}
	if redisClient != nil {
		operations["redis"] = func(ctx context.Context) error {
			return redisClient.Close()
		}
	}

	logger.Info("task approval service started",
		"http_port", cfg.Server.HTTPPort,
		"grpc_port", cfg.Server.GRPCPort,
		"driver", cfg.Database.Driver,
		"environment", cfg.Server.Environment,
	)

	wait := gfshutdown.GracefulShutdown(ctx, cfg.Server.ShutdownTimeout, operations)

	serveErr := make(chan error, 1)
	go func() { serveErr <- g.Wait() }()

	os.Exit(awaitExit(ctx, logger, wait, serveErr, cfg.Server.ShutdownTimeout, operations))
}

// awaitExit blocks until the process should exit and returns its exit code. A nil
// result from the serve group means the listeners were stopped by a shutdown already
// in progress, so the shutdown result is awaited instead of running the operations again.
func awaitExit(
	ctx context.Context,
	logger *slog.Logger,
	wait <-chan int,
	serveErr <-chan error,
	timeout time.Duration,
	operations map[string]gfshutdown.Operation,
) int {
	var err error
	select {
	case exitCode := <-wait:
		logger.Info("server shutdown complete", "exit_code", exitCode)
		return exitCode
	case err = <-serveErr:
	}

	if err == nil {
		exitCode := <-wait
		logger.Info("server shutdown complete", "exit_code", exitCode)
		return exitCode
	}

	logger.Error("server stopped unexpectedly", "error", err)
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	for name, op := range operations {
		if err := op(shutdownCtx); err != nil {
			logger.Error("shutdown operation failed", "operation", name, "error", err)
		}
	}
	return 1
}

// openStores connects the repositories selected by DB_DRIVER and migrates SQL schemas
func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	if cfg.Database.Driver == config.DriverMemory {
		logger.Warn("using in-memory stores; data is lost on restart")
		return &stores{
			users: repository.NewMemoryUserRepository(),
			tasks: repository.NewMemoryTaskRepository(),
		}, nil
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if cfg.Server.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("run auto migration: %w", err)
		}
	}

	return &stores{
		users: repository.NewSQLUserRepository(db),
		tasks: repository.NewSQLTaskRepository(db),
		db:    db,
	}, nil
}

// watchDatabase keeps the gRPC health status in line with database reachability
func watchDatabase(ctx context.Context, db *database.DB, healthServer *health.Server, logger *slog.Logger) {
	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	serving := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			err := db.Ping(pingCtx)
			cancel()

			switch {
			case err != nil && serving:
				logger.Error("database ping failed", "error", err)
				healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
				serving = false
			case err == nil && !serving:
				logger.Info("database reachable again")
				healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
				serving = true
			}
		}
	}
}
