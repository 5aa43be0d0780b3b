package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"wallet-core.backend/internal/config"
	"wallet-core.backend/internal/infrastructure/jobs"
	"wallet-core.backend/internal/infrastructure/paystack"
	"wallet-core.backend/internal/infrastructure/repositories"
	"wallet-core.backend/internal/interfaces/http/handlers"
	"wallet-core.backend/internal/interfaces/http/middleware"
	"wallet-core.backend/internal/usecases"
	"wallet-core.backend/pkg/jwt"
	"wallet-core.backend/pkg/logger"
	"wallet-core.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			TranslateError: true,
		})
	}
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := loadCfg()

	// Initialize Logger
	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	// Initialize Redis
	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	// Set Gin mode
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database using GORM
	dsn := cfg.Database.URL()
	db, err := openDB(dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("⚠️ Database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("✅ Connected to PostgreSQL via GORM")
	}

	// Initialize JWT service
	jwtService := jwt.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	walletRepo := repositories.NewWalletRepository(db)
	txRepo := repositories.NewTransactionRepository(db)
	apiKeyRepo := repositories.NewApiKeyRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// Initialize payment provider client
	paystackClient := paystack.NewClient(cfg.Paystack.BaseURL, cfg.Paystack.SecretKey)

	// Initialize job queue
	queue := jobs.NewQueue(cfg.Worker.QueueBuffer)

	// Initialize usecases
	authUsecase := usecases.NewAuthUsecase(userRepo, walletRepo, uow, jwtService)
	walletUsecase := usecases.NewWalletUsecase(walletRepo, txRepo, userRepo, uow)
	apiKeyUsecase := usecases.NewApiKeyUsecase(apiKeyRepo, userRepo, uow)
	depositUsecase := usecases.NewDepositUsecase(paystackClient, queue, userRepo, walletRepo, txRepo, uow)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authUsecase)
	walletHandler := handlers.NewWalletHandler(walletUsecase)
	apiKeyHandler := handlers.NewApiKeyHandler(apiKeyUsecase)
	depositHandler := handlers.NewDepositHandler(depositUsecase, authUsecase)

	// Create auth middleware
	authMiddleware := middleware.AuthMiddleware(jwtService, apiKeyUsecase)

	// Start webhook workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue.Register(jobs.JobKindHandleWebhook, depositUsecase.ProcessPaymentEvent)
	queue.Start(ctx, cfg.Worker.Count)

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		authHandler:    authHandler,
		walletHandler:  walletHandler,
		apiKeyHandler:  apiKeyHandler,
		depositHandler: depositHandler,
		authMiddleware: authMiddleware,
	})

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("🛑 Shutting down server...")
		queue.Stop()
		cancel()
	}()

	// Start server
	log.Printf("🚀 Wallet Core Backend starting on port %s", cfg.Server.Port)
	log.Printf("📚 API: http://localhost:%s/api/v1", cfg.Server.Port)
	log.Printf("❤️ Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
