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

	"open-wallet.backend/internal/config"
	"open-wallet.backend/internal/infrastructure/blockchain"
	"open-wallet.backend/internal/infrastructure/jobs"
	"open-wallet.backend/internal/infrastructure/repositories"
	"open-wallet.backend/internal/interfaces/http/handlers"
	"open-wallet.backend/internal/interfaces/http/middleware"
	"open-wallet.backend/internal/usecases"
	"open-wallet.backend/pkg/jwt"
	"open-wallet.backend/pkg/logger"
	"open-wallet.backend/pkg/redis"
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
			PrepareStmt:    false,
			TranslateError: true,
		})
	}
	newChainClient = func(rpcURL string) (blockchain.Client, error) {
		if rpcURL == "" {
			return blockchain.NewOfflineClient(), nil
		}
		return blockchain.NewEVMClient(rpcURL)
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
	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
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
	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry)

	// Initialize repositories
	walletRepo := repositories.NewWalletRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	agentRepo := repositories.NewAgentRepository(db)
	dailyLimitTracker := repositories.NewRedisDailyLimitTracker(cfg.Ledger.CurrencyPrecision)
	uow := repositories.NewUnitOfWork(db)

	// Initialize chain client
	chainClient, err := newChainClient(cfg.Blockchain.RPCURL)
	if err != nil {
		return fmt.Errorf("failed to initialize chain client: %w", err)
	}

	// Initialize usecases
	ledgerCfg := cfg.Ledger.ToLedger()
	recorder := usecases.NewTransactionRecorder(transactionRepo)
	walletUsecase := usecases.NewWalletUsecase(walletRepo, transactionRepo, recorder, uow, chainClient, ledgerCfg)
	transferUsecase := usecases.NewTransferUsecase(walletRepo, recorder, ledgerCfg)
	refundUsecase := usecases.NewRefundUsecase(walletRepo, transactionRepo, recorder, ledgerCfg)
	agentUsecase := usecases.NewAgentUsecase(agentRepo, walletRepo, cfg.Agent.ToAgent())
	policyEngine := usecases.NewPolicyEngine(dailyLimitTracker)
	a2aUsecase := usecases.NewA2AUsecase(agentRepo, policyEngine, transferUsecase)
	ucpUsecase := usecases.NewUCPUsecase(a2aUsecase)

	// Initialize handlers
	walletHandler := handlers.NewWalletHandler(walletUsecase, transferUsecase, refundUsecase)
	agentHandler := handlers.NewAgentHandler(agentUsecase, a2aUsecase)
	ucpHandler := handlers.NewUCPHandler(ucpUsecase)

	authMiddleware := middleware.AuthMiddleware(jwtService)

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reconciliationJob := jobs.NewPendingReconciliationJob(transactionRepo, cfg.Reconciliation.Interval, cfg.Reconciliation.MaxAge)
	go reconciliationJob.Start(ctx)

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		walletHandler:  walletHandler,
		agentHandler:   agentHandler,
		ucpHandler:     ucpHandler,
		authMiddleware: authMiddleware,
	})

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("🛑 Shutting down server...")
		reconciliationJob.Stop()
		cancel()
	}()

	// Start server
	log.Printf("🚀 Open-Wallet Backend starting on port %s", cfg.Server.Port)
	log.Printf("📚 API: http://localhost:%s/api/v1", cfg.Server.Port)
	log.Printf("❤️ Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
