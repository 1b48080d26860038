package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	"github.com/joho/godotenv"
	config "github.com/tea-corner/go-backend/internal/cfg"
	"github.com/tea-corner/go-backend/internal/conversation"
	v1Http "github.com/tea-corner/go-backend/internal/delivery/v1/http"
	"github.com/tea-corner/go-backend/internal/delivery/v1/telegram"
	"github.com/tea-corner/go-backend/internal/infrastructure/kafka"
	"github.com/tea-corner/go-backend/internal/infrastructure/notify"
	"github.com/tea-corner/go-backend/internal/repository/memory"
	s3Repo "github.com/tea-corner/go-backend/internal/repository/minio"
	"github.com/tea-corner/go-backend/internal/repository/pgdb"
	pgdbConv "github.com/tea-corner/go-backend/internal/repository/pgdb/converter"
	"github.com/tea-corner/go-backend/internal/repository/redis"
	redisConv "github.com/tea-corner/go-backend/internal/repository/redis/converter"
	"github.com/tea-corner/go-backend/internal/usecase"
	"github.com/tea-corner/go-backend/internal/worker"
	"github.com/tea-corner/go-backend/pkg/clients"
	"github.com/tea-corner/go-backend/pkg/closer"
	"github.com/tea-corner/go-backend/pkg/e"
	"github.com/tea-corner/go-backend/pkg/logger"
	"github.com/tea-corner/go-backend/pkg/postgres"
)

const notifierMaxRetries = 3

// Run собирает все зависимости и запускает приложение:
// Telegram-бота, HTTP API каталога и фоновую очистку корзин.
func Run() {
	logger := logger.NewSlogLogger()

	if err := godotenv.Load(); err != nil {
		logger.Debugf(".env file not loaded: %v", err)
	}

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	db, err := initPGDB(logger, cfg)
	if err != nil {
		logger.Errorf(err, "failed to initialize database")
		os.Exit(1)
	}

	cl := closer.NewCloser(2 * time.Second)
	cl.Add(func(ctx context.Context) error {
		db.Close()
		return nil
	})

	productRepo := pgdb.NewProductRepo(db.Pool, pgdbConv.NewProductConverterImpl())

	redisClient := clients.NewRedisClient(cfg.Redis)
	redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(redisCtx); err != nil {
		redisCancel()
		logger.Errorf(err, "failed to connect to redis")
		os.Exit(1)
	}
	redisCancel()
	cl.Add(func(ctx context.Context) error {
		return redisClient.Client.Close()
	})

	cacheRepo := redis.NewCacheRepo(redisClient, redisConv.NewProductConverterImpl(), cfg.Redis, logger)

	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		logger.Errorf(err, "failed to initialize minio client")
		os.Exit(1)
	}
	minioCtx, minioCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := clients.EnsureBucket(minioCtx, minioClient, cfg.Minio.BucketName); err != nil {
		minioCancel()
		logger.Errorf(err, "failed to initialize MinIO bucket")
		os.Exit(1)
	}
	minioCancel()

	photoRepo := s3Repo.NewPhotoRepo(minioClient, cfg.Minio)

	producer, err := kafka.NewProducer(logger, cfg.Kafka)
	if err != nil {
		logger.Errorf(err, "failed to initialize kafka producer")
		os.Exit(1)
	}
	cl.Add(func(ctx context.Context) error {
		return producer.Close()
	})
	// Событийный поток не критичен для старта: брокер может подниматься дольше.
	if err := producer.EnsureTopic(10 * time.Second); err != nil {
		logger.Warnf("Failed to ensure kafka topic: %v", err)
	}

	carts := memory.NewCartRepo()
	sessions := memory.NewSessionRepo()

	catalogUC := usecase.NewCatalogUC(productRepo, cacheRepo, logger)
	productUC := usecase.NewProductUC(productRepo, photoRepo, cacheRepo, db.Pool, logger)

	bot, err := telegram.NewBot(cfg.Telegram, logger)
	if err != nil {
		logger.Errorf(err, "failed to initialize telegram bot")
		os.Exit(1)
	}

	notifier := notify.NewNotifier(bot, notifierMaxRetries, logger)
	orderUC := usecase.NewOrderUC(carts, catalogUC, notifier, producer, cfg.Telegram.Operators, logger)

	engine := conversation.NewEngine(
		catalogUC,
		carts,
		sessions,
		orderUC,
		notifier,
		cfg.Telegram.Operators,
		cfg.Telegram.SupportHandle,
		logger,
	)
	bot.SetEngine(engine)

	purgeWorker := worker.NewPurgeWorker(carts, cfg.Purge.Interval, logger)
	purgeWorker.Start()
	cl.Add(func(ctx context.Context) error {
		purgeWorker.Stop()
		return nil
	})

	botCtx, botCancel := context.WithCancel(context.Background())
	botErrCh := make(chan error, 1)
	go func() {
		if err := bot.Run(botCtx); err != nil {
			logger.Errorf(err, "telegram bot failed")
			botErrCh <- err
		}
	}()
	cl.Add(func(ctx context.Context) error {
		botCancel()
		return nil
	})

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, logger)
	router.Init(productUC)

	httpSrv := v1Http.NewServer(r, cfg.Http)
	httpErrCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP server started on port %s", cfg.Http.Port)
		if err := httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf(err, "HTTP server failed: %v", err)
			httpErrCh <- err
		}
	}()
	cl.Add(func(ctx context.Context) error {
		return httpSrv.Stop(ctx)
	})

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-httpErrCh:
		logger.Errorf(appErr, "HTTP server fatal error")
	case appErr = <-botErrCh:
		logger.Errorf(appErr, "telegram bot fatal error")
	case <-shutdown:
		logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := cl.Close(shutdownCtx); err != nil {
		logger.Warnf("Shutdown finished with errors: %v", err)
	}

	logger.Infof("Application shutdown complete")
	if appErr != nil {
		os.Exit(1)
	}
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(); err != nil {
		logger.Errorf(err, "failed to ping database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
