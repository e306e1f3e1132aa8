package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ronin-novel/internal/authutils"
	"ronin-novel/internal/config"
	"ronin-novel/internal/game"
	"ronin-novel/internal/handler"
	"ronin-novel/internal/logger"
	"ronin-novel/internal/messaging"
	"ronin-novel/internal/middleware"
	"ronin-novel/internal/repository"
	"ronin-novel/internal/service"
	"ronin-novel/internal/story"
	"ronin-novel/internal/ws"
	"ronin-novel/pkg/migration"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	log.Println("Запуск Ronin Gameplay Service...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:      cfg.LogLevel,
		Encoding:   cfg.LogEncoding,
		OutputPath: cfg.LogOutput,
		Service:    "ronin-gameplay",
	})
	if err != nil {
		log.Fatalf("Не удалось инициализировать логгер: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger.Info("Logger initialized", zap.String("logLevel", cfg.LogLevel))

	// --- Сюжет и движок ---
	graph, err := loadStory(cfg)
	if err != nil {
		zapLogger.Fatal("Failed to load story graph", zap.Error(err))
	}
	if violations := graph.Violations(); len(violations) > 0 {
		zapLogger.Warn("Story graph has integrity violations", zap.Int("count", len(violations)))
	}
	zapLogger.Info("Story graph loaded",
		zap.Int("scenes", graph.Len()),
		zap.Int("reachable", len(graph.Reachable())),
	)
	engine := game.NewEngine(graph, game.WithStrict(cfg.StrictMode), game.WithLogger(zapLogger))

	// --- PostgreSQL ---
	dbPool, err := setupDatabase(cfg)
	if err != nil {
		zapLogger.Fatal("Не удалось подключиться к БД", zap.Error(err))
	}
	defer dbPool.Close()
	zapLogger.Info("Успешное подключение к PostgreSQL")

	migrator := migration.NewMigrator(migration.Config{
		MigrationsFS:   repository.MigrationsFS,
		MigrationsPath: repository.MigrationsPath,
	}, dbPool, zapLogger)
	if err := migrator.Up(); err != nil {
		zapLogger.Fatal("Failed to apply migrations", zap.Error(err))
	}

	var sessionRepo repository.SessionRepository = repository.NewPgSessionRepository(dbPool, zapLogger)

	// --- Redis ---
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		defer redisClient.Close()
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		pingErr := redisClient.Ping(pingCtx).Err()
		cancel()
		if pingErr != nil {
			// Кэш необязателен: работаем напрямую с БД
			zapLogger.Warn("Redis unavailable, session cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(pingErr))
		} else {
			cache := repository.NewRedisSessionCache(redisClient, cfg.SessionCacheTTL, zapLogger)
			sessionRepo = repository.NewCachedSessionRepository(sessionRepo, cache, zapLogger)
			zapLogger.Info("Session cache enabled", zap.String("addr", cfg.RedisAddr))
		}
	}

	// --- WebSocket ---
	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()
	wsManager := ws.NewConnectionManager(zapLogger)
	go wsManager.Run(appCtx)

	publishers := messaging.MultiPublisher{ws.NewEventPublisher(wsManager)}

	// --- RabbitMQ (необязательно) ---
	if cfg.RabbitMQURL != "" {
		rabbitConn, err := connectRabbitMQ(cfg.RabbitMQURL, zapLogger)
		if err != nil {
			zapLogger.Fatal("Не удалось подключиться к RabbitMQ", zap.Error(err))
		}
		defer rabbitConn.Close()

		eventPublisher, ch, err := messaging.NewRabbitMQGameEventPublisher(rabbitConn, cfg.GameEventsQueue, zapLogger)
		if err != nil {
			zapLogger.Fatal("Не удалось создать GameEventPublisher", zap.Error(err))
		}
		defer ch.Close()
		publishers = append(publishers, eventPublisher)
		zapLogger.Info("Успешное подключение к RabbitMQ", zap.String("queue", cfg.GameEventsQueue))
	}

	// --- HTTP ---
	verifier, err := authutils.NewJWTVerifier(cfg.JWTSecret, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create JWT verifier", zap.Error(err))
	}
	gameplayService := service.NewGameplayService(engine, sessionRepo, publishers, zapLogger)
	gameplayHandler := handler.NewGameplayHandler(gameplayService, verifier.VerifyToken, zapLogger)
	wsHandler := ws.NewHandler(wsManager, verifier.VerifyToken, cfg.CORSAllowedOrigins, zapLogger)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Use(middleware.EchoZapLogger(zapLogger))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	gameplayHandler.RegisterRoutes(e)
	e.GET("/ws", echo.WrapHandler(wsHandler))

	go func() {
		zapLogger.Info("Gameplay сервер слушает", zap.String("port", cfg.Port))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Ошибка запуска HTTP сервера", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Получен сигнал завершения, начинаем graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		zapLogger.Error("Ошибка при graceful shutdown Echo", zap.Error(err))
	}
	stopApp()

	zapLogger.Info("Gameplay Service успешно остановлен")
}

func loadStory(cfg *config.Config) (*story.Graph, error) {
	opts := []story.LoadOption{story.WithIntegrityCheck(cfg.StoryValidateOnLoad)}
	if cfg.StoryFile != "" {
		return story.LoadFile(cfg.StoryFile, opts...)
	}
	return story.Default(opts...)
}

// setupDatabase инициализирует и возвращает пул соединений с БД
func setupDatabase(cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга DSN: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.DBMaxConns)
	poolConfig.MaxConnIdleTime = cfg.DBIdleTimeout

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	dbPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать пул соединений: %w", err)
	}
	if err = dbPool.Ping(ctx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("не удалось подключиться к БД (ping failed): %w", err)
	}
	return dbPool, nil
}

// connectRabbitMQ пытается подключиться к RabbitMQ с несколькими попытками
func connectRabbitMQ(url string, logger *zap.Logger) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	maxRetries := 5
	retryDelay := 5 * time.Second
	for i := 0; i < maxRetries; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		logger.Warn("Не удалось подключиться к RabbitMQ",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", maxRetries),
			zap.Duration("retry_delay", retryDelay),
			zap.Error(err),
		)
		time.Sleep(retryDelay)
	}
	return nil, err
}
