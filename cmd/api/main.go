package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lexora/translation-gateway/internal/config"
	"github.com/lexora/translation-gateway/internal/engine"
	"github.com/lexora/translation-gateway/internal/handlers"
	"github.com/lexora/translation-gateway/internal/queue"
	"github.com/lexora/translation-gateway/internal/repository"
	"github.com/lexora/translation-gateway/internal/services"
	"github.com/lexora/translation-gateway/internal/translator"
	xhttp "github.com/lexora/translation-gateway/pkg/http"
	"github.com/lexora/translation-gateway/pkg/logger"
	"github.com/lexora/translation-gateway/pkg/pg"
	"github.com/lexora/translation-gateway/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	// transport (tcp for now)
	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 5))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{config.Get().RedisAddr},
		ClientName: "default",
		DB:         config.Get().RedisDatabase,
		Username:   config.Get().RedisUsername,
		Password:   config.Get().RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	q, err := queue.New(redisAdap, queue.Config{
		Name:              config.Get().QueueName,
		ConsumerGroup:     config.Get().QueueConsumerGroup,
		ConsumerName:      config.Get().QueueConsumerName,
		MaxAttempts:       config.Get().QueueMaxAttempts,
		VisibilityTimeout: config.Get().QueueVisibilityTimeout,
		PollInterval:      config.Get().QueuePollInterval,
		MaxLen:            config.Get().QueueMaxLen,
		EnableDLQ:         config.Get().QueueEnableDLQ,
	})
	if err != nil {
		logger.Error("failed creating queue", "error", err)
		return
	}

	translationRepo := repository.NewTranslationRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	userRepo := repository.NewUserRepository(db)

	// services
	translationService := services.NewTranslationService(translationRepo, walletRepo, transactionRepo, buildTranslator(), services.TranslationConfig{
		Cost:    config.Get().TranslateCost,
		Timeout: config.Get().TranslateTimeout,
	})
	walletService := services.NewWalletService(walletRepo, transactionRepo)
	authService := services.NewAuthService(userRepo, walletRepo, services.AuthConfig{
		JWTSecret:     config.Get().JWTSecret,
		TokenLifetime: config.Get().JWTTokenLifetime,
	})
	historyService := services.NewHistoryService(translationRepo, transactionRepo)
	taskService := services.NewTaskService(q, translationRepo)
	healthService := services.NewHealthService(db, redisAdap)

	// v1 handlers
	authHandler := handlers.NewAuthHandler(authService)
	walletHandler := handlers.NewWalletHandler(walletService)
	translateHandler := handlers.NewTranslateHandler(translationService, taskService)
	historyHandler := handlers.NewHistoryHandler(historyService)
	adminHandler := handlers.NewAdminHandler(walletService, historyService)
	healthHandler := handlers.NewHealthHandler(healthService)

	authMw := handlers.RequireAuth(config.Get().JWTSecret)
	adminMw := handlers.RequireAdmin(config.Get().JWTSecret)

	g := s.Router.Group("/api/v1")
	handlers.RegisterAuthRoutes(g, authHandler, authMw)
	handlers.RegisterWalletRoutes(g, walletHandler, authMw)
	handlers.RegisterTranslateRoutes(g, translateHandler, authMw)
	handlers.RegisterHistoryRoutes(g, historyHandler, authMw)
	handlers.RegisterAdminRoutes(g, adminHandler, adminMw)
	handlers.RegisterHealthRoutes(g, healthHandler)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	select {
	case <-c:
		s.Shutdown()
	}
}

// buildTranslator picks the remote engine when one is configured and
// falls back to the builtin dictionary otherwise.
func buildTranslator() translator.Translator {
	if config.Get().EnginePrimaryUrl == "" {
		return translator.NewDictionary()
	}

	providers := []engine.ProviderConfig{
		{Name: "primary", URL: config.Get().EnginePrimaryUrl, Weight: 100},
	}
	if config.Get().EngineSecondaryUrl != "" {
		providers = append(providers, engine.ProviderConfig{Name: "secondary", URL: config.Get().EngineSecondaryUrl, Weight: 80})
	}

	client, err := engine.NewClient(&engine.Config{
		Providers:               providers,
		Timeout:                 config.Get().TranslateTimeout,
		MaxRetries:              3,
		RetryDelay:              time.Millisecond * 100,
		MaxConns:                1000,
		CircuitBreakerThreshold: 5,
		CircuitBreakerTimeout:   60 * time.Second,
	})
	if err != nil {
		logger.Error("failed to create engine client, using dictionary", "error", err)
		return translator.NewDictionary()
	}
	return client
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
