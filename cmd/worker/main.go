package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lexora/translation-gateway/internal/config"
	"github.com/lexora/translation-gateway/internal/engine"
	"github.com/lexora/translation-gateway/internal/processor"
	"github.com/lexora/translation-gateway/internal/repository"
	"github.com/lexora/translation-gateway/internal/services"
	"github.com/lexora/translation-gateway/internal/translator"
	"github.com/lexora/translation-gateway/pkg/logger"
	"github.com/lexora/translation-gateway/pkg/pg"
	"github.com/lexora/translation-gateway/pkg/prom"
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

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	translationRepo := repository.NewTranslationRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	walletRepo := repository.NewWalletRepository(db)

	translationService := services.NewTranslationService(translationRepo, walletRepo, transactionRepo, buildTranslator(), services.TranslationConfig{
		Cost:    config.Get().TranslateCost,
		Timeout: config.Get().TranslateTimeout,
	})

	idempotencyService := processor.NewIdempotencyService(redisAdap, processor.DefaultIdempotencyConfig())

	service, err := processor.NewProcessorService(redisAdap)
	if err != nil {
		logger.Error("failed to create the processor service", "error", err)
		return
	}
	if err := service.Init(); err != nil {
		logger.Error("failed to init the processor service", "error", err)
		return
	}
	service.RegisterProcessor(processor.NewTranslationTaskProcessor(
		translationService,
		idempotencyService,
		service.Queue(),
		config.Get().QueueMaxAttempts,
		config.Get().QueueRetryDelay,
	))

	var hostname string
	hostname, err = os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	err = prom.Create(hostname, config.Get().AppEnv, config.Get().PromNamespace)
	if err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}

	go func() {
		prom.ListenAndServer(config.Get().MetricsAddr, "/metrics")
	}()

	go func() {
		err := service.Start()
		if err != nil {
			logger.Error("failed to start processor", "error", err)
		}
	}()

	select {
	case <-c:
		service.Stop()
	}
}

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
