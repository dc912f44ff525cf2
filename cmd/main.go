/**
 * @description
 * This is the main entry point for the assistant-service. It is responsible for
 * initializing all components of the service, including configuration, database
 * connection, external API clients, message brokers, repositories, the core
 * conversational engine, and the HTTP server. It wires everything together and
 * starts the service.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - github.com/joho/godotenv: For loading .env files during local development.
 * - github.com/redis/go-redis/v9: Session store and rate limiter backend.
 * - internal/api, internal/app, internal/banks, internal/config, internal/mandate,
 *   internal/store: Internal packages for the service.
 * - pkg/groqclient, pkg/monoclient, pkg/paystackclient: Provider API clients.
 * - pkg/rabbitmq: Client for RabbitMQ.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/FredAbod/Project-Eureka-sub000/internal/api"
	"github.com/FredAbod/Project-Eureka-sub000/internal/app"
	"github.com/FredAbod/Project-Eureka-sub000/internal/banks"
	"github.com/FredAbod/Project-Eureka-sub000/internal/config"
	"github.com/FredAbod/Project-Eureka-sub000/internal/mandate"
	"github.com/FredAbod/Project-Eureka-sub000/internal/store"
	"github.com/FredAbod/Project-Eureka-sub000/pkg/groqclient"
	"github.com/FredAbod/Project-Eureka-sub000/pkg/monoclient"
	"github.com/FredAbod/Project-Eureka-sub000/pkg/paystackclient"
	"github.com/FredAbod/Project-Eureka-sub000/pkg/rabbitmq"
)

func main() {
	// Load .env for local development; in deployed environments the variables
	// come from the platform.
	if err := godotenv.Load(); err != nil {
		log.Println("level=info component=bootstrap msg=\"no .env file found; using environment\"")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}
	if strings.TrimSpace(cfg.InternalAPIKey) == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"internal api key must be configured\" env=INTERNAL_API_KEY")
	}
	if strings.TrimSpace(cfg.GroqAPIKey) == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"inference api key must be configured\" env=GROQ_API_KEY")
	}

	log.Printf("level=info component=bootstrap msg=\"starting assistant-service\" port=%s model=%s", cfg.ServerPort, cfg.GroqModel)

	// Establish a connection pool to the PostgreSQL database.
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database url parse failed\" err=%v", err)
	}
	poolConfig.MaxConns = 50
	poolConfig.MinConns = 10
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	// Disable prepared statement caching to prevent conflicts
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database connection failed\" err=%v", err)
	}
	defer dbpool.Close()
	log.Println("level=info component=bootstrap msg=\"database connected\"")

	// Redis backs both the session store and the turn rate limiter, so it is
	// required for the service to boot.
	if strings.TrimSpace(cfg.RedisURL) == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"redis url must be configured\" env=REDIS_URL")
	}
	redisOptions, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"redis url parse failed\" err=%v", err)
	}
	redisClient := redis.NewClient(redisOptions)
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"redis ping failed\" err=%v", err)
	}
	defer redisClient.Close()
	log.Println("level=info component=bootstrap msg=\"redis connected\"")

	// Initialize the RabbitMQ producer for audit events. The service degrades
	// to a no-op publisher when the broker is unavailable.
	var events rabbitmq.Publisher
	rabbitProducer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
	if err != nil {
		log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; audit events disabled\" err=%v", err)
		events = &rabbitmq.NopPublisher{}
	} else {
		defer rabbitProducer.Close()
		events = rabbitProducer
		log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
	}

	// Initialize the provider API clients.
	monoClient := monoclient.NewClient(cfg.MonoAPIBaseURL, cfg.MonoAPIKey)
	groqClient := groqclient.NewClient(cfg.GroqAPIBaseURL, cfg.GroqAPIKey, cfg.GroqModel)

	var paystackClient *paystackclient.Client
	if strings.TrimSpace(cfg.PaystackSecretKey) == "" {
		log.Println("level=warn component=bootstrap msg=\"paystack key not configured; fallback account resolution disabled\"")
	} else {
		paystackClient = paystackclient.NewClient(cfg.PaystackBaseURL, cfg.PaystackSecretKey)
	}

	// Initialize the data access layer.
	repository := store.NewPostgresRepository(dbpool)
	sessions := store.NewRedisSessionStore(redisClient, cfg.RedisSessionPrefix, time.Duration(cfg.SessionTTLMinutes)*time.Minute)

	// Bank identity resolution: seed registry refreshed from the aggregator's
	// directory, primary verification via the aggregator, Paystack as fallback.
	registry := banks.NewRegistry(
		banks.NewMonoDirectory(monoClient),
		time.Duration(cfg.BankCacheTTLHours)*time.Hour,
		nil,
	)
	var fallback banks.FallbackVerifier
	if paystackClient != nil {
		fallback = paystackClient
	}
	resolver := banks.NewResolver(registry, monoClient, fallback)

	mandateManager := mandate.NewManager(repository, monoClient, cfg.MandateCorrectiveAddress)

	// Initialize the core conversational engine with its dependencies.
	assistantService := app.NewService(
		sessions,
		repository,
		groqClient,
		resolver,
		mandateManager,
		monoClient,
		events,
		time.Duration(cfg.ConfirmationWindowMin)*time.Minute,
		cfg.HistoryMaxMessages,
	)
	if cfg.TurnRateLimitPerMinute > 0 {
		assistantService.SetTurnRateLimiter(
			app.NewRedisTurnRateLimiter(redisClient, cfg.RedisRateLimitPrefix),
			cfg.TurnRateLimitPerMinute,
		)
	}

	// Initialize the API handlers and router.
	handlers := api.NewHandlers(assistantService, repository)
	router := api.AssistantRoutes(handlers, cfg.InternalAPIKey)

	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)

	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=http msg=\"shutdown started\"")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	log.Println("level=info component=http msg=\"shutdown complete\"")
}
