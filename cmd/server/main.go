package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/cart"
	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/catalog"
	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/checkout"
	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/httpapi"
	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/identity"
	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/session"
	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/pkg/logger"
)

type Config struct {
	HTTPPort        string
	MongoURI        string
	MongoDBName     string
	RedisAddr       string
	RedisPassword   string
	KafkaBrokers    []string
	SessionDump     bool
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "5000"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "DSPharmacy"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:    splitList(getEnv("KAFKA_BROKERS", "")),
		SessionDump:     getEnv("SESSION_DEBUG_ENDPOINT", "") == "true",
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, ",")
}

func main() {
	cfg := loadConfig()
	log := logger.New("storefront")
	ctx := context.Background()

	mongoDB, err := catalog.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer mongoDB.Client().Disconnect(ctx)
	log.Info("connected to MongoDB", "uri", cfg.MongoURI, "database", cfg.MongoDBName)

	if err := catalog.EnsureIndexes(ctx, mongoDB); err != nil {
		log.Error("failed to create indexes", "error", err)
		os.Exit(1)
	}

	gateway := catalog.NewMongoGateway(mongoDB)

	// Redis is an optional read-through product cache.
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Error("Redis connection failed", "error", err)
			os.Exit(1)
		}
		gateway = catalog.NewCachedGateway(gateway, redisClient, log)
		log.Info("product cache enabled", "addr", cfg.RedisAddr)
	}

	// Receipt events are optional as well.
	var publisher *checkout.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = checkout.NewPublisher(cfg.KafkaBrokers...)
		defer publisher.Close()
		log.Info("receipt events enabled", "brokers", cfg.KafkaBrokers)
	}

	directory := session.NewDirectory()
	api := httpapi.New(
		directory,
		identity.NewService(gateway, directory),
		cart.NewEngine(gateway),
		checkout.NewEngine(gateway, publisher, log),
		gateway,
		log,
		cfg.SessionDump,
	)
	if cfg.SessionDump {
		log.Warn("unauthenticated session dump endpoint is enabled; debug use only")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      api.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("storefront listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
	}
	log.Info("server exited")
}
