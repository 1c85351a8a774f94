package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tobikareem/desola-flights/internal/aggregator"
	"github.com/tobikareem/desola-flights/internal/background"
	"github.com/tobikareem/desola-flights/internal/cache"
	"github.com/tobikareem/desola-flights/internal/executor"
	"github.com/tobikareem/desola-flights/internal/handler"
	"github.com/tobikareem/desola-flights/internal/providers"
	"github.com/tobikareem/desola-flights/internal/ratelimit"
)

type Config struct {
	Port         string
	CacheEnabled bool
	RedisHost    string
	RedisPort    string
	MemoryTTL    time.Duration
	BlobTTL      time.Duration

	AttemptTimeout time.Duration
	MaxRetries     int

	AmadeusBaseURL      string
	AmadeusClientID     string
	AmadeusClientSecret string

	SkyscannerBaseURL string
	SkyscannerAPIKey  string
	SkyscannerAPIHost string
}

func main() {
	cfg := loadConfig()
	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	var blob cache.BlobStore
	if cfg.CacheEnabled {
		redisStore, err := cache.NewRedisStore(cache.RedisConfig{
			Host: cfg.RedisHost,
			Port: cfg.RedisPort,
		})
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		blob = redisStore
		log.Printf("Redis cache enabled (host: %s:%s)", cfg.RedisHost, cfg.RedisPort)
	} else {
		blob = cache.NewNoOpStore()
		log.Println("Durable cache disabled")
	}

	writer := background.NewWriter(0, 0)
	tier := cache.NewTwoTier(cache.TwoTierConfig{
		Blob:      blob,
		Writer:    writer,
		MemoryTTL: cfg.MemoryTTL,
		BlobTTL:   cfg.BlobTTL,
	})
	defer tier.Close()

	logos := cache.NewLogoIndex(cache.DefaultLogoTTL)

	registry := providers.NewRegistry()
	registry.Register(cache.WrapProvider(providers.NewAmadeusProvider(providers.AmadeusConfig{
		BaseURL:      cfg.AmadeusBaseURL,
		ClientID:     cfg.AmadeusClientID,
		ClientSecret: cfg.AmadeusClientSecret,
		Raw:          tier,
	}), tier))
	registry.Register(cache.WrapProvider(providers.NewSkyscannerProvider(providers.SkyscannerConfig{
		BaseURL: cfg.SkyscannerBaseURL,
		APIKey:  cfg.SkyscannerAPIKey,
		APIHost: cfg.SkyscannerAPIHost,
		Raw:     tier,
		Logos:   logos,
	}), tier))
	log.Printf("Registered %d flight providers", len(registry.Names()))

	rateLimiter := ratelimit.NewProviderLimiterWithDefaults()
	rateLimiter.SetProviderLimit("amadeus", 10, 20)
	rateLimiter.SetProviderLimit("skyscanner", 5, 10)

	exec := executor.New(executor.Config{
		MaxRetries:     cfg.MaxRetries,
		AttemptTimeout: cfg.AttemptTimeout,
	}, executor.NewStats())

	agg := aggregator.New(registry, exec, logos, aggregator.Config{
		Providers:   []string{"amadeus", "skyscanner"},
		RateLimiter: rateLimiter,
	})

	searchHandler := handler.NewSearchHandler(agg)

	api := e.Group("/api/v1")
	api.POST("/flights/search", searchHandler.Search)
	api.GET("/flights/stats", searchHandler.Stats)
	e.GET("/health", handler.HealthHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	log.Printf("Starting flight aggregation server on port %s", cfg.Port)

	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func loadConfig() Config {
	return Config{
		Port:         getEnv("PORT", "8080"),
		CacheEnabled: getEnvBool("CACHE_ENABLED", true),
		RedisHost:    getEnv("REDIS_HOST", "localhost"),
		RedisPort:    getEnv("REDIS_PORT", "6379"),
		MemoryTTL:    getEnvDuration("MEMORY_CACHE_TTL", 6*time.Hour),
		BlobTTL:      getEnvDuration("DURABLE_CACHE_TTL", 12*time.Hour),

		AttemptTimeout: getEnvDuration("PROVIDER_TIMEOUT", executor.DefaultAttemptTimeout),
		MaxRetries:     getEnvInt("PROVIDER_MAX_RETRIES", executor.DefaultMaxRetries),

		AmadeusBaseURL:      getEnv("AMADEUS_BASE_URL", "https://test.api.amadeus.com"),
		AmadeusClientID:     getEnv("AMADEUS_CLIENT_ID", ""),
		AmadeusClientSecret: getEnv("AMADEUS_CLIENT_SECRET", ""),

		SkyscannerBaseURL: getEnv("SKYSCANNER_BASE_URL", "https://sky-scanner3.p.rapidapi.com"),
		SkyscannerAPIKey:  getEnv("SKYSCANNER_API_KEY", ""),
		SkyscannerAPIHost: getEnv("SKYSCANNER_API_HOST", "sky-scanner3.p.rapidapi.com"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
