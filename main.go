package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-service/apperrors"
	"storefront-service/clients"
	"storefront-service/config"
	"storefront-service/controllers"
	"storefront-service/database"
	"storefront-service/kafka"
	"storefront-service/logger"
	"storefront-service/middleware"
	aws_pkg "storefront-service/pkg/aws"
	"storefront-service/routes"
	"storefront-service/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const serviceName = "storefront-service"

func main() {
	cfg := config.Load()

	log := logger.Initialize(cfg.Env)
	defer func() { _ = log.Sync() }()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- Session store ---
	var (
		store       database.KVStore
		redisClient *redis.Client
	)
	switch cfg.StoreDriver {
	case "memory":
		log.Warn("Using in-memory session store; state is lost on restart")
		store = database.NewMemoryKVStore()
	default:
		var err error
		redisClient, err = database.NewRedisClient(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatal("Redis connection failed", zap.Error(err))
		}
		store = database.NewRedisKVStore(redisClient, "storefront:", cfg.SessionTTL)
		log.Info("Connected to Redis")
	}

	// --- Checkout events ---
	var (
		publisher services.CheckoutPublisher = services.NoopPublisher{}
		producer  *kafka.Producer
	)
	switch cfg.EventDriver {
	case "kafka":
		producer = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		publisher = producer
		log.Info("Publishing checkout events to Kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	case "sns":
		awsCfg, err := aws_pkg.LoadAWSConfig(context.Background())
		if err != nil {
			log.Fatal("Failed to load AWS config", zap.Error(err))
		}
		if cfg.CheckoutSNSTopicARN == "" {
			log.Fatal("CHECKOUT_SNS_TOPIC_ARN is required when EVENT_DRIVER=sns")
		}
		publisher = services.NewSNSCheckoutPublisher(aws_pkg.NewSNSClient(awsCfg), cfg.CheckoutSNSTopicARN)
		log.Info("Publishing checkout events to SNS", zap.String("topic_arn", cfg.CheckoutSNSTopicARN))
	}

	// --- Dependency injection ---
	api := clients.NewRestaurantClient(cfg.RestaurantAPIURL, cfg.UpstreamTimeout, log)
	cartService := services.NewCartService(store, api, cfg.RestaurantAPIURL, cfg.TaxRate, log)
	tokenGuard := services.NewTokenGuard(store, api, log)
	sessionService := services.NewSessionService(store, api, log)
	catalogService := services.NewCatalogService(api, log)
	checkoutService := services.NewCheckoutService(api, cartService, tokenGuard, sessionService, publisher, log)

	// --- HTTP router ---
	rootCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	limiter := middleware.NewRateLimiter(middleware.PerMinute(cfg.RateLimitPerMinute), cfg.RateLimitBurst, 5*time.Minute)
	go limiter.Cleanup(rootCtx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.RateLimitMiddleware(limiter))
	r.Use(middleware.Timeout(cfg.UpstreamTimeout + 5*time.Second))
	r.Use(apperrors.ErrorMiddleware())

	r.GET("/health", middleware.Health(serviceName))

	routes.RegisterRoutes(r, routes.Controllers{
		Cart:  controllers.NewCartController(cartService),
		Auth:  controllers.NewAuthController(sessionService, tokenGuard),
		Menu:  controllers.NewMenuController(catalogService),
		Order: controllers.NewOrderController(checkoutService),
	}, middleware.Session(middleware.SessionOptions{TTL: cfg.SessionTTL, Secure: cfg.CookieSecure}))

	// --- HTTP server ---
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Info("Storefront Service started", zap.String("port", cfg.Port), zap.String("upstream", cfg.RestaurantAPIURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Initiating graceful shutdown...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}
	stopBackground()

	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Error("Kafka producer close error", zap.Error(err))
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Redis close error", zap.Error(err))
		}
	}

	log.Info("Storefront Service stopped gracefully")
}
