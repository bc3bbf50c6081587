package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dscommerce-be/internal/api"
	"dscommerce-be/internal/auth"
	"dscommerce-be/internal/cache"
	"dscommerce-be/internal/category"
	"dscommerce-be/internal/config"
	"dscommerce-be/internal/db"
	"dscommerce-be/internal/logger"
	"dscommerce-be/internal/middleware"
	"dscommerce-be/internal/order"
	"dscommerce-be/internal/payment"
	"dscommerce-be/internal/payment/webhook"
	"dscommerce-be/internal/product"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var (
	initDBFunc      = db.InitDB
	startServerFunc = startServer
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// server is the wired application.
type server struct {
	handler  http.Handler
	payments payment.Service
	limiter  *middleware.RateLimiter
}

func newServer(cfg *config.Config, database *sql.DB, store cache.Store) *server {
	guard := auth.NewGuard()

	categorySvc := category.NewService(category.NewRepository(database))

	productRepo := product.NewCachedRepository(product.NewRepository(database), store, cfg.ProductCacheTTL)
	productSvc := product.NewService(productRepo, categorySvc, guard)

	orderSvc := order.NewService(order.NewRepository(database), guard)
	paymentSvc := payment.NewService(orderSvc)

	limiter := middleware.NewRateLimiter(cfg.InternalSecretKey)

	deps := api.Deps{
		Categories:    categorySvc,
		Products:      productSvc,
		Orders:        orderSvc,
		Authenticator: auth.NewTokenParser(cfg.JWTSecret),
		Limiter:       limiter,
		CORSOrigin:    cfg.CORSOrigin,
		DB:            database,
	}
	if cfg.PaymentWebhookToken != "" {
		deps.Webhook = webhook.NewWebhookHandler(paymentSvc, cfg.PaymentWebhookToken)
	}

	return &server{
		handler:  api.NewRouter(deps),
		payments: paymentSvc,
		limiter:  limiter,
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database := initDBFunc(cfg)
	defer database.Close()

	store := openCache(ctx, cfg)
	if c, ok := store.(*cache.RedisStore); ok {
		defer c.Close()
	}

	srv := newServer(cfg, database, store)
	go srv.limiter.Cleanup(ctx)

	if len(cfg.KafkaBrokers) > 0 {
		reader := payment.NewKafkaReader(cfg.KafkaBrokers, cfg.KafkaPaymentTopic, cfg.KafkaGroupID)
		consumer := payment.NewConsumer(reader, srv.payments)
		go func() {
			if err := consumer.Run(ctx); err != nil {
				logger.L().Error("payment consumer stopped", zap.Error(err))
			}
		}()
		logger.L().Info("payment consumer started",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaPaymentTopic),
		)
	}

	addr := ":" + cfg.AppPort
	logger.L().Info("HTTP server running", zap.String("addr", addr))
	return startServerFunc(ctx, addr, srv.handler)
}

// openCache connects to Redis when configured. The catalog works without a
// cache, so a failed connection only disables it.
func openCache(ctx context.Context, cfg *config.Config) cache.Store {
	if cfg.RedisAddr == "" {
		return cache.NopStore{}
	}

	store, err := cache.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		logger.L().Warn("product cache disabled", zap.Error(err))
		return cache.NopStore{}
	}
	return store
}

// startServer serves until ctx is canceled, then drains in-flight requests.
func startServer(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.L().Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
