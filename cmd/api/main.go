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

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"minishop/internal/cart"
	"minishop/internal/config"
	"minishop/internal/db"
	"minishop/internal/httpserver"
	"minishop/internal/notify"
	"minishop/internal/repository/cartstore"
	productrepo "minishop/internal/repository/product"
	"minishop/internal/seed"
	checkoutsvc "minishop/internal/service/checkout"
	productsvc "minishop/internal/service/product"
	"minishop/internal/upload"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	gin.SetMode(gin.ReleaseMode)

	ctx := context.Background()

	var dbpool *pgxpool.Pool
	if cfg.DBConnString != "" {
		var err error
		dbpool, err = db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			logger.Fatalf("connect to db: %v", err)
		}
		defer dbpool.Close()
	} else {
		logger.Printf("DB_DSN not set, using in-memory catalog")
	}

	var productRepo productrepo.Repository
	if dbpool != nil {
		productRepo = productrepo.NewPostgres(dbpool, logger)
	} else {
		productRepo = productrepo.NewMemory()
		if n, err := seed.Fill(ctx, productRepo); err != nil {
			logger.Printf("seed in-memory catalog: %v", err)
		} else {
			logger.Printf("seeded in-memory catalog with %d products", n)
		}
	}
	productService := productsvc.New(productRepo)

	store, closeStore, err := openCartStore(ctx, cfg, dbpool, logger)
	if err != nil {
		logger.Fatalf("open cart store: %v", err)
	}
	defer closeStore()

	hub := notify.NewHub(32)
	sinks := []cart.Sink{notify.NewLogSink(logger), hub}
	if cfg.NATSURL != "" {
		nc, err := notify.ConnectNATS(cfg.NATSURL)
		if err != nil {
			logger.Fatalf("connect nats: %v", err)
		}
		defer nc.Drain()
		sinks = append(sinks, notify.NewNATSPublisher(nc, cfg.NATSSubject))
		logger.Printf("publishing cart notifications to %s", cfg.NATSSubject)
	}

	provider := cart.NewProvider(store, logger, sinks...)
	provider.Start(ctx)
	defer provider.Close()

	deps := httpserver.Deps{
		ProductSvc:    productService,
		Cart:          provider,
		CheckoutSvc:   checkoutsvc.New(provider),
		Uploads:       upload.NewStore(cfg.UploadDir),
		Notifications: hub,
		CORSOrigins:   cfg.CORSOrigins,
	}
	if dbpool != nil {
		deps.DB = dbpool
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, deps)
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
	if dropped := hub.Dropped(); dropped > 0 {
		logger.Printf("notification hub dropped %d deliveries to slow subscribers", dropped)
	}
}

func openCartStore(ctx context.Context, cfg config.Config, pool *pgxpool.Pool, logger *log.Logger) (cart.Store, func(), error) {
	noop := func() {}
	switch cfg.CartStore {
	case config.CartStoreMemory:
		return cartstore.NewMemory(), noop, nil
	case config.CartStorePostgres:
		if pool == nil {
			return nil, noop, errors.New("CART_STORE=postgres requires DB_DSN")
		}
		return cartstore.NewPostgres(pool, cfg.CartKey, logger), noop, nil
	case config.CartStoreRedis:
		client, err := db.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, noop, err
		}
		logger.Printf("cart stored in redis at %s key=%s", cfg.RedisAddr, cfg.CartKey)
		return cartstore.NewRedis(client, cfg.CartKey), func() { closeRedis(client, logger) }, nil
	default:
		return nil, noop, fmt.Errorf("unknown CART_STORE %q", cfg.CartStore)
	}
}

func closeRedis(client *redis.Client, logger *log.Logger) {
	if err := client.Close(); err != nil {
		logger.Printf("close redis: %v", err)
	}
}
