package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-restaurant-bookings.git/internal/bookings"
	"github.com/ariefcatur/go-restaurant-bookings.git/internal/config"
	"github.com/ariefcatur/go-restaurant-bookings.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-restaurant-bookings.git/internal/kafka"
	"github.com/ariefcatur/go-restaurant-bookings.git/internal/postgres"
	"github.com/ariefcatur/go-restaurant-bookings.git/internal/redisx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, bookings.TopicBookingRequests, 1024, logger)
	prod.Start(ctx)

	// Repo & handler
	repo := &bookings.Repo{DB: db}
	router := httpx.NewRouter()
	bh := &httpx.BookingsHandler{
		Store:    repo,
		Producer: prod,
		Redis:    rdb,
		Service:  cfg.ServiceName,
	}
	bh.Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		logger.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	cancel()          // stop producer loop, flush sisa pesan
	prod.WaitClosed() // drain
}
