package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-restaurant-bookings.git/internal/bookings"
	"github.com/ariefcatur/go-restaurant-bookings.git/internal/checker"
	"github.com/ariefcatur/go-restaurant-bookings.git/internal/config"
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

	// Producers: confirmed & rejected (dua topic berbeda). Context terpisah
	// supaya producer baru berhenti setelah consumer loop benar-benar selesai;
	// message in-flight masih boleh publish outcome saat shutdown.
	prodCtx, prodCancel := context.WithCancel(context.Background())
	pOK := kafkax.NewProducer(cfg.KafkaBrokers, bookings.TopicBookingConfirmed, 1024, logger)
	pOK.Start(prodCtx)
	pRJ := kafkax.NewProducer(cfg.KafkaBrokers, bookings.TopicBookingRejected, 1024, logger)
	pRJ.Start(prodCtx)

	// Service
	svc := &checker.Service{
		Store:          &bookings.Repo{DB: db},
		Redis:          rdb,
		ProducerOK:     pOK,
		ProducerReject: pRJ,
		Log:            logger,
		ServiceName:    cfg.ServiceName + "-checker",
	}

	// Consumer
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.BookingGroup, bookings.TopicBookingRequests, logger)

	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.Info("booking consumer started",
			zap.String("group", cfg.BookingGroup),
			zap.String("topic", bookings.TopicBookingRequests),
		)
		if err := cons.Start(ctx, svc.HandleBookingRequested); err != nil {
			logger.Error("consumer exit", zap.Error(err))
		}
	}()

	// graceful shutdown: stop fetch, biarkan message in-flight selesai dulu
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down consumer...")
	cancel()
	<-done
	prodCancel()
	pOK.WaitClosed()
	pRJ.WaitClosed()
}
