package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hakimbdev/tonstoremarketspot/internal/config"
	kafkax "github.com/hakimbdev/tonstoremarketspot/internal/kafka"
	"github.com/hakimbdev/tonstoremarketspot/internal/logx"
	"github.com/hakimbdev/tonstoremarketspot/internal/market"
	"github.com/hakimbdev/tonstoremarketspot/internal/postgres"
	"github.com/hakimbdev/tonstoremarketspot/internal/redisx"
	"github.com/hakimbdev/tonstoremarketspot/internal/settlement"
	"github.com/hakimbdev/tonstoremarketspot/internal/store"
)

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := logx.New(cfg.ServiceName+"-settlement", cfg.LogLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	prod := kafkax.NewProducer(cfg.KafkaBrokers, market.TopicOrderSettled, 1024)
	prod.Start(ctx)

	svc := &settlement.Service{
		Orders:      &store.OrderRepo{DB: db},
		Redis:       rdb,
		Producer:    prod,
		ServiceName: cfg.ServiceName + "-settlement",
	}

	group := getenv("SETTLEMENT_GROUP", "settlement-svc")
	workers := mustAtoi(os.Getenv("SETTLEMENT_WORKERS"), "8")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, market.TopicOrderCreated, workers)

	go func() {
		logger.Info("settlement consumer started",
			"group", group, "topic", market.TopicOrderCreated, "workers", workers)
		if err := cons.Start(ctx, svc.HandleOrderCreated); err != nil {
			logger.Error("consumer exit", "err", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down consumer")
	cancel()
	time.Sleep(500 * time.Millisecond)
	prod.Close()
	prod.WaitClosed()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
