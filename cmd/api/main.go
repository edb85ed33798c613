package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hakimbdev/tonstoremarketspot/internal/auth"
	"github.com/hakimbdev/tonstoremarketspot/internal/config"
	kafkax "github.com/hakimbdev/tonstoremarketspot/internal/kafka"
	"github.com/hakimbdev/tonstoremarketspot/internal/logx"
	"github.com/hakimbdev/tonstoremarketspot/internal/market"
	"github.com/hakimbdev/tonstoremarketspot/internal/postgres"
	"github.com/hakimbdev/tonstoremarketspot/internal/redisx"
	"github.com/hakimbdev/tonstoremarketspot/internal/server"
	"github.com/hakimbdev/tonstoremarketspot/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logx.New(cfg.ServiceName, cfg.LogLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, market.TopicOrderCreated, 1024)
	prod.Start(ctx)

	// Auth & guard
	authSvc := &auth.Service{
		Admins:   &store.AdminRepo{DB: db},
		Users:    &store.UserRepo{DB: db},
		Redis:    rdb,
		BotToken: cfg.TelegramBotToken,
	}
	guard := server.Guard{Sessions: authSvc}

	// Handlers
	router := server.NewRouter()
	(&server.ProductsHandler{Products: &store.ProductRepo{DB: db}, Guard: guard}).Register(router)
	(&server.OrdersHandler{
		Orders:   &store.OrderRepo{DB: db},
		Producer: prod,
		Redis:    rdb,
		Guard:    guard,
		Service:  cfg.ServiceName,
	}).Register(router)
	(&server.AdminHandler{Auth: authSvc, Guard: guard}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close() // close inbox -> flush & close writer
	cancel()     // stop producer loop
	prod.WaitClosed()
}
