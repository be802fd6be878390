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

	"github.com/vendinglab/vending-machine/internal/auth"
	"github.com/vendinglab/vending-machine/internal/config"
	"github.com/vendinglab/vending-machine/internal/httpx"
	kafkax "github.com/vendinglab/vending-machine/internal/kafka"
	"github.com/vendinglab/vending-machine/internal/postgres"
	"github.com/vendinglab/vending-machine/internal/redisx"
	"github.com/vendinglab/vending-machine/internal/users"
	"github.com/vendinglab/vending-machine/internal/vending"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("db schema: %v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers
	deposits := kafkax.NewProducer(cfg.KafkaBrokers, vending.TopicDeposits, 1024)
	deposits.Start(ctx)
	purchases := kafkax.NewProducer(cfg.KafkaBrokers, vending.TopicPurchases, 1024)
	purchases.Start(ctx)

	// Rehydrate the aggregate from the last snapshot
	store := &postgres.MachineStore{DB: db}
	machine, err := store.Load(ctx, cfg.MachineID)
	if err != nil {
		log.Fatalf("machine load: %v", err)
	}
	machineSvc := vending.NewService(machine, store)

	userSvc := users.NewService(&postgres.UserRepo{DB: db}, machineSvc)
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authMW := httpx.Authenticate(issuer)

	router := httpx.NewRouter()
	(&httpx.AuthHandler{Users: userSvc, Issuer: issuer}).Register(router)
	(&httpx.UserHandler{Users: userSvc, Auth: authMW}).Register(router)
	(&httpx.ProductHandler{Machine: machineSvc, Auth: authMW}).Register(router)
	(&httpx.MachineHandler{
		Machine:   machineSvc,
		Redis:     rdb,
		Deposits:  deposits,
		Purchases: purchases,
		Service:   cfg.ServiceName,
		Auth:      authMW,
	}).Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	deposits.Close() // close inbox -> flush & close writer
	purchases.Close()
	cancel() // stop producer loops
	deposits.WaitClosed()
	purchases.WaitClosed()
}
