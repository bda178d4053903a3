package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ariefcatur/go-market-orders/internal/config"
	"github.com/ariefcatur/go-market-orders/internal/httpx"
	kafkax "github.com/ariefcatur/go-market-orders/internal/kafka"
	"github.com/ariefcatur/go-market-orders/internal/market"
	"github.com/ariefcatur/go-market-orders/internal/menu"
	"github.com/ariefcatur/go-market-orders/internal/orders"
	"github.com/ariefcatur/go-market-orders/internal/payments"
	"github.com/ariefcatur/go-market-orders/internal/postgres"
	"github.com/ariefcatur/go-market-orders/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("timezone")
	}

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderRecorded, 1024)
	prod.Start(ctx)

	// Stripe
	provider := payments.New(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	// Repos & handlers
	marketRepo := &market.Repo{DB: db}
	menuRepo := &menu.Repo{DB: db}
	orderRepo := &orders.Repo{DB: db}

	router := httpx.NewRouter(cfg.FrontendOrigin)
	(&httpx.MarketsHandler{Repo: marketRepo, Redis: rdb, Loc: loc}).Register(router)
	(&httpx.MenuHandler{Repo: menuRepo, Redis: rdb}).Register(router)
	(&httpx.OrdersHandler{Repo: orderRepo, Redis: rdb}).Register(router)
	(&httpx.PaymentsHandler{
		Menu:     menuRepo,
		Orders:   orderRepo,
		Provider: provider,
		Producer: prod,
		Redis:    rdb,
		Service:  cfg.ServiceName,
	}).Register(router)
	(&httpx.AdminHandler{Markets: marketRepo, Redis: rdb, Loc: loc, Secret: cfg.AdminSecret}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("tz", cfg.Timezone).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close() // close inbox -> flush & close writer
	cancel()
	prod.WaitClosed() // drain
}
