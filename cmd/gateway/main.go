package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vitwit/paygate"
	"github.com/vitwit/paygate/logger"
	"github.com/vitwit/paygate/metrics"
	"github.com/vitwit/paygate/types"
	"github.com/vitwit/paygate/verification"
)

func main() {
	configPath := flag.String("config", "", "location of config file. If none is specified config is loaded from the environment")
	flag.Parse()

	var (
		cfg Config
		err error
	)
	if *configPath != "" {
		log.Printf("loading config from file %q\n", *configPath)
		err = cfg.Load(*configPath)
	} else {
		log.Println("loading config from env")
		err = cfg.LoadFromEnv()
	}
	if err != nil {
		log.Println(err)
		os.Exit(1)
	}

	var zlog logger.Logger
	if cfg.Mode == "development" {
		zlog = logger.NewZapDevelopmentLogger(cfg.LogLevel)
	} else {
		zlog = logger.NewZapLogger(cfg.LogLevel)
	}

	network := types.Network(cfg.Network)

	opts := []paygate.Option{
		paygate.WithLogger(zlog),
		paygate.WithMetrics(metrics.NewPrometheusRecorder()),
		paygate.WithMode(verification.Mode(cfg.Mode)),
	}
	if cfg.CacheSize > 0 {
		opts = append(opts, paygate.WithCache(cfg.CacheSize, time.Duration(cfg.CacheTTLMinutes)*time.Minute))
	}
	if len(cfg.DemoAllowList) > 0 {
		opts = append(opts, paygate.WithDemoBypass(cfg.DemoAllowList))
	}

	gate := paygate.New(opts...)
	defer gate.Close()

	if err := gate.AddNetwork(network, cfg.RPCURL); err != nil {
		zlog.Error("failed to add network", map[string]any{"network": cfg.Network, "error": err.Error()})
		os.Exit(1)
	}

	eth, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		zlog.Error("failed to connect to RPC", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer eth.Close()

	h, err := newHandlers(cfg, eth, zlog)
	if err != nil {
		zlog.Error("handler setup failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	balanceGate, err := gate.GateFor(types.PaymentRequirement{
		Recipient: cfg.Recipient,
		Amount:    cfg.priceFor("balance"),
		Currency:  cfg.Currency,
		Network:   network,
	})
	if err != nil {
		zlog.Error("gate setup failed", map[string]any{"route": "balance", "error": err.Error()})
		os.Exit(1)
	}

	tokenBalanceGate, err := gate.GateFor(types.PaymentRequirement{
		Recipient: cfg.Recipient,
		Amount:    cfg.priceFor("token-balance"),
		Currency:  cfg.Currency,
		Network:   network,
	})
	if err != nil {
		zlog.Error("gate setup failed", map[string]any{"route": "token-balance", "error": err.Error()})
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.With(balanceGate).Get("/v1/balance/{address}", h.handleBalance)
	r.With(tokenBalanceGate).Get("/v1/token-balance/{address}", h.handleTokenBalance)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		zlog.Info("gateway listening", map[string]any{
			"port":    cfg.Port,
			"network": cfg.Network,
			"mode":    cfg.Mode,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("server error", map[string]any{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("shutdown error", map[string]any{"error": err.Error()})
	}
}
