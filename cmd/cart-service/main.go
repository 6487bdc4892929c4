package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/digitaldudes/ottcart/internal/cartstore"
	"github.com/digitaldudes/ottcart/internal/catalog"
	"github.com/digitaldudes/ottcart/internal/checkout"
	"github.com/digitaldudes/ottcart/internal/config"
	h "github.com/digitaldudes/ottcart/internal/http"
	"github.com/digitaldudes/ottcart/internal/poller"
	"github.com/digitaldudes/ottcart/pkg/logger"
	"github.com/digitaldudes/ottcart/pkg/tracing"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const serviceName = "cart-service"

func main() {
	if err := run(); err != nil {
		slog.Error("cart service failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Service:   serviceName,
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, tracing.Options{
		ServiceName: serviceName,
		Env:         cfg.AppEnv,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		tctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(tctx); err != nil {
			log.Error("error shutting down tracer provider", slog.Any("err", err))
		}
	}()

	slots, closeSlots, err := openSlotStore(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSlots(); err != nil {
			log.Error("error closing cart storage", slog.Any("err", err))
		}
	}()

	products, err := catalog.NewRepository(cfg.CatalogPath)
	if err != nil {
		return err
	}
	defer products.Close()
	if err := products.RunMigrations(); err != nil {
		return err
	}

	registry := cartstore.NewRegistry(slots, cfg.Storage.SlotPrefix, cfg.Storage.SaveTimeout, log)

	var submitter checkout.Submitter
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		registry.RunEviction(ctx, cfg.Storage.EvictInterval, cfg.Storage.IdleTTL)
	}()
	if cfg.KafkaEnabled() {
		kafkaSubmitter := checkout.NewKafkaSubmitter(cfg.OrdersTopic, log, cfg.KafkaBrokers...)
		defer kafkaSubmitter.Close()
		submitter = kafkaSubmitter

		p := poller.NewPoller(registry, log, cfg.OutboxTopic, cfg.ConsumerGroup, cfg.KafkaBrokers...)
		defer p.Close()
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Run(ctx)
		}()
		log.Info("kafka enabled", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		submitter = checkout.NewLogSubmitter(log)
		log.Warn("no kafka brokers configured, orders are only logged")
	}
	checkoutService := checkout.NewService(registry, submitter, log)

	router := h.NewRouter(h.RouterConfig{
		Carts:       h.NewCartHandler(registry, products, cfg.RequestTimeout),
		Products:    h.NewProductHandler(products, cfg.RequestTimeout),
		Checkout:    h.NewCheckoutHandler(checkoutService, cfg.RequestTimeout),
		App:         h.NewAppHandler(cfg.LatestAppVersion),
		Logger:      log,
		Timeout:     cfg.RequestTimeout,
		ServiceName: serviceName,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	healthServer := health.NewServer()
	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	// Enable reflection for grpcurl/grpcui
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info("http server starting", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		log.Info("grpc health server starting", slog.String("addr", lis.Addr().String()))
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err := <-errCh:
		log.Error("server error", slog.Any("err", err))
		stop()
	}

	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", slog.Any("err", err))
	}
	grpcServer.GracefulStop()
	wg.Wait()

	if err := registry.Flush(shutdownCtx); err != nil {
		log.Error("failed to flush carts", slog.Any("err", err))
	}

	log.Info("cart service stopped")
	return nil
}
