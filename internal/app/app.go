// Package app связывает компоненты сервиса заказов: хранилище, Kafka-клиентов,
// доменный сервис, оркестратор саги и HTTP-серверы.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/antonrybakov/ordersaga/internal/domain"
	"github.com/antonrybakov/ordersaga/internal/health"
	ordersvc "github.com/antonrybakov/ordersaga/internal/service/order"
	"github.com/antonrybakov/ordersaga/internal/service/saga"
	httptransport "github.com/antonrybakov/ordersaga/internal/transport/http"
	"github.com/antonrybakov/ordersaga/internal/version"
)

const shutdownTimeout = 5 * time.Second

// Run поднимает сервис заказов и блокируется до отмены контекста
// либо фатальной ошибки HTTP-сервера.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	repo, store, err := initStorage(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer func() {
		if store != nil {
			if err := store.Close(); err != nil {
				logger.WithError(err).Warn("failed to close postgres store")
			}
		}
	}()

	var buyers domain.BuyerDirectory
	var products domain.ProductCatalog
	var clients *kafkaClients

	if cfg.KafkaBrokers != "" {
		clients, err = initKafkaClients(cfg.KafkaBrokers, cfg.KafkaGroupID, logger)
		if err != nil {
			return err
		}
		defer closeKafkaClients(clients, logger)
		if err := clients.consumer.Start(ctx); err != nil {
			return err
		}
		buyers = clients.buyers
		products = clients.products
	} else {
		logger.Warn("KAFKA_BROKERS not set, using in-memory buyer and product stubs")
		deps := NewDependencies(logger)
		buyers = deps.Buyers
		products = deps.Products
	}

	orderService := ordersvc.NewService(repo, buyers, products, logger.WithField("layer", "order"))
	orchestrator := saga.NewOrchestrator(orderService, products, logger.WithField("layer", "saga"))

	healthHandler := health.NewHandler(version.String())
	if store != nil {
		healthHandler.RegisterCheck("postgres", func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return store.Ping(checkCtx)
		})
	}

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	handler := httptransport.NewHandler(orchestrator, orderService, logger)
	apiSrv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httptransport.NewRouter(handler, healthHandler),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP сервер заказов слушает %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startMetricsServer запускает служебный HTTP-сервер с /metrics и health-эндпоинтами.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *health.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", health.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
