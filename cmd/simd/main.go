package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/xela07ax/ics-breach-sim/internal/console/handler"
	"github.com/xela07ax/ics-breach-sim/internal/console/server"
	"github.com/xela07ax/ics-breach-sim/internal/console/service"
	"github.com/xela07ax/ics-breach-sim/internal/engine"
	"github.com/xela07ax/ics-breach-sim/internal/infra"
	"github.com/xela07ax/ics-breach-sim/internal/notify"
	breach "github.com/xela07ax/ics-breach-sim/internal/signal"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "simd",
	Short: "ICS breach simulator dashboards host",
	Long:  "simd hosts the grid, airport, train and oil rig dashboards, polls the breach signal channel and serves the dashboards API.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(configPath)
	},
}

func main() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config.yaml (default: ./config.yaml or ./configs/config.yaml)")
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(path string) error {
	// 1. Конфиг и логгер
	cfg, err := infra.LoadConfig(path)
	if err != nil {
		return err
	}
	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// Контекст жизненного цикла фоновых горутин. SIGINT/SIGTERM его отменяют
	appCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Метрики
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// 2. Канал сигналов (memory или redis за Circuit Breaker)
	channel, rdb, err := breach.Open(appCtx, *cfg, breach.NewMetrics(reg), logger)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// 3. Лента тостов и websocket hub
	notifyMetrics := notify.NewMetrics(reg)
	hub := notify.NewHub(notifyMetrics, logger)
	feed := notify.NewFeed(cfg.Engine.NotificationBuffer, cfg.Engine.NotificationHistory, notifyMetrics, logger, hub)
	feed.Start()
	defer feed.Stop()

	// 4. Дашборды и планировщик
	registry, err := engine.NewRegistry(cfg.Engine, cfg.Signal.PollInterval, channel, feed, engine.NewMetrics(reg), logger)
	if err != nil {
		return err
	}

	healthSrv := health.NewServer()
	registry.Observe(engine.HealthObserver(healthSrv))
	registry.Observe(hub.PublishState)

	sched := engine.NewScheduler(nil, logger)
	registry.Attach(sched)

	bgDone := make(chan struct{})
	go func() {
		defer close(bgDone)
		if err := sched.Run(appCtx); err != nil {
			logger.Error("scheduler stopped with error", zap.Error(err))
		}
	}()
	go hub.Run(appCtx)

	// Pub/Sub пробуждения: внеочередной опрос вместо ожидания интервала
	if rdb != nil {
		go breach.ListenWakeups(appCtx, rdb, logger, registry.Wake)
	}

	// 5. HTTP: дашборды, пульт, websocket
	api := server.New(logger, server.Handlers{
		Dashboards: handler.NewDashboardHandler(service.NewDashboardService(registry, feed, logger)),
		Control: handler.NewControlHandler(
			service.NewControlService(channel, logger),
			handler.NewSignalLimiter(cfg.Console.SignalRPS, cfg.Console.SignalBurst),
		),
		Stream: hub.ServeWS,
	})
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	var metricsSrv *http.Server
	if cfg.Metrics.Port > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{Addr: fmt.Sprintf(":%d", cfg.Metrics.Port), Handler: mux}
		go serveHTTP(metricsSrv, "metrics", logger, stop)
	}

	// 6. gRPC health: SERVING в Normal, NOT_SERVING при взломе
	var grpcSrv *grpc.Server
	if cfg.GRPC.Port > 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPC.Port))
		if err != nil {
			return fmt.Errorf("listen gRPC: %w", err)
		}
		grpcSrv = grpc.NewServer()
		healthpb.RegisterHealthServer(grpcSrv, healthSrv)
		go func() {
			logger.Info("gRPC health server started", zap.String("addr", lis.Addr().String()))
			if err := grpcSrv.Serve(lis); err != nil {
				logger.Error("gRPC server failed", zap.Error(err))
				stop()
			}
		}()
	}

	go serveHTTP(srv, "dashboards", logger, stop)

	// 7. Graceful Shutdown
	<-appCtx.Done()
	logger.Info("simd stopping...")

	// Даем 5 секунд на завершение запросов
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("dashboards server shutdown failed", zap.Error(err))
	}
	if metricsSrv != nil {
		metricsSrv.Shutdown(shutdownCtx)
	}
	if grpcSrv != nil {
		healthSrv.Shutdown()
		grpcSrv.GracefulStop()
	}

	registry.Detach()
	<-bgDone
	logger.Info("simd exited properly")
	return nil
}

func serveHTTP(srv *http.Server, name string, logger *zap.Logger, stop context.CancelFunc) {
	logger.Info("http server started", zap.String("server", name), zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", zap.String("server", name), zap.Error(err))
		stop()
	}
}
