package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xela07ax/ics-breach-sim/internal/console/handler"
	"github.com/xela07ax/ics-breach-sim/internal/console/server"
	"github.com/xela07ax/ics-breach-sim/internal/console/service"
	"github.com/xela07ax/ics-breach-sim/internal/infra"
	breach "github.com/xela07ax/ics-breach-sim/internal/signal"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "console",
	Short: "Remote breach control surface",
	Long:  "console serves POST /breach-control?target=<target>, which writes the breach flag into the shared store read by simd.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(configPath)
	},
}

func main() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config.yaml")
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(path string) error {
	// 1. Инициализация ресурсов
	cfg, err := infra.LoadConfig(path)
	if err != nil {
		return err
	}
	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Signal.Backend != infra.BackendRedis {
		// Пульт в отдельном процессе видит simd только через общий Redis
		logger.Warn("console runs with in-memory signal channel, simd will not see its signals",
			zap.String("backend", cfg.Signal.Backend))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	channel, rdb, err := breach.Open(ctx, *cfg, nil, logger)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// 2. Инициализация слоев (Dependency Injection)
	controlHandler := handler.NewControlHandler(
		service.NewControlService(channel, logger),
		handler.NewSignalLimiter(cfg.Console.SignalRPS, cfg.Console.SignalBurst),
	)

	// 3. Роутер: только пульт и health
	api := server.New(logger, server.Handlers{Control: controlHandler})

	// 4. Запуск сервера
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Console.Port),
		Handler:      api,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("remote control started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("remote control server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
