// File: fundimatch/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"fundimatch/config"
	"fundimatch/database/pool"
	signalstore "fundimatch/database/signal"
	"fundimatch/handlers"
	"fundimatch/middleware"
	"fundimatch/routes"
	"fundimatch/services/matching"
	"fundimatch/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	utils.InitSignalStore()
	gateway := signalstore.NewRedisGateway(utils.GetSignalClient(), config.AppConfig.MatchDefaultAvailable)

	buildEngine := func() (*matching.Engine, error) {
		cp, err := pool.LoadCSV(config.AppConfig.DatasetPath, logger)
		if err != nil {
			return nil, err
		}
		history, err := pool.LoadHistory(config.AppConfig.HistoryPath, logger)
		if err != nil {
			return nil, err
		}
		opts := matching.Options{
			Strategy:       config.AppConfig.MatchStrategy,
			TopK:           config.AppConfig.MatchTopK,
			RadiusKm:       config.AppConfig.MatchRadiusKm,
			PadResults:     config.AppConfig.MatchPadResults,
			TieBreak:       config.AppConfig.TieBreakKeys(),
			GatewayTimeout: time.Duration(config.AppConfig.GatewayTimeoutMs) * time.Millisecond,
		}
		return matching.NewEngine(opts, cp, history, gateway, logger)
	}

	// The engine is immutable once built; reloads build a fresh one and swap
	// the pointer, so requests already running keep their snapshot.
	var engineHolder atomic.Pointer[matching.Engine]
	engine, err := buildEngine()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to build matching engine: %v", err)
	}
	engineHolder.Store(engine)

	handlers.SetEngineProvider(engineHolder.Load)
	handlers.SetReloader(func() error {
		fresh, err := buildEngine()
		if err != nil {
			return err
		}
		engineHolder.Store(fresh)
		return nil
	})

	utils.StartHealthMonitor(utils.GetSignalClient())

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.RateLimitMiddleware())
	routes.RegisterRoutes(router)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s (strategy=%s)...", srv.Addr, engine.Strategy())
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
