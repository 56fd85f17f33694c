package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itchan-dev/tunetag/internal/mockapi"
	"github.com/itchan-dev/tunetag/shared/config"
	"github.com/itchan-dev/tunetag/shared/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	readTimeout     = 10 * time.Second
	writeTimeout    = 5 * time.Minute // uploads stream through the same server
	shutdownTimeout = 10 * time.Second
)

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "config", "path to folder with configs")
	flag.Parse()
	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.Log.Level, cfg.Public.Log.JSON)
	mockCfg := cfg.Public.MockAPI

	objects, err := mockapi.NewObjects(mockCfg.StoragePath)
	if err != nil {
		logger.Log.Error("failed to open object storage", "path", mockCfg.StoragePath, "error", err)
		os.Exit(1)
	}
	backend := mockapi.NewBackend(objects)
	router := mockapi.NewRouter(mockapi.NewHandler(backend), mockCfg.AllowedOrigins)

	server := &http.Server{
		Addr:         mockCfg.Addr,
		Handler:      router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	if mockCfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			logger.Log.Info("serving metrics", "addr", mockCfg.MetricsAddr)
			if err := http.ListenAndServe(mockCfg.MetricsAddr, mux); err != nil {
				logger.Log.Error("metrics server stopped", "error", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("shutdown failed", "error", err)
		}
	}()

	logger.Log.Info("starting mock API", "addr", server.Addr, "storage", mockCfg.StoragePath)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
