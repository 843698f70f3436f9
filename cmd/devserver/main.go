// Package main runs the in-memory development stand-in for the
// SaveLook backend. Verification codes are logged instead of emailed.
package main

import (
	"flag"
	"net/http"

	"go.uber.org/zap"

	"github.com/eduarcas/savelook/internal/devserver"
	"github.com/eduarcas/savelook/internal/logger"
)

func main() {
	addr := flag.String("a", "localhost:8443", "listen address (ip:port)")
	level := flag.String("l", "info", "log level")
	flag.Parse()

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(*level); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	handler := &devserver.Handler{Store: devserver.NewStore(), Log: zapLogger}
	router := devserver.NewRouter(handler, zapLogger)

	zapLogger.Info("starting dev API server", zap.String("addr", *addr))
	if err := http.ListenAndServe(*addr, router); err != nil {
		zapLogger.Fatal("server failed", zap.Error(err))
	}
}
