// Package main starts the interactive SaveLook client: configuration,
// logging, session store, API client, location acquisition and the
// screen flow.
package main

import (
	"cmp"
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/eduarcas/savelook/internal/api"
	"github.com/eduarcas/savelook/internal/app"
	"github.com/eduarcas/savelook/internal/auth"
	"github.com/eduarcas/savelook/internal/config"
	"github.com/eduarcas/savelook/internal/locate"
	"github.com/eduarcas/savelook/internal/logger"
	"github.com/eduarcas/savelook/internal/session"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	options := config.Parse()

	fmt.Printf("SaveLook %s (%s)\n", cmp.Or(version, "dev"), cmp.Or(buildDate, "N/A"))

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	// Durable session backing per configuration.
	var backend session.Backend
	switch options.SessionBackend {
	case "sqlite":
		sq, err := session.OpenSQLiteBackend(options.SessionDSN)
		if err != nil {
			zapLogger.Fatal("cannot open session database", zap.Error(err))
		}
		defer sq.Close()
		backend = sq
	case "file":
		backend = session.NewFileBackend(options.SessionFile)
	default:
		zapLogger.Fatal("unknown session backend", zap.String("backend", options.SessionBackend))
	}

	store := session.NewStore(backend, zapLogger)
	client := api.New(options.BaseURL, zapLogger)
	authSvc := auth.NewService(client, store, zapLogger)
	acquirer := locate.NewAcquirer(locate.NewIPProvider(zapLogger), zapLogger)

	a := app.New(client, store, authSvc, acquirer, zapLogger)
	if err := a.Run(context.Background()); err != nil {
		zapLogger.Error("app terminated", zap.Error(err))
		os.Exit(1)
	}
}
