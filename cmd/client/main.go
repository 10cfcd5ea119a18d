package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/avelichko/revise/internal/adapter"
	"github.com/avelichko/revise/internal/client"
	"github.com/avelichko/revise/internal/config"
	"github.com/avelichko/revise/internal/identity"
	"github.com/avelichko/revise/internal/logger"
	"github.com/avelichko/revise/internal/service"
	"github.com/avelichko/revise/internal/store"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewClientLogger("revise-client")
	cfg, err := config.GetClientConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	tokens := identity.NewTokenSource()
	transport, err := adapter.NewHTTPTransport(cfg.Adapter, cfg.App, tokens, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create transport")
	}

	storages, err := store.NewClientStorages(cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create local storage")
	}

	services := service.NewClientServices(storages.KV, transport, log)

	app, err := client.NewApp(services, storages, cfg.Workers, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init client app error")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err = app.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("client run error")
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
