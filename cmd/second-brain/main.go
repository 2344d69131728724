package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ternarybob/arbor"

	"github.com/Morningstar-08/second-brain/internal/app"
	"github.com/Morningstar-08/second-brain/internal/common"
)

var (
	configPath  = flag.String("config", "", "Configuration file path")
	showVersion = flag.Bool("version", false, "Print version information")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("Second Brain version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Startup sequence: config, logger, banner, then wiring
	path := *configPath
	if path == "" {
		if _, err := os.Stat("second-brain.toml"); err == nil {
			path = "second-brain.toml"
		}
	}

	config, err := common.LoadConfig(path)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Err(err).Str("path", path).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}
	defer application.Close()

	logger.Info().
		Str("version", common.GetVersion()).
		Str("environment", config.Environment).
		Msg("Second Brain started")

	// Block until shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	cancel()
}
