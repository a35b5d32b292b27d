package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/w1labs/atende/internal/bus"
	"github.com/w1labs/atende/internal/channels"
	"github.com/w1labs/atende/internal/channels/whatsapp"
	"github.com/w1labs/atende/internal/config"
	"github.com/w1labs/atende/internal/escalation"
	"github.com/w1labs/atende/internal/gateway"
	"github.com/w1labs/atende/internal/providers"
	"github.com/w1labs/atende/internal/router"
	"github.com/w1labs/atende/internal/telemetry"
)

func runServer() {
	// Setup structured logging
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	cfgPath := resolveConfigPath()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if !cfg.HasAnyProvider() {
		fmt.Println("No AI provider API key found.")
		fmt.Println()
		fmt.Println("Set ATENDE_OPENROUTER_API_KEY (or ATENDE_OPENAI_API_KEY),")
		fmt.Println("or run the setup wizard:  atende onboard")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional trace export
	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		slog.Error("telemetry setup failed", "error", err)
		os.Exit(1)
	}
	defer shutdownTelemetry(context.Background())

	msgBus := bus.New()

	providerRegistry := providers.NewRegistry()
	registerProviders(providerRegistry, cfg)

	store := escalation.NewStore()

	// Config watcher keeps escalation settings hot-reloadable
	watcher := config.NewWatcher(cfgPath, cfg)
	if err := watcher.Start(ctx); err != nil {
		slog.Warn("config watcher disabled", "error", err)
	}
	defer watcher.Stop()

	manager := channels.NewManager(msgBus)
	if cfg.Channels.WhatsApp.Enabled {
		wa, err := whatsapp.New(cfg.Channels.WhatsApp, msgBus)
		if err != nil {
			slog.Error("whatsapp channel setup failed", "error", err)
			os.Exit(1)
		}
		manager.RegisterChannel(wa)
	} else {
		slog.Warn("whatsapp channel disabled, set channels.whatsapp.enabled or ATENDE_BRIDGE_URL")
	}
	manager.StartAll(ctx)
	defer manager.StopAll()

	msgRouter := router.New(store, providerRegistry, msgBus, watcher.Escalation)
	go msgRouter.Run(ctx)

	server := gateway.NewServer(cfg.Gateway, store, manager)
	if err := server.Start(ctx); err != nil {
		slog.Error("gateway server failed", "error", err)
		os.Exit(1)
	}

	slog.Info("shutdown complete")
}
