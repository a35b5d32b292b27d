package cmd

import (
	"log/slog"

	"github.com/w1labs/atende/internal/config"
	"github.com/w1labs/atende/internal/providers"
)

func registerProviders(registry *providers.Registry, cfg *config.Config) {
	if cfg.Providers.OpenRouter.APIKey != "" {
		pc := cfg.Providers.OpenRouter
		registry.Register(providers.NewOpenAIProvider("openrouter", pc.APIKey, pc.APIBase, pc.Model))
		slog.Info("registered provider", "name", "openrouter", "model", pc.Model)
	}

	if cfg.Providers.OpenAI.APIKey != "" {
		pc := cfg.Providers.OpenAI
		registry.Register(providers.NewOpenAIProvider("openai", pc.APIKey, pc.APIBase, pc.Model))
		slog.Info("registered provider", "name", "openai", "model", pc.Model)
	}

	if name := cfg.Escalation.Provider; name != "" {
		if err := registry.SetDefault(name); err != nil {
			slog.Warn("configured escalation provider not available", "name", name, "error", err)
		}
	}
}
