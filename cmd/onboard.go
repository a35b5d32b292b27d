package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/w1labs/atende/internal/config"
)

func onboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "onboard",
		Short: "Interactive setup wizard",
		Run: func(cmd *cobra.Command, args []string) {
			runOnboard()
		},
	}
}

func runOnboard() {
	cfg := config.Default()

	provider := "openrouter"
	apiKey := ""
	model := ""
	bridgeURL := "ws://localhost:3001"
	keyword := cfg.Escalation.Keyword

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("AI provider").
				Description("OpenAI-compatible endpoint used for automatic replies").
				Options(
					huh.NewOption("OpenRouter", "openrouter"),
					huh.NewOption("OpenAI", "openai"),
				).
				Value(&provider),
			huh.NewInput().
				Title("API key").
				Description("Kept in your environment, never written to config.json").
				EchoMode(huh.EchoModePassword).
				Value(&apiKey).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("API key is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Model").
				Description("Leave empty for the provider default").
				Value(&model),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("WhatsApp bridge URL").
				Description("WebSocket address of the whatsapp-web.js bridge process").
				Value(&bridgeURL),
			huh.NewInput().
				Title("Escalation keyword").
				Description("Messages containing this word go to the human queue").
				Value(&keyword),
		),
	)

	if err := form.Run(); err != nil {
		fmt.Println("Setup cancelled.")
		os.Exit(1)
	}

	cfg.Escalation.Provider = provider
	if model != "" {
		switch provider {
		case "openrouter":
			cfg.Providers.OpenRouter.Model = model
		case "openai":
			cfg.Providers.OpenAI.Model = model
		}
	}
	if bridgeURL != "" {
		cfg.Channels.WhatsApp.Enabled = true
		cfg.Channels.WhatsApp.BridgeURL = bridgeURL
	}
	if keyword != "" {
		cfg.Escalation.Keyword = keyword
	}

	cfgPath := resolveConfigPath()
	if err := config.Save(cfgPath, cfg); err != nil {
		fmt.Printf("Failed to write %s: %v\n", cfgPath, err)
		os.Exit(1)
	}

	envKey := fmt.Sprintf("ATENDE_%s_API_KEY", strings.ToUpper(provider))

	fmt.Println()
	fmt.Printf("Config written to %s\n", cfgPath)
	fmt.Println()
	fmt.Println("Export your API key and start the gateway:")
	fmt.Println()
	fmt.Printf("  export %s=%s\n", envKey, apiKey)
	fmt.Println("  atende serve")
}
