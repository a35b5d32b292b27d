package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/titanous/json5"
)

// Fixed reply texts and the assistant persona, overridable via config.
const (
	DefaultAckMessage = "🔁 Sua solicitação foi enviada para um de nossos operadores. Por favor, aguarde."

	DefaultErrorMessage = "⚠️ Ocorreu um erro ao processar sua mensagem. Tente novamente mais tarde."

	DefaultSystemPrompt = `Você é uma assistente virtual especializada da W1 Consultoria. Sua missão é fornecer informações precisas e valiosas exclusivamente sobre os serviços da W1 Consultoria, com foco especial na criação e nos benefícios de uma holding.

Ao responder, adote sempre uma linguagem clara, técnica e profissional, como uma verdadeira especialista na área. Lembre-se de que a W1 Consultoria se destaca por descomplicar processos e oferecer soluções estratégicas para otimizar a gestão patrimonial e sucessória.

Formato da Resposta:

Inicie a resposta de forma acolhedora e profissional, saudando o usuário e reafirmando seu papel como assistente da W1.
Utilize títulos e subtítulos (com markdown ## e ###) quando a resposta for mais longa ou abordar múltiplos pontos para melhor organização.
Empregue listas com marcadores (bullet points) para destacar benefícios, etapas ou características importantes, tornando a leitura mais dinâmica e fácil de digerir.
Negrite (com markdown) os termos-chave e os nomes importantes (como 'holding', 'benefícios fiscais', 'sucessão patrimonial', 'W1 Consultoria') para chamar a atenção e reforçar a informação.
Mantenha os parágrafos concisos e focados, evitando blocos de texto muito longos.
Conclua a resposta reforçando o valor do contato humano com um especialista da W1 para análises personalizadas, convidando o usuário a dar o próximo passo de forma amigável e acessível.

Exclusividade do Conteúdo:

Se a pergunta do usuário estiver fora do escopo de atuação da W1 (ou seja, não estiver relacionada à criação de holdings, benefícios fiscais, sucessão patrimonial, estrutura societária ou aos serviços oferecidos pela W1), você deve responder de forma cortês: 'Este assunto está fora do meu domínio de especialização aqui na W1 Consultoria. Para obter informações detalhadas e personalizadas, sugiro fortemente que você entre em contato diretamente com um de nossos consultores humanos. Eles terão prazer em ajudar!'`
)

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Gateway: GatewayConfig{
			Host: "0.0.0.0",
			Port: 3000,
		},
		Channels: ChannelsConfig{
			WhatsApp: WhatsAppConfig{
				SendRate:  1,
				SendBurst: 3,
			},
		},
		Providers: ProvidersConfig{
			OpenRouter: ProviderConfig{
				APIBase: "https://openrouter.ai/api/v1",
				Model:   "anthropic/claude-sonnet-4-5-20250929",
			},
			OpenAI: ProviderConfig{
				Model: "gpt-4o-mini",
			},
		},
		Escalation: EscalationConfig{
			Keyword:           "humano",
			AckMessage:        DefaultAckMessage,
			ErrorMessage:      DefaultErrorMessage,
			SystemPrompt:      DefaultSystemPrompt,
			Provider:          "openrouter",
			CompletionTimeout: "60s",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "atende",
		},
	}
}

// Load reads config from a JSON5 file, then overlays env vars.
// A missing file is not an error: defaults plus env apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json5.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides overlays env vars onto the config.
// Env vars take precedence over file values.
func (c *Config) applyEnvOverrides() {
	envStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	envStr("ATENDE_OPENROUTER_API_KEY", &c.Providers.OpenRouter.APIKey)
	envStr("ATENDE_OPENROUTER_MODEL", &c.Providers.OpenRouter.Model)
	envStr("ATENDE_OPENAI_API_KEY", &c.Providers.OpenAI.APIKey)
	envStr("ATENDE_OPENAI_MODEL", &c.Providers.OpenAI.Model)

	envStr("ATENDE_BRIDGE_URL", &c.Channels.WhatsApp.BridgeURL)
	if c.Channels.WhatsApp.BridgeURL != "" {
		c.Channels.WhatsApp.Enabled = true
	}

	envStr("ATENDE_HOST", &c.Gateway.Host)
	if v := os.Getenv("ATENDE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			c.Gateway.Port = port
		}
	}
	if v := os.Getenv("ATENDE_ALLOWED_ORIGINS"); v != "" {
		c.Gateway.AllowedOrigins = strings.Split(v, ",")
	}

	envStr("ATENDE_ESCALATION_KEYWORD", &c.Escalation.Keyword)
	envStr("ATENDE_ESCALATION_PROVIDER", &c.Escalation.Provider)

	envStr("ATENDE_TELEMETRY_ENDPOINT", &c.Telemetry.Endpoint)
	envStr("ATENDE_TELEMETRY_PROTOCOL", &c.Telemetry.Protocol)
	if v := os.Getenv("ATENDE_TELEMETRY_ENABLED"); v != "" {
		c.Telemetry.Enabled = v == "true" || v == "1"
	}
}

// Save writes the config to a JSON file. Secrets are json:"-" tagged, so
// they never persist to disk.
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
