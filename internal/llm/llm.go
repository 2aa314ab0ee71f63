package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"feedbacktriage/internal/feedback"
)

const (
	defaultTimeout   = 30 * time.Second
	temperature      = 0.1
	maxOutputTokens  = 300
	openAIBaseURL    = "https://api.openai.com/v1"
	groqBaseURL      = "https://api.groq.com/openai/v1"
	anthropicBaseURL = "https://api.anthropic.com"
)

// Provider classifies feedback text through a remote model. Implementations
// differ only in endpoint, auth header shape and response envelope.
type Provider interface {
	// AnalyzeFeedback classifies both category and urgency.
	AnalyzeFeedback(ctx context.Context, text string) (feedback.Classification, error)
	// AnalyzeFeedbackWithCategory scores urgency only; the returned category
	// is always the supplied one, whatever the model echoes back.
	AnalyzeFeedbackWithCategory(ctx context.Context, text string, category feedback.Category) (feedback.Classification, error)
	Name() string
	Model() string
}

type Config struct {
	Provider string
	Model    string
	APIKey   string
	// BaseURL overrides the provider's default endpoint, for
	// OpenAI-compatible gateways and tests.
	BaseURL string
	Timeout time.Duration

	AzureEndpoint   string
	AzureDeployment string
	AzureAPIVersion string
}

// New builds the configured provider. Unknown names and missing credentials
// fail here, at construction, never at request time.
func New(cfg Config) (Provider, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	switch strings.ToLower(cfg.Provider) {
	case "openai":
		if cfg.APIKey == "" {
			return nil, &ConfigError{Reason: "openai provider requires an API key"}
		}
		model := cfg.Model
		if model == "" {
			model = "gpt-4"
		}
		base := cfg.BaseURL
		if base == "" {
			base = openAIBaseURL
		}
		return newChatClient("openai", base+"/chat/completions", bearerAuth(cfg.APIKey), model, model, timeout), nil

	case "groq":
		if cfg.APIKey == "" {
			return nil, &ConfigError{Reason: "groq provider requires an API key"}
		}
		model := cfg.Model
		if model == "" {
			model = "llama3-8b-8192"
		}
		base := cfg.BaseURL
		if base == "" {
			base = groqBaseURL
		}
		return newChatClient("groq", base+"/chat/completions", bearerAuth(cfg.APIKey), model, model, timeout), nil

	case "azure", "azure_openai":
		if cfg.APIKey == "" || cfg.AzureEndpoint == "" || cfg.AzureDeployment == "" {
			return nil, &ConfigError{Reason: "azure provider requires an API key, endpoint and deployment"}
		}
		apiVersion := cfg.AzureAPIVersion
		if apiVersion == "" {
			apiVersion = "2024-02-01"
		}
		url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
			strings.TrimRight(cfg.AzureEndpoint, "/"), cfg.AzureDeployment, apiVersion)
		// Azure routes by deployment; the payload carries no model field.
		return newChatClient("azure", url, map[string]string{"api-key": cfg.APIKey}, "", cfg.AzureDeployment, timeout), nil

	case "anthropic":
		if cfg.APIKey == "" {
			return nil, &ConfigError{Reason: "anthropic provider requires an API key"}
		}
		return newAnthropicClient(cfg, timeout), nil

	case "noop":
		return NewNoop(), nil

	default:
		return nil, &ConfigError{Reason: fmt.Sprintf("unsupported provider: %q", cfg.Provider)}
	}
}

func bearerAuth(apiKey string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + apiKey}
}
