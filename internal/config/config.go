package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Dev struct {
		Mode bool `yaml:"mode"`
	} `yaml:"dev"`
	Database struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`
	Redis struct {
		URL string `yaml:"url"`
	} `yaml:"redis"`
	LLM struct {
		Provider        string        `yaml:"provider"`
		Model           string        `yaml:"model"`
		Timeout         time.Duration `yaml:"timeout"`
		OpenAIKey       string        `yaml:"openai_key"`
		AnthropicKey    string        `yaml:"anthropic_key"`
		GroqKey         string        `yaml:"groq_key"`
		AzureKey        string        `yaml:"azure_key"`
		AzureEndpoint   string        `yaml:"azure_endpoint"`
		AzureDeployment string        `yaml:"azure_deployment"`
		AzureAPIVersion string        `yaml:"azure_api_version"`
	} `yaml:"llm"`
	RateLimit struct {
		Calls  int           `yaml:"calls"`
		Period time.Duration `yaml:"period"`
	} `yaml:"rate_limit"`
	Validation struct {
		MinLength int `yaml:"min_length"`
		MaxLength int `yaml:"max_length"`
	} `yaml:"validation"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

func Default() Config {
	var cfg Config
	cfg.HTTP.Addr = ":8090"
	cfg.Dev.Mode = true
	cfg.LLM.Provider = "noop"
	cfg.LLM.Timeout = 30 * time.Second
	cfg.RateLimit.Calls = 60
	cfg.RateLimit.Period = 60 * time.Second
	cfg.Validation.MinLength = 10
	cfg.Validation.MaxLength = 1000
	cfg.Log.Level = "info"
	return cfg
}

func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, err
			}
		} else {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, err
			}
		}
	}

	applyEnv(&cfg)

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("FT_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("FT_DEV_MODE"); v != "" {
		cfg.Dev.Mode = parseBool(v, cfg.Dev.Mode)
	}
	if v := os.Getenv("FT_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("FT_REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("FT_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("FT_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("FT_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.LLM.Timeout = d
		}
	}
	if v := os.Getenv("FT_OPENAI_API_KEY"); v != "" {
		cfg.LLM.OpenAIKey = v
	}
	if v := os.Getenv("FT_ANTHROPIC_API_KEY"); v != "" {
		cfg.LLM.AnthropicKey = v
	}
	if v := os.Getenv("FT_GROQ_API_KEY"); v != "" {
		cfg.LLM.GroqKey = v
	}
	if v := os.Getenv("FT_AZURE_OPENAI_API_KEY"); v != "" {
		cfg.LLM.AzureKey = v
	}
	if v := os.Getenv("FT_AZURE_OPENAI_ENDPOINT"); v != "" {
		cfg.LLM.AzureEndpoint = v
	}
	if v := os.Getenv("FT_AZURE_OPENAI_DEPLOYMENT"); v != "" {
		cfg.LLM.AzureDeployment = v
	}
	if v := os.Getenv("FT_AZURE_OPENAI_API_VERSION"); v != "" {
		cfg.LLM.AzureAPIVersion = v
	}
	if v := os.Getenv("FT_RATE_LIMIT_CALLS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit.Calls = n
		}
	}
	if v := os.Getenv("FT_RATE_LIMIT_PERIOD"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RateLimit.Period = d
		}
	}
	if v := os.Getenv("FT_VALIDATION_MIN_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Validation.MinLength = n
		}
	}
	if v := os.Getenv("FT_VALIDATION_MAX_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Validation.MaxLength = n
		}
	}
	if v := os.Getenv("FT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// APIKey returns the credential for the configured provider.
func (c Config) APIKey() string {
	switch strings.ToLower(c.LLM.Provider) {
	case "openai":
		return c.LLM.OpenAIKey
	case "anthropic":
		return c.LLM.AnthropicKey
	case "groq":
		return c.LLM.GroqKey
	case "azure", "azure_openai":
		return c.LLM.AzureKey
	default:
		return ""
	}
}

func parseBool(input string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
