package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is configuration to start the main server.
type Profile struct {
	// LLM configuration (OpenAI-compatible protocol).
	// All providers (ollama, openai, deepseek, openrouter) use the same config.
	LLMProvider string // Provider identifier: ollama, openai, deepseek, openrouter
	LLMAPIKey   string // API key; local Ollama does not require one
	LLMBaseURL  string // Base URL (optional, has default per provider)
	LLMModel    string // Model name: llama3.2, gpt-4o, deepseek-chat, etc.
	LLMTimeout  int    // LLM request timeout in seconds (default: 120)

	// Google Maps Web Services configuration.
	MapsAPIKey string

	Mode    string
	Addr    string
	Driver  string // conversation store driver: memory, sqlite
	DSN     string
	Data    string
	Version string
	Port    int
}

// Provider default configurations for the LLM collaborator.
// Used when CITYCOMPASS_LLM_BASE_URL is not explicitly set.
var llmProviderDefaults = map[string]struct {
	BaseURL string
	Model   string
}{
	"ollama": {
		BaseURL: "http://localhost:11434/v1",
		Model:   "llama3.2",
	},
	"openai": {
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o",
	},
	"deepseek": {
		BaseURL: "https://api.deepseek.com",
		Model:   "deepseek-chat",
	},
	"openrouter": {
		BaseURL: "https://openrouter.ai/api/v1",
		Model:   "meta-llama/llama-3.2-3b-instruct",
	},
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsMapsEnabled returns true if a Google Maps API key is configured.
func (p *Profile) IsMapsEnabled() bool {
	return p.MapsAPIKey != ""
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	p.LLMProvider = getEnvOrDefault("CITYCOMPASS_LLM_PROVIDER", "ollama")
	p.LLMAPIKey = getEnvOrDefault("CITYCOMPASS_LLM_API_KEY", "")
	p.LLMBaseURL = getEnvOrDefault("CITYCOMPASS_LLM_BASE_URL", "")
	p.LLMModel = getEnvOrDefault("CITYCOMPASS_LLM_MODEL", "")
	p.LLMTimeout = getEnvOrDefaultInt("CITYCOMPASS_LLM_TIMEOUT_SECONDS", 120)

	if p.LLMProvider != "" {
		if _, ok := llmProviderDefaults[p.LLMProvider]; !ok {
			slog.Warn("unknown LLM provider, using default: ollama", "provider", p.LLMProvider)
			p.LLMProvider = "ollama"
		}
	}
	if p.LLMBaseURL == "" || p.LLMModel == "" {
		if defaults, ok := llmProviderDefaults[p.LLMProvider]; ok {
			if p.LLMBaseURL == "" {
				p.LLMBaseURL = defaults.BaseURL
			}
			if p.LLMModel == "" {
				p.LLMModel = defaults.Model
			}
		}
	}

	p.MapsAPIKey = getEnvOrDefault("CITYCOMPASS_MAPS_API_KEY", "")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Driver != "memory" && p.Driver != "sqlite" {
		return errors.Errorf("unsupported conversation store driver %q", p.Driver)
	}

	if p.Driver == "sqlite" {
		if p.Data == "" {
			p.Data = "."
		}
		dataDir, err := checkDataDir(p.Data)
		if err != nil {
			slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
			return err
		}
		p.Data = dataDir
		if p.DSN == "" {
			dbFile := fmt.Sprintf("citycompass_%s.db", p.Mode)
			p.DSN = filepath.Join(dataDir, dbFile)
		}
	}

	return nil
}
