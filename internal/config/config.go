// Package config loads process configuration. Environment variables win;
// an optional YAML file supplies defaults for anything unset, and a local
// .env file is folded into the environment when present.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config carries everything the agent process needs at startup.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	DBPath     string `yaml:"db_path"`

	// Splitwise OAuth application credentials.
	ConsumerKey    string `yaml:"consumer_key"`
	ConsumerSecret string `yaml:"consumer_secret"`
	RedirectURL    string `yaml:"redirect_url"`

	// Splitwise REST API; empty means production.
	SplitwiseBaseURL string `yaml:"splitwise_base_url"`

	// Chat model used to answer /query requests.
	LLMBaseURL string `yaml:"llm_base_url"`
	LLMAPIKey  string `yaml:"llm_api_key"`
	LLMModel   string `yaml:"llm_model"`

	RequestTimeout time.Duration `yaml:"request_timeout"`
	Verbose        bool          `yaml:"verbose"`
}

// Load builds the config. Resolution order per field: environment variable,
// then the YAML file named by AGENT_CONFIG (if set), then the built-in
// default. A .env file in the working directory is loaded first so local
// development does not need exported variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:     ":8080",
		DBPath:         "agent.db",
		LLMBaseURL:     "https://api.openai.com/v1",
		LLMModel:       "gpt-4o-mini",
		RequestTimeout: 30 * time.Second,
	}

	if path := os.Getenv("AGENT_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if cfg.ConsumerKey == "" || cfg.ConsumerSecret == "" {
		return nil, fmt.Errorf("SPLITWISE_CONSUMER_KEY and SPLITWISE_CONSUMER_SECRET are required")
	}
	if cfg.RedirectURL == "" {
		cfg.RedirectURL = "http://localhost" + normalizeAddr(cfg.ListenAddr) + "/callback"
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.ListenAddr, "AGENT_LISTEN_ADDR")
	setString(&cfg.DBPath, "AGENT_DB_PATH")
	setString(&cfg.ConsumerKey, "SPLITWISE_CONSUMER_KEY")
	setString(&cfg.ConsumerSecret, "SPLITWISE_CONSUMER_SECRET")
	setString(&cfg.RedirectURL, "SPLITWISE_REDIRECT_URL")
	setString(&cfg.SplitwiseBaseURL, "SPLITWISE_API_BASE_URL")
	setString(&cfg.LLMBaseURL, "LLM_BASE_URL")
	setString(&cfg.LLMAPIKey, "LLM_API_KEY")
	setString(&cfg.LLMModel, "LLM_MODEL")
	if v := os.Getenv("AGENT_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.RequestTimeout = d
		}
	}
	if v := os.Getenv("AGENT_VERBOSE"); v == "1" || v == "true" {
		cfg.Verbose = true
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// normalizeAddr turns ":8080" into ":8080" and "0.0.0.0:8080" into ":8080"
// for default redirect URL construction.
func normalizeAddr(addr string) string {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[i:]
		}
	}
	return ":" + addr
}
