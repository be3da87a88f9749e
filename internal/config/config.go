// Package config provides configuration loading and management for tandem.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// DefaultEndpoint is used when no platform endpoint is configured.
const DefaultEndpoint = "https://app.tandem.cloud"

// EnvPrefix namespaces the environment variables read at startup.
const EnvPrefix = "TANDEM"

// Config is the root configuration. It is constructed once at process
// entry and passed by reference; nothing reads ambient globals after that.
type Config struct {
	APIToken             string          `json:"api_token,omitempty"             mapstructure:"api_token"`
	Endpoint             string          `json:"endpoint,omitempty"              mapstructure:"endpoint"`
	ExecutionEnvironment string          `json:"execution_environment,omitempty" mapstructure:"execution_environment"`
	UseLLMGateway        bool            `json:"use_llm_gateway,omitempty"       mapstructure:"use_llm_gateway"`
	StatePassphrase      string          `json:"state_passphrase,omitempty"      mapstructure:"state_passphrase"`
	Workflow             string          `json:"workflow,omitempty"              mapstructure:"workflow"`
	Store                string          `json:"store,omitempty"                 mapstructure:"store"`
	LLM                  LLMConfig       `json:"llm,omitempty"                   mapstructure:"llm"`
	Serve                ServeConfig     `json:"serve,omitempty"                 mapstructure:"serve"`
	Telemetry            TelemetryConfig `json:"telemetry,omitempty"             mapstructure:"telemetry"`
}

// LLMConfig describes how adapters reach a language model.
type LLMConfig struct {
	Model        string `json:"model,omitempty"         mapstructure:"model"`
	BaseURL      string `json:"base_url,omitempty"      mapstructure:"base_url"`
	APIKey       string `json:"api_key,omitempty"       mapstructure:"api_key"`
	APIKeyEnv    string `json:"api_key_env,omitempty"   mapstructure:"api_key_env"`
	DeploymentID string `json:"deployment_id,omitempty" mapstructure:"deployment_id"`
	Timeout      int    `json:"timeout,omitempty"       mapstructure:"timeout"`
}

// ServeConfig configures the hosted HTTP surface.
type ServeConfig struct {
	Addr string `json:"addr,omitempty" mapstructure:"addr"`
}

// TelemetryConfig toggles span export.
type TelemetryConfig struct {
	Enabled bool `json:"enabled,omitempty" mapstructure:"enabled"`
}

// Load reads configuration from an optional JSON file and the TANDEM_*
// environment, validates it against the embedded schema, and applies
// defaults. A missing file is not an error; the environment alone is a
// complete configuration source.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{
		"api_token", "endpoint", "execution_environment",
		"use_llm_gateway", "state_passphrase",
	} {
		if err := v.BindEnv(key); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			if _, statErr := os.Stat(path); statErr == nil {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if settings := v.AllSettings(); len(settings) > 0 {
		if err := ValidateSettings(settings); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	// Env-bound scalars go through the typed getters so string values like
	// "true" cast cleanly.
	cfg.APIToken = v.GetString("api_token")
	cfg.Endpoint = v.GetString("endpoint")
	cfg.ExecutionEnvironment = v.GetString("execution_environment")
	cfg.UseLLMGateway = v.GetBool("use_llm_gateway")
	cfg.StatePassphrase = v.GetString("state_passphrase")
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	// The endpoint may be configured with or without the API suffix; keep
	// the bare host and append per call site.
	c.Endpoint = strings.TrimSuffix(strings.TrimRight(c.Endpoint, "/"), "/api/v2")
	if c.Serve.Addr == "" {
		c.Serve.Addr = ":8080"
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = 90
	}
}

// APIBase returns the platform API root.
func (c Config) APIBase() string {
	return c.Endpoint + "/api/v2"
}

// DeploymentURL returns the chat endpoint of a deployed agent.
func (c Config) DeploymentURL(deploymentID string) string {
	return c.APIBase() + "/deployments/" + deploymentID
}

// LLMBaseURL resolves the base URL adapters use for model calls: an
// explicit override first, then gateway-style routing when the feature
// flag is set, then a configured LLM deployment.
func (c Config) LLMBaseURL() string {
	if c.LLM.BaseURL != "" {
		return c.LLM.BaseURL
	}
	if c.UseLLMGateway {
		return c.APIBase() + "/genai/llmgw"
	}
	if c.LLM.DeploymentID != "" {
		return c.DeploymentURL(c.LLM.DeploymentID)
	}
	return ""
}

// LLMTimeout returns the configured model call timeout.
func (c Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.Timeout) * time.Second
}
