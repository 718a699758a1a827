package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"shiro/internal/domain"
)

// Config is the top-level application configuration.
type Config struct {
	Coordinator AssistantSpec   `yaml:"coordinator"`
	Specialists []AssistantSpec `yaml:"specialists"`

	// WebSearch is the process-wide flag gating web-search-capable
	// specialists independent of per-request integration sets.
	WebSearch bool `yaml:"web_search"`

	// Timezone used when expanding the {{now}} placeholder in instructions.
	Timezone string `yaml:"timezone"`

	Engine  EngineConfig  `yaml:"engine"`
	Gateway GatewayConfig `yaml:"gateway"`
	Logger  LoggerConfig  `yaml:"logger"`
	Tracer  TracerConfig  `yaml:"tracer"`
}

// AssistantSpec defines one assistant in the registry.
type AssistantSpec struct {
	Name           string        `yaml:"name"`
	Instructions   string        `yaml:"instructions"`
	ToolChoice     string        `yaml:"tool_choice,omitempty"`      // "auto", "required", "none"
	OutputContract string        `yaml:"output_contract,omitempty"`  // contract tag, e.g. "gmail"
	WebSearch      bool          `yaml:"web_search,omitempty"`
	Provider       *ProviderSpec `yaml:"provider,omitempty"`
}

// ProviderSpec configures an assistant's tool-provider connection.
type ProviderSpec struct {
	Transport string            `yaml:"transport"` // "sse" or "stdio"
	URL       string            `yaml:"url,omitempty"`
	Command   string            `yaml:"command,omitempty"`
	Args      []string          `yaml:"args,omitempty"`
	Env       map[string]string `yaml:"env,omitempty"`
}

// EngineConfig holds Run Engine settings.
type EngineConfig struct {
	Provider    string        `yaml:"provider"` // "openai"
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url,omitempty"`
	MaxTurns    int           `yaml:"max_turns"`
	Temperature float64       `yaml:"temperature"`
	CallTimeout time.Duration `yaml:"call_timeout"` // per tool call
}

// GatewayConfig holds HTTP gateway settings.
type GatewayConfig struct {
	Addr      string          `yaml:"addr"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// AuthConfig holds gateway authentication settings.
type AuthConfig struct {
	Type   string        `yaml:"type"` // "static" or ""
	Tokens []TokenConfig `yaml:"tokens,omitempty"`
}

// TokenConfig holds a single gateway auth token.
type TokenConfig struct {
	Token string `yaml:"token"`
	Name  string `yaml:"name"`
}

// RateLimitConfig holds gateway request rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "text" or "json"
	Output string `yaml:"output"` // "stderr", "stdout", or a file path
}

// TracerConfig holds OpenTelemetry tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"` // "stdout" or "noop"
}

// Defaults returns a Config with sensible defaults: a bare coordinator with
// no specialists and no tool provider of its own.
func Defaults() *Config {
	return &Config{
		Coordinator: AssistantSpec{
			Name: "Task Coordinator",
			Instructions: "You are Shiro, a highly efficient personal assistant. " +
				"Current date and time: {{now}}. Carefully analyze each user request " +
				"and delegate to the appropriate specialist agent when one is available.",
		},
		Timezone: "Local",
		Engine: EngineConfig{
			Provider:    "openai",
			Model:       "gpt-4o",
			MaxTurns:    10,
			Temperature: 0.7,
			CallTimeout: 30 * time.Second,
		},
		Gateway: GatewayConfig{
			Addr: ":8080",
			RateLimit: RateLimitConfig{
				Enabled:           false,
				RequestsPerSecond: 10,
				Burst:             20,
			},
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracer: TracerConfig{
			Enabled:  false,
			Exporter: "noop",
		},
	}
}

// Load reads a YAML config file and applies env var overrides. A missing
// file is not an error: defaults plus environment are used instead.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			ApplyEnvOverrides(cfg)
			if err := Validate(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	ApplyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides maps SHIRO_* env vars to config fields.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SHIRO_ENGINE_API_KEY"); v != "" {
		cfg.Engine.APIKey = v
	}
	if v := os.Getenv("SHIRO_ENGINE_MODEL"); v != "" {
		cfg.Engine.Model = v
	}
	if v := os.Getenv("SHIRO_ENGINE_BASE_URL"); v != "" {
		cfg.Engine.BaseURL = v
	}
	if v := os.Getenv("SHIRO_GATEWAY_ADDR"); v != "" {
		cfg.Gateway.Addr = v
	}
	if v := os.Getenv("SHIRO_LOG_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("SHIRO_WEB_SEARCH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.WebSearch = b
		}
	}
}

// Registry materializes the immutable assistant registry from the config.
// Instructions containing the {{now}} placeholder are expanded with the
// current wall-clock time in the configured zone; the result is frozen for
// the process lifetime.
func (c *Config) Registry() (domain.AssistantConfig, []domain.AssistantConfig, error) {
	loc := time.Local
	if c.Timezone != "" && !strings.EqualFold(c.Timezone, "local") {
		l, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return domain.AssistantConfig{}, nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
		}
		loc = l
	}
	now := time.Now().In(loc).Format("2006-01-02 15:04:05 MST")

	coord := c.Coordinator.toDomain(now)
	specs := make([]domain.AssistantConfig, len(c.Specialists))
	for i, s := range c.Specialists {
		specs[i] = s.toDomain(now)
	}
	return coord, specs, nil
}

func (s AssistantSpec) toDomain(now string) domain.AssistantConfig {
	tc := domain.ToolChoice(s.ToolChoice)
	if s.ToolChoice == "" {
		tc = domain.ToolChoiceAuto
	}
	cfg := domain.AssistantConfig{
		Name:           s.Name,
		Instructions:   strings.ReplaceAll(s.Instructions, "{{now}}", now),
		ToolChoice:     tc,
		OutputContract: s.OutputContract,
		WebSearch:      s.WebSearch,
	}
	if s.Provider != nil {
		cfg.Provider = &domain.ProviderLocator{
			Transport: s.Provider.Transport,
			URL:       s.Provider.URL,
			Command:   s.Provider.Command,
			Args:      s.Provider.Args,
			Env:       s.Provider.Env,
		}
	}
	return cfg
}
