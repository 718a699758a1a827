package config

import (
	"fmt"
	"strings"

	"shiro/internal/domain"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...interface{}) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg for structural correctness. It returns a
// *ValidationError when one or more problems are found, allowing callers to
// inspect all issues at once.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateAssistants(cfg, ve)
	validateEngine(cfg, ve)
	validateGateway(cfg, ve)
	validateLogger(cfg, ve)
	validateTracer(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

var validToolChoices = map[string]bool{
	"":         true,
	"auto":     true,
	"required": true,
	"none":     true,
}

func validateAssistants(cfg *Config, ve *ValidationError) {
	if cfg.Coordinator.Name == "" {
		ve.Add("coordinator.name must not be empty")
	}
	if cfg.Coordinator.Instructions == "" {
		ve.Add("coordinator.instructions must not be empty")
	}
	validateAssistantSpec("coordinator", cfg.Coordinator, ve)

	names := map[string]bool{cfg.Coordinator.Name: true}
	for i, s := range cfg.Specialists {
		field := fmt.Sprintf("specialists[%d]", i)
		if s.Name == "" {
			ve.Add("%s.name must not be empty", field)
		} else if names[s.Name] {
			ve.Add("%s.name %q is duplicate", field, s.Name)
		}
		names[s.Name] = true
		if s.Instructions == "" {
			ve.Add("%s.instructions must not be empty", field)
		}
		validateAssistantSpec(field, s, ve)
	}
}

func validateAssistantSpec(field string, s AssistantSpec, ve *ValidationError) {
	if !validToolChoices[s.ToolChoice] {
		ve.Add("%s.tool_choice %q is invalid (want: auto, required, none)", field, s.ToolChoice)
	}
	if s.OutputContract != "" && !domain.KnownContract(s.OutputContract) {
		ve.Add("%s.output_contract %q is unknown", field, s.OutputContract)
	}
	if s.Provider == nil {
		return
	}
	switch s.Provider.Transport {
	case domain.TransportSSE:
		if s.Provider.URL == "" {
			ve.Add("%s.provider.url is required for sse transport", field)
		}
	case domain.TransportStdio:
		if s.Provider.Command == "" {
			ve.Add("%s.provider.command is required for stdio transport", field)
		}
	default:
		ve.Add("%s.provider.transport %q is invalid (want: sse, stdio)", field, s.Provider.Transport)
	}
}

func validateEngine(cfg *Config, ve *ValidationError) {
	if cfg.Engine.Provider != "openai" {
		ve.Add("engine.provider %q is unsupported (want: openai)", cfg.Engine.Provider)
	}
	if cfg.Engine.Model == "" {
		ve.Add("engine.model must not be empty")
	}
	if cfg.Engine.MaxTurns <= 0 {
		ve.Add("engine.max_turns must be > 0")
	}
	if cfg.Engine.CallTimeout <= 0 {
		ve.Add("engine.call_timeout must be > 0")
	}
}

func validateGateway(cfg *Config, ve *ValidationError) {
	if cfg.Gateway.Addr == "" {
		ve.Add("gateway.addr must not be empty")
	}
	switch cfg.Gateway.Auth.Type {
	case "", "static":
	default:
		ve.Add("gateway.auth.type %q is invalid (want: static)", cfg.Gateway.Auth.Type)
	}
	if cfg.Gateway.Auth.Type == "static" && len(cfg.Gateway.Auth.Tokens) == 0 {
		ve.Add("gateway.auth.tokens must not be empty when auth type is static")
	}
	for i, t := range cfg.Gateway.Auth.Tokens {
		if t.Token == "" {
			ve.Add("gateway.auth.tokens[%d].token must not be empty", i)
		}
	}
	if cfg.Gateway.RateLimit.Enabled {
		if cfg.Gateway.RateLimit.RequestsPerSecond <= 0 {
			ve.Add("gateway.rate_limit.requests_per_second must be > 0 when rate limiting is enabled")
		}
		if cfg.Gateway.RateLimit.Burst <= 0 {
			ve.Add("gateway.rate_limit.burst must be > 0 when rate limiting is enabled")
		}
	}
}

func validateLogger(cfg *Config, ve *ValidationError) {
	switch strings.ToLower(cfg.Logger.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		ve.Add("logger.level %q is invalid (want: debug, info, warn, error)", cfg.Logger.Level)
	}
	switch strings.ToLower(cfg.Logger.Format) {
	case "text", "json":
	default:
		ve.Add("logger.format %q is invalid (want: text, json)", cfg.Logger.Format)
	}
}

func validateTracer(cfg *Config, ve *ValidationError) {
	switch cfg.Tracer.Exporter {
	case "", "noop", "stdout":
	default:
		ve.Add("tracer.exporter %q is invalid (want: noop, stdout)", cfg.Tracer.Exporter)
	}
}
