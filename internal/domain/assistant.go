package domain

import "context"

// ToolChoice is the tool-choice policy forwarded to the Run Engine for an
// assistant: let the model decide, force a tool call, or forbid tools.
type ToolChoice string

const (
	ToolChoiceAuto     ToolChoice = "auto"
	ToolChoiceRequired ToolChoice = "required"
	ToolChoiceNone     ToolChoice = "none"
)

// Transport values for ProviderLocator.
const (
	TransportSSE   = "sse"
	TransportStdio = "stdio"
)

// ProviderLocator describes how to reach an assistant's tool provider:
// either a remote SSE endpoint or a local subprocess speaking over pipes.
type ProviderLocator struct {
	Transport string            `yaml:"transport" json:"transport"`
	URL       string            `yaml:"url,omitempty" json:"url,omitempty"`
	Command   string            `yaml:"command,omitempty" json:"command,omitempty"`
	Args      []string          `yaml:"args,omitempty" json:"args,omitempty"`
	Env       map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
}

// AssistantConfig is the immutable definition of one assistant. Built once at
// startup and shared read-only across concurrent requests; never mutated.
type AssistantConfig struct {
	// Name is unique within the registry. Its first whitespace-delimited
	// token doubles as the integration selector key ("Gmail Agent" -> "Gmail").
	Name         string
	Instructions string
	// Provider is nil for assistants without their own tool source.
	Provider       *ProviderLocator
	ToolChoice     ToolChoice
	OutputContract string
	// WebSearch marks the specialist gated by the process-wide web-search flag.
	WebSearch bool
}

// ToolConnection is a live, request-scoped channel to an external tool
// provider. It is owned by the connection scope that opened it and must be
// closed exactly once, by that scope, before the request ends.
type ToolConnection interface {
	Name() string
	Tools(ctx context.Context) ([]ToolSchema, error)
	Call(ctx context.Context, tool string, args []byte) (string, error)
	Close() error
}

// HandoffFunc is notified exactly once, synchronously, when the coordinator
// hands control to the named specialist.
type HandoffFunc func(agentName string)

// Handoff pairs a specialist instance with its delegation-notification
// callback. The callback is fire-and-forget: it must never abort the run.
type Handoff struct {
	Agent     *AssistantInstance
	OnHandoff HandoffFunc
}

// Notify invokes the handoff callback, swallowing any panic so that a
// misbehaving callback cannot take the run down with it.
func (h Handoff) Notify() {
	if h.OnHandoff == nil {
		return
	}
	defer func() { _ = recover() }()
	h.OnHandoff(h.Agent.Name)
}

// AssistantInstance is the ephemeral, per-request form of an assistant:
// its config joined with the connections opened for this request, and, for
// the coordinator, the ordered delegation targets. Built fresh every request
// and discarded when the request's scope ends.
type AssistantInstance struct {
	Name           string
	Instructions   string
	ToolChoice     ToolChoice
	OutputContract string
	Connections    []ToolConnection
	Handoffs       []Handoff
}

// FindHandoff returns the handoff whose target has the given name.
func (a *AssistantInstance) FindHandoff(name string) (Handoff, bool) {
	for _, h := range a.Handoffs {
		if h.Agent.Name == name {
			return h, true
		}
	}
	return Handoff{}, false
}
