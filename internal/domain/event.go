package domain

import "encoding/json"

// RunEventKind discriminates the Run Engine's raw event union.
type RunEventKind string

const (
	// RunEventDelta is a low-level partial-response chunk. Dropped by the
	// translator; present so streamed runs surface progress internally.
	RunEventDelta RunEventKind = "raw_delta"
	// RunEventAgentUpdated fires when a different assistant becomes active.
	RunEventAgentUpdated RunEventKind = "agent_updated"
	// RunEventItem carries a produced conversation item; Item.Type
	// sub-discriminates into tool call, tool output, and message kinds.
	RunEventItem RunEventKind = "run_item"
)

// RunEvent is one element of the Run Engine's raw event sequence.
type RunEvent struct {
	Kind      RunEventKind
	AgentName string // agent_updated
	Delta     string // raw_delta
	Item      *Item  // run_item
}

// Public stream event names. This is the stable external vocabulary; raw
// engine events that map to none of these are dropped, never passed through.
const (
	StreamEventAgentUpdate   = "agent_update"
	StreamEventToolCall      = "tool_call"
	StreamEventToolOutput    = "tool_output"
	StreamEventMessageOutput = "message_output"
	StreamEventDone          = "done"
	StreamEventError         = "error"
)

// AgentUpdatePayload accompanies an agent_update event.
type AgentUpdatePayload struct {
	AgentName string `json:"agent_name"`
}

// ToolCallPayload accompanies a tool_call event.
type ToolCallPayload struct {
	ToolName   string          `json:"tool_name"`
	ToolArgs   json.RawMessage `json:"tool_args"`
	ToolCallID string          `json:"tool_call_id"`
}

// ToolOutputPayload accompanies a tool_output event.
type ToolOutputPayload struct {
	ToolCallID string `json:"tool_call_id"`
	Output     string `json:"output"`
}

// MessageOutputPayload accompanies a message_output event.
type MessageOutputPayload struct {
	Content string `json:"content"`
}

// DonePayload terminates a successful stream.
type DonePayload struct {
	Status string `json:"status"`
}

// ErrorPayload terminates a failed stream. A stream ends with done or error,
// never both.
type ErrorPayload struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}
