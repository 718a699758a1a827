package domain

import "encoding/json"

// Role constants for conversation items.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Item type discriminators. Plain messages carry role/content; tool items
// carry the call/output fields instead.
const (
	ItemTypeMessage    = "message"
	ItemTypeToolCall   = "tool_call"
	ItemTypeToolOutput = "tool_call_output"
)

// Item is one entry in a conversation history. The client owns persistence:
// a run's output items are resubmitted verbatim as the next turn's input.
type Item struct {
	Type    string `json:"type"`
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`

	// Tool call / output fields.
	ToolName  string          `json:"tool_name,omitempty"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	CallID    string          `json:"call_id,omitempty"`
	Output    string          `json:"output,omitempty"`
}

// UserMessage builds a plain user message item.
func UserMessage(content string) Item {
	return Item{Type: ItemTypeMessage, Role: RoleUser, Content: content}
}

// AssistantMessage builds a plain assistant message item.
func AssistantMessage(content string) Item {
	return Item{Type: ItemTypeMessage, Role: RoleAssistant, Content: content}
}

// ToolSchema describes a callable tool as exposed to the Run Engine.
type ToolSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// RunResult is the outcome of a buffered run: the full updated item sequence
// (input items plus everything the run produced) and, when the concluding
// assistant declared an output contract, its final structured output.
// FinalAgent names the assistant that produced the final answer.
type RunResult struct {
	Items       []Item
	FinalOutput json.RawMessage
	FinalAgent  string
}
