package orchestrator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiro/internal/domain"
)

func TestTranslateAgentUpdated(t *testing.T) {
	name, payload, ok := Translate(domain.RunEvent{
		Kind:      domain.RunEventAgentUpdated,
		AgentName: "Gmail Agent",
	})
	require.True(t, ok)
	assert.Equal(t, domain.StreamEventAgentUpdate, name)
	assert.Equal(t, domain.AgentUpdatePayload{AgentName: "Gmail Agent"}, payload)
}

func TestTranslateToolCall(t *testing.T) {
	args := json.RawMessage(`{"to":"a@b.c"}`)
	name, payload, ok := Translate(domain.RunEvent{
		Kind: domain.RunEventItem,
		Item: &domain.Item{
			Type:      domain.ItemTypeToolCall,
			ToolName:  "send_email",
			Arguments: args,
			CallID:    "call_1",
		},
	})
	require.True(t, ok)
	assert.Equal(t, domain.StreamEventToolCall, name)
	assert.Equal(t, domain.ToolCallPayload{ToolName: "send_email", ToolArgs: args, ToolCallID: "call_1"}, payload)
}

func TestTranslateToolOutput(t *testing.T) {
	name, payload, ok := Translate(domain.RunEvent{
		Kind: domain.RunEventItem,
		Item: &domain.Item{Type: domain.ItemTypeToolOutput, CallID: "call_1", Output: "sent"},
	})
	require.True(t, ok)
	assert.Equal(t, domain.StreamEventToolOutput, name)
	assert.Equal(t, domain.ToolOutputPayload{ToolCallID: "call_1", Output: "sent"}, payload)
}

func TestTranslateMessageOutput(t *testing.T) {
	name, payload, ok := Translate(domain.RunEvent{
		Kind: domain.RunEventItem,
		Item: &domain.Item{Type: domain.ItemTypeMessage, Role: domain.RoleAssistant, Content: "done"},
	})
	require.True(t, ok)
	assert.Equal(t, domain.StreamEventMessageOutput, name)
	assert.Equal(t, domain.MessageOutputPayload{Content: "done"}, payload)
}

func TestTranslateDropsRawDelta(t *testing.T) {
	_, _, ok := Translate(domain.RunEvent{Kind: domain.RunEventDelta, Delta: "chu"})
	assert.False(t, ok)
}

func TestTranslateDropsUnknown(t *testing.T) {
	_, _, ok := Translate(domain.RunEvent{Kind: "mystery"})
	assert.False(t, ok)

	_, _, ok = Translate(domain.RunEvent{Kind: domain.RunEventItem})
	assert.False(t, ok)

	_, _, ok = Translate(domain.RunEvent{
		Kind: domain.RunEventItem,
		Item: &domain.Item{Type: domain.ItemTypeMessage, Role: domain.RoleUser, Content: "hi"},
	})
	assert.False(t, ok)
}
