package orchestrator

import (
	"shiro/internal/domain"
)

// Translate maps one raw engine event to its public (name, payload) form.
// The mapping is lossy on purpose: raw deltas and any unrecognized kind are
// dropped (ok=false), never passed through. Order is preserved by the caller
// translating events strictly in arrival order.
func Translate(ev domain.RunEvent) (name string, payload any, ok bool) {
	switch ev.Kind {
	case domain.RunEventAgentUpdated:
		return domain.StreamEventAgentUpdate, domain.AgentUpdatePayload{AgentName: ev.AgentName}, true

	case domain.RunEventItem:
		if ev.Item == nil {
			return "", nil, false
		}
		switch ev.Item.Type {
		case domain.ItemTypeToolCall:
			return domain.StreamEventToolCall, domain.ToolCallPayload{
				ToolName:   ev.Item.ToolName,
				ToolArgs:   ev.Item.Arguments,
				ToolCallID: ev.Item.CallID,
			}, true
		case domain.ItemTypeToolOutput:
			return domain.StreamEventToolOutput, domain.ToolOutputPayload{
				ToolCallID: ev.Item.CallID,
				Output:     ev.Item.Output,
			}, true
		case domain.ItemTypeMessage:
			if ev.Item.Role != domain.RoleAssistant {
				return "", nil, false
			}
			return domain.StreamEventMessageOutput, domain.MessageOutputPayload{
				Content: ev.Item.Content,
			}, true
		}
	}
	return "", nil, false
}
