// Package openai adapts the OpenAI Chat Completions API (streaming and
// non-streaming, with function/tool calling) to the domain RunEngine
// contract. Delegation is realized as synthetic transfer tools the
// coordinator can call to hand control to a specialist.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"shiro/internal/domain"
	"shiro/internal/infra/config"
)

// transferPrefix names the synthetic delegation tools.
const transferPrefix = "transfer_to_"

// aggCall aggregates partial tool call streaming deltas (id, name, arguments)
// so complete calls can be reconstructed when the finish reason arrives.
type aggCall struct{ id, name, args string }

// Engine implements domain.RunEngine on the OpenAI Chat Completions API.
type Engine struct {
	client      openai.Client
	model       string
	temperature float64
	maxTurns    int
	logger      *slog.Logger
}

// New creates an engine from configuration.
func New(cfg config.EngineConfig, logger *slog.Logger) *Engine {
	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Engine{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTurns:    cfg.MaxTurns,
		logger:      logger,
	}
}

// RunBuffered runs the hierarchy to completion and returns the full result.
func (e *Engine) RunBuffered(ctx context.Context, root *domain.AssistantInstance, input []domain.Item) (*domain.RunResult, error) {
	return e.run(ctx, root, input, nil)
}

// RunStreamed runs the hierarchy while forwarding raw events as they happen.
// Both channels close when the run concludes; on failure a single terminal
// error is delivered first.
func (e *Engine) RunStreamed(ctx context.Context, root *domain.AssistantInstance, input []domain.Item) (<-chan domain.RunEvent, <-chan error) {
	events := make(chan domain.RunEvent, 32)
	errs := make(chan error, 1)

	go func() {
		defer close(events)
		defer close(errs)

		emit := func(ev domain.RunEvent) {
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		}
		if _, err := e.run(ctx, root, input, emit); err != nil {
			errs <- err
		}
	}()

	return events, errs
}

// run is the shared agent loop. A nil emit means buffered mode.
func (e *Engine) run(ctx context.Context, root *domain.AssistantInstance, input []domain.Item, emit func(domain.RunEvent)) (*domain.RunResult, error) {
	streaming := emit != nil
	if emit == nil {
		emit = func(domain.RunEvent) {}
	}

	current := root
	items := append([]domain.Item(nil), input...)

	emit(domain.RunEvent{Kind: domain.RunEventAgentUpdated, AgentName: current.Name})

	for turn := 0; turn < e.maxTurns; turn++ {
		tools, byName, err := e.collectTools(ctx, current)
		if err != nil {
			return nil, domain.WrapOp("engine.run", err)
		}

		params := e.buildParams(current, items, tools)

		content, calls, err := e.complete(ctx, params, streaming, emit)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrEngineFailure, err)
		}

		if len(calls) == 0 {
			final := domain.AssistantMessage(content)
			items = append(items, final)
			emit(domain.RunEvent{Kind: domain.RunEventItem, Item: &final})

			result := &domain.RunResult{Items: items, FinalAgent: current.Name}
			if current.OutputContract != "" {
				result.FinalOutput = json.RawMessage(content)
			}
			return result, nil
		}

		for _, call := range calls {
			callItem := domain.Item{
				Type:      domain.ItemTypeToolCall,
				ToolName:  call.name,
				Arguments: json.RawMessage(call.args),
				CallID:    call.id,
			}
			items = append(items, callItem)
			emit(domain.RunEvent{Kind: domain.RunEventItem, Item: &callItem})

			output, next := e.dispatch(ctx, current, call, byName)

			outItem := domain.Item{
				Type:   domain.ItemTypeToolOutput,
				CallID: call.id,
				Output: output,
			}
			items = append(items, outItem)
			emit(domain.RunEvent{Kind: domain.RunEventItem, Item: &outItem})

			if next != nil {
				current = next
				emit(domain.RunEvent{Kind: domain.RunEventAgentUpdated, AgentName: current.Name})
			}
		}
	}

	return nil, domain.NewDomainError("engine.run", domain.ErrMaxTurns, fmt.Sprintf("%d turns", e.maxTurns))
}

// dispatch executes one tool call. Transfer tools switch the active
// assistant; everything else routes to the owning connection. Tool failures
// become tool output so the model can recover; they never abort the run.
func (e *Engine) dispatch(ctx context.Context, current *domain.AssistantInstance, call aggCall, byName map[string]domain.ToolConnection) (string, *domain.AssistantInstance) {
	if target, ok := strings.CutPrefix(call.name, transferPrefix); ok {
		for _, h := range current.Handoffs {
			if sanitizeToolName(h.Agent.Name) == target {
				h.Notify()
				e.logger.Info("delegating", "from", current.Name, "to", h.Agent.Name)
				return fmt.Sprintf("Transferred to %s.", h.Agent.Name), h.Agent
			}
		}
		return fmt.Sprintf("unknown transfer target %q", target), nil
	}

	conn, ok := byName[call.name]
	if !ok {
		return fmt.Sprintf("unknown tool %q", call.name), nil
	}
	output, err := conn.Call(ctx, call.name, []byte(call.args))
	if err != nil {
		e.logger.Warn("tool call failed", "tool", call.name, "error", err)
		return fmt.Sprintf("tool error: %v", err), nil
	}
	return output, nil
}

// collectTools gathers the active assistant's provider tools plus one
// transfer tool per handoff.
func (e *Engine) collectTools(ctx context.Context, a *domain.AssistantInstance) ([]openai.ChatCompletionToolParam, map[string]domain.ToolConnection, error) {
	var tools []openai.ChatCompletionToolParam
	byName := make(map[string]domain.ToolConnection)

	for _, conn := range a.Connections {
		schemas, err := conn.Tools(ctx)
		if err != nil {
			return nil, nil, err
		}
		for _, s := range schemas {
			tools = append(tools, toolParam(s.Name, s.Description, s.Parameters))
			byName[s.Name] = conn
		}
	}

	for _, h := range a.Handoffs {
		tools = append(tools, toolParam(
			transferToolName(h.Agent.Name),
			fmt.Sprintf("Hand the conversation off to %s.", h.Agent.Name),
			json.RawMessage(`{"type": "object", "properties": {}}`),
		))
	}

	return tools, byName, nil
}

func (e *Engine) buildParams(a *domain.AssistantInstance, items []domain.Item, tools []openai.ChatCompletionToolParam) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages:    buildMessages(a.Instructions, items),
		Model:       e.model,
		Temperature: openai.Float(e.temperature),
	}
	if len(tools) > 0 {
		params.Tools = tools
		switch a.ToolChoice {
		case domain.ToolChoiceRequired:
			params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: openai.String("required")}
		case domain.ToolChoiceNone:
			params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: openai.String("none")}
		}
	}
	return params
}

// complete performs one model call and returns the aggregated assistant text
// plus any tool calls, in emission order.
func (e *Engine) complete(ctx context.Context, params openai.ChatCompletionNewParams, streaming bool, emit func(domain.RunEvent)) (string, []aggCall, error) {
	if !streaming {
		return e.completeBuffered(ctx, params)
	}

	stream := e.client.Chat.Completions.NewStreaming(ctx, params)
	var text strings.Builder
	agg := map[int64]*aggCall{}
	var order []int64

	for stream.Next() {
		ck := stream.Current()
		for _, ch := range ck.Choices {
			if ch.Delta.Content != "" {
				text.WriteString(ch.Delta.Content)
				emit(domain.RunEvent{Kind: domain.RunEventDelta, Delta: ch.Delta.Content})
			}
			for _, tc := range ch.Delta.ToolCalls {
				ac, ok := agg[tc.Index]
				if !ok {
					ac = &aggCall{}
					agg[tc.Index] = ac
					order = append(order, tc.Index)
				}
				if tc.ID != "" {
					ac.id = tc.ID
				}
				if tc.Function.Name != "" {
					ac.name = tc.Function.Name
				}
				if tc.Function.Arguments != "" {
					ac.args += tc.Function.Arguments
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		return "", nil, fmt.Errorf("openai streaming error: %w", err)
	}

	calls := make([]aggCall, 0, len(order))
	for _, idx := range order {
		calls = append(calls, normalizeCall(*agg[idx]))
	}
	return text.String(), calls, nil
}

func (e *Engine) completeBuffered(ctx context.Context, params openai.ChatCompletionNewParams) (string, []aggCall, error) {
	resp, err := e.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil, fmt.Errorf("no choices returned")
	}

	ch0 := resp.Choices[0]
	calls := make([]aggCall, 0, len(ch0.Message.ToolCalls))
	for _, tc := range ch0.Message.ToolCalls {
		calls = append(calls, normalizeCall(aggCall{
			id:   tc.ID,
			name: tc.Function.Name,
			args: tc.Function.Arguments,
		}))
	}
	return ch0.Message.Content, calls, nil
}

// buildMessages converts the item history into OpenAI chat messages, with
// the active assistant's instructions as the system message.
func buildMessages(instructions string, items []domain.Item) []openai.ChatCompletionMessageParamUnion {
	messages := []openai.ChatCompletionMessageParamUnion{openai.SystemMessage(instructions)}

	for _, item := range items {
		switch item.Type {
		case domain.ItemTypeMessage:
			switch item.Role {
			case domain.RoleUser:
				messages = append(messages, openai.UserMessage(item.Content))
			case domain.RoleAssistant:
				messages = append(messages, openai.AssistantMessage(item.Content))
			case domain.RoleSystem:
				messages = append(messages, openai.SystemMessage(item.Content))
			}
		case domain.ItemTypeToolCall:
			messages = append(messages, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Role: "assistant",
					ToolCalls: []openai.ChatCompletionMessageToolCallParam{{
						ID:   item.CallID,
						Type: "function",
						Function: openai.ChatCompletionMessageToolCallFunctionParam{
							Name:      item.ToolName,
							Arguments: string(item.Arguments),
						},
					}},
				},
			})
		case domain.ItemTypeToolOutput:
			messages = append(messages, openai.ToolMessage(item.Output, item.CallID))
		}
	}
	return messages
}

func toolParam(name, description string, parameters json.RawMessage) openai.ChatCompletionToolParam {
	var params openai.FunctionParameters
	_ = json.Unmarshal(parameters, &params)
	return openai.ChatCompletionToolParam{
		Type: "function",
		Function: openai.FunctionDefinitionParam{
			Name:        name,
			Description: openai.String(description),
			Parameters:  params,
		},
	}
}

// transferToolName derives the delegation tool name for an assistant.
func transferToolName(agentName string) string {
	return transferPrefix + sanitizeToolName(agentName)
}

// sanitizeToolName lowercases and replaces non-alphanumerics so names fit
// the function-name grammar.
func sanitizeToolName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// normalizeCall guarantees arguments form a JSON object even when the model
// emits nothing for a zero-argument call.
func normalizeCall(c aggCall) aggCall {
	if strings.TrimSpace(c.args) == "" {
		c.args = "{}"
	}
	return c
}
