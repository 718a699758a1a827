package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiro/internal/domain"
)

type fakeConn struct {
	name    string
	schemas []domain.ToolSchema
	output  string
	callErr error
	called  string
}

func (c *fakeConn) Name() string { return c.name }
func (c *fakeConn) Tools(context.Context) ([]domain.ToolSchema, error) {
	return c.schemas, nil
}
func (c *fakeConn) Call(_ context.Context, tool string, _ []byte) (string, error) {
	c.called = tool
	return c.output, c.callErr
}
func (c *fakeConn) Close() error { return nil }

func testEngine() *Engine {
	return &Engine{logger: slog.New(slog.NewTextHandler(io.Discard, nil)), maxTurns: 5}
}

func TestSanitizeToolName(t *testing.T) {
	assert.Equal(t, "gmail_agent", sanitizeToolName("Gmail Agent"))
	assert.Equal(t, "search_v2", sanitizeToolName("Search-v2"))
	assert.Equal(t, "transfer_to_whatsapp_agent", transferToolName("Whatsapp Agent"))
}

func TestNormalizeCall(t *testing.T) {
	assert.Equal(t, "{}", normalizeCall(aggCall{}).args)
	assert.Equal(t, `{"a":1}`, normalizeCall(aggCall{args: `{"a":1}`}).args)
}

func TestBuildMessages(t *testing.T) {
	items := []domain.Item{
		domain.UserMessage("read my mail"),
		{Type: domain.ItemTypeToolCall, ToolName: "list_threads", Arguments: json.RawMessage(`{}`), CallID: "c1"},
		{Type: domain.ItemTypeToolOutput, CallID: "c1", Output: "2 threads"},
		domain.AssistantMessage("You have 2 threads."),
	}

	messages := buildMessages("You handle email.", items)
	require.Len(t, messages, 5)
	assert.NotNil(t, messages[0].OfSystem)
	assert.NotNil(t, messages[1].OfUser)
	require.NotNil(t, messages[2].OfAssistant)
	require.Len(t, messages[2].OfAssistant.ToolCalls, 1)
	assert.Equal(t, "list_threads", messages[2].OfAssistant.ToolCalls[0].Function.Name)
	assert.NotNil(t, messages[3].OfTool)
	assert.NotNil(t, messages[4].OfAssistant)
}

func TestCollectTools(t *testing.T) {
	conn := &fakeConn{name: "Gmail Agent", schemas: []domain.ToolSchema{
		{Name: "send_email", Description: "Send", Parameters: json.RawMessage(`{"type":"object"}`)},
	}}
	a := &domain.AssistantInstance{
		Name:        "Task Coordinator",
		Connections: []domain.ToolConnection{conn},
		Handoffs: []domain.Handoff{
			{Agent: &domain.AssistantInstance{Name: "Slack Agent"}},
		},
	}

	tools, byName, err := testEngine().collectTools(context.Background(), a)
	require.NoError(t, err)
	require.Len(t, tools, 2)
	assert.Equal(t, "send_email", tools[0].Function.Name)
	assert.Equal(t, "transfer_to_slack_agent", tools[1].Function.Name)
	assert.Same(t, conn, byName["send_email"].(*fakeConn))
}

func TestDispatchToolCall(t *testing.T) {
	conn := &fakeConn{name: "Gmail Agent", output: "sent"}
	current := &domain.AssistantInstance{Name: "Gmail Agent"}

	out, next := testEngine().dispatch(context.Background(), current,
		aggCall{id: "c1", name: "send_email", args: "{}"},
		map[string]domain.ToolConnection{"send_email": conn})

	assert.Equal(t, "sent", out)
	assert.Nil(t, next)
	assert.Equal(t, "send_email", conn.called)
}

func TestDispatchToolErrorBecomesOutput(t *testing.T) {
	conn := &fakeConn{name: "Gmail Agent", callErr: errors.New("quota")}
	current := &domain.AssistantInstance{Name: "Gmail Agent"}

	out, next := testEngine().dispatch(context.Background(), current,
		aggCall{name: "send_email", args: "{}"},
		map[string]domain.ToolConnection{"send_email": conn})

	assert.Contains(t, out, "tool error")
	assert.Nil(t, next)
}

func TestDispatchTransfer(t *testing.T) {
	notified := ""
	slack := &domain.AssistantInstance{Name: "Slack Agent"}
	current := &domain.AssistantInstance{
		Name: "Task Coordinator",
		Handoffs: []domain.Handoff{{
			Agent:     slack,
			OnHandoff: func(name string) { notified = name },
		}},
	}

	out, next := testEngine().dispatch(context.Background(), current,
		aggCall{name: "transfer_to_slack_agent", args: "{}"}, nil)

	assert.Contains(t, out, "Slack Agent")
	assert.Same(t, slack, next)
	assert.Equal(t, "Slack Agent", notified)
}

func TestDispatchUnknownTransferTarget(t *testing.T) {
	current := &domain.AssistantInstance{Name: "Task Coordinator"}

	out, next := testEngine().dispatch(context.Background(), current,
		aggCall{name: "transfer_to_fax_agent", args: "{}"}, nil)

	assert.Contains(t, out, "unknown transfer target")
	assert.Nil(t, next)
}

func TestDispatchUnknownTool(t *testing.T) {
	current := &domain.AssistantInstance{Name: "Gmail Agent"}

	out, next := testEngine().dispatch(context.Background(), current,
		aggCall{name: "teleport", args: "{}"}, nil)

	assert.Contains(t, out, "unknown tool")
	assert.Nil(t, next)
}

func TestBuildParamsToolChoice(t *testing.T) {
	e := &Engine{model: "gpt-4o", temperature: 0.7, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	tools, _, err := e.collectTools(context.Background(), &domain.AssistantInstance{
		Handoffs: []domain.Handoff{{Agent: &domain.AssistantInstance{Name: "Gmail Agent"}}},
	})
	require.NoError(t, err)

	a := &domain.AssistantInstance{Instructions: "x", ToolChoice: domain.ToolChoiceRequired}
	params := e.buildParams(a, nil, tools)
	assert.Equal(t, "gpt-4o", params.Model)
	require.Len(t, params.Tools, 1)
	assert.Equal(t, "required", params.ToolChoice.OfAuto.Value)

	a.ToolChoice = domain.ToolChoiceAuto
	params = e.buildParams(a, nil, tools)
	assert.False(t, params.ToolChoice.OfAuto.Valid())
}
