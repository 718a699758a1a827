package toolprovider

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiro/internal/domain"
)

type fakeMCPClient struct {
	tools      []mcp.Tool
	listErr    error
	callResult *mcp.CallToolResult
	callErr    error
	lastCall   mcp.CallToolRequest
	closed     bool
}

func (f *fakeMCPClient) ListTools(_ context.Context, _ mcp.ListToolsRequest) (*mcp.ListToolsResult, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &mcp.ListToolsResult{Tools: f.tools}, nil
}

func (f *fakeMCPClient) CallTool(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f.lastCall = req
	if f.callErr != nil {
		return nil, f.callErr
	}
	return f.callResult, nil
}

func (f *fakeMCPClient) Close() error {
	f.closed = true
	return nil
}

func newTestConn(client mcpClient) *mcpConn {
	return &mcpConn{
		name:        "gmail",
		client:      client,
		callTimeout: time.Second,
		logger:      testLogger(),
	}
}

func TestConnTools(t *testing.T) {
	client := &fakeMCPClient{tools: []mcp.Tool{
		{Name: "send_email", Description: "Send an email"},
		{Name: "list_threads"},
	}}
	conn := newTestConn(client)

	schemas, err := conn.Tools(context.Background())
	require.NoError(t, err)
	require.Len(t, schemas, 2)
	assert.Equal(t, "send_email", schemas[0].Name)
	assert.Equal(t, "Send an email", schemas[0].Description)
	assert.JSONEq(t, `{"type": "object"}`, string(schemas[1].Parameters))
}

func TestConnToolsError(t *testing.T) {
	conn := newTestConn(&fakeMCPClient{listErr: errors.New("connection reset")})

	_, err := conn.Tools(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"gmail"`)
}

func TestConnCall(t *testing.T) {
	client := &fakeMCPClient{callResult: &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: "sent"}},
	}}
	conn := newTestConn(client)

	out, err := conn.Call(context.Background(), "send_email", json.RawMessage(`{"to":"a@b.c"}`))
	require.NoError(t, err)
	assert.Equal(t, "sent", out)
	assert.Equal(t, "send_email", client.lastCall.Params.Name)
}

func TestConnCallToolError(t *testing.T) {
	client := &fakeMCPClient{callResult: &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: "quota exceeded"}},
	}}
	conn := newTestConn(client)

	_, err := conn.Call(context.Background(), "send_email", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestConnCallBadArguments(t *testing.T) {
	conn := newTestConn(&fakeMCPClient{})

	_, err := conn.Call(context.Background(), "send_email", json.RawMessage(`{broken`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "arguments")
}

func TestConnClose(t *testing.T) {
	client := &fakeMCPClient{}
	conn := newTestConn(client)

	require.NoError(t, conn.Close())
	assert.True(t, client.closed)
}

func TestDialUnsupportedTransport(t *testing.T) {
	d := NewMCPDialer(testLogger(), 0)
	_, err := d.Dial(context.Background(), "gmail", &domain.ProviderLocator{Transport: "grpc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported transport")
}
