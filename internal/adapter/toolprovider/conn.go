package toolprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"shiro/internal/domain"
)

// defaultCallTimeout bounds a single tool call when the dialer is built
// without an explicit timeout.
const defaultCallTimeout = 30 * time.Second

// mcpClient abstracts the MCP client interface for testability.
type mcpClient interface {
	ListTools(ctx context.Context, request mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Close() error
}

// Dialer opens tool-provider connections. The MCP implementation is the
// production one; tests substitute fakes.
type Dialer interface {
	Dial(ctx context.Context, name string, locator *domain.ProviderLocator) (domain.ToolConnection, error)
}

// MCPDialer dials MCP servers over SSE or stdio transports.
type MCPDialer struct {
	logger      *slog.Logger
	callTimeout time.Duration
}

// NewMCPDialer creates a production dialer. A non-positive callTimeout
// falls back to the default.
func NewMCPDialer(logger *slog.Logger, callTimeout time.Duration) *MCPDialer {
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	return &MCPDialer{logger: logger, callTimeout: callTimeout}
}

// Dial connects to the tool provider described by locator and performs the
// MCP initialize handshake. No retries: a failed dial is reported as-is.
func (d *MCPDialer) Dial(ctx context.Context, name string, locator *domain.ProviderLocator) (domain.ToolConnection, error) {
	var c mcpClient
	var err error

	switch locator.Transport {
	case domain.TransportStdio:
		c, err = mcpclient.NewStdioMCPClient(locator.Command, envSlice(locator.Env), locator.Args...)
		if err != nil {
			return nil, fmt.Errorf("create stdio client: %w", err)
		}
	case domain.TransportSSE:
		sseClient, sErr := mcpclient.NewSSEMCPClient(locator.URL)
		if sErr != nil {
			return nil, fmt.Errorf("create sse client: %w", sErr)
		}
		if err = sseClient.Start(ctx); err != nil {
			return nil, fmt.Errorf("start sse client: %w", err)
		}
		c = sseClient
	default:
		return nil, fmt.Errorf("unsupported transport %q", locator.Transport)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "shiro",
		Version: "1.0.0",
	}

	if ic, ok := c.(interface {
		Initialize(ctx context.Context, request mcp.InitializeRequest) (*mcp.InitializeResult, error)
	}); ok {
		if _, err = ic.Initialize(ctx, initReq); err != nil {
			c.Close()
			return nil, domain.WrapOp("initialize", err)
		}
	}

	d.logger.Info("tool provider connected", "name", name, "transport", locator.Transport)

	return &mcpConn{
		name:        name,
		client:      c,
		callTimeout: d.callTimeout,
		logger:      d.logger,
	}, nil
}

// mcpConn adapts an MCP client to domain.ToolConnection.
type mcpConn struct {
	name        string
	client      mcpClient
	callTimeout time.Duration
	logger      *slog.Logger
}

func (c *mcpConn) Name() string { return c.name }

// Tools lists the provider's tools as domain schemas.
func (c *mcpConn) Tools(ctx context.Context) ([]domain.ToolSchema, error) {
	result, err := c.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("list tools for %q: %w", c.name, err)
	}

	schemas := make([]domain.ToolSchema, 0, len(result.Tools))
	for _, t := range result.Tools {
		params := json.RawMessage(`{"type": "object"}`)
		if t.InputSchema.Properties != nil || t.InputSchema.Required != nil {
			if data, mErr := json.Marshal(t.InputSchema); mErr == nil {
				params = data
			}
		}
		schemas = append(schemas, domain.ToolSchema{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  params,
		})
	}
	return schemas, nil
}

// Call invokes one tool and returns its textual result.
func (c *mcpConn) Call(ctx context.Context, tool string, args []byte) (string, error) {
	var parsed map[string]interface{}
	if len(args) > 0 && string(args) != "null" {
		if err := json.Unmarshal(args, &parsed); err != nil {
			return "", fmt.Errorf("tool %q arguments: %w", tool, err)
		}
	}

	callReq := mcp.CallToolRequest{}
	callReq.Params.Name = tool
	callReq.Params.Arguments = parsed

	c.logger.Debug("tool call", "provider", c.name, "tool", tool)

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	result, err := c.client.CallTool(callCtx, callReq)
	if err != nil {
		return "", fmt.Errorf("call tool %q on %q: %w", tool, c.name, err)
	}

	content := extractContent(result)
	if result.IsError {
		return "", fmt.Errorf("tool %q on %q reported error: %s", tool, c.name, content)
	}
	return content, nil
}

func (c *mcpConn) Close() error {
	return c.client.Close()
}

// extractContent converts MCP CallToolResult content to a string.
func extractContent(result *mcp.CallToolResult) string {
	var parts []string
	for _, item := range result.Content {
		switch v := item.(type) {
		case mcp.TextContent:
			parts = append(parts, v.Text)
		case *mcp.TextContent:
			parts = append(parts, v.Text)
		default:
			if data, err := json.Marshal(v); err == nil {
				parts = append(parts, string(data))
			}
		}
	}
	return strings.Join(parts, "\n")
}

// envSlice converts a map of env vars to KEY=VALUE slices.
func envSlice(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	result := make([]string, 0, len(env))
	for k, v := range env {
		result = append(result, k+"="+v)
	}
	return result
}
