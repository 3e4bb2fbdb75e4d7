package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const mcpClientName = "reagent"

// MCPCatalog discovers tools served by an external MCP process over
// streamable HTTP and exposes them as regular Tool descriptors. The catalog
// is optional: if the server is unreachable the built-in tools continue to
// work and the catalog simply stays empty.
type MCPCatalog struct {
	endpoint string
	apiKey   string
	version  string

	mu      sync.RWMutex
	session *mcp.ClientSession
	tools   []Tool

	sf singleflight.Group // deduplicate concurrent refreshes
}

func NewMCPCatalog(endpoint, apiKey, version string) *MCPCatalog {
	return &MCPCatalog{endpoint: endpoint, apiKey: apiKey, version: version}
}

// Tools returns the most recently discovered tool set.
func (c *MCPCatalog) Tools() []Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Tool, len(c.tools))
	copy(out, c.tools)
	return out
}

// Connected reports whether a live session to the MCP server exists.
func (c *MCPCatalog) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session != nil
}

// Refresh connects (or reconnects) to the MCP server and re-lists its tools.
// Concurrent callers share a single connection attempt.
func (c *MCPCatalog) Refresh(ctx context.Context) ([]Tool, error) {
	v, err, _ := c.sf.Do("refresh", func() (interface{}, error) {
		return c.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Tool), nil
}

func (c *MCPCatalog) refresh(ctx context.Context) ([]Tool, error) {
	if c.endpoint == "" {
		return nil, nil
	}

	client := mcp.NewClient(&mcp.Implementation{Name: mcpClientName, Version: c.version}, nil)
	transport := &mcp.StreamableClientTransport{
		Endpoint:   c.endpoint,
		HTTPClient: c.httpClient(),
	}
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to MCP server: %w", err)
	}

	listed, err := session.ListTools(ctx, nil)
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("list MCP tools: %w", err)
	}

	wrapped := make([]Tool, 0, len(listed.Tools))
	for _, t := range listed.Tools {
		wrapped = append(wrapped, c.wrap(t))
	}

	c.mu.Lock()
	old := c.session
	c.session = session
	c.tools = wrapped
	c.mu.Unlock()
	if old != nil {
		old.Close()
	}

	log.Info().Int("tools", len(wrapped)).Str("endpoint", c.endpoint).Msg("MCP catalog refreshed")
	return wrapped, nil
}

// wrap turns an MCP tool description into a Tool whose Execute calls back
// through the live session.
func (c *MCPCatalog) wrap(t *mcp.Tool) Tool {
	schema := map[string]interface{}{"type": "object"}
	if t.InputSchema != nil {
		if raw, err := json.Marshal(t.InputSchema); err == nil {
			var m map[string]interface{}
			if err := json.Unmarshal(raw, &m); err == nil {
				schema = m
			}
		}
	}

	name := t.Name
	return Tool{
		Name:        name,
		Description: t.Description,
		InputSchema: schema,
		Execute: func(ctx context.Context, input map[string]interface{}) (string, error) {
			c.mu.RLock()
			session := c.session
			c.mu.RUnlock()
			if session == nil {
				return "", fmt.Errorf("MCP session not connected")
			}

			res, err := session.CallTool(ctx, &mcp.CallToolParams{
				Name:      name,
				Arguments: input,
			})
			if err != nil {
				return "", fmt.Errorf("call MCP tool %s: %w", name, err)
			}

			text := flattenContent(res.Content)
			if res.IsError {
				return "", fmt.Errorf("MCP tool %s failed: %s", name, text)
			}
			return text, nil
		},
	}
}

func flattenContent(blocks []mcp.Content) string {
	var sb strings.Builder
	for _, b := range blocks {
		if tc, ok := b.(*mcp.TextContent); ok {
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(tc.Text)
		}
	}
	return sb.String()
}

// Close shuts the MCP session down, if one exists.
func (c *MCPCatalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	err := c.session.Close()
	c.session = nil
	c.tools = nil
	return err
}

// httpClient injects the x-api-key header the MCP server expects.
func (c *MCPCatalog) httpClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &headerTransport{
			apiKey: c.apiKey,
			base:   http.DefaultTransport,
		},
	}
}

type headerTransport struct {
	apiKey string
	base   http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.apiKey != "" {
		clone := req.Clone(req.Context())
		clone.Header.Set("x-api-key", t.apiKey)
		return t.base.RoundTrip(clone)
	}
	return t.base.RoundTrip(req)
}
