package mcp_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/skury"
	skurymcp "github.com/aretw0/skury/pkg/adapters/mcp"
	"github.com/aretw0/skury/pkg/domain"
	"github.com/aretw0/skury/pkg/surface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedModel struct{ reply string }

func (m fixedModel) Generate(context.Context, domain.Prompt) (string, error) { return m.reply, nil }

const quiz = `<html><body><form>
<div><p>Which planet is largest?</p>
  <label><input type="radio" name="q1" value="a">Mars</label>
  <label><input type="radio" name="q1" value="b">Jupiter</label>
</div>
</form></body></html>`

type rpcReply struct {
	Result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Contents []struct {
			URI  string `json:"uri"`
			Text string `json:"text"`
		} `json:"contents"`
		StructuredContent json.RawMessage `json:"structuredContent"`
		IsError           bool            `json:"isError"`
	} `json:"result"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func newServer(t *testing.T, reply string) (*skury.Coordinator, *skurymcp.Server) {
	t.Helper()
	c, err := skury.New(skury.WithModel(fixedModel{reply: reply}))
	require.NoError(t, err)
	t.Cleanup(c.Close)

	s := skurymcp.NewServer(c)
	call(t, s, "initialize", map[string]any{
		"protocolVersion": "2025-03-26",
		"clientInfo":      map[string]any{"name": "test", "version": "0"},
		"capabilities":    map[string]any{},
	})
	return c, s
}

func call(t *testing.T, s *skurymcp.Server, method string, params any) rpcReply {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)

	out := s.MCPServer().HandleMessage(context.Background(), raw)
	require.NotNil(t, out)
	encoded, err := json.Marshal(out)
	require.NoError(t, err)

	var reply rpcReply
	require.NoError(t, json.Unmarshal(encoded, &reply))
	require.Nil(t, reply.Error)
	return reply
}

func callTool(t *testing.T, s *skurymcp.Server, name string, args map[string]any) rpcReply {
	t.Helper()
	return call(t, s, "tools/call", map[string]any{"name": name, "arguments": args})
}

func TestTools_Listed(t *testing.T) {
	_, s := newServer(t, "")

	raw, err := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": 2, "method": "tools/list"})
	require.NoError(t, err)
	encoded, err := json.Marshal(s.MCPServer().HandleMessage(context.Background(), raw))
	require.NoError(t, err)

	var list struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(encoded, &list))
	var names []string
	for _, tool := range list.Result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"ask", "read_page", "solve_form", "analyze_form", "page_theme"}, names)
}

func TestAsk(t *testing.T) {
	_, s := newServer(t, "forty-two")

	reply := callTool(t, s, "ask", map[string]any{"prompt": "meaning?"})
	require.False(t, reply.Result.IsError)
	require.Len(t, reply.Result.Content, 1)
	assert.Equal(t, "forty-two", reply.Result.Content[0].Text)

	reply = callTool(t, s, "ask", map[string]any{})
	assert.True(t, reply.Result.IsError)
}

func TestReadPage(t *testing.T) {
	c, s := newServer(t, "")

	reply := callTool(t, s, "read_page", nil)
	require.True(t, reply.Result.IsError)
	assert.Equal(t, "No active tab to read.", reply.Result.Content[0].Text)

	_, err := c.OpenSurface(context.Background(), surface.Surface{
		URL:  "https://example.com",
		HTML: `<html><body><article><p>An article long enough to count as the main content of the page.</p></article></body></html>`,
	})
	require.NoError(t, err)

	reply = callTool(t, s, "read_page", nil)
	require.False(t, reply.Result.IsError)
	assert.Contains(t, reply.Result.Content[0].Text, "An article long enough")
}

func TestSolveForm(t *testing.T) {
	c, s := newServer(t, "B")

	_, err := c.OpenSurface(context.Background(), surface.Surface{URL: "https://example.com/quiz", HTML: quiz})
	require.NoError(t, err)

	reply := callTool(t, s, "solve_form", nil)
	require.False(t, reply.Result.IsError)

	var out skurymcp.FormResult
	require.NoError(t, json.Unmarshal(reply.Result.StructuredContent, &out))
	assert.True(t, out.Solved)
	assert.Equal(t, 1, out.Count)
}

func TestPageTheme(t *testing.T) {
	c, s := newServer(t, "")

	_, err := c.OpenSurface(context.Background(), surface.Surface{
		URL:  "https://example.com",
		HTML: `<html><body style="background-color: #101010"><p>dark</p></body></html>`,
	})
	require.NoError(t, err)

	reply := callTool(t, s, "page_theme", nil)
	require.False(t, reply.Result.IsError)
	var out skurymcp.ThemeResult
	require.NoError(t, json.Unmarshal(reply.Result.StructuredContent, &out))
	assert.True(t, out.IsDark)
}

func TestSurfacesResource(t *testing.T) {
	c, s := newServer(t, "")

	id, err := c.OpenSurface(context.Background(), surface.Surface{URL: "https://example.com", HTML: "<p>x</p>"})
	require.NoError(t, err)

	reply := call(t, s, "resources/read", map[string]any{"uri": skurymcp.SurfacesURI})
	require.Len(t, reply.Result.Contents, 1)

	var list []map[string]any
	require.NoError(t, json.Unmarshal([]byte(reply.Result.Contents[0].Text), &list))
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0]["id"])
	assert.Equal(t, true, list[0]["active"])
}

func TestSSEHandler_RefusesForeignOrigin(t *testing.T) {
	_, srv := newServer(t, "")
	h := srv.SSEHandler("http://localhost:8081")

	req := httptest.NewRequest(http.MethodPost, "/message?sessionId=x",
		strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"ask"}}`))
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
