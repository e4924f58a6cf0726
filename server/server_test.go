package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sourcequery/sourcequery/config"
)

// connect wires a client session to srv over in-memory transports.
func connect(t *testing.T, ctx context.Context, srv *Server) *mcp.ClientSession {
	t.Helper()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	if _, err := srv.MCP().Connect(ctx, serverTransport, nil); err != nil {
		t.Fatalf("server connect failed: %v", err)
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect failed: %v", err)
	}
	t.Cleanup(func() {
		_ = session.Close()
	})
	return session
}

func callText(t *testing.T, ctx context.Context, session *mcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool(%s) failed: %v", name, err)
	}
	if len(res.Content) != 1 {
		t.Fatalf("expected one content block, got %d", len(res.Content))
	}
	text, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text, res.IsError
}

func TestListTools(t *testing.T) {
	ctx := context.Background()
	srv := New(Options{})
	session := connect(t, ctx, srv)

	res, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools failed: %v", err)
	}

	want := map[string]bool{
		"get_erd":          false,
		"get_swagger":      false,
		"mongodb_explorer": false,
		"data_explorer":    false,
	}
	for _, tool := range res.Tools {
		if _, expected := want[tool.Name]; !expected {
			t.Errorf("unexpected tool %q", tool.Name)
			continue
		}
		want[tool.Name] = true
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("tool %q not listed", name)
		}
	}
}

func TestUnconfiguredSourcesReturnErrors(t *testing.T) {
	ctx := context.Background()
	srv := New(Options{})
	session := connect(t, ctx, srv)

	text, isError := callText(t, ctx, session, "get_erd", nil)
	if !isError {
		t.Error("expected error payload for unconfigured get_erd")
	}
	if !strings.Contains(text, "ERD_API_URL") {
		t.Errorf("expected configuration hint, got %q", text)
	}

	_, isError = callText(t, ctx, session, "get_swagger", nil)
	if !isError {
		t.Error("expected error payload for unconfigured get_swagger")
	}

	_, isError = callText(t, ctx, session, "mongodb_explorer", map[string]any{"action": "listCollections"})
	if !isError {
		t.Error("expected error payload for unconfigured mongodb_explorer")
	}
}

func TestDataExplorerAllSourcesDisabled(t *testing.T) {
	ctx := context.Background()
	srv := New(Options{})
	session := connect(t, ctx, srv)

	text, isError := callText(t, ctx, session, "data_explorer", map[string]any{
		"query": "show me the users table",
	})
	if isError {
		t.Fatalf("data_explorer must degrade, not fail: %s", text)
	}

	if got := strings.Count(text, "not configured"); got != 3 {
		t.Errorf("expected exactly three not-configured messages, got %d in %s", got, text)
	}
	if !strings.Contains(text, `"entityName": "users"`) {
		t.Errorf("expected resolved entity name in payload, got %s", text)
	}
}

func TestDataExplorerUnresolvedEntity(t *testing.T) {
	ctx := context.Background()
	srv := New(Options{})
	session := connect(t, ctx, srv)

	text, isError := callText(t, ctx, session, "data_explorer", map[string]any{
		"query": "tell me about the schema",
	})
	if !isError {
		t.Error("expected error payload for all-stop-word query")
	}
	if !strings.Contains(text, "entity name") {
		t.Errorf("unexpected message: %q", text)
	}
}

func TestMongoExplorerUnknownAction(t *testing.T) {
	ctx := context.Background()
	srv := New(Options{Config: config.Config{MongoURI: "mongodb://localhost:1/app"}})
	session := connect(t, ctx, srv)

	text, isError := callText(t, ctx, session, "mongodb_explorer", map[string]any{
		"action": "dropEverything",
	})
	if !isError {
		t.Error("expected error payload for unknown action")
	}
	if !strings.Contains(text, "dropEverything") {
		t.Errorf("expected the action echoed back, got %q", text)
	}
}

func TestGetERDMarkdown(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tables":[{"name":"users","columns":[{"name":"id","type":"int","isPrimaryKey":true}]}]}`))
	}))
	defer ts.Close()

	ctx := context.Background()
	srv := New(Options{Config: config.Config{ERDAPIURL: ts.URL}})
	session := connect(t, ctx, srv)

	text, isError := callText(t, ctx, session, "get_erd", map[string]any{
		"options": map[string]any{"format": "markdown"},
	})
	if isError {
		t.Fatalf("get_erd failed: %s", text)
	}
	if !strings.HasPrefix(text, "# Entity Relationship Diagram") {
		t.Errorf("unexpected document start: %q", text)
	}
	if !strings.Contains(text, "| id | int |  | PK |  |") {
		t.Errorf("expected rendered column row, got %s", text)
	}
}

func TestDataExplorerMarkdown(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tables":[{"name":"users","columns":[{"name":"id","type":"int","isPrimaryKey":true}]}]}`))
	}))
	defer ts.Close()

	ctx := context.Background()
	srv := New(Options{Config: config.Config{ERDAPIURL: ts.URL}})
	session := connect(t, ctx, srv)

	text, isError := callText(t, ctx, session, "data_explorer", map[string]any{
		"query":   "show me the users table",
		"options": map[string]any{"format": "markdown"},
	})
	if isError {
		t.Fatalf("data_explorer failed: %s", text)
	}
	if !strings.HasPrefix(text, "# Data Explorer: users") {
		t.Errorf("unexpected document start: %q", text)
	}
	if !strings.Contains(text, "| id | int |  | PK |  |") {
		t.Errorf("expected ERD section row, got %s", text)
	}
	if !strings.Contains(text, "## MongoDB") {
		t.Error("expected a MongoDB section even when unconfigured")
	}
}

func TestGetSwaggerPathFilter(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"info": {"title": "Shop API"},
			"paths": {
				"/orders": {"get": {"summary": "List orders"}},
				"/invoices": {"get": {"summary": "List invoices"}}
			}
		}`))
	}))
	defer ts.Close()

	ctx := context.Background()
	srv := New(Options{Config: config.Config{SwaggerAPIURL: ts.URL}})
	session := connect(t, ctx, srv)

	text, isError := callText(t, ctx, session, "get_swagger", map[string]any{
		"options": map[string]any{"path": "/orders"},
	})
	if isError {
		t.Fatalf("get_swagger failed: %s", text)
	}
	if !strings.Contains(text, "/orders") {
		t.Error("expected /orders in filtered document")
	}
	if strings.Contains(text, "/invoices") {
		t.Error("expected /invoices to be filtered out")
	}
}
