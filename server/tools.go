package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/sourcequery/sourcequery/entity"
	"github.com/sourcequery/sourcequery/erd"
	"github.com/sourcequery/sourcequery/explorer"
	"github.com/sourcequery/sourcequery/metrics"
	"github.com/sourcequery/sourcequery/mongostore"
	"github.com/sourcequery/sourcequery/swagger"
)

// Output formats and defaults shared by every tool.
const (
	formatJSON     = "json"
	formatMarkdown = "markdown"
	defaultLimit   = 10
)

type formatOptions struct {
	Format string `json:"format,omitempty"`
}

type swaggerOptions struct {
	Format string `json:"format,omitempty"`
	Path   string `json:"path,omitempty"`
}

type limitOptions struct {
	Format string `json:"format,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

type getERDArgs struct {
	Options *formatOptions `json:"options,omitempty"`
}

type getSwaggerArgs struct {
	Options *swaggerOptions `json:"options,omitempty"`
}

type mongoExplorerArgs struct {
	Action     string        `json:"action"`
	Collection string        `json:"collection,omitempty"`
	Query      string        `json:"query,omitempty"`
	Options    *limitOptions `json:"options,omitempty"`
}

type dataExplorerArgs struct {
	Query   string        `json:"query"`
	Options *limitOptions `json:"options,omitempty"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_erd",
		Description: "Fetch the Entity-Relationship Diagram describing tables, columns, and relations",
		InputSchema: inputSchema(map[string]*jsonschema.Schema{
			"options": optionsSchema(false, false),
		}),
	}, s.handleGetERD)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_swagger",
		Description: "Fetch the OpenAPI document describing the REST API, optionally restricted to one exact path",
		InputSchema: inputSchema(map[string]*jsonschema.Schema{
			"options": optionsSchema(true, false),
		}),
	}, s.handleGetSwagger)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "mongodb_explorer",
		Description: "Explore MongoDB: list collections, infer a collection schema, fetch random samples, or run a JSON filter query",
		InputSchema: inputSchema(map[string]*jsonschema.Schema{
			"action": {
				Type:        "string",
				Description: "The operation to perform",
				Enum:        []any{"listCollections", "describeCollection", "sampleData", "query"},
			},
			"collection": {
				Type:        "string",
				Description: "Collection name (required for all actions except listCollections)",
			},
			"query": {
				Type:        "string",
				Description: "JSON-encoded filter (query action only)",
			},
			"options": optionsSchema(false, true),
		}, "action"),
	}, s.handleMongoExplorer)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "data_explorer",
		Description: "Answer a free-text question about an entity by combining ERD, Swagger, and MongoDB results",
		InputSchema: inputSchema(map[string]*jsonschema.Schema{
			"query": {
				Type:        "string",
				Description: "Free-text query naming a table, collection, or API entity",
			},
			"options": optionsSchema(false, true),
		}, "query"),
	}, s.handleDataExplorer)
}

func (s *Server) handleGetERD(ctx context.Context, req *mcp.CallToolRequest, args getERDArgs) (*mcp.CallToolResult, any, error) {
	defer s.observe("get_erd", time.Now())

	if !s.erd.Configured() {
		return s.errorResult("get_erd", "ERD_API_URL is not configured"), nil, nil
	}

	doc, err := s.erd.Fetch(ctx)
	if err != nil {
		return s.errorResult("get_erd", fmt.Sprintf("failed to fetch ERD: %v", err)), nil, nil
	}

	if format(args.Options.format()) == formatMarkdown {
		return s.renderResult("get_erd", func() string { return erd.RenderMarkdown(doc) }), nil, nil
	}
	return s.jsonResult("get_erd", doc), nil, nil
}

func (s *Server) handleGetSwagger(ctx context.Context, req *mcp.CallToolRequest, args getSwaggerArgs) (*mcp.CallToolResult, any, error) {
	defer s.observe("get_swagger", time.Now())

	if !s.swagger.Configured() {
		return s.errorResult("get_swagger", "SWAGGER_API_URL is not configured"), nil, nil
	}

	doc, err := s.swagger.Fetch(ctx)
	if err != nil {
		return s.errorResult("get_swagger", fmt.Sprintf("failed to fetch Swagger document: %v", err)), nil, nil
	}

	if args.Options != nil && args.Options.Path != "" {
		doc = doc.FilterPath(args.Options.Path)
	}

	if format(args.Options.format()) == formatMarkdown {
		return s.renderResult("get_swagger", func() string { return swagger.RenderMarkdown(doc) }), nil, nil
	}
	return s.jsonResult("get_swagger", doc), nil, nil
}

func (s *Server) handleMongoExplorer(ctx context.Context, req *mcp.CallToolRequest, args mongoExplorerArgs) (*mcp.CallToolResult, any, error) {
	defer s.observe("mongodb_explorer", time.Now())

	if !s.store.Configured() {
		return s.errorResult("mongodb_explorer", "MONGODB_URI is not configured"), nil, nil
	}

	outFormat, limit := args.Options.formatAndLimit()

	switch args.Action {
	case "listCollections":
		stats, err := s.store.ListCollections(ctx)
		if err != nil {
			return s.errorResult("mongodb_explorer", fmt.Sprintf("failed to list collections: %v", err)), nil, nil
		}
		if outFormat == formatMarkdown {
			return s.renderResult("mongodb_explorer", func() string { return mongostore.RenderCollections(stats) }), nil, nil
		}
		return s.jsonResult("mongodb_explorer", map[string]any{"collections": stats}), nil, nil

	case "describeCollection":
		if args.Collection == "" {
			return s.errorResult("mongodb_explorer", "collection is required for describeCollection"), nil, nil
		}
		schema, err := s.store.DescribeCollection(ctx, args.Collection)
		if err != nil {
			return s.errorResult("mongodb_explorer", fmt.Sprintf("failed to describe collection: %v", err)), nil, nil
		}
		if outFormat == formatMarkdown {
			return s.renderResult("mongodb_explorer", func() string { return mongostore.RenderSchema(schema) }), nil, nil
		}
		return s.jsonResult("mongodb_explorer", schema), nil, nil

	case "sampleData":
		if args.Collection == "" {
			return s.errorResult("mongodb_explorer", "collection is required for sampleData"), nil, nil
		}
		docs, err := s.store.SampleData(ctx, args.Collection, limit)
		if err != nil {
			return s.errorResult("mongodb_explorer", fmt.Sprintf("failed to sample data: %v", err)), nil, nil
		}
		if outFormat == formatMarkdown {
			heading := "Sample: " + args.Collection
			return s.renderResult("mongodb_explorer", func() string { return mongostore.RenderDocuments(heading, docs) }), nil, nil
		}
		return s.jsonResult("mongodb_explorer", map[string]any{"data": docs}), nil, nil

	case "query":
		if args.Collection == "" {
			return s.errorResult("mongodb_explorer", "collection is required for query"), nil, nil
		}
		result, err := s.store.Query(ctx, args.Collection, args.Query, limit)
		if err != nil {
			if errors.Is(err, mongostore.ErrInvalidFilter) {
				return s.errorResult("mongodb_explorer", err.Error()), nil, nil
			}
			return s.errorResult("mongodb_explorer", fmt.Sprintf("query failed: %v", err)), nil, nil
		}
		if outFormat == formatMarkdown {
			return s.renderResult("mongodb_explorer", func() string { return mongostore.RenderQueryResult(args.Collection, result) }), nil, nil
		}
		return s.jsonResult("mongodb_explorer", result), nil, nil

	default:
		return s.errorResult("mongodb_explorer", fmt.Sprintf("unknown action %q", args.Action)), nil, nil
	}
}

func (s *Server) handleDataExplorer(ctx context.Context, req *mcp.CallToolRequest, args dataExplorerArgs) (*mcp.CallToolResult, any, error) {
	defer s.observe("data_explorer", time.Now())

	outFormat, limit := args.Options.formatAndLimit()

	result, err := s.explorer.Explore(ctx, args.Query, explorer.ExploreOptions{Limit: limit})
	if err != nil {
		if errors.Is(err, entity.ErrUnresolved) {
			return s.errorResult("data_explorer",
				"could not determine an entity name from the query; try naming a table or collection"), nil, nil
		}
		return s.errorResult("data_explorer", fmt.Sprintf("explore failed: %v", err)), nil, nil
	}

	if outFormat == formatMarkdown {
		return s.renderResult("data_explorer", func() string { return explorer.RenderMarkdown(result) }), nil, nil
	}
	return s.jsonResult("data_explorer", result), nil, nil
}

func (o *formatOptions) format() string {
	if o == nil {
		return ""
	}
	return o.Format
}

func (o *swaggerOptions) format() string {
	if o == nil {
		return ""
	}
	return o.Format
}

func (o *limitOptions) formatAndLimit() (string, int) {
	if o == nil {
		return formatJSON, defaultLimit
	}
	limit := o.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	return format(o.Format), limit
}

func format(value string) string {
	if value == formatMarkdown {
		return formatMarkdown
	}
	return formatJSON
}

// observe records the invocation counter and duration for one tool call.
func (s *Server) observe(tool string, start time.Time) {
	metrics.ToolInvocations.WithLabelValues(tool).Inc()
	metrics.ToolDuration.WithLabelValues(tool).Observe(time.Since(start).Seconds())
}

// textResult wraps a payload string as a single text content block.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// errorResult reports a failure as data. The tool boundary always
// returns a well-formed response, never a transport-level fault.
func (s *Server) errorResult(tool, message string) *mcp.CallToolResult {
	metrics.ToolFailures.WithLabelValues(tool).Inc()
	s.log.Warn("tool returned error payload", zap.String("tool", tool), zap.String("message", message))
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: message}},
	}
}

// jsonResult encodes v as indented JSON.
func (s *Server) jsonResult(tool string, v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return s.errorResult(tool, fmt.Sprintf("failed to encode result: %v", err))
	}
	return textResult(string(data))
}

// renderResult runs a markdown renderer, converting a panic into an
// error payload suggesting the JSON format.
func (s *Server) renderResult(tool string, render func() string) (result *mcp.CallToolResult) {
	defer func() {
		if r := recover(); r != nil {
			result = s.errorResult(tool,
				fmt.Sprintf("markdown rendering failed (%v); retry with format \"json\"", r))
		}
	}()
	return textResult(render())
}

// inputSchema builds an object schema from properties and required keys.
func inputSchema(properties map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// optionsSchema builds the shared options sub-schema.
func optionsSchema(withPath, withLimit bool) *jsonschema.Schema {
	properties := map[string]*jsonschema.Schema{
		"format": {
			Type:        "string",
			Description: "Output format, defaults to json",
			Enum:        []any{formatJSON, formatMarkdown},
		},
	}
	if withPath {
		properties["path"] = &jsonschema.Schema{
			Type:        "string",
			Description: "Restrict the result to this exact path key",
		}
	}
	if withLimit {
		properties["limit"] = &jsonschema.Schema{
			Type:        "integer",
			Description: "Maximum number of documents to return, defaults to 10",
		}
	}
	return &jsonschema.Schema{Type: "object", Properties: properties}
}
