// Package swagger fetches, filters, and renders OpenAPI documents.
package swagger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// ErrNotConfigured is returned when no Swagger endpoint URL is set.
var ErrNotConfigured = errors.New("Swagger endpoint not configured")

// Document is an OpenAPI document narrowed to the fields this server
// reads. Component schemas stay raw so they can be embedded verbatim.
type Document struct {
	OpenAPI    string              `json:"openapi,omitempty"`
	Swagger    string              `json:"swagger,omitempty"`
	Info       Info                `json:"info"`
	Paths      map[string]PathItem `json:"paths,omitempty"`
	Components *Components         `json:"components,omitempty"`
}

// Info is the OpenAPI info block.
type Info struct {
	Title       string `json:"title,omitempty"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty"`
}

// Components holds the reusable schema definitions.
type Components struct {
	Schemas map[string]json.RawMessage `json:"schemas,omitempty"`
}

// PathItem holds the operations defined on one path.
type PathItem struct {
	Get     *Operation `json:"get,omitempty"`
	Put     *Operation `json:"put,omitempty"`
	Post    *Operation `json:"post,omitempty"`
	Delete  *Operation `json:"delete,omitempty"`
	Patch   *Operation `json:"patch,omitempty"`
	Head    *Operation `json:"head,omitempty"`
	Options *Operation `json:"options,omitempty"`
}

// Operation is one HTTP operation on a path.
type Operation struct {
	Summary     string              `json:"summary,omitempty"`
	Description string              `json:"description,omitempty"`
	Parameters  []Parameter         `json:"parameters,omitempty"`
	RequestBody *RequestBody        `json:"requestBody,omitempty"`
	Responses   map[string]Response `json:"responses,omitempty"`
}

// Parameter is one operation parameter.
type Parameter struct {
	Name        string          `json:"name"`
	In          string          `json:"in,omitempty"`
	Required    bool            `json:"required,omitempty"`
	Description string          `json:"description,omitempty"`
	Schema      json.RawMessage `json:"schema,omitempty"`
}

// RequestBody is an operation's request body.
type RequestBody struct {
	Description string               `json:"description,omitempty"`
	Required    bool                 `json:"required,omitempty"`
	Content     map[string]MediaType `json:"content,omitempty"`
}

// MediaType carries a raw schema for one media type.
type MediaType struct {
	Schema json.RawMessage `json:"schema,omitempty"`
}

// Response is one response entry.
type Response struct {
	Description string               `json:"description,omitempty"`
	Content     map[string]MediaType `json:"content,omitempty"`
}

// MethodOperation pairs an HTTP method with its operation.
type MethodOperation struct {
	Method    string
	Operation *Operation
}

// Operations returns the defined operations in a fixed method order.
func (p PathItem) Operations() []MethodOperation {
	ordered := []MethodOperation{
		{"get", p.Get}, {"post", p.Post}, {"put", p.Put},
		{"patch", p.Patch}, {"delete", p.Delete},
		{"head", p.Head}, {"options", p.Options},
	}
	out := make([]MethodOperation, 0, len(ordered))
	for _, mo := range ordered {
		if mo.Operation != nil {
			out = append(out, mo)
		}
	}
	return out
}

// Options configures a Client.
type Options struct {
	Endpoint   string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client fetches OpenAPI documents over HTTP, fresh on every call.
type Client struct {
	endpoint   string
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates a Client from opts.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{endpoint: opts.Endpoint, httpClient: httpClient, log: log}
}

// Configured reports whether an endpoint URL is set.
func (c *Client) Configured() bool {
	return c != nil && c.endpoint != ""
}

// Fetch retrieves the OpenAPI document with a single GET.
func (c *Client) Fetch(ctx context.Context) (*Document, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build Swagger request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch Swagger: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch Swagger: unexpected status %s", resp.Status)
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode Swagger document: %w", err)
	}

	c.log.Debug("fetched Swagger document",
		zap.String("title", doc.Info.Title), zap.Int("paths", len(doc.Paths)))
	return &doc, nil
}

// FilterPath restricts the document's paths map to exactly path when
// that key exists. Exact match only; on no match the document is
// returned unchanged.
func (d *Document) FilterPath(path string) *Document {
	if path == "" {
		return d
	}
	item, ok := d.Paths[path]
	if !ok {
		return d
	}
	filtered := *d
	filtered.Paths = map[string]PathItem{path: item}
	return &filtered
}

// Narrow reduces the document to the parts relevant to entityName.
//
// Two passes: an exact lookup at /{entityName} with at least one
// operation wins outright; otherwise the union of every path whose
// string contains the entity name and every component schema whose
// name contains it, case-insensitively. The second return value is
// false when neither pass matched anything.
func (d *Document) Narrow(entityName string) (*Document, bool) {
	needle := strings.ToLower(entityName)

	exact := "/" + entityName
	if item, ok := d.Paths[exact]; ok && len(item.Operations()) > 0 {
		narrowed := *d
		narrowed.Paths = map[string]PathItem{exact: item}
		narrowed.Components = nil
		return &narrowed, true
	}

	paths := make(map[string]PathItem)
	for path, item := range d.Paths {
		if strings.Contains(strings.ToLower(path), needle) {
			paths[path] = item
		}
	}

	var schemas map[string]json.RawMessage
	if d.Components != nil {
		for name, schema := range d.Components.Schemas {
			if strings.Contains(strings.ToLower(name), needle) {
				if schemas == nil {
					schemas = make(map[string]json.RawMessage)
				}
				schemas[name] = schema
			}
		}
	}

	if len(paths) == 0 && len(schemas) == 0 {
		return nil, false
	}

	narrowed := *d
	narrowed.Paths = paths
	narrowed.Components = nil
	if schemas != nil {
		narrowed.Components = &Components{Schemas: schemas}
	}
	return &narrowed, true
}
