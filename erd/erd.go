// Package erd fetches and renders Entity-Relationship Diagram documents.
package erd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// ErrNotConfigured is returned when no ERD endpoint URL is set.
var ErrNotConfigured = errors.New("ERD endpoint not configured")

// Document is the full ERD payload returned by the endpoint.
type Document struct {
	Tables []Table `json:"tables"`
}

// Table describes one relational table.
type Table struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Columns     []Column   `json:"columns"`
	Relations   []Relation `json:"relations,omitempty"`
}

// Column describes one table column.
type Column struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Description  string `json:"description,omitempty"`
	Required     bool   `json:"required,omitempty"`
	IsPrimaryKey bool   `json:"isPrimaryKey,omitempty"`
	IsForeignKey bool   `json:"isForeignKey,omitempty"`
}

// Relation describes a relationship between two tables.
type Relation struct {
	Type         string `json:"type"`
	Description  string `json:"description,omitempty"`
	SourceTable  string `json:"sourceTable"`
	SourceColumn string `json:"sourceColumn"`
	TargetTable  string `json:"targetTable"`
	TargetColumn string `json:"targetColumn"`
}

// Options configures a Client.
type Options struct {
	// Endpoint is the ERD document URL. Empty disables the client.
	Endpoint string
	// HTTPClient overrides the default client (useful for tests).
	HTTPClient *http.Client
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// Client fetches ERD documents over HTTP. Documents are fetched fresh
// on every call; nothing is cached.
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

// Fetch retrieves the ERD document with a single GET.
func (c *Client) Fetch(ctx context.Context) (*Document, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build ERD request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch ERD: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch ERD: unexpected status %s", resp.Status)
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode ERD document: %w", err)
	}

	c.log.Debug("fetched ERD document", zap.Int("tables", len(doc.Tables)))
	return &doc, nil
}

// FindTable returns the first table whose name equals or contains the
// entity name, case-insensitively. First match in source order wins.
// Returns nil when no table matches.
func (d *Document) FindTable(entityName string) *Table {
	needle := strings.ToLower(entityName)
	for i := range d.Tables {
		name := strings.ToLower(d.Tables[i].Name)
		if name == needle || strings.Contains(name, needle) {
			return &d.Tables[i]
		}
	}
	return nil
}
