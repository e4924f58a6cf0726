// Package server wires the query tools into an MCP server.
package server

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/sourcequery/sourcequery/config"
	"github.com/sourcequery/sourcequery/erd"
	"github.com/sourcequery/sourcequery/explorer"
	"github.com/sourcequery/sourcequery/mongostore"
	"github.com/sourcequery/sourcequery/swagger"
)

// Name and Version identify this server to MCP clients.
const (
	Name    = "sourcequery"
	Version = "0.1.0"
)

// Options configures a Server.
type Options struct {
	Config config.Config
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// Server owns the source clients and the MCP server exposing them.
type Server struct {
	mcp      *mcp.Server
	log      *zap.Logger
	erd      *erd.Client
	swagger  *swagger.Client
	store    *mongostore.Inspector
	explorer *explorer.Explorer
}

// New builds the source clients from config and registers the four
// tools. Unconfigured sources are disabled, never a startup failure.
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	cfg := opts.Config

	s := &Server{
		log:     log,
		erd:     erd.NewClient(erd.Options{Endpoint: cfg.ERDAPIURL, Logger: log}),
		swagger: swagger.NewClient(swagger.Options{Endpoint: cfg.SwaggerAPIURL, Logger: log}),
		store: mongostore.NewInspector(mongostore.Options{
			URI:      cfg.ConnString(),
			Database: cfg.Database(),
			Logger:   log,
		}),
	}
	s.explorer = explorer.New(explorer.Options{
		ERD:     s.erd,
		Swagger: s.swagger,
		Store:   s.store,
		Logger:  log,
	})

	s.mcp = mcp.NewServer(&mcp.Implementation{Name: Name, Version: Version}, nil)
	s.registerTools()

	log.Debug("server initialized",
		zap.Bool("erd", s.erd.Configured()),
		zap.Bool("swagger", s.swagger.Configured()),
		zap.Bool("mongodb", s.store.Configured()))

	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Run serves MCP over stdio until ctx is cancelled or stdin closes.
func (s *Server) Run(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcp
	}, nil)
}

// Close releases the store connection if one was established.
func (s *Server) Close(ctx context.Context) error {
	return s.store.Close(ctx)
}
