package mcp

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/airsearch-mcp/internal/searcher"
	"github.com/dshills/airsearch-mcp/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "airsearch-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	storage  storage.Storage
	searcher *searcher.Searcher
	logger   *slog.Logger
}

// Option configures a Server
type Option func(*Server)

// WithSearcher sets the searcher. By default one is built over the store.
func WithSearcher(srch *searcher.Searcher) Option {
	return func(s *Server) {
		s.searcher = srch
	}
}

// WithLogger sets the logger used for tool failures
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP server over an open record store.
// The caller keeps ownership of store and closes it after Serve returns.
func NewServer(store storage.Storage, opts ...Option) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("failed to create server: storage is required")
	}

	s := &Server{
		storage: store,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.searcher == nil {
		s.searcher = searcher.NewSearcher(store, searcher.WithLogger(s.logger))
	}

	s.mcp = server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
	)

	// Register tools
	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Serve runs the MCP protocol on stdio until ctx is canceled or stdin closes
func (s *Server) Serve(ctx context.Context) error {
	return s.ServeIO(ctx, os.Stdin, os.Stdout)
}

// ServeIO runs the MCP protocol over the given streams
func (s *Server) ServeIO(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(log.New(os.Stderr, "mcp: ", log.LstdFlags))
	return stdio.Listen(ctx, in, out)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	// Search
	s.mcp.AddTool(searchAirportsTool(), s.handleSearchAirports)
	s.mcp.AddTool(fuzzySearchTool(), s.handleFuzzySearch)
	s.mcp.AddTool(suggestCodesTool(), s.handleSuggestCodes)
	s.mcp.AddTool(smartCodeSearchTool(), s.handleSmartCodeSearch)
	s.mcp.AddTool(searchByCityTool(), s.handleSearchByCity)

	// Lookups
	s.mcp.AddTool(getAirportTool(), s.handleGetAirport)
	s.mcp.AddTool(airportsByCountryTool(), s.handleAirportsByCountry)
	s.mcp.AddTool(airportsByTypeTool(), s.handleAirportsByType)
	s.mcp.AddTool(nearbyAirportsTool(), s.handleNearbyAirports)

	// Statistics
	s.mcp.AddTool(countryStatsTool(), s.handleCountryStats)
	s.mcp.AddTool(databaseInfoTool(), s.handleDatabaseInfo)

	return nil
}
