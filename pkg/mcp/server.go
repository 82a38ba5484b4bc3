package mcp

import (
	"sync"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/urmzd/commissioner/pkg/device"
	"github.com/urmzd/commissioner/pkg/device/schema"
	"github.com/urmzd/commissioner/pkg/dongle"
)

// DongleDetector lists attached USB radio dongles.
type DongleDetector interface {
	Detect() ([]dongle.Dongle, error)
}

// Server exposes scanning and commissioning as MCP tools
type Server struct {
	mcpServer    *server.MCPServer
	scanner      device.Scanner
	commissioner device.Commissioner
	validator    *schema.Validator
	dongles      DongleDetector
	scanDuration int
	logger       zerolog.Logger

	// adapter serializes scans and link changes
	adapter sync.Mutex
}

// Options configures optional Server behavior.
type Options struct {
	Dongles      DongleDetector // nil disables dongle reporting
	ScanDuration int            // default scan dwell in seconds
}

// NewServer creates a new MCP server
func NewServer(scanner device.Scanner, commissioner device.Commissioner, validator *schema.Validator, opts Options, logger zerolog.Logger) *Server {
	if validator == nil {
		validator = schema.NewValidator()
	}
	if opts.ScanDuration <= 0 {
		opts.ScanDuration = 10
	}
	s := &Server{
		scanner:      scanner,
		commissioner: commissioner,
		validator:    validator,
		dongles:      opts.Dongles,
		scanDuration: opts.ScanDuration,
		logger:       logger.With().Str("component", "mcp").Logger(),
	}

	s.mcpServer = server.NewMCPServer(
		"commissioner",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	s.registerTools()

	return s
}

// ServeStdio starts the MCP server using stdio transport
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
