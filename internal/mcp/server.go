package mcp

import (
	"context"
	"database/sql"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tesseralabs/tessera/internal/config"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"project_status": {
		def:     statusToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStatus },
	},
	"project_reset": {
		def:     resetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleReset },
	},
	"project_import": {
		def:     importToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImport },
	},
	"project_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"document_load": {
		def:     documentLoadToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDocumentLoad },
	},
	"document_show": {
		def:     documentShowToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDocumentShow },
	},
	"code_add": {
		def:     codeAddToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCodeAdd },
	},
	"code_update": {
		def:     codeUpdateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCodeUpdate },
	},
	"code_delete": {
		def:     codeDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCodeDelete },
	},
	"code_list": {
		def:     codeListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCodeList },
	},
	"segment_add": {
		def:     segmentAddToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSegmentAdd },
	},
	"segment_list": {
		def:     segmentListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSegmentList },
	},
	"segment_toggle": {
		def:     segmentToggleToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSegmentToggle },
	},
	"autocode_run": {
		def:     autocodeRunToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAutocodeRun },
	},
	"autocode_estimate": {
		def:     autocodeEstimateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAutocodeEstimate },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with Tessera tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(db *sql.DB, cfg *config.Config, version, baseDir string) *server.MCPServer {
	s := server.NewMCPServer(
		"tessera",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg, baseDir)

	disabled := make(map[string]bool, len(cfg.DisabledTools))
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	// Register tools (skip disabled)
	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, version, baseDir string) error {
	s := NewServer(db, cfg, version, baseDir)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
