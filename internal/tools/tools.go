package tools

import (
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Common errors
var errMissingAddress = errors.New("address is required")

// ToolDef pairs a tool with its handler
type ToolDef struct {
	Tool    mcp.Tool
	Handler server.ToolHandlerFunc
}
