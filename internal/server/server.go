package server

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/solmcp/solana-mcp/internal/cluster"
	"github.com/solmcp/solana-mcp/internal/tools"
)

const (
	ServerName    = "solana-mcp"
	ServerVersion = "1.0.0"
)

// New creates and configures a new MCP server with the account query tools
// for every given cluster
func New(clusters ...*cluster.Cluster) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
	)

	registerTools(s, clusters)

	return s
}

func registerTools(s *server.MCPServer, clusters []*cluster.Cluster) {
	for _, td := range toolDefs(clusters) {
		s.AddTool(td.Tool, td.Handler)
	}
}

// ServerTools returns all registered tools for inspection
func ServerTools(clusters ...*cluster.Cluster) []mcp.Tool {
	defs := toolDefs(clusters)
	result := make([]mcp.Tool, len(defs))
	for i, td := range defs {
		result[i] = td.Tool
	}
	return result
}

func toolDefs(clusters []*cluster.Cluster) []tools.ToolDef {
	allTools := []tools.ToolDef{}
	for _, c := range clusters {
		allTools = append(allTools, tools.RegisterClusterTools(c)...)
	}
	return allTools
}
