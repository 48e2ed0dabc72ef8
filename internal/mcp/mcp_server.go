// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/huangsam/ecoscore/internal/contract"
)

// NewMCPServer initializes and configures the ecoscore MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"Ecoscore Analysis Server",
		version,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: analyze_source ---
	s.AddTool(mcp.NewTool("analyze_source",
		mcp.WithDescription("Compute the eco-score, category scores and suggestions of a Python snippet."),
		mcp.WithString("source", mcp.Description("Python source code to analyze."), mcp.Required()),
	), h.handleAnalyzeSource)

	// --- 2. Tool: analyze_path ---
	s.AddTool(mcp.NewTool("analyze_path",
		mcp.WithDescription("Analyze a Python file or every Python file under a directory."),
		mcp.WithString("path", mcp.Description("File or directory to analyze (defaults to the current directory)."), mcp.Required()),
		mcp.WithString("exclude", mcp.Description("Comma-separated patterns to skip, in addition to the defaults.")),
	), h.handleAnalyzePath)

	// --- 3. Tool: get_trend ---
	s.AddTool(mcp.NewTool("get_trend",
		mcp.WithDescription("Replay the eco-score of a Python file or project directory across its recent git commits."),
		mcp.WithString("path", mcp.Description("The file or directory path to analyze."), mcp.Required()),
		mcp.WithNumber("commits", mcp.Description("Number of most recent commits to replay (default 10).")),
		mcp.WithString("ref", mcp.Description("Git reference to walk back from (default HEAD).")),
	), h.handleGetTrend)

	// --- 4. Tool: list_rules ---
	s.AddTool(mcp.NewTool("list_rules",
		mcp.WithDescription("List the active rules with their category, weight and description."),
	), h.handleListRules)

	return s
}

// StartMCPServer serves the ecoscore MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager, version string) error {
	s := NewMCPServer(baseCfg, mgr, version)
	return server.ServeStdio(s)
}
