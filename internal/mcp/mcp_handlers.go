package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/huangsam/ecoscore/core"
	"github.com/huangsam/ecoscore/internal/contract"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// jsonResult renders v as an indented JSON tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// resolvePath makes a tool path argument absolute.
func resolvePath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", fmt.Errorf("path is required")
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

func (h *toolHandler) handleAnalyzeSource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source := request.GetString("source", "")
	if strings.TrimSpace(source) == "" {
		return mcp.NewToolResultError("source is required"), nil
	}

	result, err := core.AnalyzeSource(core.WithSuppressHeader(ctx), h.baseCfg.Clone(), h.mgr, []byte(source))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}
	return jsonResult(result)
}

func (h *toolHandler) handleAnalyzePath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	target, err := resolvePath(request.GetString("path", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid path: %v", err)), nil
	}
	cfg.TargetPath = target
	for p := range strings.SplitSeq(request.GetString("exclude", ""), ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			cfg.Excludes = append(cfg.Excludes, trimmed)
		}
	}

	result, _, err := core.GetProjectResult(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}
	return jsonResult(result)
}

func (h *toolHandler) handleGetTrend(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	target, err := resolvePath(request.GetString("path", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid path: %v", err)), nil
	}
	cfg.TargetPath = target

	cfg.Commits = request.GetInt("commits", contract.DefaultCommits)
	if cfg.Commits < 1 || cfg.Commits > contract.MaxCommits {
		return mcp.NewToolResultError(fmt.Sprintf("commits must be between 1 and %d (received %d)", contract.MaxCommits, cfg.Commits)), nil
	}
	if ref := strings.TrimSpace(request.GetString("ref", "")); ref != "" {
		cfg.Ref = ref
	} else if cfg.Ref == "" {
		cfg.Ref = "HEAD"
	}

	series, _, err := core.GetTrendSeries(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("trend analysis failed: %v", err)), nil
	}
	return jsonResult(series)
}

func (h *toolHandler) handleListRules(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	infos, err := core.GetRules(h.baseCfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid configuration: %v", err)), nil
	}
	return jsonResult(infos)
}
