package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/grouppulse/core"
	"github.com/huangsam/grouppulse/internal/contract"
	"github.com/huangsam/grouppulse/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// jsonResult encodes v as the text content of a tool result.
func jsonResult(v any) *mcp.CallToolResult {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleGetPeriodReports(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := contract.RevalidateReports(cfg,
		request.GetString("group", ""),
		request.GetString("granularity", ""),
		request.GetString("start", ""),
		request.GetString("end", ""),
	); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid report parameters: %v", err)), nil
	}
	cfg.RankByScore = request.GetBool("rank", false)
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.Limit = l
	}

	rows, err := core.GetPeriodReportsResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reporting failed: %v", err)), nil
	}
	return jsonResult(rows), nil
}

func (h *toolHandler) handleGetGroupReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := contract.RevalidateReportTarget(cfg,
		request.GetString("group", ""),
		request.GetString("date", ""),
		request.GetString("report_id", ""),
	); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid report parameters: %v", err)), nil
	}

	view, err := core.GetGroupReportResult(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("report lookup failed: %v", err)), nil
	}
	return jsonResult(view), nil
}

func (h *toolHandler) handleGetTrend(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := contract.RevalidateTrend(cfg,
		request.GetString("group", ""),
		request.GetString("end", ""),
		request.GetString("metric", ""),
		request.GetInt("lookback", 0),
	); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid trend parameters: %v", err)), nil
	}

	result, err := core.GetTrendResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("trend failed: %v", err)), nil
	}
	return jsonResult(result), nil
}

func (h *toolHandler) handleScoreMetrics(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rec := schema.DailyRecord{
		GroupID: request.GetString("group", "adhoc"),
		Date:    schema.NormalizeDate(time.Now()),
		Metrics: schema.BaseMetrics{
			TotalMessages:          request.GetInt("total_messages", 0),
			TotalMembers:           request.GetInt("total_members", 0),
			ActiveSpeakers:         request.GetInt("active_speakers", 0),
			ActiveHours:            request.GetInt("active_hours", 0),
			TotalHours:             request.GetInt("total_hours", 24),
			Top20Percentage:        request.GetFloat("top20_percentage", 0),
			MedianResponseInterval: request.GetFloat("median_response_interval", 0),
		},
		Semantic: schema.SemanticScores{
			TopicRelevance: request.GetFloat("topic_relevance", 0),
			Atmosphere:     request.GetFloat("atmosphere", 0),
		},
	}

	view, err := core.ScoreRecord(h.baseCfg, rec)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scoring failed: %v", err)), nil
	}
	return jsonResult(view), nil
}

func (h *toolHandler) handleGetThresholds(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	th, version := h.baseCfg.Thresholds.Snapshot()
	scoring, scoringVersion := h.baseCfg.Scoring.Snapshot()
	return jsonResult(map[string]any{
		"version":         version,
		"thresholds":      th,
		"scoring":         scoring,
		"scoring_version": scoringVersion,
	}), nil
}

func (h *toolHandler) handleListGroups(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groups, err := core.GetGroupsResults(ctx, h.baseCfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing groups failed: %v", err)), nil
	}
	return jsonResult(groups), nil
}
