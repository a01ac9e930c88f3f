// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"
	"maps"
	"slices"

	"github.com/huangsam/grouppulse/internal/contract"
	"github.com/huangsam/grouppulse/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the GroupPulse MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"GroupPulse Health Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: get_period_reports ---
	s.AddTool(mcp.NewTool("get_period_reports",
		mcp.WithDescription("Aggregate daily group health reports into day, week or month rows."),
		mcp.WithString("group", mcp.Description("Restrict to one group ID (all groups when omitted).")),
		mcp.WithString("granularity", mcp.Description("Period size. Defaults to 'day'."), mcp.Enum("day", "week", "month")),
		mcp.WithString("start", mcp.Description("Inclusive start date (YYYY-MM-DD or e.g. '2 weeks ago').")),
		mcp.WithString("end", mcp.Description("Inclusive end date.")),
		mcp.WithBoolean("rank", mcp.Description("Order rows from least to most healthy.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of rows returned.")),
	), h.handleGetPeriodReports)

	// --- 2. Tool: get_group_report ---
	s.AddTool(mcp.NewTool("get_group_report",
		mcp.WithDescription("Return one daily report with its breakdown, weighted contributions, risk and a trailing trend."),
		mcp.WithString("group", mcp.Description("Group ID. Required unless report_id is given.")),
		mcp.WithString("date", mcp.Description("Report date (latest day on record when omitted).")),
		mcp.WithString("report_id", mcp.Description("Report UUID; takes precedence over group and date.")),
	), h.handleGetGroupReport)

	// --- 3. Tool: get_trend ---
	s.AddTool(mcp.NewTool("get_trend",
		mcp.WithDescription("Return the trailing series of one metric for a group."),
		mcp.WithString("group", mcp.Description("Group ID."), mcp.Required()),
		mcp.WithString("end", mcp.Description("Last day of the window (latest day on record when omitted).")),
		mcp.WithNumber("lookback", mcp.Description("Days before end to include. Defaults to 7.")),
		mcp.WithString("metric", mcp.Description("Metric to chart. Defaults to 'overall'."), mcp.Enum(trendMetricNames()...)),
	), h.handleGetTrend)

	// --- 4. Tool: score_metrics ---
	s.AddTool(mcp.NewTool("score_metrics",
		mcp.WithDescription("Score ad-hoc daily metrics against the current thresholds without storing them."),
		mcp.WithNumber("total_messages", mcp.Required()),
		mcp.WithNumber("total_members", mcp.Required()),
		mcp.WithNumber("active_speakers", mcp.Required()),
		mcp.WithNumber("active_hours", mcp.Required()),
		mcp.WithNumber("total_hours", mcp.Description("Hours observed. Defaults to 24.")),
		mcp.WithNumber("top20_percentage"),
		mcp.WithNumber("median_response_interval", mcp.Description("Median reply interval in seconds."), mcp.Required()),
		mcp.WithNumber("topic_relevance", mcp.Description("Semantic score in [0,100]."), mcp.Required()),
		mcp.WithNumber("atmosphere", mcp.Description("Semantic score in [0,100]."), mcp.Required()),
		mcp.WithString("group", mcp.Description("Optional group ID, used for participation and report identity.")),
	), h.handleScoreMetrics)

	// --- 5. Tool: get_thresholds ---
	s.AddTool(mcp.NewTool("get_thresholds",
		mcp.WithDescription("Return the effective thresholds, their version and the scoring participation config."),
	), h.handleGetThresholds)

	// --- 6. Tool: list_groups ---
	s.AddTool(mcp.NewTool("list_groups",
		mcp.WithDescription("List the groups of the metrics source and whether each is scored."),
	), h.handleListGroups)

	return s
}

// trendMetricNames lists the accepted trend metrics for the tool schema.
func trendMetricNames() []string {
	names := make([]string, 0, len(schema.ValidTrendMetrics))
	for _, m := range slices.Sorted(maps.Keys(schema.ValidTrendMetrics)) {
		names = append(names, string(m))
	}
	return names
}

// StartMCPServer starts the GroupPulse MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
