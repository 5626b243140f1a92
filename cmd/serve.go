package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"assetmaid.dev/pkg/assetmaid/internal/controller"
	"assetmaid.dev/pkg/assetmaid/internal/domain"
	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

const serverName = "assetmaid"

// analyzer runs a fresh scan for every tool call.
type analyzer interface {
	Analyze(ctx context.Context) (*m.ScanResult, error)
}

// toolServer exposes read-only scan reports over the Model Context Protocol.
type toolServer struct {
	mcpServer *server.MCPServer
	analyzer  analyzer
	limit     int
}

func newToolServer(analyzer analyzer, version string, limit int) *toolServer {
	if limit <= 0 {
		limit = domain.DefaultTopLimit
	}

	s := &toolServer{
		mcpServer: server.NewMCPServer(serverName, version),
		analyzer:  analyzer,
		limit:     limit,
	}
	s.registerTools()

	return s
}

func (s *toolServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		"scan_summary",
		mcp.WithDescription("Scan the project and return resource counts and total sizes."),
	), s.handleScanSummary)

	s.mcpServer.AddTool(mcp.NewTool(
		"top",
		mcp.WithDescription("Textures with the highest estimated memory cost and other resources with the largest size on disk."),
		mcp.WithNumber("limit", mcp.Description("Entries per list")),
	), s.handleTop)

	s.mcpServer.AddTool(mcp.NewTool(
		"unreachable",
		mcp.WithDescription("Resources no root document references, ranked by estimated cost."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of entries")),
		mcp.WithString("sort", mcp.Description("Sort key: cost, path, category or creator")),
		mcp.WithString("order", mcp.Description("Sort order: asc or desc")),
	), s.handleUnreachable)

	s.mcpServer.AddTool(mcp.NewTool(
		"audit",
		mcp.WithDescription("Uncompressed textures and materials using deprecated or manual-fix-only shaders."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of entries")),
	), s.handleAudit)
}

// serve blocks until stdin is closed.
func (s *toolServer) serve() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *toolServer) scan(ctx context.Context) (*m.ScanResult, *mcp.CallToolResult) {
	scan, err := s.analyzer.Analyze(ctx)
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}

	return scan, nil
}

func (s *toolServer) handleScanSummary(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scan, failed := s.scan(ctx)
	if failed != nil {
		return failed, nil
	}

	text := controller.RenderSummary(scan)
	if len(scan.Warnings) > 0 {
		text += fmt.Sprintf("\n%d warning(s)\n", len(scan.Warnings))
	}

	return mcp.NewToolResultText(text), nil
}

func (s *toolServer) handleTop(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scan, failed := s.scan(ctx)
	if failed != nil {
		return failed, nil
	}

	limit := mcp.ParseInt(request, "limit", s.limit)
	if limit <= 0 {
		limit = s.limit
	}

	return mcp.NewToolResultText(controller.RenderTopLists(domain.TopK(scan.Entries, limit), scan.Summary)), nil
}

func (s *toolServer) handleUnreachable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := domain.ParseRankKey(mcp.ParseString(request, "sort", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	order, err := domain.ParseSortOrder(mcp.ParseString(request, "order", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	scan, failed := s.scan(ctx)
	if failed != nil {
		return failed, nil
	}

	entries := domain.Filter(scan.Entries, domain.EntryFilter{Reachability: domain.ReachabilityUnreachable})

	return mcp.NewToolResultText(controller.RenderListing(controller.Listing{
		Title:   "Unreferenced resources",
		Entries: domain.Rank(entries, key, order, mcp.ParseInt(request, "limit", 0)),
		Key:     key,
		Order:   order,
	})), nil
}

func (s *toolServer) handleAudit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scan, failed := s.scan(ctx)
	if failed != nil {
		return failed, nil
	}

	flagged := domain.Filter(scan.Entries, domain.EntryFilter{FlaggedOnly: true})
	counts := domain.CountFlags(flagged)

	text := controller.RenderListing(controller.Listing{
		Title:   "Optimization candidates",
		Entries: domain.Rank(flagged, m.RankByCost, m.Descending, mcp.ParseInt(request, "limit", 0)),
		Key:     m.RankByCost,
		Order:   m.Descending,
	})
	text += fmt.Sprintf("%d unoptimized texture(s), %d deprecated shader(s), %d manual-fix-only shader(s)\n",
		counts.UnoptimizedFormat, counts.DeprecatedShader, counts.ManualFixOnlyShader)

	return mcp.NewToolResultText(text), nil
}

// serveCmd represents the serve command.
var serveCmd = newServeCmd()

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve read-only scan reports over MCP on stdio",
		Long: `Start a Model Context Protocol server on stdin/stdout exposing the scan_summary,
top, unreachable and audit tools. Every tool call scans the project again. The server
never moves or edits files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wf, err := currentWorkflow(cmd)
			if err != nil {
				return err
			}

			slog.Info("Serving MCP tools on stdio")

			return newToolServer(wf, buildVersion(), viper.GetInt(topLimitConfigKey)).serve()
		},
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
