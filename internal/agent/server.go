// Package agent exposes the news store, the completion service and the
// analysis proxy as MCP tools over stdio.
package agent

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/server"

	"github.com/newsinsight/newsserve/internal/logger"
	"github.com/newsinsight/newsserve/internal/storage"
	"github.com/newsinsight/newsserve/pkg/suggest"
)

const (
	// ServerName is the MCP server name
	ServerName = "newsserve-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Analyzer sends article text to a language model.
type Analyzer interface {
	Analyze(ctx context.Context, content string) (string, error)
}

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	store    storage.NewsReader
	suggest  *suggest.Service
	analyzer Analyzer
	log      *log.Logger
}

// NewServer registers every tool. analyzer may be nil, in which case
// analyze_news_content reports that no model is configured.
func NewServer(store storage.NewsReader, svc *suggest.Service, analyzer Analyzer) (*Server, error) {
	if store == nil {
		return nil, errors.New("agent: store is required")
	}
	if svc == nil {
		return nil, errors.New("agent: completion service is required")
	}

	s := &Server{
		mcp:      server.NewMCPServer(ServerName, ServerVersion, server.WithToolCapabilities(false)),
		store:    store,
		suggest:  svc,
		analyzer: analyzer,
		log:      logger.New("mcp"),
	}
	s.registerTools()
	return s, nil
}

// Serve runs the stdio transport until stdin closes.
func (s *Server) Serve(ctx context.Context) error {
	s.log.Info("Serving MCP tools on stdio")
	errLog := s.log.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel})
	return server.ServeStdio(s.mcp, server.WithErrorLogger(errLog))
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(getNewsHeadlinesTool(), s.handleGetNewsHeadlines)
	s.mcp.AddTool(getNewsContentTool(), s.handleGetNewsContent)
	s.mcp.AddTool(generateSQLTool(), s.handleGenerateSQL)
	s.mcp.AddTool(executeNewsQueryTool(), s.handleExecuteNewsQuery)
	s.mcp.AddTool(analyzeNewsContentTool(), s.handleAnalyzeNewsContent)
	s.mcp.AddTool(completeTool(suggest.FieldCategory), s.completeHandler(suggest.FieldCategory))
	s.mcp.AddTool(completeTool(suggest.FieldTopic), s.completeHandler(suggest.FieldTopic))
}
