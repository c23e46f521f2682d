package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/newsinsight/newsserve/internal/storage"
	"github.com/newsinsight/newsserve/pkg/suggest"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeNotFound      = -32001 // Requested article does not exist
	ErrorCodeNotReady      = -32002 // Completion index could not be built
	ErrorCodeNoAnalyzer    = -32003 // No language model configured
)

const sqlTemplate = "SELECT headline, content, category, topic FROM t_news " +
	"WHERE headline LIKE '%keyword%' OR content LIKE '%keyword%' LIMIT 5"

func (s *Server) handleGetNewsHeadlines(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]any)

	limit := getIntDefault(args, "limit", 10)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]any{
			"param": "limit",
			"value": limit,
		})
	}

	headlines, err := s.store.Headlines(ctx, limit)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to fetch headlines", map[string]any{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]any{
		"headlines": headlines,
		"count":     len(headlines),
	})), nil
}

func (s *Server) handleGetNewsContent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	headline := strings.TrimSpace(getStringDefault(args, "headline", ""))
	if headline == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "headline parameter is required", map[string]any{
			"param":  "headline",
			"reason": "missing or empty",
		})
	}

	news, err := s.store.NewsByHeadline(ctx, headline)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newMCPError(ErrorCodeNotFound, "no news with this headline", map[string]any{
			"headline": headline,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to fetch news", map[string]any{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(news.Content), nil
}

// handleGenerateSQL returns a placeholder; the agent composes the statement.
func (s *Server) handleGenerateSQL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	if strings.TrimSpace(getStringDefault(args, "user_query", "")) == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "user_query parameter is required", map[string]any{
			"param":  "user_query",
			"reason": "missing or empty",
		})
	}
	return mcp.NewToolResultText(sqlTemplate), nil
}

func (s *Server) handleExecuteNewsQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	raw := getStringDefault(args, "sql_query", "")
	if strings.TrimSpace(raw) == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "sql_query parameter is required", map[string]any{
			"param":  "sql_query",
			"reason": "missing or empty",
		})
	}

	query, err := VetSQL(raw)
	if err != nil {
		s.log.Warnf("Rejected unsafe SQL query: %s", raw)
		return mcp.NewToolResultError("Error: " + err.Error()), nil
	}

	rows, err := s.store.QueryNews(ctx, query)
	if err != nil {
		s.log.Errorf("SQL query failed: %v", err)
		return mcp.NewToolResultError("Query error: " + err.Error()), nil
	}

	return mcp.NewToolResultText(FormatResults(rows)), nil
}

func (s *Server) handleAnalyzeNewsContent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	content := getStringDefault(args, "news_content", "")
	if strings.TrimSpace(content) == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "news_content parameter is required", map[string]any{
			"param":  "news_content",
			"reason": "missing or empty",
		})
	}
	if s.analyzer == nil {
		return nil, newMCPError(ErrorCodeNoAnalyzer, "no language model is configured", nil)
	}

	result, err := s.analyzer.Analyze(ctx, content)
	if err != nil {
		s.log.Errorf("LLM analysis failed: %v", err)
		return mcp.NewToolResultError("LLM analysis failed: " + err.Error()), nil
	}
	return mcp.NewToolResultText(result), nil
}

func (s *Server) completeHandler(field suggest.Field) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := request.Params.Arguments.(map[string]any)
		if !ok {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
		}
		prefix := getStringDefault(args, "prefix", "")

		words, err := s.suggest.EnsureAndMatch(ctx, field, prefix)
		if err != nil {
			return nil, newMCPError(ErrorCodeNotReady, fmt.Sprintf("%s index unavailable", field), map[string]any{
				"error": err.Error(),
			})
		}

		return mcp.NewToolResultText(formatJSON(map[string]any{
			"field":       field.String(),
			"prefix":      prefix,
			"suggestions": words,
			"count":       len(words),
		})), nil
	}
}

// MCPError is an error carrying a JSON-RPC error code.
type MCPError struct {
	Code    int
	Message string
	Data    any
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

func newMCPError(code int, message string, data any) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]any, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]any, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
