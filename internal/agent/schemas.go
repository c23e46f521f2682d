package agent

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/newsinsight/newsserve/pkg/suggest"
)

func getNewsHeadlinesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_news_headlines",
		Description: "Fetches the most recent news headlines.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum number of headlines to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
			},
		},
	}
}

func getNewsContentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_news_content",
		Description: "Fetches the full content of a news article by its exact headline.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"headline": map[string]any{
					"type":        "string",
					"description": "Exact headline of the article",
				},
			},
			Required: []string{"headline"},
		},
	}
}

func generateSQLTool() mcp.Tool {
	return mcp.Tool{
		Name: "generate_sql_from_query",
		Description: "Returns a template SELECT over t_news(headline, content, category, topic, " +
			"total_browse_num, total_browse_duration, released_time). The calling agent writes the " +
			"final statement from the user's request and runs it with execute_news_query.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"user_query": map[string]any{
					"type":        "string",
					"description": "The user's natural language request",
				},
			},
			Required: []string{"user_query"},
		},
	}
}

func executeNewsQueryTool() mcp.Tool {
	return mcp.Tool{
		Name: "execute_news_query",
		Description: "Executes a read-only SELECT over t_news and returns formatted results. " +
			"Statements without a LIMIT are limited to 10 rows.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"sql_query": map[string]any{
					"type":        "string",
					"description": "SQL SELECT statement to execute",
				},
			},
			Required: []string{"sql_query"},
		},
	}
}

func analyzeNewsContentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "analyze_news_content",
		Description: "Analyze news content with an LLM: summary, entities and sentiment.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"news_content": map[string]any{
					"type":        "string",
					"description": "Article text to analyze",
				},
			},
			Required: []string{"news_content"},
		},
	}
}

func completeTool(field suggest.Field) mcp.Tool {
	return mcp.Tool{
		Name:        "complete_" + field.String(),
		Description: fmt.Sprintf("Lists known news %s names starting with a prefix (case-sensitive), sorted.", field),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"prefix": map[string]any{
					"type":        "string",
					"description": fmt.Sprintf("Beginning of the %s name", field),
				},
			},
			Required: []string{"prefix"},
		},
	}
}
