package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsinsight/newsserve/internal/storage"
	"github.com/newsinsight/newsserve/pkg/model"
	"github.com/newsinsight/newsserve/pkg/suggest"
)

type fakeAnalyzer struct {
	reply string
	err   error
	got   string
}

func (f *fakeAnalyzer) Analyze(_ context.Context, content string) (string, error) {
	f.got = content
	return f.reply, f.err
}

func newTestServer(t *testing.T, analyzer Analyzer) *Server {
	t.Helper()
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	for _, n := range []model.News{
		{ID: 1, Headline: "Cup final tonight", Content: strings.Repeat("goal ", 40), Category: "Sports", Topic: "Football", ReleasedTime: 1560500000},
		{ID: 2, Headline: "Rocket reaches orbit", Content: "A new launcher flew today.", Category: "Space", Topic: "Rockets", ReleasedTime: 1561000000},
	} {
		n := n
		require.NoError(t, store.InsertNews(ctx, &n))
	}

	svc := suggest.NewService(map[suggest.Field]suggest.Loader{
		suggest.FieldCategory: store.DistinctCategories,
		suggest.FieldTopic:    store.DistinctTopics,
	})
	s, err := NewServer(store, svc, analyzer)
	require.NoError(t, err)
	return s
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	switch c := res.Content[0].(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	}
	t.Fatalf("unexpected content type %T", res.Content[0])
	return ""
}

func TestGetNewsHeadlines(t *testing.T) {
	s := newTestServer(t, nil)
	res, err := s.handleGetNewsHeadlines(context.Background(), callRequest("get_news_headlines", map[string]any{"limit": float64(1)}))
	require.NoError(t, err)
	text := resultText(t, res)
	assert.Contains(t, text, "Rocket reaches orbit")
	assert.NotContains(t, text, "Cup final tonight")

	_, err = s.handleGetNewsHeadlines(context.Background(), callRequest("get_news_headlines", map[string]any{"limit": float64(500)}))
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestGetNewsContent(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	res, err := s.handleGetNewsContent(ctx, callRequest("get_news_content", map[string]any{"headline": "Rocket reaches orbit"}))
	require.NoError(t, err)
	assert.Equal(t, "A new launcher flew today.", resultText(t, res))

	_, err = s.handleGetNewsContent(ctx, callRequest("get_news_content", map[string]any{"headline": "missing"}))
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeNotFound, mcpErr.Code)

	_, err = s.handleGetNewsContent(ctx, callRequest("get_news_content", map[string]any{}))
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestGenerateSQL(t *testing.T) {
	s := newTestServer(t, nil)
	res, err := s.handleGenerateSQL(context.Background(), callRequest("generate_sql_from_query", map[string]any{"user_query": "space news"}))
	require.NoError(t, err)
	vetted, err := VetSQL(resultText(t, res))
	require.NoError(t, err)
	assert.Equal(t, sqlTemplate, vetted)
}

func TestExecuteNewsQuery(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	res, err := s.handleExecuteNewsQuery(ctx, callRequest("execute_news_query", map[string]any{
		"sql_query": "SELECT headline, content, category, topic FROM t_news WHERE category = 'Sports'",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	text := resultText(t, res)
	assert.True(t, strings.HasPrefix(text, "Found 1 news:"))
	assert.Contains(t, text, "**Cup final tonight**")
	assert.Contains(t, text, "Category: Sports | Topic: Football")
	assert.Contains(t, text, "...")

	res, err = s.handleExecuteNewsQuery(ctx, callRequest("execute_news_query", map[string]any{
		"sql_query": "SELECT headline FROM t_news WHERE category = 'Weather'",
	}))
	require.NoError(t, err)
	assert.Equal(t, "No matching news found", resultText(t, res))

	res, err = s.handleExecuteNewsQuery(ctx, callRequest("execute_news_query", map[string]any{
		"sql_query": "DROP TABLE t_news",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestAnalyzeNewsContent(t *testing.T) {
	fa := &fakeAnalyzer{reply: "neutral"}
	s := newTestServer(t, fa)
	ctx := context.Background()

	res, err := s.handleAnalyzeNewsContent(ctx, callRequest("analyze_news_content", map[string]any{"news_content": "text"}))
	require.NoError(t, err)
	assert.Equal(t, "neutral", resultText(t, res))
	assert.Equal(t, "text", fa.got)

	fa.err = errors.New("upstream down")
	res, err = s.handleAnalyzeNewsContent(ctx, callRequest("analyze_news_content", map[string]any{"news_content": "text"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestAnalyzeWithoutAnalyzer(t *testing.T) {
	s := newTestServer(t, nil)
	_, err := s.handleAnalyzeNewsContent(context.Background(), callRequest("analyze_news_content", map[string]any{"news_content": "text"}))
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeNoAnalyzer, mcpErr.Code)
}

func TestCompleteTools(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	res, err := s.completeHandler(suggest.FieldCategory)(ctx, callRequest("complete_category", map[string]any{"prefix": "Sp"}))
	require.NoError(t, err)
	text := resultText(t, res)
	assert.Contains(t, text, `"Space"`)
	assert.Contains(t, text, `"Sports"`)
	assert.Contains(t, text, `"count": 2`)

	res, err = s.completeHandler(suggest.FieldTopic)(ctx, callRequest("complete_topic", map[string]any{"prefix": "R"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), `"Rockets"`)
}

func TestFormatResultsEmptyContent(t *testing.T) {
	out := FormatResults([]model.Headline{{Headline: "h", Category: "c", Topic: "t"}})
	assert.Contains(t, out, "[empty content]")
}
