package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/newsinsight/newsserve/internal/proxy"
	"github.com/newsinsight/newsserve/internal/storage"
	"github.com/newsinsight/newsserve/internal/utils"
	"github.com/newsinsight/newsserve/pkg/model"
	"github.com/newsinsight/newsserve/pkg/suggest"
)

type fakeForwarder struct {
	reply []byte
	err   error
	got   []byte
}

func (f *fakeForwarder) Forward(_ context.Context, body []byte) ([]byte, error) {
	f.got = body
	return f.reply, f.err
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	news := []model.News{
		{ID: 1, Headline: "Cup final tonight", Content: "The final kicks off at eight.", Category: "Sports", Topic: "Football", TotalBrowseNum: 50, ReleasedTime: day(2019, 6, 14).Unix()},
		{ID: 2, Headline: "Rocket reaches orbit", Content: "A new launcher flew today.", Category: "Space", Topic: "Rockets", TotalBrowseNum: 80, ReleasedTime: day(2019, 6, 20).Unix()},
		{ID: 3, Headline: "Chip prices fall", Content: "Memory is cheaper than ever.", Category: "Tech", Topic: "Hardware", TotalBrowseNum: 10, ReleasedTime: day(2019, 7, 1).Unix()},
	}
	for i := range news {
		require.NoError(t, store.InsertNews(ctx, &news[i]))
	}
	for _, r := range []model.BrowseRecord{
		{UserID: 7, NewsID: 1, StartTs: day(2019, 6, 14).Add(time.Hour).Unix(), Duration: 30},
		{UserID: 7, NewsID: 2, StartTs: day(2019, 6, 15).Add(time.Hour).Unix(), Duration: 45},
	} {
		r := r
		require.NoError(t, store.InsertBrowseRecord(ctx, &r))
	}
	require.NoError(t, store.UpsertDailyCategory(ctx, &model.DailyCategory{
		DayStamp: utils.ToDayStamp(day(2019, 6, 14)), Category: "Sports", BrowseCount: 3, BrowseDuration: 90,
	}))
	for _, ui := range []model.UserInterest{
		{UserID: 7, Category: "Sports", ClickCount: 2, DwellTime: 60, UpdateTime: day(2019, 6, 14).Unix()},
		{UserID: 7, Category: "Space", ClickCount: 1, DwellTime: 45, UpdateTime: day(2019, 6, 15).Unix()},
	} {
		ui := ui
		require.NoError(t, store.UpsertUserInterest(ctx, &ui))
	}
	return store
}

func newTestServer(t *testing.T, fwd Forwarder) (*Server, *storage.SQLiteStorage) {
	t.Helper()
	store := newTestStore(t)
	svc := suggest.NewService(map[suggest.Field]suggest.Loader{
		suggest.FieldCategory: store.DistinctCategories,
		suggest.FieldTopic:    store.DistinctTopics,
	})
	cfg := Config{
		MinDate: day(2019, 6, 1),
		MaxDate: day(2019, 7, 31),
	}
	srv, err := NewServer(cfg, store, svc, fwd)
	require.NoError(t, err)
	return srv, store
}

func do(t *testing.T, h http.Handler, method, target string, body io.Reader, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[HealthResponse](t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Store)
	assert.Len(t, resp.Matchers, 2)
}

func TestHealthStoreDown(t *testing.T) {
	srv, store := newTestServer(t, nil)
	require.NoError(t, store.Close())

	rec := do(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", decode[HealthResponse](t, rec).Status)
}

func TestListNews(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/news", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[model.Page[model.NewsSummary]](t, rec)
	assert.EqualValues(t, 3, page.TotalCount)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, model.DefaultPageSize, page.PageSize)
	require.Len(t, page.Items, 3)
	assert.Equal(t, int64(3), page.Items[0].ID, "newest first by default")

	rec = do(t, srv, http.MethodGet, "/api/news?sortBy=popularity&sortDesc=false&pageSize=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[model.Page[model.NewsSummary]](t, rec)
	require.Len(t, page.Items, 2)
	assert.Equal(t, int64(3), page.Items[0].ID)
	assert.Equal(t, int64(1), page.Items[1].ID)

	rec = do(t, srv, http.MethodGet, "/api/news?category=Space", nil)
	page = decode[model.Page[model.NewsSummary]](t, rec)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Rocket reaches orbit", page.Items[0].Headline)
}

func TestListNewsBadParams(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	for _, target := range []string{
		"/api/news?page=0",
		"/api/news?pageSize=500",
		"/api/news?sortDesc=maybe",
		"/api/news?startDate=yesterday",
		"/api/news?startDate=2019-06-20&endDate=2019-06-10",
	} {
		rec := do(t, srv, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		resp := decode[ErrorResponse](t, rec)
		assert.Equal(t, "BAD_REQUEST", resp.Code, target)
	}
}

func TestGetNews(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/news/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	news := decode[model.NewsSummary](t, rec)
	assert.Equal(t, "Rocket reaches orbit", news.Headline)
	assert.Equal(t, "A new launcher flew today.", news.Content)

	rec = do(t, srv, http.MethodGet, "/api/news/99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode[ErrorResponse](t, rec).Code)

	rec = do(t, srv, http.MethodGet, "/api/news/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDateRangeGuard(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/news?startDate=2019-05-01", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Error, "2019-06-01")

	rec = do(t, srv, http.MethodGet, "/api/newscategory/category-heatmap?categories=Sports&endDate=2019-08-15", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Error, "2019-07-31")

	rec = do(t, srv, http.MethodGet, "/api/news?startDate=2019-06-01&endDate=2019-07-31", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalyticsRoutes(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/newsbrowserecord/user-records/7", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	records := decode[model.Page[model.BrowseRecordView]](t, rec)
	require.Len(t, records.Items, 2)
	assert.Equal(t, "Rocket reaches orbit", records.Items[0].NewsHeadline)

	rec = do(t, srv, http.MethodGet, "/api/newsbrowserecord/user-daily-trend/7?startDate=2019-06-15", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	trend := decode[[]model.DailyTrend](t, rec)
	require.Len(t, trend, 1)
	assert.EqualValues(t, 45, trend[0].TotalDuration)

	rec = do(t, srv, http.MethodGet, "/api/newscategory/category-heatmap?categories=Sports,Space&categories=Tech", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	heatmap := decode[model.CategoryHeatmap](t, rec)
	require.Len(t, heatmap.HeatmapData, 1)
	assert.Equal(t, "Sports", heatmap.HeatmapData[0].Categories[0].Category)

	rec = do(t, srv, http.MethodGet, "/api/userinterest/user-interest-distribution/7", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var dist struct {
		UserID       int64 `json:"userId"`
		Distribution []struct {
			Category   string `json:"category"`
			ClickShare string `json:"clickShare"`
		} `json:"distribution"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dist))
	assert.Equal(t, int64(7), dist.UserID)
	require.Len(t, dist.Distribution, 2)
	shares := map[string]string{}
	for _, d := range dist.Distribution {
		shares[d.Category] = d.ClickShare
	}
	assert.Equal(t, "66.67", shares["Sports"])
	assert.Equal(t, "33.33", shares["Space"])

	rec = do(t, srv, http.MethodGet, "/api/userinterest/user-interest-distribution/x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMsgpackNegotiation(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/autocomplete/category?prefix=Sp", nil, "Accept", "application/msgpack")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/msgpack", rec.Header().Get("Content-Type"))

	var resp CompletionResponse
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Space", "Sports"}, resp.Suggestions)
	assert.Equal(t, 2, resp.Count)

	rec = do(t, srv, http.MethodGet, "/api/news/99", nil, "Accept", "application/x-msgpack")
	require.Equal(t, http.StatusNotFound, rec.Code)
	var errResp ErrorResponse
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "NOT_FOUND", errResp.Code)
}

func TestAutocomplete(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/autocomplete/category?prefix=Sp", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[CompletionResponse](t, rec)
	assert.Equal(t, "category", resp.Field)
	assert.Equal(t, "Sp", resp.Prefix)
	assert.Equal(t, []string{"Space", "Sports"}, resp.Suggestions)
	assert.True(t, resp.Ready)

	rec = do(t, srv, http.MethodGet, "/api/autocomplete/topic?prefix=Ro", nil)
	resp = decode[CompletionResponse](t, rec)
	assert.Equal(t, []string{"Rockets"}, resp.Suggestions)

	rec = do(t, srv, http.MethodGet, "/api/autocomplete/topic?prefix=zz", nil)
	resp = decode[CompletionResponse](t, rec)
	assert.Empty(t, resp.Suggestions)
	assert.Equal(t, 0, resp.Count)
}

func TestAutocompleteBlankPrefixSkipsBuild(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/autocomplete/category?prefix=%20", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[CompletionResponse](t, rec)
	assert.Empty(t, resp.Suggestions)
	assert.False(t, resp.Ready)
}

func TestAutocompleteValidation(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/autocomplete/author?prefix=a", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/autocomplete/category?prefix=a%07b", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/autocomplete/category?prefix="+strings.Repeat("a", DefaultMaxPrefixLen+1), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAutocompleteRefresh(t *testing.T) {
	srv, store := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/autocomplete/category?prefix=S", nil)
	assert.Equal(t, []string{"Space", "Sports"}, decode[CompletionResponse](t, rec).Suggestions)

	require.NoError(t, store.InsertNews(context.Background(), &model.News{
		Headline: "Box office", Category: "Showbiz", Topic: "Film", ReleasedTime: day(2019, 7, 2).Unix(),
	}))

	// still served from the old index
	rec = do(t, srv, http.MethodGet, "/api/autocomplete/category?prefix=S", nil)
	assert.Equal(t, []string{"Space", "Sports"}, decode[CompletionResponse](t, rec).Suggestions)

	rec = do(t, srv, http.MethodPost, "/api/autocomplete/refresh?field=category", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	refresh := decode[RefreshResponse](t, rec)
	assert.Equal(t, []string{"category"}, refresh.Refreshed)

	rec = do(t, srv, http.MethodGet, "/api/autocomplete/category?prefix=S", nil)
	assert.Equal(t, []string{"Showbiz", "Space", "Sports"}, decode[CompletionResponse](t, rec).Suggestions)

	rec = do(t, srv, http.MethodPost, "/api/autocomplete/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	refresh = decode[RefreshResponse](t, rec)
	assert.Equal(t, []string{"category", "topic"}, refresh.Refreshed)
	require.Len(t, refresh.Stats, 2)
	assert.Equal(t, "ready", refresh.Stats[1].State)

	rec = do(t, srv, http.MethodPost, "/api/autocomplete/refresh?field=nope", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAutocompleteStats(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	do(t, srv, http.MethodGet, "/api/autocomplete/category?prefix=Sp", nil)
	do(t, srv, http.MethodGet, "/api/autocomplete/category?prefix=Sp", nil)

	rec := do(t, srv, http.MethodGet, "/api/autocomplete/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[[]suggest.Stats](t, rec)
	require.Len(t, stats, 2)
	assert.Equal(t, suggest.FieldCategory, stats[0].Field)
	assert.Equal(t, 3, stats[0].Words)
	assert.EqualValues(t, 1, stats[0].CacheHits)
	assert.EqualValues(t, 1, stats[0].IndexQueries)
	assert.Equal(t, "unset", stats[1].State)
}

func TestAutocompleteLoadFailure(t *testing.T) {
	store := newTestStore(t)
	svc := suggest.NewService(map[suggest.Field]suggest.Loader{
		suggest.FieldCategory: func(context.Context) ([]string, error) {
			return nil, errors.New("database is locked")
		},
	})
	srv, err := NewServer(Config{}, store, svc, nil)
	require.NoError(t, err)

	rec := do(t, srv, http.MethodGet, "/api/autocomplete/category?prefix=Sp", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "INTERNAL_ERROR", resp.Code)
	assert.NotContains(t, resp.Error, "locked")
}

func TestProxy(t *testing.T) {
	fwd := &fakeForwarder{reply: []byte(`{"choices":[]}`)}
	srv, _ := newTestServer(t, fwd)

	rec := do(t, srv, http.MethodPost, "/api/proxy/getAnalysis", strings.NewReader(`{"model":"m"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"choices":[]}`, rec.Body.String())
	assert.Equal(t, `{"model":"m"}`, string(fwd.got))

	fwd.err = &proxy.UpstreamError{Status: 500, Body: "overloaded"}
	rec = do(t, srv, http.MethodPost, "/api/proxy/getAnalysis", strings.NewReader(`{}`))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Error, "overloaded")

	fwd.err = proxy.ErrMissingAPIKey
	rec = do(t, srv, http.MethodPost, "/api/proxy/getAnalysis", strings.NewReader(`{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	fwd.err = nil
	rec = do(t, srv, http.MethodPost, "/api/proxy/getAnalysis", strings.NewReader(strings.Repeat("x", maxProxyBodyBytes+1)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProxyNotConfigured(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := do(t, srv, http.MethodPost, "/api/proxy/getAnalysis", strings.NewReader(`{}`))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "UNAVAILABLE", decode[ErrorResponse](t, rec).Code)
}

func TestMiddleware(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(t, srv, http.MethodGet, "/health", nil, "X-Request-ID", "abc-123")
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	rec = do(t, srv, http.MethodOptions, "/api/news", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, srv, http.MethodGet, "/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/api/news", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(log.New(io.Discard))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	h = RequestIDMiddleware()(h)

	rec := do(t, h, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, errInternal.Error(), decode[ErrorResponse](t, rec).Error)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	do(t, srv, http.MethodGet, "/api/news", nil)
	do(t, srv, http.MethodGet, "/api/autocomplete/category?prefix=Sp", nil)

	rec := do(t, srv, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "newsserve_http_requests")
	assert.Contains(t, body, `route="GET /api/news"`)
	assert.Contains(t, body, "newsserve_matcher_")
	assert.Contains(t, body, "go_goroutines")
}
