package suggest

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(categories, topics Loader) *Service {
	return NewService(map[Field]Loader{
		FieldCategory: categories,
		FieldTopic:    topics,
	})
}

func TestServiceFieldsAreIndependent(t *testing.T) {
	svc := newTestService(staticLoader("Sports", "Space"), staticLoader("Sprint", "Tennis"))
	ctx := context.Background()

	got, err := svc.EnsureAndMatch(ctx, FieldCategory, "Sp")
	require.NoError(t, err)
	assert.Equal(t, []string{"Space", "Sports"}, got)

	topics, err := svc.Matcher(FieldTopic)
	require.NoError(t, err)
	assert.False(t, topics.Ready())

	got, err = svc.EnsureAndMatch(ctx, FieldTopic, "Sp")
	require.NoError(t, err)
	assert.Equal(t, []string{"Sprint"}, got)
}

func TestServiceUnknownField(t *testing.T) {
	svc := newTestService(staticLoader(), staticLoader())
	_, err := svc.EnsureAndMatch(context.Background(), Field("author"), "a")
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.ErrorIs(t, svc.Refresh(context.Background(), Field("author")), ErrUnknownField)
}

func TestServiceRefresh(t *testing.T) {
	var version atomic.Int32
	loader := func(context.Context) ([]string, error) {
		if version.Load() == 0 {
			return []string{"A", "B"}, nil
		}
		return []string{"C"}, nil
	}
	svc := newTestService(loader, staticLoader("T"))
	ctx := context.Background()

	got, err := svc.EnsureAndMatch(ctx, FieldCategory, "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, got)

	version.Store(1)
	require.NoError(t, svc.Refresh(ctx, FieldCategory))
	got, err = svc.EnsureAndMatch(ctx, FieldCategory, "A")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestServiceRefreshAllPartialFailure(t *testing.T) {
	boom := errors.New("topics unavailable")
	failing := func(context.Context) ([]string, error) { return nil, boom }
	svc := newTestService(staticLoader("Sports"), failing)

	err := svc.RefreshAll(context.Background())
	assert.ErrorIs(t, err, boom)

	cat, _ := svc.Matcher(FieldCategory)
	top, _ := svc.Matcher(FieldTopic)
	assert.True(t, cat.Ready())
	assert.False(t, top.Ready())
}

func TestServiceWarmAndStats(t *testing.T) {
	svc := newTestService(staticLoader("Sports", "Space"), staticLoader("Tennis"))
	require.NoError(t, svc.Warm(context.Background()))

	stats := svc.Stats()
	require.Len(t, stats, 2)
	assert.Equal(t, FieldCategory, stats[0].Field)
	assert.Equal(t, "ready", stats[0].State)
	assert.Equal(t, 2, stats[0].Words)
	assert.Equal(t, FieldTopic, stats[1].Field)
	assert.Equal(t, 1, stats[1].Words)
}

func TestRegisterMetricsTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterMetrics(reg))
	require.NoError(t, RegisterMetrics(reg))
}

func TestBuildDurationInSeconds(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterMetrics(reg))

	field := Field("build-duration")
	m := NewMatcher(field, WithBuildFunc(func(words []string) Index {
		time.Sleep(200 * time.Microsecond)
		return Build(words)
	}))
	m.Initialize([]string{"Sports"})

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range families {
		if mf.GetName() != "newsserve_matcher_build_duration_seconds" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if lp.GetName() == "field" && lp.GetValue() == string(field) {
					found = true
					h := metric.GetHistogram()
					assert.Equal(t, uint64(1), h.GetSampleCount())
					assert.Greater(t, h.GetSampleSum(), 0.0)
					assert.Less(t, h.GetSampleSum(), 1.0)
				}
			}
		}
	}
	assert.True(t, found, "build duration histogram not exported")
}
