package suggest

import (
	"context"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/newsinsight/newsserve/internal/logger"
)

// State is the readiness of one field's index.
type State int32

const (
	StateUnset State = iota
	StateBuilding
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUnset:
		return "unset"
	case StateBuilding:
		return "building"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

// snapshot is one immutable generation: an index and the cache filled from it.
type snapshot struct {
	index   Index
	cache   *Cache
	builtAt time.Time
}

type options struct {
	build           BuildFunc
	maxCachedPrefix int
	logger          *log.Logger
}

// Option configures a Matcher.
type Option func(*options)

// WithBuildFunc replaces the default patricia index builder.
func WithBuildFunc(fn BuildFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.build = fn
		}
	}
}

// WithMaxCachedPrefix sets the longest prefix (in runes) kept in the cache.
func WithMaxCachedPrefix(n int) Option {
	return func(o *options) { o.maxCachedPrefix = n }
}

// WithLogger sets the logger used for build and match messages.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Matcher serves prefix completion for a single field.
//
// mu guards publication of the current snapshot and the readiness state: it is
// held exclusively only for the pointer swap and shared only while a cache miss
// reads the index. Cache hits and the ready check never take it.
type Matcher struct {
	field     Field
	build     BuildFunc
	maxPrefix int
	log       *log.Logger

	mu      sync.RWMutex
	current atomic.Pointer[snapshot]
	state   atomic.Int32
	flight  singleflight.Group

	hits     atomic.Int64
	misses   atomic.Int64
	queries  atomic.Int64
	builds   atomic.Int64
	failures atomic.Int64
}

// NewMatcher returns a not-ready matcher for field.
func NewMatcher(field Field, opts ...Option) *Matcher {
	o := options{
		build:           Build,
		maxCachedPrefix: DefaultMaxCachedPrefix,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.New("matcher/" + field.String())
	}

	ReadyState.WithLabelValues(field.String()).Set(0)

	return &Matcher{
		field:     field,
		build:     o.build,
		maxPrefix: o.maxCachedPrefix,
		log:       o.logger,
	}
}

// Field reports which field this matcher completes.
func (m *Matcher) Field() Field {
	return m.field
}

func (m *Matcher) State() State {
	return State(m.state.Load())
}

func (m *Matcher) Ready() bool {
	return m.State() == StateReady
}

// Initialize builds a new index from words, swaps it in together with an
// empty cache and marks the field ready. The build runs outside the lock.
func (m *Matcher) Initialize(words []string) {
	start := time.Now()
	m.log.Infof("Building %s index from %d source strings", m.field, len(words))

	next := &snapshot{
		index:   m.build(words),
		cache:   NewCache(m.maxPrefix),
		builtAt: time.Now(),
	}

	m.mu.Lock()
	prev := m.current.Swap(next)
	m.state.Store(int32(StateReady))
	m.mu.Unlock()

	if prev != nil {
		prev.cache.Clear()
	}

	elapsed := time.Since(start)
	m.builds.Add(1)
	BuildCount.WithLabelValues(m.field.String()).Inc()
	BuildDuration.WithLabelValues(m.field.String()).Observe(elapsed.Seconds())
	ReadyState.WithLabelValues(m.field.String()).Set(1)
	m.log.Infof("%s index ready: %d words in %v", m.field, next.index.Len(), elapsed)
}

// Refresh is an operator-triggered rebuild; it behaves exactly like Initialize.
func (m *Matcher) Refresh(words []string) {
	m.Initialize(words)
}

// EnsureInitialized returns at once when the field is ready. Otherwise it runs
// loader and builds the index, with concurrent callers sharing a single build.
// The shared build is detached from the initiating caller's cancellation, so
// one caller giving up never fails the others; each caller still stops waiting
// when its own ctx ends. A failed build leaves the field as it was and is
// reported to every caller waiting on it; later calls start a fresh attempt.
func (m *Matcher) EnsureInitialized(ctx context.Context, loader Loader) error {
	if m.Ready() {
		return nil
	}
	if loader == nil {
		return ErrNilLoader
	}

	buildCtx := context.WithoutCancel(ctx)
	ch := m.flight.DoChan("init", func() (any, error) {
		if m.Ready() {
			return nil, nil
		}
		m.state.CompareAndSwap(int32(StateUnset), int32(StateBuilding))

		words, err := loader(buildCtx)
		if err != nil {
			m.state.CompareAndSwap(int32(StateBuilding), int32(StateUnset))
			return nil, m.loadFailed(err)
		}
		m.Initialize(words)
		return nil, nil
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reload fetches words through loader and refreshes the index. On failure
// the previous index, cache and readiness are kept.
func (m *Matcher) Reload(ctx context.Context, loader Loader) error {
	if loader == nil {
		return ErrNilLoader
	}
	words, err := loader(ctx)
	if err != nil {
		return m.loadFailed(err)
	}
	m.Refresh(words)
	return nil
}

func (m *Matcher) loadFailed(err error) error {
	m.failures.Add(1)
	BuildFailures.WithLabelValues(m.field.String()).Inc()
	m.log.Errorf("Failed to load %s words: %v", m.field, err)
	return &LoadError{Field: m.field, Err: err}
}

// Match returns the known words starting with prefix, sorted ascending.
// Blank prefixes and a field that is not ready yield an empty slice.
func (m *Matcher) Match(prefix string) []string {
	if strings.TrimSpace(prefix) == "" {
		m.log.Debugf("Empty %s prefix", m.field)
		return []string{}
	}
	if !m.Ready() {
		m.log.Debugf("Match on %s before the index was built", m.field)
		return []string{}
	}

	if snap := m.current.Load(); snap != nil {
		if words, ok := snap.cache.Get(prefix); ok {
			m.hits.Add(1)
			CacheLookups.WithLabelValues(m.field.String(), "hit").Inc()
			m.log.Debugf("Cache hit: %s prefix '%s' -> %d results", m.field, prefix, len(words))
			return slices.Clone(words)
		}
	}
	m.misses.Add(1)
	CacheLookups.WithLabelValues(m.field.String(), "miss").Inc()

	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := m.current.Load()
	words := snap.index.Query(prefix)
	m.queries.Add(1)
	IndexQueries.WithLabelValues(m.field.String()).Inc()
	slices.Sort(words)
	snap.cache.Put(prefix, words)

	m.log.Debugf("Match: %s prefix '%s' -> %d results", m.field, prefix, len(words))
	return slices.Clone(words)
}

// Stats is a point-in-time view of a matcher.
type Stats struct {
	Field         Field     `json:"field"`
	State         string    `json:"state"`
	Words         int       `json:"words"`
	CacheEntries  int       `json:"cache_entries"`
	CacheHits     int64     `json:"cache_hits"`
	CacheMisses   int64     `json:"cache_misses"`
	IndexQueries  int64     `json:"index_queries"`
	Builds        int64     `json:"builds"`
	BuildFailures int64     `json:"build_failures"`
	BuiltAt       time.Time `json:"built_at,omitempty"`
}

func (m *Matcher) Stats() Stats {
	s := Stats{
		Field:         m.field,
		State:         m.State().String(),
		CacheHits:     m.hits.Load(),
		CacheMisses:   m.misses.Load(),
		IndexQueries:  m.queries.Load(),
		Builds:        m.builds.Load(),
		BuildFailures: m.failures.Load(),
	}
	if snap := m.current.Load(); snap != nil {
		s.Words = snap.index.Len()
		s.CacheEntries = snap.cache.Len()
		s.BuiltAt = snap.builtAt
	}
	return s
}
