package suggest

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Service owns one Matcher per field together with the loader that feeds it.
// Each field has its own lock, so rebuilding one never blocks the other.
type Service struct {
	matchers map[Field]*Matcher
	loaders  map[Field]Loader
}

// NewService creates a not-ready matcher for every field that has a loader.
func NewService(loaders map[Field]Loader, opts ...Option) *Service {
	s := &Service{
		matchers: make(map[Field]*Matcher, len(loaders)),
		loaders:  make(map[Field]Loader, len(loaders)),
	}
	for field, loader := range loaders {
		s.matchers[field] = NewMatcher(field, opts...)
		s.loaders[field] = loader
	}
	return s
}

func (s *Service) Matcher(field Field) (*Matcher, error) {
	m, ok := s.matchers[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return m, nil
}

// EnsureAndMatch builds the field's index on first use, then matches prefix.
// Only a failed build returns an error; a miss is an empty slice.
func (s *Service) EnsureAndMatch(ctx context.Context, field Field, prefix string) ([]string, error) {
	m, err := s.Matcher(field)
	if err != nil {
		return nil, err
	}
	if err := m.EnsureInitialized(ctx, s.loaders[field]); err != nil {
		return nil, err
	}
	return m.Match(prefix), nil
}

// Refresh reloads a single field from its source.
func (s *Service) Refresh(ctx context.Context, field Field) error {
	m, err := s.Matcher(field)
	if err != nil {
		return err
	}
	return m.Reload(ctx, s.loaders[field])
}

// RefreshAll reloads every field concurrently. A failing field keeps its old
// index and does not stop the others; the first error is returned.
func (s *Service) RefreshAll(ctx context.Context) error {
	var g errgroup.Group
	for _, field := range s.fields() {
		g.Go(func() error {
			return s.Refresh(ctx, field)
		})
	}
	return g.Wait()
}

// Warm runs EnsureInitialized for every field and returns the first error.
func (s *Service) Warm(ctx context.Context) error {
	var g errgroup.Group
	for _, field := range s.fields() {
		m := s.matchers[field]
		loader := s.loaders[field]
		g.Go(func() error {
			return m.EnsureInitialized(ctx, loader)
		})
	}
	return g.Wait()
}

func (s *Service) Stats() []Stats {
	stats := make([]Stats, 0, len(s.matchers))
	for _, field := range s.fields() {
		stats = append(stats, s.matchers[field].Stats())
	}
	return stats
}

// fields returns the configured fields in the order of Fields, followed by
// any custom ones.
func (s *Service) fields() []Field {
	out := make([]Field, 0, len(s.matchers))
	seen := make(map[Field]bool, len(s.matchers))
	for _, f := range Fields {
		if _, ok := s.matchers[f]; ok {
			out = append(out, f)
			seen[f] = true
		}
	}
	for f := range s.matchers {
		if !seen[f] {
			out = append(out, f)
		}
	}
	return out
}
