//go:build test

package suggest

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

var longPatterns = [][]string{
	{"S", "Sp", "Spo", "Spor", "Sport", "Sports"},
	{"T", "Te", "Tec", "Tech"},
	{"E", "En", "Ent", "Ente", "Enter", "Entert", "Enterta", "Entertai", "Entertain", "Entertainm", "Entertainme", "Entertainmen", "Entertainment"},
	{"I", "In", "Int", "Inte", "Inter", "Intern", "Interna", "Internat", "Internati", "Internatio", "Internation", "Internationa", "International"},
	{"体", "体育"},
}

func syntheticWords() []string {
	words := []string{"Sports", "Space", "Tech", "Entertainment", "International", "体育"}
	for i := 0; i < 5000; i++ {
		words = append(words, fmt.Sprintf("Topic-%04d", i))
	}
	return words
}

func heapAndGoroutines() (uint64, int) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	return m.HeapAlloc, runtime.NumGoroutine()
}

func TestMemoryStableUnderConcurrentMatch(t *testing.T) {
	configs := []struct {
		workers             int
		iterationsPerWorker int
	}{
		{workers: 1, iterationsPerWorker: 1000},
		{workers: 4, iterationsPerWorker: 250},
		{workers: 8, iterationsPerWorker: 125},
	}

	for _, config := range configs {
		t.Run(fmt.Sprintf("workers_%d_iter_%d", config.workers, config.iterationsPerWorker), func(t *testing.T) {
			m := NewMatcher(FieldCategory)
			m.Initialize(syntheticWords())

			baseHeap, baseGoroutines := heapAndGoroutines()

			var wg sync.WaitGroup
			for w := 0; w < config.workers; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for iter := 0; iter < config.iterationsPerWorker; iter++ {
						for _, pattern := range longPatterns {
							for _, prefix := range pattern {
								_ = m.Match(prefix)
							}
						}
					}
				}()
			}
			wg.Wait()

			heap, goroutines := heapAndGoroutines()
			delta := int64(heap) - int64(baseHeap)
			t.Logf("workers=%d heap_delta=%d bytes goroutine_delta=%d cache_entries=%d",
				config.workers, delta, goroutines-baseGoroutines, m.Stats().CacheEntries)

			if delta > 4<<20 {
				t.Errorf("heap grew by %d bytes", delta)
			}
			if goroutines-baseGoroutines > 2 {
				t.Errorf("goroutine leak detected: %d goroutines leaked", goroutines-baseGoroutines)
			}
		})
	}
}

func TestMemoryStableAcrossRefreshCycles(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping long-running memory stability test in short mode")
	}

	words := syntheticWords()
	loader := func(context.Context) ([]string, error) { return words, nil }
	m := NewMatcher(FieldTopic)
	if err := m.EnsureInitialized(context.Background(), loader); err != nil {
		t.Fatal(err)
	}

	baseHeap, baseGoroutines := heapAndGoroutines()
	for cycle := 0; cycle < 50; cycle++ {
		for _, pattern := range longPatterns {
			for _, prefix := range pattern {
				_ = m.Match(prefix)
			}
		}
		if err := m.Reload(context.Background(), loader); err != nil {
			t.Fatal(err)
		}
	}

	heap, goroutines := heapAndGoroutines()
	delta := int64(heap) - int64(baseHeap)
	t.Logf("cycles=50 heap_delta=%d bytes goroutine_delta=%d", delta, goroutines-baseGoroutines)

	if delta > 8<<20 {
		t.Errorf("old index generations are retained: heap grew by %d bytes", delta)
	}
	if goroutines-baseGoroutines > 2 {
		t.Errorf("goroutine leak detected: %d goroutines leaked", goroutines-baseGoroutines)
	}
}
