package tokenizer

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// TextCounter is a never-failing token counter.
type TextCounter interface {
	CountTokens(text string) int
}

// Cache memoizes token counts by text. It is safe for concurrent use.
type Cache struct {
	counter TextCounter
	mutex   sync.RWMutex
	counts  map[string]int
}

// NewCache returns an empty cache in front of counter.
func NewCache(counter TextCounter) *Cache {
	return &Cache{counter: counter, counts: make(map[string]int)}
}

// CountTokens returns the cached count for text, computing it on a miss.
func (cache *Cache) CountTokens(text string) int {
	cache.mutex.RLock()
	tokens, cached := cache.counts[text]
	cache.mutex.RUnlock()
	if cached {
		return tokens
	}
	tokens = cache.counter.CountTokens(text)
	cache.mutex.Lock()
	cache.counts[text] = tokens
	cache.mutex.Unlock()
	return tokens
}

// Len returns the number of cached texts.
func (cache *Cache) Len() int {
	cache.mutex.RLock()
	defer cache.mutex.RUnlock()
	return len(cache.counts)
}

// Prime counts texts with at most concurrency workers (GOMAXPROCS when not
// positive). It stops early and returns the context error when ctx ends.
func (cache *Cache) Prime(ctx context.Context, texts []string, concurrency int) error {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	group, groupContext := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)
	for _, text := range texts {
		if groupContext.Err() != nil {
			break
		}
		text := text
		group.Go(func() error {
			if contextError := groupContext.Err(); contextError != nil {
				return contextError
			}
			cache.CountTokens(text)
			return nil
		})
	}
	if waitError := group.Wait(); waitError != nil {
		return waitError
	}
	return ctx.Err()
}
