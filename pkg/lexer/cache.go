package lexer

import (
	"github.com/dgraph-io/ristretto"

	"github.com/oarkflow/lumen/pkg/token"
)

// Cache memoises token sequences by exact source text. REPL sessions re-enter
// the same lines often enough that skipping the lexer is worthwhile.
type Cache struct {
	cache *ristretto.Cache
	opts  []Option
}

// NewCache creates a cache holding up to maxTokens tokens across all entries.
func NewCache(maxTokens int, opts ...Option) (*Cache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: int64(maxTokens * 10),
		MaxCost:     int64(maxTokens),
		BufferItems: 64,
		// costs are token counts
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{cache: cache, opts: opts}, nil
}

// Tokenize returns a fresh stream for input, lexing only on a cache miss.
// Failed inputs are never cached.
func (c *Cache) Tokenize(input string) (*token.Stream, bool, error) {
	if v, found := c.cache.Get(input); found {
		return token.NewStreamFrom(v.([]token.Token)), true, nil
	}
	stream, err := New(input, c.opts...).Tokenize()
	if err != nil {
		return stream, false, err
	}
	tokens := stream.Tokens()
	c.cache.Set(input, tokens, int64(len(tokens)))
	return stream, false, nil
}

// Wait blocks until pending writes are visible to Get.
func (c *Cache) Wait() {
	c.cache.Wait()
}

func (c *Cache) Close() {
	c.cache.Close()
}
