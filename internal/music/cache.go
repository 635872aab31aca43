package music

import (
	"log"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/bihua-university/aplayer/internal/lyric"
)

// urlTTL bounds how long a resolved stream URL is trusted; catalog CDNs
// sign their URLs with expiry times in this order of magnitude.
const urlTTL = 30 * time.Minute

// Source resolves assets from the remote catalog. *Manager implements it.
type Source interface {
	ResolveURL(s Song, quality string) (URLResult, error)
	ResolveLyric(s Song, translation bool) (LyricResult, error)
}

// LyricStore is the persistent side of the lyric cache. May be nil.
type LyricStore interface {
	Lyric(id string) (text, trans string, ok bool)
	PutLyric(id, text, trans string) error
}

// Cache caches resolved URLs (with TTL) and parsed lyrics (for the
// process lifetime), and collapses concurrent requests for the same key
// into a single in-flight fetch.
type Cache struct {
	source Source
	store  LyricStore

	urls *expirable.LRU[string, string]

	mu     sync.Mutex
	parsed map[string]*lyric.Lyric
	flight map[string]*flight
}

type flight struct {
	done chan struct{}
	val  any
	err  error
}

func NewCache(source Source, store LyricStore) *Cache {
	return newCache(source, store, urlTTL)
}

func newCache(source Source, store LyricStore, ttl time.Duration) *Cache {
	return &Cache{
		source: source,
		store:  store,
		urls:   expirable.NewLRU[string, string](256, nil, ttl),
		parsed: make(map[string]*lyric.Lyric),
		flight: make(map[string]*flight),
	}
}

// URL returns a playable URL for s, from cache when fresh. Concurrent
// callers for the same track share one catalog request.
func (c *Cache) URL(s Song, quality string) (string, error) {
	if u, ok := c.urls.Get(s.ID); ok {
		return u, nil
	}
	v, err := c.do("url:"+s.ID, func() (any, error) {
		if u, ok := c.urls.Get(s.ID); ok {
			return u, nil
		}
		r, err := c.source.ResolveURL(s, quality)
		if err != nil {
			return "", err
		}
		c.urls.Add(s.ID, r.URL)
		return r.URL, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops the cached URL for a track. Called on playback
// failure: the URL may have expired server-side within the TTL window.
func (c *Cache) Invalidate(id string) {
	c.urls.Remove(id)
}

// Lyric returns the parsed lyric for s. Each track is parsed at most once
// per process; raw text is additionally kept in the persistent store so a
// restart does not refetch.
func (c *Cache) Lyric(s Song) (*lyric.Lyric, error) {
	c.mu.Lock()
	if l, ok := c.parsed[s.ID]; ok {
		c.mu.Unlock()
		return l, nil
	}
	c.mu.Unlock()

	v, err := c.do("lyric:"+s.ID, func() (any, error) {
		c.mu.Lock()
		if l, ok := c.parsed[s.ID]; ok {
			c.mu.Unlock()
			return l, nil
		}
		c.mu.Unlock()

		text, trans, ok := "", "", false
		if c.store != nil {
			text, trans, ok = c.store.Lyric(s.ID)
		}
		if !ok {
			r, err := c.source.ResolveLyric(s, true)
			if err != nil {
				return nil, err
			}
			text, trans = r.Lyric, r.Translation
			if c.store != nil {
				if err := c.store.PutLyric(s.ID, text, trans); err != nil {
					log.Printf("cache: persist lyric %s: %v", s.ID, err)
				}
			}
		}

		l := lyric.Parse(text, trans)
		c.mu.Lock()
		c.parsed[s.ID] = l
		c.mu.Unlock()
		return l, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*lyric.Lyric), nil
}

// Prefetch warms the URL and lyric caches for s. Best effort: failures
// are swallowed, prefetch is an optimization, not correctness.
func (c *Cache) Prefetch(s Song, quality string) {
	if _, err := c.URL(s, quality); err != nil {
		return
	}
	_, _ = c.Lyric(s)
}

// Reset drops all cached state.
func (c *Cache) Reset() {
	c.urls.Purge()
	c.mu.Lock()
	c.parsed = make(map[string]*lyric.Lyric)
	c.mu.Unlock()
}

// do collapses concurrent calls with the same key into one execution of
// fn; late arrivals wait for and share the first caller's outcome. The
// entry is removed once fn settles, success or failure.
func (c *Cache) do(key string, fn func() (any, error)) (any, error) {
	c.mu.Lock()
	if f, ok := c.flight[key]; ok {
		c.mu.Unlock()
		<-f.done
		return f.val, f.err
	}
	f := &flight{done: make(chan struct{})}
	c.flight[key] = f
	c.mu.Unlock()

	f.val, f.err = fn()

	c.mu.Lock()
	delete(c.flight, key)
	c.mu.Unlock()
	close(f.done)
	return f.val, f.err
}
