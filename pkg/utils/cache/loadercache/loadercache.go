package loadercache

import (
	"context"
	"sync"
	"time"

	"github.com/mpapenbr/course-split-timer/log"
	"github.com/mpapenbr/course-split-timer/pkg/utils/cache"
)

type (
	Option[K comparable, V any] func(*config[K, V])
	// LoaderFunc fetches a missing or expired entry.
	LoaderFunc[K comparable, V any] func(ctx context.Context, key K) (*V, error)

	entry[V any] struct {
		data    *V
		expires time.Time // zero: never
	}
	config[K comparable, V any] struct {
		expiration time.Duration
		loader     LoaderFunc[K, V]
		l          *log.Logger
	}
	loaderCache[K comparable, V any] struct {
		mutex   sync.Mutex
		entries map[K]entry[V]
		config  *config[K, V]
	}
)

// WithExpiration sets the lifetime of loaded entries. 0 keeps them until
// they are invalidated.
func WithExpiration[K comparable, V any](expiration time.Duration) Option[K, V] {
	return func(c *config[K, V]) {
		c.expiration = expiration
	}
}

func WithLoader[K comparable, V any](lf LoaderFunc[K, V]) Option[K, V] {
	return func(c *config[K, V]) {
		c.loader = lf
	}
}

func WithLogger[K comparable, V any](arg *log.Logger) Option[K, V] {
	return func(c *config[K, V]) {
		c.l = arg
	}
}

func New[K comparable, V any](opts ...Option[K, V]) cache.Cache[K, V] {
	c := &config[K, V]{
		expiration: 5 * time.Minute,
		l:          log.Default().Named("cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return &loaderCache[K, V]{
		entries: make(map[K]entry[V]),
		config:  c,
	}
}

// Get returns the cached value or loads it. Without loader a missing entry
// yields cache.ErrCacheMiss. The loader runs with the lock held, concurrent
// requests for the same key load once.
func (c *loaderCache[K, V]) Get(ctx context.Context, key K) (*V, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if e, ok := c.entries[key]; ok {
		if e.expires.IsZero() || time.Now().Before(e.expires) {
			return e.data, nil
		}
		delete(c.entries, key)
	}
	if c.config.loader == nil {
		return nil, cache.ErrCacheMiss
	}
	v, err := c.config.loader(ctx, key)
	if err != nil {
		c.config.l.Debug("loading entry failed", log.Any("key", key), log.ErrorField(err))
		return nil, err
	}
	c.entries[key] = entry[V]{data: v, expires: c.expiresAt()}
	c.config.l.Debug("entry loaded", log.Any("key", key))
	return v, nil
}

func (c *loaderCache[K, V]) Set(ctx context.Context, key K, value *V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries[key] = entry[V]{data: value, expires: c.expiresAt()}
}

func (c *loaderCache[K, V]) Invalidate(ctx context.Context, key K) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.entries, key)
	c.config.l.Debug("invalidated", log.Any("key", key), log.Int("remaining", len(c.entries)))
}

func (c *loaderCache[K, V]) InvalidateAll(ctx context.Context) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	clear(c.entries)
}

func (c *loaderCache[K, V]) expiresAt() time.Time {
	if c.config.expiration <= 0 {
		return time.Time{}
	}
	return time.Now().Add(c.config.expiration)
}
