package portfolio

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/iwvelando/msme-risk/pkg/constants"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Policy controls when a cached portfolio is reloaded from disk.
type Policy struct {
	// Mode is one of constants.CachePolicyNever, CachePolicyTTL or
	// CachePolicyMtime. Empty means never.
	Mode string
	// TTL is the maximum portfolio age under the ttl mode.
	TTL time.Duration
}

// Observer receives cache and load events, e.g. for metrics.
type Observer interface {
	ObserveCache(hit bool)
	ObserveLoad(err error, elapsed time.Duration)
}

// LoadFunc loads a portfolio from path.
type LoadFunc func(ctx context.Context, path string) (*Portfolio, error)

// Cache memoizes the loaded portfolio for the process lifetime, reloading
// it according to its Policy. It is safe for concurrent use.
type Cache struct {
	path     string
	policy   Policy
	logger   *zap.Logger
	observer Observer
	load     LoadFunc
	now      func() time.Time

	mu      sync.RWMutex
	current *Portfolio
	flight  singleflight.Group
}

// CacheOption customizes a Cache.
type CacheOption func(*Cache)

// WithObserver reports cache hits, misses and loads to o.
func WithObserver(o Observer) CacheOption {
	return func(c *Cache) {
		c.observer = o
	}
}

// WithLoadFunc replaces the loader, which defaults to Load.
func WithLoadFunc(fn LoadFunc) CacheOption {
	return func(c *Cache) {
		if fn != nil {
			c.load = fn
		}
	}
}

// WithClock replaces time.Now for TTL decisions.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCache returns a cache over the portfolio file at path.
func NewCache(path string, policy Policy, logger *zap.Logger, opts ...CacheOption) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy.Mode == "" {
		policy.Mode = constants.CachePolicyNever
	}

	c := &Cache{
		path:   path,
		policy: policy,
		logger: logger,
		load:   Load,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Path returns the portfolio file path.
func (c *Cache) Path() string {
	return c.path
}

// Policy returns the cache's invalidation policy.
func (c *Cache) Policy() Policy {
	return c.policy
}

// Peek returns the cached portfolio without loading or validating it.
func (c *Cache) Peek() *Portfolio {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Get returns the cached portfolio, loading it when absent or stale.
// Concurrent callers share a single load. Failed loads are not cached.
func (c *Cache) Get(ctx context.Context) (*Portfolio, error) {
	c.mu.RLock()
	cur := c.current
	c.mu.RUnlock()

	if cur != nil && !c.stale(cur) {
		c.observeCache(true)
		return cur, nil
	}
	c.observeCache(false)

	// The shared load must not be aborted by one caller going away.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := c.flight.Do(c.path, func() (interface{}, error) {
		// Another flight may have finished since cur was read.
		c.mu.RLock()
		latest := c.current
		c.mu.RUnlock()
		if latest != nil && latest != cur && !c.stale(latest) {
			return latest, nil
		}
		return c.reload(loadCtx, cur)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Portfolio), nil
}

// Invalidate drops the cached portfolio; the next Get reloads it.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
	c.flight.Forget(c.path)

	c.logger.Info("portfolio cache invalidated",
		zap.String("op", "portfolio.Cache.Invalidate"),
		zap.String("path", c.path),
	)
}

// Reload invalidates the cache and loads the portfolio again.
func (c *Cache) Reload(ctx context.Context) (*Portfolio, error) {
	c.Invalidate()
	return c.Get(ctx)
}

func (c *Cache) stale(p *Portfolio) bool {
	switch c.policy.Mode {
	case constants.CachePolicyTTL:
		return c.now().Sub(p.LoadedAt) >= c.policy.TTL
	case constants.CachePolicyMtime:
		info, err := os.Stat(c.path)
		if err != nil {
			return true
		}
		return !info.ModTime().Equal(p.ModTime) || info.Size() != p.Size
	default:
		return false
	}
}

func (c *Cache) reload(ctx context.Context, previous *Portfolio) (*Portfolio, error) {
	start := c.now()
	p, err := c.load(ctx, c.path)
	elapsed := c.now().Sub(start)
	if c.observer != nil {
		c.observer.ObserveLoad(err, elapsed)
	}
	if err != nil {
		c.logger.Error("failed to load portfolio",
			zap.String("op", "portfolio.Cache.reload"),
			zap.String("path", c.path),
			zap.Error(err),
		)
		return nil, eris.Wrap(err, "portfolio cache")
	}

	if previous != nil && previous.Fingerprint == p.Fingerprint {
		// Same bytes: keep sharing the rows already handed out.
		p.Loans = previous.Loans
		c.logger.Debug("portfolio unchanged on reload",
			zap.String("op", "portfolio.Cache.reload"),
			zap.String("fingerprint", p.Fingerprint),
		)
	}

	c.mu.Lock()
	c.current = p
	c.mu.Unlock()

	c.logger.Info("portfolio loaded",
		zap.String("op", "portfolio.Cache.reload"),
		zap.String("path", c.path),
		zap.Int("loans", p.Len()),
		zap.String("fingerprint", p.Fingerprint),
		zap.String("policy", c.policy.Mode),
		zap.Duration("duration", elapsed),
	)
	return p, nil
}

func (c *Cache) observeCache(hit bool) {
	if c.observer != nil {
		c.observer.ObserveCache(hit)
	}
}
