// Package health runs a background connectivity check against the
// storage backend a Coordinator depends on, so an operator can wire up
// alerting or failover without threading health logic through the hot
// admission path.
package health

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/TarekkMA/freecalls/storage"
)

// Config controls the polling cadence and probe used by a Checker.
type Config struct {
	Interval time.Duration
	Timeout  time.Duration
	TestKey  string
	// FailThreshold is the number of consecutive failing probes
	// required before the Checker flips from healthy to unhealthy.
	// Below 1, it is treated as 1 (flip on the first failure). A
	// failure classified as storage.KindConnection flips it on the
	// first probe regardless of this value.
	FailThreshold int
	// RecoverThreshold is the number of consecutive succeeding probes
	// required before the Checker flips back to healthy. Below 1, it
	// is treated as 1.
	RecoverThreshold int
}

// DefaultConfig returns sensible polling defaults.
func DefaultConfig() Config {
	return Config{
		Interval:         10 * time.Second,
		Timeout:          2 * time.Second,
		TestKey:          "freecalls-health-check",
		FailThreshold:    1,
		RecoverThreshold: 2,
	}
}

// Option configures a Config.
type Option func(*Config)

// WithInterval overrides the polling interval.
func WithInterval(d time.Duration) Option { return func(c *Config) { c.Interval = d } }

// WithTimeout overrides the per-probe timeout.
func WithTimeout(d time.Duration) Option { return func(c *Config) { c.Timeout = d } }

// WithTestKey overrides the key probed on every check.
func WithTestKey(key string) Option { return func(c *Config) { c.TestKey = key } }

// WithFailThreshold overrides how many consecutive failures flip the
// Checker unhealthy.
func WithFailThreshold(n int) Option { return func(c *Config) { c.FailThreshold = n } }

// WithRecoverThreshold overrides how many consecutive successes flip
// the Checker back to healthy.
func WithRecoverThreshold(n int) Option { return func(c *Config) { c.RecoverThreshold = n } }

// Checker polls a storage.Backend on a ticker and debounces the
// result across FailThreshold/RecoverThreshold consecutive probes
// before calling onUnhealthy/onHealthy, so a single slow probe under
// load doesn't flap callers in and out of failover. Healthy() reports
// the last settled state and is safe to call from any goroutine.
type Checker struct {
	backend storage.Backend
	config  Config

	healthy atomic.Bool
	streak  int // consecutive probes agreeing with the current non-settled direction

	stopOnce sync.Once
	stopChan chan struct{}

	onHealthy   func()
	onUnhealthy func(err error)
}

// New builds a Checker. Either callback may be nil. The Checker starts
// optimistically healthy; FailThreshold consecutive probe failures, or
// a single failure classified as storage.KindConnection, flip it.
func New(backend storage.Backend, config Config, onHealthy func(), onUnhealthy func(err error)) *Checker {
	if config.FailThreshold < 1 {
		config.FailThreshold = 1
	}
	if config.RecoverThreshold < 1 {
		config.RecoverThreshold = 1
	}
	c := &Checker{
		backend:     backend,
		config:      config,
		stopChan:    make(chan struct{}),
		onHealthy:   onHealthy,
		onUnhealthy: onUnhealthy,
	}
	c.healthy.Store(true)
	return c
}

// Healthy reports the Checker's last settled verdict.
func (c *Checker) Healthy() bool { return c.healthy.Load() }

// Start begins background polling. A non-positive Interval disables
// polling entirely. Start must be called at most once per Checker.
func (c *Checker) Start(ctx context.Context) {
	if c.config.Interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(c.config.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.probe(ctx)
			case <-ctx.Done():
				return
			case <-c.stopChan:
				return
			}
		}
	}()
}

// Stop halts polling. Safe to call more than once or concurrently.
func (c *Checker) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
}

func (c *Checker) probe(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, c.config.Timeout)
	defer cancel()

	testKey := c.config.TestKey
	if testKey == "" {
		testKey = "freecalls-health-check"
	}

	_, err := c.backend.Get(ctx, testKey)
	c.record(err)
}

// record applies one probe outcome to the debounce streak and fires
// the matching callback exactly once per transition.
func (c *Checker) record(err error) {
	wasHealthy := c.healthy.Load()

	if err == nil {
		if wasHealthy {
			c.streak = 0
			return
		}
		c.streak++
		if c.streak >= c.config.RecoverThreshold {
			c.streak = 0
			c.healthy.Store(true)
			if c.onHealthy != nil {
				c.onHealthy()
			}
		}
		return
	}

	if !wasHealthy {
		c.streak = 0
		return
	}

	// A classified connection failure (the backend is plainly
	// unreachable) flips immediately instead of waiting out
	// FailThreshold, which exists to debounce transient timeouts
	// under load, not a dead connection.
	threshold := c.config.FailThreshold
	if kind, ok := storage.ClassifyHealthError(err); ok && kind == storage.KindConnection {
		threshold = 1
	}

	c.streak++
	if c.streak >= threshold {
		c.streak = 0
		c.healthy.Store(false)
		if c.onUnhealthy != nil {
			c.onUnhealthy(err)
		}
	}
}
