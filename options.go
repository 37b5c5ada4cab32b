package freecalls

import (
	"fmt"
	"time"

	"github.com/TarekkMA/freecalls/quota"
	"github.com/TarekkMA/freecalls/stakeoracle"
	"github.com/TarekkMA/freecalls/storage"
	"github.com/TarekkMA/freecalls/window"
)

// Option is a functional option for New, mirroring the teacher's
// ratelimit.Option.
type Option func(*Config) error

// WithWindows sets the ordered observation windows. Required.
func WithWindows(configs ...window.Config) Option {
	return func(c *Config) error {
		c.Windows = configs
		return nil
	}
}

// WithStrategy sets the quota.Strategy used to derive a caller's
// allowance. Required.
func WithStrategy(strategy quota.Strategy) Option {
	return func(c *Config) error {
		if strategy == nil {
			return fmt.Errorf("freecalls: strategy cannot be nil")
		}
		c.Strategy = strategy
		return nil
	}
}

// WithOracle sets the stake oracle collaborator. Required.
func WithOracle(oracle stakeoracle.Oracle) Option {
	return func(c *Config) error {
		if oracle == nil {
			return fmt.Errorf("freecalls: oracle cannot be nil")
		}
		c.Oracle = oracle
		return nil
	}
}

// WithBackend sets the storage.Backend stats are committed through.
// Required.
func WithBackend(backend storage.Backend) Option {
	return func(c *Config) error {
		if backend == nil {
			return fmt.Errorf("freecalls: backend cannot be nil")
		}
		c.Backend = backend
		return nil
	}
}

// WithEligibility sets the is_free_eligible predicate. Required.
func WithEligibility(fn EligibilityFunc) Option {
	return func(c *Config) error {
		if fn == nil {
			return fmt.Errorf("freecalls: eligibility predicate cannot be nil")
		}
		c.IsFreeEligible = fn
		return nil
	}
}

// WithBaseWeight sets the limiter's own fixed weight, added to the
// inner operation's measured weight in every receipt (spec.md §4.3
// step 7).
func WithBaseWeight(weight uint64) Option {
	return func(c *Config) error {
		c.BaseWeight = weight
		return nil
	}
}

// WithStatsTTL overrides the storage-level TTL applied to a committed
// stats entry. Zero (the default if this option is never used) falls
// back to defaultStatsTTL.
func WithStatsTTL(ttl time.Duration) Option {
	return func(c *Config) error {
		c.StatsTTL = ttl
		return nil
	}
}

// WithClock overrides the logical time source. Required.
func WithClock(clock Clock) Option {
	return func(c *Config) error {
		if clock == nil {
			return fmt.Errorf("freecalls: clock cannot be nil")
		}
		c.Clock = clock
		return nil
	}
}

// WithEventHandler installs callbacks for FreeCallResult and
// EligibleAccountsAdded events. Either field may be left nil.
func WithEventHandler(handler EventHandler) Option {
	return func(c *Config) error {
		c.Events = handler
		return nil
	}
}
