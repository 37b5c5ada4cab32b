// Package freecalls wires window, quota, stakeoracle and storage into
// the public entry points a host chain/service calls: Coordinator for
// dispatch and PreValidator for pool admission (spec.md §4.3, §4.4).
package freecalls

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/TarekkMA/freecalls/quota"
	"github.com/TarekkMA/freecalls/stakeoracle"
	"github.com/TarekkMA/freecalls/storage"
	"github.com/TarekkMA/freecalls/window"
)

// Operation is the wrapped "inner" call a caller wants to execute at
// no fee. Name feeds the eligibility filter; DeclaredWeight is the
// submission-time weight budget (spec.md §6: limiter_base_weight +
// inner_op.declared_weight); Dispatch executes it under the caller's
// own authority and reports its measured weight.
type Operation interface {
	Name() string
	DeclaredWeight() uint64
	Dispatch(ctx context.Context, caller common.Address) (result any, actualWeight uint64, err error)
}

// EligibilityFunc is the is_free_eligible predicate of spec.md §6. It
// must be a pure function of the operation alone.
type EligibilityFunc func(op Operation) bool

// Clock supplies the monotonically increasing logical time (block
// number) the limiter reads but never advances (spec.md §3).
type Clock func() uint64

// Config assembles a Coordinator/PreValidator pair. Build one with New
// plus functional Options, mirroring the teacher's
// ratelimit.Config/Option pattern.
type Config struct {
	Windows        []window.Config
	Strategy       quota.Strategy
	Oracle         stakeoracle.Oracle
	Backend        storage.Backend
	IsFreeEligible EligibilityFunc
	BaseWeight     uint64
	StatsTTL       time.Duration
	Clock          Clock
	Events         EventHandler
}

// Validate checks that a Config is complete enough to build a
// Coordinator, including the recommended window layering invariant
// (spec.md §9).
func (c Config) Validate() error {
	if err := window.ValidateLayering(c.Windows); err != nil {
		return fmt.Errorf("freecalls: %w", err)
	}
	if c.Strategy == nil {
		return fmt.Errorf("freecalls: quota strategy must not be nil")
	}
	if c.Oracle == nil {
		return fmt.Errorf("freecalls: stake oracle must not be nil")
	}
	if c.Backend == nil {
		return fmt.Errorf("freecalls: storage backend must not be nil")
	}
	if c.IsFreeEligible == nil {
		return fmt.Errorf("freecalls: eligibility predicate must not be nil")
	}
	if c.Clock == nil {
		return fmt.Errorf("freecalls: clock must not be nil")
	}
	return nil
}

// defaultStatsTTL is the storage TTL applied to a caller's stats entry
// when StatsTTL is left zero: long enough to outlive any configured
// window by a wide margin (spec.md §3's "never explicitly deleted by
// the limiter" is about logical deletion; storage-level TTL here is
// just housekeeping for backends that charge for idle keys).
const defaultStatsTTL = 400 * 24 * time.Hour

