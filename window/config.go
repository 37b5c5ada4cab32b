// Package window implements the multi-window sliding quota engine: the
// pure, stateless arithmetic that decides whether a caller has budget left
// in every configured observation window.
package window

import (
	"fmt"
)

// Logical time units, matching the reference implementation's block-based
// constants (runtime/src/constants.rs in the original pallet). Expressed
// here as plain uint64 "ticks" since WindowEngine has no notion of wall
// clock; callers translate their own block/slot cadence into these.
const (
	Minutes uint64 = 1
	Hours          = 60 * Minutes
	Days           = 24 * Hours
	Weeks          = 7 * Days
	Months         = 30 * Days
)

// Config describes one observation window: a period in logical time units
// and a quota divisor ("ratio"). The per-window cap is
// max(1, quota / Ratio).
type Config struct {
	Period uint64
	Ratio  uint16
}

// New constructs a Config, panicking on a zero ratio — the only
// compile-time-style fault the spec allows (spec.md §7).
func New(period uint64, ratio uint16) Config {
	if ratio == 0 {
		panic("window: quota ratio must be non-zero")
	}
	return Config{Period: period, Ratio: ratio}
}

// ReferenceWindows returns the reference layering from the original
// runtime config: a day at full quota, an hour at a third, and five
// minutes at a tenth.
func ReferenceWindows() []Config {
	return []Config{
		New(1*Days, 1),
		New(1*Hours, 3),
		New(5*Minutes, 10),
	}
}

// ValidateLayering checks the recommended (non-required) operator-sanity
// invariant described in spec.md §3 and §9: periods strictly decrease,
// ratios are non-decreasing, and the first window's ratio is 1. It is a
// runtime stand-in for the original's compile-time const_assert!.
func ValidateLayering(configs []Config) error {
	if len(configs) == 0 {
		return fmt.Errorf("window: configuration must not be empty")
	}
	if configs[0].Ratio != 1 {
		return fmt.Errorf("window: first window must have ratio 1, got %d", configs[0].Ratio)
	}
	for i := 1; i < len(configs); i++ {
		prev, cur := configs[i-1], configs[i]
		if cur.Period >= prev.Period {
			return fmt.Errorf("window: period at index %d (%d) must be strictly less than the previous (%d)", i, cur.Period, prev.Period)
		}
		if cur.Ratio < prev.Ratio {
			return fmt.Errorf("window: ratio at index %d (%d) must not decrease from the previous (%d)", i, cur.Ratio, prev.Ratio)
		}
	}
	return nil
}

// Bucket returns the timeline index a call at currentTime belongs to under
// this window's period. A zero period has no valid bucket; callers must
// check Period != 0 first (see Engine.Evaluate).
func (c Config) Bucket(currentTime uint64) uint64 {
	return currentTime / c.Period
}

// Cap returns this window's per-period ceiling for a given quota:
// max(1, quota/ratio). A positive quota always yields at least one call.
func (c Config) Cap(quota uint16) uint16 {
	cap16 := quota / c.Ratio
	if cap16 < 1 {
		return 1
	}
	return cap16
}

// Stats is a per-caller, per-window counter: the bucket it belongs to and
// how many calls have been consumed within that bucket.
type Stats struct {
	TimelineIndex uint64
	UsedCalls     uint16
}

// Reset reports whether stats is for a bucket strictly older than bucket —
// the only condition that triggers a rollover (spec.md §4.2).
func (s Stats) Reset(bucket uint64) bool {
	return s.TimelineIndex < bucket
}
