package window

import "fmt"

// Engine evaluates the conjunction of all configured windows for a single
// call attempt. It is stateless: it never reads or writes storage, it only
// maps (time, quota, configs, prior stats) to either a complete replacement
// stats vector or a rejection. See spec.md §4.2.
type Engine struct{}

// NewEngine returns a ready-to-use Engine. It carries no state, so a zero
// value works equally well; the constructor exists for symmetry with the
// rest of the package's types and to leave room for future options.
func NewEngine() Engine { return Engine{} }

// Evaluate runs the admission check for a single call. priorStats[i]
// corresponds to configs[i]; a shorter priorStats (including nil) is
// treated as "no prior stats for the trailing windows". On acceptance it
// returns a complete stats vector of len(configs); on rejection it returns
// (nil, err) with err wrapping one of the sentinels in errors.go, and the
// caller must not persist anything — the evaluation has no side effects.
func (Engine) Evaluate(currentTime uint64, quota uint16, configs []Config, priorStats []Stats) ([]Stats, error) {
	if quota == 0 {
		return nil, fmt.Errorf("%w: no quota", ErrOutOfQuota)
	}
	if len(configs) == 0 {
		return nil, fmt.Errorf("%w: no windows configured", ErrConfigInvalid)
	}
	if len(priorStats) > len(configs) {
		return nil, fmt.Errorf("%w: got %d, configured %d", ErrStatsOverflow, len(priorStats), len(configs))
	}

	next := make([]Stats, len(configs))

	for i, cfg := range configs {
		if cfg.Period == 0 {
			return nil, fmt.Errorf("%w: window %d has zero period", ErrConfigInvalid, i)
		}

		bucket := cfg.Bucket(currentTime)

		stats := Stats{TimelineIndex: bucket, UsedCalls: 0}
		if i < len(priorStats) {
			stats = priorStats[i]
			if stats.Reset(bucket) {
				stats = Stats{TimelineIndex: bucket, UsedCalls: 0}
			}
		}

		cap16 := cfg.Cap(quota)
		if stats.UsedCalls >= cap16 {
			return nil, fmt.Errorf("%w: window %d at %d/%d", ErrOutOfQuota, i, stats.UsedCalls, cap16)
		}

		stats.UsedCalls = saturatingAddU16(stats.UsedCalls, 1)
		next[i] = stats
	}

	return next, nil
}

// saturatingAddU16 adds b to a, clamping at the uint16 maximum rather than
// wrapping. Spec.md §4.2/§9 require saturating arithmetic throughout.
func saturatingAddU16(a, b uint16) uint16 {
	sum := uint32(a) + uint32(b)
	if sum > 0xFFFF {
		return 0xFFFF
	}
	return uint16(sum)
}
