package freecalls

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/TarekkMA/freecalls/window"
)

// admission is the shared, read-only pipeline of spec.md §4.3 step 3 /
// §4.4: derive quota, load prior stats, and run the window engine. It
// never touches storage for writes. Both Coordinator.TryFreeCall and
// PreValidator.Validate build one of these and must reach the same
// verdict from the same snapshot (spec.md §8 pre/post agreement).
type admission struct {
	caller      common.Address
	op          Operation
	currentTime uint64
	quota       uint16
	priorRaw    string
	newStats    []window.Stats
}

func statsKey(caller common.Address) string {
	return fmt.Sprintf("freecalls:stats:%s", caller.Hex())
}

// evaluate runs the full admission pipeline against the live snapshot
// and returns either a ready-to-commit admission or an error. The
// error is one of two kinds, and callers must distinguish them with
// errors.Is rather than treat every non-nil error alike:
//   - a policy/quota/config rejection (ErrCallCannotBeFree,
//     ErrOutOfQuota) — a verdict about this caller/op, safe to recover
//     from locally per spec.md §7.
//   - ErrBackendUnavailable — the pipeline itself could not run
//     because the storage read failed or its payload didn't decode.
//     This is not a verdict and must propagate as a real error.
func (c *Coordinator) evaluate(ctx context.Context, caller common.Address, op Operation) (admission, error) {
	if !c.config.IsFreeEligible(op) {
		return admission{}, ErrCallCannotBeFree
	}

	currentTime := c.config.Clock()

	locked, _ := c.config.Oracle.LockedInfo(caller)
	amount, ok := c.config.Strategy.Quota(caller, currentTime, locked)
	if !ok {
		amount = 0
	}

	raw, err := c.config.Backend.Get(ctx, statsKey(caller))
	if err != nil {
		return admission{}, fmt.Errorf("%w: read stats: %w", ErrBackendUnavailable, err)
	}
	prior, err := decodeStats(raw)
	if err != nil {
		return admission{}, fmt.Errorf("%w: decode stats: %w", ErrBackendUnavailable, err)
	}

	newStats, err := c.evaluateWindows(currentTime, amount, prior)
	if err != nil {
		return admission{}, err
	}

	return admission{
		caller:      caller,
		op:          op,
		currentTime: currentTime,
		quota:       amount,
		priorRaw:    raw,
		newStats:    newStats,
	}, nil
}

func (c *Coordinator) evaluateWindows(currentTime uint64, amount uint16, prior []window.Stats) ([]window.Stats, error) {
	newStats, err := c.engine.Evaluate(currentTime, amount, c.config.Windows, prior)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutOfQuota, err)
	}
	return newStats, nil
}
