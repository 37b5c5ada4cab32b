package freecalls

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/TarekkMA/freecalls/quota"
	"github.com/TarekkMA/freecalls/window"
)

// maxCommitRetries bounds the compare-and-set retry loop that commits a
// caller's stats. Contention on a single caller's key should not occur
// under the serialized per-block scheduling model of spec.md §5; this
// exists purely as the defensive backstop the teacher applies to every
// CheckAndSet loop (strategies.CheckAndSetRetries).
const maxCommitRetries = 8

// Coordinator is the public entry point of spec.md §4.3: FreeCallCoordinator.
// Build one with New and a set of Options.
type Coordinator struct {
	config Config
	engine window.Engine
}

// New builds a Coordinator from functional options, validating the
// assembled Config before returning (mirrors ratelimit.New).
func New(opts ...Option) (*Coordinator, error) {
	config := Config{}

	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return nil, fmt.Errorf("freecalls: apply option: %w", err)
		}
	}

	if config.StatsTTL == 0 {
		config.StatsTTL = defaultStatsTTL
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Coordinator{config: config, engine: window.NewEngine()}, nil
}

// PostDispatch is the receipt returned by TryFreeCall (spec.md §4.3
// step 7, §6). Fee is always implicitly None for a free call; only the
// weight actually consumed is reported.
type PostDispatch struct {
	// ActualWeight is limiter_base_weight plus the inner operation's
	// measured weight, or just limiter_base_weight when the call was
	// filtered out or ran out of quota before dispatch.
	ActualWeight uint64
}

// TryFreeCall implements spec.md §4.3. It never returns an error for
// ordinary admission rejections (PolicyDenial, QuotaExhausted,
// ConfigInvalid) — those surface as a no-fee receipt with no dispatch,
// matching §4.6's "recovers locally... no fault". A non-nil error here
// means the coordinator itself malfunctioned (storage I/O failure,
// undecodable stats, or a commit conflict, ErrCommitConflict), not that the caller
// was denied; spec.md §7 scopes local recovery to policy/quota/config
// rejections only, so a storage fault must not masquerade as a normal,
// no-fee admission.
func (c *Coordinator) TryFreeCall(ctx context.Context, caller common.Address, op Operation) (PostDispatch, error) {
	adm, err := c.evaluate(ctx, caller, op)
	if err != nil {
		if errors.Is(err, ErrCallCannotBeFree) || errors.Is(err, ErrOutOfQuota) {
			return PostDispatch{ActualWeight: c.config.BaseWeight}, nil
		}
		return PostDispatch{}, err
	}

	if err := c.commit(ctx, adm); err != nil {
		return PostDispatch{}, err
	}

	result, weight, dispatchErr := op.Dispatch(ctx, caller)

	c.config.Events.freeCallResult(FreeCallResult{
		Caller:  caller,
		OpName:  op.Name(),
		Weight:  weight,
		Result:  result,
		OpError: dispatchErr,
	})

	return PostDispatch{ActualWeight: c.config.BaseWeight + weight}, nil
}

// commit writes adm.newStats for adm.caller with a bounded
// compare-and-set retry loop: on conflict it re-reads the live
// snapshot and re-runs the window engine against the same currentTime
// and quota, since only the prior-stats input could have changed.
func (c *Coordinator) commit(ctx context.Context, adm admission) error {
	raw := adm.priorRaw
	newStats := adm.newStats

	for attempt := 0; attempt < maxCommitRetries; attempt++ {
		encoded, err := encodeStats(newStats)
		if err != nil {
			return err
		}

		ok, err := c.config.Backend.CheckAndSet(ctx, statsKey(adm.caller), raw, encoded, c.config.StatsTTL)
		if err != nil {
			return fmt.Errorf("freecalls: commit stats: %w", err)
		}
		if ok {
			return nil
		}

		freshRaw, err := c.config.Backend.Get(ctx, statsKey(adm.caller))
		if err != nil {
			return fmt.Errorf("freecalls: re-read stats: %w", err)
		}
		freshPrior, err := decodeStats(freshRaw)
		if err != nil {
			return err
		}

		freshStats, err := c.evaluateWindows(adm.currentTime, adm.quota, freshPrior)
		if err != nil {
			return ErrCommitConflict
		}

		raw = freshRaw
		newStats = freshStats
	}

	return ErrCommitConflict
}

// AddEligibleAccounts grants the allow-list flag used by the
// transitional quota.EligibleAccounts strategy (spec.md §6's optional
// governance-gated admin operation). It fails if the configured
// Strategy isn't an *quota.EligibleAccounts — the stake-derived
// strategy has no allow-list to manage.
func (c *Coordinator) AddEligibleAccounts(accounts []common.Address) (int, error) {
	eligible, ok := c.config.Strategy.(*quota.EligibleAccounts)
	if !ok {
		return 0, fmt.Errorf("freecalls: configured strategy does not manage an eligible-accounts list")
	}

	added := eligible.AddAccounts(accounts)
	c.config.Events.eligibleAccountsAdded(EligibleAccountsAdded{Count: added})
	return added, nil
}
