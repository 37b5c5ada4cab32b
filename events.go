package freecalls

import "github.com/ethereum/go-ethereum/common"

// FreeCallResult is emitted once a free call has been admitted and the
// inner operation has been dispatched, whether that dispatch succeeded
// or returned its own error (spec.md §4.3 step 6, §6 events). It is
// never emitted for a call rejected by the eligibility filter or the
// quota pipeline.
type FreeCallResult struct {
	Caller  common.Address
	OpName  string
	Weight  uint64
	Result  any
	OpError error
}

// EligibleAccountsAdded mirrors the transitional variant's admin event
// (spec.md §6): it fires when accounts are granted the allow-list flag
// used by quota.EligibleAccounts, independent of the stake-derived
// strategy.
type EligibleAccountsAdded struct {
	Count int
}

// EventHandler receives coordinator events. Both fields may be nil; a
// nil handler is a silent no-op, matching the teacher's "onHealthy may
// be nil" convention in health.Checker.
type EventHandler struct {
	OnFreeCallResult   func(FreeCallResult)
	OnEligibleAccounts func(EligibleAccountsAdded)
}

func (h EventHandler) freeCallResult(e FreeCallResult) {
	if h.OnFreeCallResult != nil {
		h.OnFreeCallResult(e)
	}
}

func (h EventHandler) eligibleAccountsAdded(e EligibleAccountsAdded) {
	if h.OnEligibleAccounts != nil {
		h.OnEligibleAccounts(e)
	}
}
