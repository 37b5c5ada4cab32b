package quota

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// EligibleAccounts is the transitional fallback strategy: rather than
// deriving quota from stake, it grants a fixed quota to any caller on an
// admin-managed allow-list and nothing to anyone else. It does not
// consult locked stake at all.
type EligibleAccounts struct {
	mu       sync.RWMutex
	accounts map[common.Address]struct{}
	quota    uint16
}

// NewEligibleAccounts builds an empty allow-list strategy granting
// quota free calls to every account later added via AddAccounts.
func NewEligibleAccounts(quota uint16) *EligibleAccounts {
	return &EligibleAccounts{
		accounts: make(map[common.Address]struct{}),
		quota:    quota,
	}
}

// AddAccounts grants eligibility to the given accounts. It returns the
// number of accounts newly added, matching the EligibleAccountsAdded
// event payload of the governance-gated admin operation.
func (e *EligibleAccounts) AddAccounts(accounts []common.Address) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	added := 0
	for _, acc := range accounts {
		if _, ok := e.accounts[acc]; !ok {
			e.accounts[acc] = struct{}{}
			added++
		}
	}
	return added
}

// IsEligible reports whether an account currently holds the flag.
func (e *EligibleAccounts) IsEligible(account common.Address) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.accounts[account]
	return ok
}

// Quota implements Strategy. The current time and locked stake are
// ignored entirely; only allow-list membership matters.
func (e *EligibleAccounts) Quota(caller common.Address, _ uint64, _ *LockedInfo) (uint16, bool) {
	if !e.IsEligible(caller) {
		return 0, false
	}
	return e.quota, true
}
