package quota

import "github.com/ethereum/go-ethereum/common"

// Constant is a test double Strategy that returns a fixed quota for
// every caller, regardless of time or locked stake, unless Missing is
// set, in which case it always reports no quota.
type Constant struct {
	Amount  uint16
	Missing bool
}

// Quota implements Strategy.
func (c Constant) Quota(_ common.Address, _ uint64, _ *LockedInfo) (uint16, bool) {
	if c.Missing {
		return 0, false
	}
	return c.Amount, true
}
