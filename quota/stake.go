package quota

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/TarekkMA/freecalls/window"
)

const (
	stakeWeek  = window.Weeks
	stakeMonth = window.Months
)

// Stake is the reference, stake-derived QuotaStrategy: lock age buys an
// increasing utilization percentage of the caller's token balance,
// converted into a call allowance.
type Stake struct {
	// Denomination divides LockedAmount into whole "tokens" before the
	// per-token call rate is applied. Reference value: 10^11.
	Denomination uint64
	// CallsPerToken is the base number of free calls a single token
	// buys at 100% utilization. Reference value: 10.
	CallsPerToken uint16
}

// NewStake builds a Stake strategy using the reference denomination and
// per-token rate from the source runtime's constants.
func NewStake() Stake {
	return Stake{
		Denomination:  100_000_000_000,
		CallsPerToken: 10,
	}
}

// Quota implements Strategy. The token conversion and rate/utilization
// multiplication run in uint256 so a stake denominated in the smallest
// on-chain unit (routinely far larger than a uint64 can hold) never
// wraps; only the final call count is narrowed, saturating at
// MaxQuota, to fit the uint16 allowance type.
func (s Stake) Quota(_ common.Address, currentTime uint64, locked *LockedInfo) (uint16, bool) {
	if locked == nil || locked.LockedAmount == nil {
		return 0, false
	}
	if !locked.Active(currentTime) {
		return 0, false
	}

	lockAge := currentTime - locked.LockedAt
	utilization := utilizationPercent(lockAge)

	denom := s.Denomination
	if denom == 0 {
		denom = 1
	}
	tokens := new(uint256.Int).Div(locked.LockedAmount, uint256.NewInt(denom))

	quota, overflow := new(uint256.Int).MulOverflow(tokens, uint256.NewInt(uint64(s.CallsPerToken)))
	if overflow {
		return MaxQuota, true
	}
	quota, overflow = new(uint256.Int).MulOverflow(quota, uint256.NewInt(utilization))
	if overflow {
		return MaxQuota, true
	}
	quota.Div(quota, uint256.NewInt(100))

	return saturatingFromUint256(quota), true
}

// utilizationPercent implements the age-to-percentage table: under a
// week is a flat 15%; from a week to a month it grows 5% per elapsed
// week capped at three weeks (40%); from a month on it grows 5% per
// elapsed month capped at twelve months (100%).
func utilizationPercent(lockAge uint64) uint64 {
	if lockAge < stakeWeek {
		return 15
	}
	if lockAge < stakeMonth {
		weeks := lockAge / stakeWeek
		if weeks > 3 {
			weeks = 3
		}
		return weeks*5 + 25
	}
	months := lockAge / stakeMonth
	if months > 12 {
		months = 12
	}
	return months*5 + 40
}

// saturatingFromUint256 narrows v to a uint16, clamping to MaxQuota
// both when v doesn't fit in a uint64 at all and when it fits in a
// uint64 but exceeds MaxQuota.
func saturatingFromUint256(v *uint256.Int) uint16 {
	if !v.IsUint64() {
		return MaxQuota
	}
	return saturatingU16(v.Uint64())
}
