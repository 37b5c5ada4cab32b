// Package quota implements the pure functions that translate a caller's
// locked-stake record (or lack thereof) into an integer call allowance.
// Nothing here touches storage or the clock; every Strategy is a
// deterministic function of its arguments only.
package quota

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// MaxQuota is the saturation ceiling for a derived quota, matching the
// uint16 counters used throughout the window package.
const MaxQuota uint16 = 0xFFFF

// LockedInfo mirrors the record produced by an external stake oracle:
// the logical time the stake was locked, its amount, and an optional
// expiry. It is supplied, never computed, by the Strategy's caller.
// LockedAmount is a uint256.Int (go-ethereum's own balance type)
// because on-chain stake amounts routinely exceed uint64 once
// denominated in the smallest unit, and its arithmetic must not wrap
// silently the way a plain uint64 product would.
type LockedInfo struct {
	LockedAt     uint64
	LockedAmount *uint256.Int
	ExpiresAt    *uint64
}

// Active reports whether the lock is usable at currentTime: already
// started (strict LockedAt < currentTime) and, if it has an expiry, not
// yet reached it (current time must be strictly less than ExpiresAt;
// the expiry block itself is not free).
func (l LockedInfo) Active(currentTime uint64) bool {
	if l.LockedAt >= currentTime {
		return false
	}
	if l.ExpiresAt != nil && currentTime >= *l.ExpiresAt {
		return false
	}
	return true
}

// Strategy is the single-method polymorphism point over quota derivation:
// the stake-derived default, an allow-list fallback, and test doubles all
// implement it identically. Callers inject a Strategy at assembly time;
// nothing in this package dispatches on a concrete type.
type Strategy interface {
	// Quota returns the caller's allowance at currentTime, or ok=false if
	// the caller currently has none (no stake, lock not yet active, lock
	// expired). It must not read any state besides its arguments.
	Quota(caller common.Address, currentTime uint64, locked *LockedInfo) (amount uint16, ok bool)
}

func saturatingU16(v uint64) uint16 {
	if v > uint64(MaxQuota) {
		return MaxQuota
	}
	return uint16(v)
}
