// Package stakeoracle defines the interface the limiter consumes to
// learn a caller's locked-stake record, plus an in-memory reference
// implementation used by tests.
package stakeoracle

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/TarekkMA/freecalls/quota"
)

// Oracle looks up the locked-stake record for a caller. It is an
// external collaborator: the limiter reads from it but never writes,
// and its own persistence and consensus mechanics are out of scope.
type Oracle interface {
	LockedInfo(caller common.Address) (*quota.LockedInfo, bool)
}

// Memory is a reference Oracle backed by a plain map, suitable for
// tests and for single-process deployments that manage locks directly
// rather than mirroring them from another chain.
type Memory struct {
	mu      sync.RWMutex
	records map[common.Address]quota.LockedInfo
}

// NewMemory returns an empty in-memory Oracle.
func NewMemory() *Memory {
	return &Memory{records: make(map[common.Address]quota.LockedInfo)}
}

// Set installs or replaces the locked-stake record for caller.
func (m *Memory) Set(caller common.Address, info quota.LockedInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[caller] = info
}

// Clear removes any record for caller, as if it had never locked stake.
func (m *Memory) Clear(caller common.Address) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, caller)
}

// LockedInfo implements Oracle.
func (m *Memory) LockedInfo(caller common.Address) (*quota.LockedInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	info, ok := m.records[caller]
	if !ok {
		return nil, false
	}
	return &info, true
}
