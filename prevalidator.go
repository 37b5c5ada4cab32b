package freecalls

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// PreValidator is the read-only admission replay of spec.md §4.4,
// invoked by transaction-pool validation. It shares Coordinator's
// admission pipeline and must never write to storage.
type PreValidator struct {
	coordinator *Coordinator
}

// NewPreValidator wraps a Coordinator's admission pipeline for
// pool-validation use. The two must be built from the same Config (in
// practice, share one Coordinator) or their verdicts can diverge.
func NewPreValidator(coordinator *Coordinator) *PreValidator {
	return &PreValidator{coordinator: coordinator}
}

// Validate replays the admission decision for caller/op against the
// current snapshot without mutating it. A nil return means the
// coordinator would admit the call. A non-nil return is one of two
// kinds, distinguishable with errors.Is: ErrCallCannotBeFree/
// ErrOutOfQuota are the pool-validation codes of spec.md §6 — a
// verdict about this call. ErrBackendUnavailable means the pipeline
// couldn't be evaluated at all (storage read/decode failure); callers
// must not treat that the same as a rejection.
func (p *PreValidator) Validate(ctx context.Context, caller common.Address, op Operation) error {
	_, err := p.coordinator.evaluate(ctx, caller, op)
	return err
}
