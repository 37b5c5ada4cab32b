package window

import "errors"

// ErrOutOfQuota is returned (wrapped) when Evaluate rejects because at least
// one window's cap would be exceeded, or quota is absent/zero.
var ErrOutOfQuota = errors.New("window: out of quota")

// ErrConfigInvalid is returned (wrapped) when the configuration itself is
// unusable: empty, or containing a window with a zero period. Spec.md §7
// treats this identically to ErrOutOfQuota at runtime — it exists as a
// distinct sentinel purely so operators can tell the two apart in logs.
var ErrConfigInvalid = errors.New("window: invalid configuration")

// ErrStatsOverflow is returned (wrapped) if the prior-stats vector somehow
// carries more entries than the configuration allows. Spec.md §9 calls this
// "defensive; should be unreachable if configuration length equals bound".
var ErrStatsOverflow = errors.New("window: prior stats exceed configured window count")
