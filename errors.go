package freecalls

import "errors"

// ErrCallCannotBeFree is returned (wrapped) when the wrapped operation
// fails the configured eligibility filter. It is the Go-native name for
// spec.md §6's CallCannotBeFree pool-validation error (code 1).
var ErrCallCannotBeFree = errors.New("freecalls: call cannot be free")

// ErrOutOfQuota is returned (wrapped) when the admission pipeline
// rejects for any reason other than eligibility: no stake, a lock not
// yet active or expired, zero quota, a saturated window, or an invalid
// window configuration. Spec.md §7 treats all of these identically at
// runtime (OutOfQuota, code 0); the distinct window.ErrConfigInvalid
// remains visible via errors.Is for operators who want to tell them
// apart in logs.
var ErrOutOfQuota = errors.New("freecalls: out of quota")

// ErrCommitConflict is returned when the coordinator cannot commit a
// caller's stats by compare-and-set: either it exhausts its retries, or
// after a lost compare-and-set the re-read stats no longer admit the
// call. It indicates
// contention on the same caller's storage key within a single block,
// which the serialized scheduling model (spec.md §5) says should not
// happen in a correctly operated deployment.
var ErrCommitConflict = errors.New("freecalls: stats commit conflict")

// ErrBackendUnavailable is returned (wrapped) when the admission
// pipeline cannot be evaluated at all because the storage backend
// failed to answer, or answered with a payload that doesn't decode as
// stats. Unlike ErrCallCannotBeFree/ErrOutOfQuota, this is not a
// verdict about the caller — it means the coordinator itself
// malfunctioned, per spec.md §7's scoping of local recovery to
// policy/quota/config rejections only. Callers that see this should
// treat the call as undetermined, not as admitted.
var ErrBackendUnavailable = errors.New("freecalls: backend unavailable")
