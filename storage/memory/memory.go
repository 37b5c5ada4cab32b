// Package memory implements an in-process storage.Backend for tests
// and single-node deployments where no external store is warranted.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/TarekkMA/freecalls/storage"
)

// DefaultCleanupInterval is how often expired entries are swept when
// no explicit interval is configured.
const DefaultCleanupInterval = 10 * time.Minute

var mutexPool = sync.Pool{
	New: func() any { return &sync.Mutex{} },
}

// Backend is an in-memory storage.Backend guarded by per-key locks.
type Backend struct {
	locks  sync.Map // map[string]*sync.Mutex
	values sync.Map // map[string]entry

	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
	cleanupWG     sync.WaitGroup
}

type entry struct {
	value      string
	expiration time.Time
}

// New returns a Backend with the default cleanup interval.
func New() *Backend {
	return NewWithCleanup(DefaultCleanupInterval)
}

// NewWithCleanup returns a Backend with a custom cleanup interval. An
// interval of 0 disables the background sweep; expired keys are still
// treated as absent on read.
func NewWithCleanup(interval time.Duration) *Backend {
	b := &Backend{cleanupStop: make(chan struct{})}
	if interval > 0 {
		b.startCleanup(interval)
	}
	return b
}

func init() {
	storage.Register("memory", func(config any) (storage.Backend, error) {
		if interval, ok := config.(time.Duration); ok {
			return NewWithCleanup(interval), nil
		}
		return New(), nil
	})
}

func (b *Backend) lockFor(key string) *sync.Mutex {
	if existing, ok := b.locks.Load(key); ok {
		return existing.(*sync.Mutex)
	}
	mu := mutexPool.Get().(*sync.Mutex)
	actual, loaded := b.locks.LoadOrStore(key, mu)
	if loaded {
		mutexPool.Put(mu)
	}
	return actual.(*sync.Mutex)
}

// Get implements storage.Backend.
func (b *Backend) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	lock := b.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	e, ok := b.load(key)
	if !ok {
		return "", nil
	}
	return e.value, nil
}

// Set implements storage.Backend.
func (b *Backend) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lock := b.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	b.store(key, value, ttl)
	return nil
}

// Delete implements storage.Backend.
func (b *Backend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lock := b.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	b.values.Delete(key)
	return nil
}

// CheckAndSet implements storage.Backend.
func (b *Backend) CheckAndSet(ctx context.Context, key string, oldValue, newValue string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	lock := b.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	e, exists := b.load(key)

	if oldValue == "" {
		if exists {
			return false, nil
		}
		b.store(key, newValue, ttl)
		return true, nil
	}

	if !exists || e.value != oldValue {
		return false, nil
	}

	b.store(key, newValue, ttl)
	return true, nil
}

// Close implements storage.Backend.
func (b *Backend) Close() error {
	if b.cleanupTicker != nil {
		b.cleanupTicker.Stop()
		close(b.cleanupStop)
	}
	b.cleanupWG.Wait()

	b.values = sync.Map{}
	b.locks = sync.Map{}
	return nil
}

// load reads the entry for key, treating an expired one as absent
// (and evicting it). Callers must hold the key's lock.
func (b *Backend) load(key string) (entry, bool) {
	valAny, ok := b.values.Load(key)
	if !ok {
		return entry{}, false
	}
	e := valAny.(entry)
	if !e.expiration.IsZero() && time.Now().After(e.expiration) {
		b.values.Delete(key)
		return entry{}, false
	}
	return e, true
}

// store writes value for key. Callers must hold the key's lock.
func (b *Backend) store(key, value string, ttl time.Duration) {
	var expiration time.Time
	if ttl > 0 {
		expiration = time.Now().Add(ttl)
	}
	b.values.Store(key, entry{value: value, expiration: expiration})
}

func (b *Backend) startCleanup(interval time.Duration) {
	b.cleanupTicker = time.NewTicker(interval)
	b.cleanupWG.Add(1)
	go func() {
		defer b.cleanupWG.Done()
		for {
			select {
			case <-b.cleanupTicker.C:
				b.sweep()
			case <-b.cleanupStop:
				return
			}
		}
	}()
}

func (b *Backend) sweep() {
	now := time.Now()
	var expired []string
	b.values.Range(func(key, valAny any) bool {
		e := valAny.(entry)
		if !e.expiration.IsZero() && now.After(e.expiration) {
			expired = append(expired, key.(string))
		}
		return true
	})
	for _, key := range expired {
		lock := b.lockFor(key)
		lock.Lock()
		b.values.Delete(key)
		lock.Unlock()
	}
}
