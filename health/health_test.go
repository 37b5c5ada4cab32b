package health

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockBackend struct {
	mu         sync.Mutex
	shouldFail bool
	getCalled  bool
}

func (m *mockBackend) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalled = true
	if m.shouldFail {
		return "", errors.New("simulated backend failure")
	}
	return "ok", nil
}

func (m *mockBackend) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return nil
}
func (m *mockBackend) CheckAndSet(ctx context.Context, key, old, new string, ttl time.Duration) (bool, error) {
	return true, nil
}
func (m *mockBackend) Delete(ctx context.Context, key string) error { return nil }
func (m *mockBackend) Close() error                                 { return nil }

func (m *mockBackend) wasCalled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getCalled
}

func (m *mockBackend) setShouldFail(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFail = v
}

func TestChecker_PollsBackend(t *testing.T) {
	backend := &mockBackend{}
	checker := New(backend, Config{Interval: 20 * time.Millisecond, Timeout: 10 * time.Millisecond}, nil, nil)

	checker.Start(context.Background())
	time.Sleep(80 * time.Millisecond)
	checker.Stop()

	assert.True(t, backend.wasCalled())
}

func TestChecker_ZeroIntervalDisablesPolling(t *testing.T) {
	backend := &mockBackend{}
	checker := New(backend, Config{Interval: 0, Timeout: 10 * time.Millisecond}, nil, nil)

	checker.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	checker.Stop()

	assert.False(t, backend.wasCalled())
}

func TestChecker_StartsHealthy(t *testing.T) {
	backend := &mockBackend{}
	checker := New(backend, DefaultConfig(), nil, nil)
	assert.True(t, checker.Healthy())
}

func TestChecker_FlipsUnhealthyAfterFailThreshold(t *testing.T) {
	backend := &mockBackend{shouldFail: true}
	unhealthyCh := make(chan error, 8)

	checker := New(backend, Config{
		Interval:      10 * time.Millisecond,
		Timeout:       10 * time.Millisecond,
		FailThreshold: 3,
	}, nil, func(err error) {
		unhealthyCh <- err
	})

	checker.Start(context.Background())
	defer checker.Stop()

	select {
	case err := <-unhealthyCh:
		require.Error(t, err)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected onUnhealthy to fire after consecutive failures")
	}
	assert.False(t, checker.Healthy())
}

func TestChecker_RecoversAfterRecoverThreshold(t *testing.T) {
	backend := &mockBackend{shouldFail: true}
	healthyCh := make(chan struct{}, 8)

	checker := New(backend, Config{
		Interval:         10 * time.Millisecond,
		Timeout:          10 * time.Millisecond,
		FailThreshold:    1,
		RecoverThreshold: 2,
	}, func() {
		healthyCh <- struct{}{}
	}, nil)

	checker.Start(context.Background())
	defer checker.Stop()

	time.Sleep(40 * time.Millisecond)
	assert.False(t, checker.Healthy(), "single failing probe should have flipped unhealthy")

	backend.setShouldFail(false)

	select {
	case <-healthyCh:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected onHealthy to fire once recovery threshold is met")
	}
	assert.True(t, checker.Healthy())
}

func TestChecker_NoCallbackWhileSettledHealthy(t *testing.T) {
	backend := &mockBackend{}
	var count int
	var mu sync.Mutex

	checker := New(backend, Config{Interval: 10 * time.Millisecond, Timeout: 10 * time.Millisecond}, func() {
		mu.Lock()
		count++
		mu.Unlock()
	}, nil)

	checker.Start(context.Background())
	time.Sleep(60 * time.Millisecond)
	checker.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, count, "onHealthy should only fire on a transition, not every successful probe")
}

func TestChecker_StopIsIdempotent(t *testing.T) {
	backend := &mockBackend{}
	checker := New(backend, Config{Interval: 10 * time.Millisecond, Timeout: 10 * time.Millisecond}, nil, nil)
	checker.Start(context.Background())
	checker.Stop()
	assert.NotPanics(t, func() { checker.Stop() })
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, 10*time.Second, cfg.Interval)
	require.Equal(t, 2*time.Second, cfg.Timeout)
	require.Equal(t, "freecalls-health-check", cfg.TestKey)
	require.Equal(t, 1, cfg.FailThreshold)
	require.Equal(t, 2, cfg.RecoverThreshold)
}

func TestOptions(t *testing.T) {
	cfg := DefaultConfig()
	WithInterval(5 * time.Second)(&cfg)
	WithTimeout(1 * time.Second)(&cfg)
	WithTestKey("custom")(&cfg)
	WithFailThreshold(4)(&cfg)
	WithRecoverThreshold(3)(&cfg)

	assert.Equal(t, 5*time.Second, cfg.Interval)
	assert.Equal(t, 1*time.Second, cfg.Timeout)
	assert.Equal(t, "custom", cfg.TestKey)
	assert.Equal(t, 4, cfg.FailThreshold)
	assert.Equal(t, 3, cfg.RecoverThreshold)
}
