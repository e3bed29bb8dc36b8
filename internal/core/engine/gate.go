package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Quota admits one request per Interval.
type Quota struct {
	Interval time.Duration
}

// Published trade API limits.
var (
	SearchQuota = MustQuota(3, 5*time.Second)
	FetchQuota  = MustQuota(6, 4*time.Second)
)

// NewQuota spreads requests evenly across window, rounding the per-slot
// interval up to the next millisecond so the window limit is never exceeded.
func NewQuota(requests int, window time.Duration) (Quota, error) {
	if requests <= 0 {
		return Quota{}, fmt.Errorf("quota requests must be positive, got %d", requests)
	}
	if window <= 0 {
		return Quota{}, fmt.Errorf("quota window must be positive, got %s", window)
	}

	ms := window.Milliseconds()
	slot := ms / int64(requests)
	if ms%int64(requests) != 0 {
		slot++
	}
	if slot < 1 {
		slot = 1
	}
	return Quota{Interval: time.Duration(slot) * time.Millisecond}, nil
}

// MustQuota is NewQuota for package-level constants.
func MustQuota(requests int, window time.Duration) Quota {
	q, err := NewQuota(requests, window)
	if err != nil {
		panic(err)
	}
	return q
}

// Gate admits at most one operation per quota interval. Unused slots are not
// banked: after an idle stretch the next admission still only buys one slot.
type Gate struct {
	quota Quota
	clock clockwork.Clock

	// mu is held while reading the clock so admissions are ordered the same
	// way as the instants they observe.
	mu        sync.Mutex
	permitted time.Time
}

// NewGate creates a gate for quota. A nil clock uses the real clock.
func NewGate(quota Quota, clock clockwork.Clock) (*Gate, error) {
	if quota.Interval <= 0 {
		return nil, fmt.Errorf("quota interval must be positive, got %s", quota.Interval)
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Gate{quota: quota, clock: clock}, nil
}

// Admit reports whether the caller may proceed now. When it may not, the
// returned duration is the wait until the next slot and no state changes.
func (g *Gate) Admit() (bool, time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	if now.Before(g.permitted) {
		return false, g.permitted.Sub(now)
	}

	g.permitted = now.Add(g.quota.Interval)
	return true, 0
}

// Defer moves the next permitted instant out to until. Earlier instants are
// ignored so a deferral can never shorten a pending wait.
func (g *Gate) Defer(until time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if until.After(g.permitted) {
		g.permitted = until
	}
}

// Interval returns the gate's slot length.
func (g *Gate) Interval() time.Duration {
	return g.quota.Interval
}

// Clock returns the time source the gate reads.
func (g *Gate) Clock() clockwork.Clock {
	return g.clock
}
