package mocks

import (
	"sort"
	"sync"
	"time"

	"github.com/mcoot/tresmil/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing.
// Scheduled functions run synchronously inside Advance or Set, in due order.
type MockClock struct {
	mu          sync.Mutex
	CurrentTime time.Time
	timers      []*mockTimer
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{CurrentTime: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.CurrentTime
}

// AfterFunc registers f to fire once the clock reaches now+d
func (c *MockClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &mockTimer{clock: c, due: c.CurrentTime.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward by the given duration
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.CurrentTime.Add(d)
	c.mu.Unlock()
	c.Set(target)
}

// Set sets the clock to the given time, firing every timer due by then
func (c *MockClock) Set(t time.Time) {
	for {
		c.mu.Lock()
		next := c.popDue(t)
		if next == nil {
			c.CurrentTime = t
			c.mu.Unlock()
			return
		}
		if next.due.After(c.CurrentTime) {
			c.CurrentTime = next.due
		}
		c.mu.Unlock()
		next.fn()
	}
}

// Pending returns the number of timers that have not fired or been stopped
func (c *MockClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// popDue removes and returns the earliest timer due at or before t
func (c *MockClock) popDue(t time.Time) *mockTimer {
	sort.SliceStable(c.timers, func(i, j int) bool {
		return c.timers[i].due.Before(c.timers[j].due)
	})
	if len(c.timers) == 0 || c.timers[0].due.After(t) {
		return nil
	}
	next := c.timers[0]
	c.timers = c.timers[1:]
	return next
}

func (c *MockClock) remove(t *mockTimer) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, candidate := range c.timers {
		if candidate == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return true
		}
	}
	return false
}

type mockTimer struct {
	clock *MockClock
	due   time.Time
	fn    func()
}

func (t *mockTimer) Stop() bool {
	return t.clock.remove(t)
}
