package ledger

import (
	"math"
	"sync"
	"time"
)

// Address identifies a caller or account on the ledger
type Address string

// String returns the address as a string
func (a Address) String() string {
	return string(a)
}

// Timestamp is a ledger time in seconds
type Timestamp uint64

// Add returns t+seconds, or false when the sum overflows
func (t Timestamp) Add(seconds uint64) (Timestamp, bool) {
	if seconds > math.MaxUint64-uint64(t) {
		return 0, false
	}
	return t + Timestamp(seconds), true
}

// Clock yields the current ledger timestamp
type Clock interface {
	Now() Timestamp
}

// SystemClock reads wall-clock Unix seconds
type SystemClock struct{}

// Now returns the current Unix time
func (SystemClock) Now() Timestamp {
	return Timestamp(time.Now().Unix())
}

// ManualClock is a Clock whose time is set explicitly
type ManualClock struct {
	mu  sync.Mutex
	now Timestamp
}

// NewManualClock creates a ManualClock starting at t
func NewManualClock(t Timestamp) *ManualClock {
	return &ManualClock{now: t}
}

// Now returns the current manual time
func (c *ManualClock) Now() Timestamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t
func (c *ManualClock) Set(t Timestamp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by seconds
func (c *ManualClock) Advance(seconds uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += Timestamp(seconds)
}
