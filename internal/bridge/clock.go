package bridge

import (
	"sync/atomic"
	"time"
)

// Clock supplies request timestamps in seconds since the Unix epoch.
type Clock interface {
	Now() uint64
}

// SystemClock reads the wall clock and never hands out a value smaller than
// one it returned before, even if the system time is stepped back.
type SystemClock struct {
	last atomic.Uint64
	now  func() time.Time
}

// NewSystemClock returns a clock backed by time.Now.
func NewSystemClock() *SystemClock {
	return &SystemClock{now: time.Now}
}

// Now returns the current Unix time in seconds.
func (c *SystemClock) Now() uint64 {
	now := c.now
	if now == nil {
		now = time.Now
	}
	var secs uint64
	if unix := now().Unix(); unix > 0 {
		secs = uint64(unix)
	}
	for {
		last := c.last.Load()
		if secs <= last {
			return last
		}
		if c.last.CompareAndSwap(last, secs) {
			return secs
		}
	}
}
