package game

import "time"

// Clock delivers the single driving tick the lifecycle consumes, once per
// second. Production uses a real ticker; tests call Lifecycle.Tick directly
// with synthetic times instead of waiting on a clock.
type Clock interface {
	Tick() <-chan time.Time
	Stop()
}

type tickerClock struct {
	t *time.Ticker
}

// NewTickerClock returns a Clock backed by time.Ticker.
func NewTickerClock(d time.Duration) Clock {
	return &tickerClock{t: time.NewTicker(d)}
}

func (c *tickerClock) Tick() <-chan time.Time { return c.t.C }

func (c *tickerClock) Stop() { c.t.Stop() }
