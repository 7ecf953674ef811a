package app

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Countdown ticks once per interval and expires exactly once when the duration
// has elapsed. Cancel stops it; callbacks that already passed the stop check are
// fenced by the owner's generation counter.
type Countdown struct {
	clock    clockwork.Clock
	duration time.Duration
	interval time.Duration
	deadline time.Time
	ticker   clockwork.Ticker
	onTick   func(remaining time.Duration)
	onExpire func()

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// StartCountdown arms the ticker synchronously so that the first tick is
// measured from the call, then runs the countdown in its own goroutine.
func StartCountdown(clock clockwork.Clock, duration, interval time.Duration, onTick func(time.Duration), onExpire func()) *Countdown {
	if interval <= 0 || interval > duration {
		interval = duration
	}
	c := &Countdown{
		clock:    clock,
		duration: duration,
		interval: interval,
		deadline: clock.Now().Add(duration),
		ticker:   clock.NewTicker(interval),
		onTick:   onTick,
		onExpire: onExpire,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go c.run()
	return c
}

func (c *Countdown) run() {
	defer close(c.done)
	defer c.ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-c.ticker.Chan():
		}
		// A cancel racing with a tick always wins.
		select {
		case <-c.stop:
			return
		default:
		}

		// Read the clock rather than counting ticks: a slow receiver may miss
		// ticks, never the deadline.
		remaining := c.deadline.Sub(c.clock.Now()).Round(c.interval)
		if remaining <= 0 {
			c.onExpire()
			return
		}
		c.onTick(remaining)
	}
}

// Cancel stops future ticks and the expiry. It never blocks.
func (c *Countdown) Cancel() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Done is closed once the countdown goroutine has exited.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}

// Duration is the configured window.
func (c *Countdown) Duration() time.Duration {
	return c.duration
}

// Remaining reports the time left on the clock, never negative.
func (c *Countdown) Remaining() time.Duration {
	left := c.deadline.Sub(c.clock.Now())
	if left < 0 {
		return 0
	}
	return left
}
