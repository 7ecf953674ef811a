package app

import (
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	DefaultTimeLimit        = 15 * time.Second
	DefaultTick             = time.Second
	DefaultPointsPerCorrect = 5
	DefaultPageSize         = 30
	// MaxPageSize caps client-requested page sizes.
	MaxPageSize = 100
)

// Options tunes the session engine. Zero values fall back to the defaults above.
type Options struct {
	TimeLimit        time.Duration
	Tick             time.Duration
	PointsPerCorrect int
	PageSize         int
	Clock            clockwork.Clock
}

func (o Options) withDefaults() Options {
	if o.TimeLimit <= 0 {
		o.TimeLimit = DefaultTimeLimit
	}
	if o.Tick <= 0 {
		o.Tick = DefaultTick
	}
	if o.PointsPerCorrect <= 0 {
		o.PointsPerCorrect = DefaultPointsPerCorrect
	}
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.PageSize > MaxPageSize {
		o.PageSize = MaxPageSize
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	return o
}
