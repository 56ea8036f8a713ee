// Package clock supplies the engine's logical height.
package clock

import (
	"context"
	"sync/atomic"
	"time"

	id "relief/pkg/domain"
)

// Interval derives heights from wall time: one height per Interval elapsed
// since Genesis. Times before Genesis read as height zero.
type Interval struct {
	Genesis  time.Time
	Interval time.Duration
	Now      func() time.Time
}

func NewInterval(genesis time.Time, interval time.Duration) *Interval {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Interval{Genesis: genesis, Interval: interval, Now: time.Now}
}

func (c *Interval) Height(_ context.Context) id.Height {
	now := c.Now()
	if now.Before(c.Genesis) {
		return 0
	}
	return id.Height(now.Sub(c.Genesis) / c.Interval)
}

// Manual is advanced explicitly. Safe for concurrent use.
type Manual struct {
	h atomic.Uint64
}

func NewManual(start id.Height) *Manual {
	m := &Manual{}
	m.h.Store(uint64(start))
	return m
}

func (m *Manual) Height(_ context.Context) id.Height {
	return id.Height(m.h.Load())
}

// Advance moves the clock forward by n and returns the new height.
func (m *Manual) Advance(n uint64) id.Height {
	return id.Height(m.h.Add(n))
}
