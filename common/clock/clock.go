// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package clock

import (
	"sync"
	"time"
)

// Clock is a monotonic time source.
type Clock interface {
	NowMicros() int64
	NowMillis() int64
	// MicrosSinceLastCall returns the microseconds elapsed since the previous
	// call, or since the clock was created for the first call.
	MicrosSinceLastCall() int64
}

type monotonic struct {
	start time.Time

	mu   sync.Mutex
	last int64
}

func New() Clock {
	return &monotonic{start: time.Now()}
}

// time.Since uses the monotonic reading of start.
func (c *monotonic) NowMicros() int64 {
	return time.Since(c.start).Microseconds()
}

func (c *monotonic) NowMillis() int64 {
	return time.Since(c.start).Milliseconds()
}

func (c *monotonic) MicrosSinceLastCall() int64 {
	now := c.NowMicros()
	c.mu.Lock()
	delta := now - c.last
	c.last = now
	c.mu.Unlock()
	return delta
}
