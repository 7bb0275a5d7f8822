// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package trigger

import (
	"sync"
	"time"
)

// Loop runs posted functions one at a time on the goroutine that called Run.
// All trigger and daemon state is owned by that goroutine.
type Loop struct {
	mu       sync.Mutex
	queue    []func()
	quitting bool

	wake     chan struct{}
	quit     chan struct{}
	done     chan struct{}
	quitOnce sync.Once
}

func NewLoop() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Post queues fn. It never blocks, so the loop may post to itself. It
// returns false once the loop is quitting.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.quitting {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// AfterFunc posts fn after d.
func (l *Loop) AfterFunc(d time.Duration, fn func()) *time.Timer {
	return time.AfterFunc(d, func() {
		l.Post(fn)
	})
}

// Run blocks until Quit. Functions still queued at that point are dropped.
func (l *Loop) Run() {
	defer close(l.done)
	for {
		select {
		case <-l.quit:
			return
		case <-l.wake:
		}

		for {
			fn := l.next()
			if fn == nil {
				break
			}
			fn()

			select {
			case <-l.quit:
				return
			default:
			}
		}
	}
}

func (l *Loop) next() func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn
}

// Quit makes Run return after the function being run, if any.
func (l *Loop) Quit() {
	l.quitOnce.Do(func() {
		l.mu.Lock()
		l.quitting = true
		l.queue = nil
		l.mu.Unlock()
		close(l.quit)
	})
}

// Done is closed when Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
