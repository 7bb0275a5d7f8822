// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package daemon

import (
	"time"

	"github.com/linuxdeepin/dde-multitask-trigger/common/clock"
	"github.com/linuxdeepin/dde-multitask-trigger/trigger"
)

// IdleTimer is a one-shot timer owned by the loop. Arming replaces any
// pending instance; a firing left over from a replaced instance is dropped.
type IdleTimer struct {
	loop    *trigger.Loop
	clock   clock.Clock
	onFire  func()
	timer   *time.Timer
	gen     uint64
	armedAt int64
}

func newIdleTimer(loop *trigger.Loop, c clock.Clock, onFire func()) *IdleTimer {
	return &IdleTimer{
		loop:   loop,
		clock:  c,
		onFire: onFire,
	}
}

func (t *IdleTimer) Arm(d time.Duration) {
	t.Disarm()
	gen := t.gen
	t.armedAt = t.clock.NowMillis()
	t.timer = t.loop.AfterFunc(d, func() {
		if gen != t.gen {
			return
		}
		t.timer = nil
		logger.Infof("idle for %d ms, quit", t.clock.NowMillis()-t.armedAt)
		t.onFire()
	})
}

func (t *IdleTimer) Disarm() {
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *IdleTimer) Armed() bool {
	return t.timer != nil
}
