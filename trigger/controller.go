// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package trigger

import (
	"errors"
	"os"
	"time"

	"github.com/linuxdeepin/dde-multitask-trigger/common/clock"
	"github.com/linuxdeepin/dde-multitask-trigger/common/permission"
	"github.com/linuxdeepin/dde-multitask-trigger/overview"
	"github.com/linuxdeepin/dde-multitask-trigger/synthesizer"
	"github.com/linuxdeepin/go-lib/log"
	"golang.org/x/xerrors"
)

var logger = log.NewLogger("daemon/multitask-trigger/trigger")

func GetLogger() *log.Logger {
	return logger
}

var (
	ErrPermissionDenied   = errors.New("synthetic input is not permitted")
	ErrSurfaceUnreachable = errors.New("surface received no pointer down")
)

const minPollInterval = 5 * time.Millisecond

type Action int

const (
	ActionOpen Action = iota
	ActionClose
)

func (a Action) String() string {
	if a == ActionClose {
		return "close"
	}
	return "open"
}

// Result describes a finished toggle attempt.
type Result struct {
	Action    Action
	Fallback  bool
	Delivered bool
	Err       error
	Elapsed   time.Duration
}

type Synthesizer interface {
	PostButtonEventWithTag(phase synthesizer.ButtonPhase, p synthesizer.Point, tag uint64) error
	PostMotion(p synthesizer.Point) error
	PostSurfaceEvent(kind synthesizer.EventKind, p synthesizer.Point, target synthesizer.Target)
}

type Surface interface {
	synthesizer.Target
	ResetTracking()
	HasReceivedAnyPointerDowns() bool
	Center() synthesizer.Point
}

type Timings struct {
	HoldDuration    time.Duration
	DeliveryTimeout time.Duration
	DragDistance    int16
}

func (t Timings) pollInterval() time.Duration {
	if t.HoldDuration < minPollInterval {
		return minPollInterval
	}
	return t.HoldDuration
}

type Options struct {
	Gate        permission.Gate
	Detector    overview.Detector
	Synthesizer Synthesizer
	Surface     func() (Surface, error)
	Clock       clock.Clock
	Timings     Timings
	OnFinished  func(Result)
}

type controllerState int

const (
	stateIdle controllerState = iota
	stateDetecting
	stateSynthesizing
)

type attempt struct {
	action  Action
	surface Surface
	point   synthesizer.Point
	tag     uint64
	start   int64
}

// Controller toggles the multitask view. Every method must be called on the
// loop it was created with.
type Controller struct {
	loop  *Loop
	opts  Options
	state controllerState
	seq   uint32
}

func NewController(loop *Loop, opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	return &Controller{
		loop: loop,
		opts: opts,
	}
}

func (c *Controller) SetTimings(t Timings) {
	c.opts.Timings = t
}

func (c *Controller) Busy() bool {
	return c.state != stateIdle
}

// Toggle starts a toggle attempt. It returns false when an attempt is
// already in flight; the call is then folded into that attempt.
func (c *Controller) Toggle() bool {
	if c.state != stateIdle {
		logger.Info("toggle already in progress, coalesce")
		return false
	}

	start := c.opts.Clock.NowMicros()
	if !c.opts.Gate.CapabilityGranted() {
		c.finish(&attempt{start: start}, Result{Err: ErrPermissionDenied})
		return true
	}

	c.state = stateDetecting
	a := &attempt{start: start, action: ActionOpen}
	viewState := overview.Detect(c.opts.Detector)
	if viewState == overview.StateActive {
		a.action = ActionClose
	}
	logger.Debugf("multitask view %v, %v it", viewState, a.action)

	s, err := c.opts.Surface()
	if err != nil {
		c.finish(a, Result{Action: a.action, Err: xerrors.Errorf("get surface: %w", err)})
		return true
	}

	c.state = stateSynthesizing
	a.surface = s
	a.point = s.Center()
	a.tag = c.nextTag()
	s.ResetTracking()

	c.postButton(a, synthesizer.PhaseDown, a.point)
	switch a.action {
	case ActionOpen:
		hold := c.opts.Timings.HoldDuration
		c.loop.AfterFunc(hold, func() {
			c.awaitDelivery(a, hold, c.completeOpen)
		})
	case ActionClose:
		c.postButton(a, synthesizer.PhaseUp, a.point)
		c.awaitDelivery(a, 0, c.completeClose)
	}
	return true
}

func (c *Controller) nextTag() uint64 {
	c.seq++
	return uint64(os.Getpid())<<32 | uint64(c.seq)
}

// awaitDelivery polls the surface until it saw a pointer down or the
// delivery timeout ran out, then calls then.
func (c *Controller) awaitDelivery(a *attempt, waited time.Duration, then func(*attempt, bool)) {
	if a.surface.HasReceivedAnyPointerDowns() {
		then(a, true)
		return
	}
	if waited >= c.opts.Timings.DeliveryTimeout {
		then(a, false)
		return
	}
	step := c.opts.Timings.pollInterval()
	c.loop.AfterFunc(step, func() {
		c.awaitDelivery(a, waited+step, then)
	})
}

func (c *Controller) completeOpen(a *attempt, delivered bool) {
	moved := a.point.Offset(c.opts.Timings.DragDistance, c.opts.Timings.DragDistance)
	if delivered {
		err := c.opts.Synthesizer.PostMotion(moved)
		if err != nil {
			logger.Warning(err)
		}
		c.postButton(a, synthesizer.PhaseUp, moved)
		c.finish(a, Result{Action: a.action, Delivered: true})
		return
	}

	// do not leave the button held down
	c.postButton(a, synthesizer.PhaseUp, a.point)
	c.fallback(a, []replayStep{
		{event: synthesizer.PointerEvent{Kind: synthesizer.KindDown, Point: a.point}},
		{event: synthesizer.PointerEvent{Kind: synthesizer.KindDragged, Point: moved}, after: c.opts.Timings.HoldDuration},
		{event: synthesizer.PointerEvent{Kind: synthesizer.KindUp, Point: moved}},
	})
}

func (c *Controller) completeClose(a *attempt, delivered bool) {
	if delivered {
		c.finish(a, Result{Action: a.action, Delivered: true})
		return
	}
	c.fallback(a, []replayStep{
		{event: synthesizer.PointerEvent{Kind: synthesizer.KindDown, Point: a.point}},
		{event: synthesizer.PointerEvent{Kind: synthesizer.KindUp, Point: a.point}},
	})
}

// replayStep is posted to the surface after waiting for after.
type replayStep struct {
	event synthesizer.PointerEvent
	after time.Duration
}

func (c *Controller) fallback(a *attempt, steps []replayStep) {
	logger.Infof("%v gesture not delivered in %v, post to surface directly",
		a.action, c.opts.Timings.DeliveryTimeout)
	c.replay(a, steps)
}

func (c *Controller) replay(a *attempt, steps []replayStep) {
	if len(steps) == 0 {
		c.finishFallback(a)
		return
	}
	step := steps[0]
	post := func() {
		c.opts.Synthesizer.PostSurfaceEvent(step.event.Kind, step.event.Point, a.surface)
		c.replay(a, steps[1:])
	}
	if step.after > 0 {
		c.loop.AfterFunc(step.after, post)
		return
	}
	post()
}

func (c *Controller) finishFallback(a *attempt) {
	res := Result{Action: a.action, Fallback: true}
	res.Delivered = a.surface.HasReceivedAnyPointerDowns()
	if !res.Delivered {
		res.Err = ErrSurfaceUnreachable
	}
	c.finish(a, res)
}

func (c *Controller) postButton(a *attempt, phase synthesizer.ButtonPhase, p synthesizer.Point) {
	err := c.opts.Synthesizer.PostButtonEventWithTag(phase, p, a.tag)
	if err != nil {
		logger.Warningf("post button %v: %v", phase, err)
	}
}

func (c *Controller) finish(a *attempt, res Result) {
	c.state = stateIdle
	res.Elapsed = time.Duration(c.opts.Clock.NowMicros()-a.start) * time.Microsecond
	if res.Err != nil {
		logger.Warningf("%v multitask view failed after %v: %v", res.Action, res.Elapsed, res.Err)
	} else {
		logger.Infof("%v multitask view in %v, fallback: %v", res.Action, res.Elapsed, res.Fallback)
	}
	if c.opts.OnFinished != nil {
		c.opts.OnFinished(res)
	}
}
