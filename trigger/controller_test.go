// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package trigger

import (
	"errors"
	"testing"
	"time"

	"github.com/linuxdeepin/dde-multitask-trigger/common/permission"
	"github.com/linuxdeepin/dde-multitask-trigger/synthesizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

var testTimings = Timings{
	HoldDuration:    10 * time.Millisecond,
	DeliveryTimeout: 50 * time.Millisecond,
	DragDistance:    10,
}

type fakeSurface struct {
	downs        int
	events       []synthesizer.PointerEvent
	received     []time.Time
	dropInternal bool
}

func (s *fakeSurface) DeliverPointerEvent(ev synthesizer.PointerEvent) {
	if ev.Internal && s.dropInternal {
		return
	}
	s.events = append(s.events, ev)
	s.received = append(s.received, time.Now())
	if ev.Kind == synthesizer.KindDown {
		s.downs++
	}
}

func (s *fakeSurface) ResetTracking() {
	s.downs = 0
}

func (s *fakeSurface) HasReceivedAnyPointerDowns() bool {
	return s.downs > 0
}

func (s *fakeSurface) Center() synthesizer.Point {
	return synthesizer.Point{X: 25, Y: 25}
}

type fakeSynth struct {
	loop          *Loop
	surface       *fakeSurface
	xDelivers     bool
	buttons       []synthesizer.ButtonPhase
	motions       []synthesizer.Point
	surfaceEvents int
}

// PostButtonEventWithTag simulates the X server routing the event back to
// the surface through the loop.
func (s *fakeSynth) PostButtonEventWithTag(phase synthesizer.ButtonPhase, p synthesizer.Point, tag uint64) error {
	s.buttons = append(s.buttons, phase)
	if s.xDelivers {
		kind := synthesizer.KindDown
		if phase == synthesizer.PhaseUp {
			kind = synthesizer.KindUp
		}
		s.loop.Post(func() {
			s.surface.DeliverPointerEvent(synthesizer.PointerEvent{Kind: kind, Point: p, Tag: tag})
		})
	}
	return nil
}

func (s *fakeSynth) PostMotion(p synthesizer.Point) error {
	s.motions = append(s.motions, p)
	return nil
}

func (s *fakeSynth) PostSurfaceEvent(kind synthesizer.EventKind, p synthesizer.Point, target synthesizer.Target) {
	s.surfaceEvents++
	target.DeliverPointerEvent(synthesizer.PointerEvent{Kind: kind, Point: p, Internal: true})
}

type fakeDetector struct {
	shown bool
	err   error
}

func (d *fakeDetector) DetermineIfInMultitaskView() (bool, error) {
	return d.shown, d.err
}

type controllerFixture struct {
	loop     *Loop
	ctrl     *Controller
	surface  *fakeSurface
	synth    *fakeSynth
	detector *fakeDetector
	granted  bool
	results  chan Result
}

func newControllerFixture(t *testing.T) *controllerFixture {
	f := &controllerFixture{
		loop:     NewLoop(),
		surface:  &fakeSurface{},
		detector: &fakeDetector{},
		granted:  true,
		results:  make(chan Result, 10),
	}
	f.synth = &fakeSynth{loop: f.loop, surface: f.surface, xDelivers: true}
	f.ctrl = NewController(f.loop, Options{
		Gate: permission.GateFunc(func() bool {
			return f.granted
		}),
		Detector:    f.detector,
		Synthesizer: f.synth,
		Surface: func() (Surface, error) {
			return f.surface, nil
		},
		Timings: testTimings,
		OnFinished: func(res Result) {
			f.results <- res
		},
	})
	go f.loop.Run()
	t.Cleanup(f.loop.Quit)
	return f
}

func (f *controllerFixture) toggle(t *testing.T) bool {
	accepted := make(chan bool, 1)
	f.loop.Post(func() {
		accepted <- f.ctrl.Toggle()
	})
	select {
	case ok := <-accepted:
		return ok
	case <-time.After(5 * time.Second):
		t.Fatal("timeout")
	}
	return false
}

func (f *controllerFixture) waitResult(t *testing.T) Result {
	select {
	case res := <-f.results:
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("timeout")
	}
	return Result{}
}

func Test_ToggleOpen(t *testing.T) {
	f := newControllerFixture(t)
	require.True(t, f.toggle(t))
	res := f.waitResult(t)

	assert.Equal(t, ActionOpen, res.Action)
	assert.True(t, res.Delivered)
	assert.False(t, res.Fallback)
	assert.NoError(t, res.Err)
	assert.GreaterOrEqual(t, res.Elapsed, testTimings.HoldDuration)

	assert.Equal(t, []synthesizer.ButtonPhase{synthesizer.PhaseDown, synthesizer.PhaseUp}, f.synth.buttons)
	assert.Equal(t, []synthesizer.Point{{X: 35, Y: 35}}, f.synth.motions)
	assert.Equal(t, 0, f.synth.surfaceEvents)
}

func Test_ToggleClose(t *testing.T) {
	f := newControllerFixture(t)
	f.detector.shown = true
	require.True(t, f.toggle(t))
	res := f.waitResult(t)

	assert.Equal(t, ActionClose, res.Action)
	assert.True(t, res.Delivered)
	assert.Equal(t, []synthesizer.ButtonPhase{synthesizer.PhaseDown, synthesizer.PhaseUp}, f.synth.buttons)
	assert.Empty(t, f.synth.motions)
}

func Test_ToggleUnknownOpens(t *testing.T) {
	f := newControllerFixture(t)
	f.detector.err = errors.New("wm not running")
	require.True(t, f.toggle(t))
	res := f.waitResult(t)
	assert.Equal(t, ActionOpen, res.Action)
}

func Test_ToggleFallback(t *testing.T) {
	f := newControllerFixture(t)
	f.synth.xDelivers = false
	require.True(t, f.toggle(t))
	res := f.waitResult(t)

	assert.True(t, res.Fallback)
	assert.True(t, res.Delivered)
	assert.NoError(t, res.Err)
	assert.GreaterOrEqual(t, res.Elapsed, testTimings.DeliveryTimeout)
	// the held button is released before the replay
	assert.Equal(t, []synthesizer.ButtonPhase{synthesizer.PhaseDown, synthesizer.PhaseUp}, f.synth.buttons)
	assert.Equal(t, 3, f.synth.surfaceEvents)

	var kinds []synthesizer.EventKind
	for _, ev := range f.surface.events {
		kinds = append(kinds, ev.Kind)
		assert.True(t, ev.Internal)
	}
	assert.Equal(t, []synthesizer.EventKind{
		synthesizer.KindDown, synthesizer.KindDragged, synthesizer.KindUp,
	}, kinds)
	// pressed and held before the drag starts
	assert.GreaterOrEqual(t, f.surface.received[1].Sub(f.surface.received[0]), testTimings.HoldDuration)
	assert.GreaterOrEqual(t, res.Elapsed, testTimings.DeliveryTimeout+testTimings.HoldDuration)
}

func Test_ToggleCloseFallback(t *testing.T) {
	f := newControllerFixture(t)
	f.detector.shown = true
	f.synth.xDelivers = false
	require.True(t, f.toggle(t))
	res := f.waitResult(t)

	assert.Equal(t, ActionClose, res.Action)
	assert.True(t, res.Fallback)
	assert.Equal(t, 2, f.synth.surfaceEvents)
}

func Test_ToggleSurfaceUnreachable(t *testing.T) {
	f := newControllerFixture(t)
	f.synth.xDelivers = false
	f.surface.dropInternal = true
	require.True(t, f.toggle(t))
	res := f.waitResult(t)

	assert.True(t, xerrors.Is(res.Err, ErrSurfaceUnreachable))
	assert.True(t, res.Fallback)
	assert.False(t, res.Delivered)
	// replayed once, never retried
	assert.Equal(t, 3, f.synth.surfaceEvents)
	assert.Never(t, func() bool {
		return len(f.results) > 0
	}, 100*time.Millisecond, 10*time.Millisecond)
}

func Test_TogglePermissionDenied(t *testing.T) {
	f := newControllerFixture(t)
	f.granted = false
	require.True(t, f.toggle(t))
	res := f.waitResult(t)

	assert.True(t, xerrors.Is(res.Err, ErrPermissionDenied))
	assert.Empty(t, f.synth.buttons)
}

func Test_ToggleSurfaceError(t *testing.T) {
	f := newControllerFixture(t)
	f.ctrl.opts.Surface = func() (Surface, error) {
		return nil, errors.New("no display")
	}
	require.True(t, f.toggle(t))
	res := f.waitResult(t)
	assert.Error(t, res.Err)
	assert.Empty(t, f.synth.buttons)
}

func Test_ToggleCoalesce(t *testing.T) {
	f := newControllerFixture(t)
	require.True(t, f.toggle(t))
	assert.False(t, f.toggle(t))

	res := f.waitResult(t)
	assert.True(t, res.Delivered)
	assert.Never(t, func() bool {
		return len(f.results) > 0
	}, 100*time.Millisecond, 10*time.Millisecond)

	// one gesture only
	done := make(chan int, 1)
	f.loop.Post(func() {
		done <- len(f.synth.buttons)
	})
	assert.Equal(t, 2, <-done)

	// idle again, the next toggle is accepted
	assert.True(t, f.toggle(t))
	f.waitResult(t)
}

func Test_ActionString(t *testing.T) {
	assert.Equal(t, "open", ActionOpen.String())
	assert.Equal(t, "close", ActionClose.String())
}
