// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package synthesizer

import (
	x "github.com/linuxdeepin/go-x11-client"
	"github.com/linuxdeepin/go-lib/log"
	"golang.org/x/xerrors"
)

var logger = log.NewLogger("daemon/multitask-trigger/synthesizer")

func GetLogger() *log.Logger {
	return logger
}

const (
	buttonLeft = 1

	// root window property holding the tag of the last tagged event
	tagProp = "_DDE_MULTITASK_TRIGGER_TAG"
)

// Synthesizer posts fire-and-forget pointer events. Nothing here retries,
// whether an event arrived is only visible to the receiving surface.
type Synthesizer struct {
	xc      XClient
	lastTag uint64
}

func New(xc XClient) *Synthesizer {
	return &Synthesizer{xc: xc}
}

func NewWithConn(conn *x.Conn) *Synthesizer {
	return New(NewXClient(conn))
}

func (s *Synthesizer) PostButtonEvent(phase ButtonPhase, p Point) error {
	return s.PostButtonEventWithTag(phase, p, 0)
}

// PostButtonEventWithTag moves the pointer to p and presses or releases the
// left button there. A non-zero tag is published on the root window first.
func (s *Synthesizer) PostButtonEventWithTag(phase ButtonPhase, p Point, tag uint64) error {
	if tag != 0 {
		err := s.xc.SetRootTag(tagProp, tag)
		if err != nil {
			logger.Warning("failed to set event tag:", err)
		} else {
			s.lastTag = tag
		}
	}

	err := s.xc.FakeInput(x.MotionNotifyEventCode, 0, p.X, p.Y)
	if err != nil {
		return xerrors.Errorf("failed to move pointer to %v: %w", p, err)
	}

	var evType uint8 = x.ButtonPressEventCode
	if phase == PhaseUp {
		evType = x.ButtonReleaseEventCode
	}
	err = s.xc.FakeInput(evType, buttonLeft, p.X, p.Y)
	if err != nil {
		return xerrors.Errorf("failed to post button %v at %v: %w", phase, p, err)
	}
	logger.Debugf("posted button %v at %v tag %#x", phase, p, tag)
	return nil
}

func (s *Synthesizer) PostMotion(p Point) error {
	err := s.xc.FakeInput(x.MotionNotifyEventCode, 0, p.X, p.Y)
	if err != nil {
		return xerrors.Errorf("failed to move pointer to %v: %w", p, err)
	}
	return nil
}

// PostSurfaceEvent hands the event to target directly, for when the X server
// would route a pointer event at p to another window. It must be called from
// the goroutine that owns target.
func (s *Synthesizer) PostSurfaceEvent(kind EventKind, p Point, target Target) {
	logger.Debugf("deliver internal %v at %v", kind, p)
	target.DeliverPointerEvent(PointerEvent{
		Kind:     kind,
		Point:    p,
		Internal: true,
		Tag:      s.lastTag,
	})
}

func (s *Synthesizer) LastTag() uint64 {
	return s.lastTag
}

func (s *Synthesizer) CurrentPointerLocation() (Point, error) {
	return s.xc.QueryPointer()
}

// CurrentUnflippedPointerLocation reports the pointer with the origin at the
// bottom-left corner of the screen.
func (s *Synthesizer) CurrentUnflippedPointerLocation() (Point, error) {
	p, err := s.xc.QueryPointer()
	if err != nil {
		return Point{}, err
	}
	return s.Flip(p), nil
}

// Flip converts between the top-left and bottom-left conventions, it is its
// own inverse.
func (s *Synthesizer) Flip(p Point) Point {
	return Point{X: p.X, Y: int16(s.xc.ScreenHeight()) - p.Y}
}
