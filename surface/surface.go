// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package surface

import (
	"github.com/linuxdeepin/dde-multitask-trigger/common/config"
	"github.com/linuxdeepin/dde-multitask-trigger/synthesizer"
	x "github.com/linuxdeepin/go-x11-client"
	"github.com/linuxdeepin/go-lib/log"
	"golang.org/x/xerrors"
)

var logger = log.NewLogger("daemon/multitask-trigger/surface")

func GetLogger() *log.Logger {
	return logger
}

type Rect struct {
	X, Y          int16
	Width, Height uint16
}

func (r Rect) Center() synthesizer.Point {
	return synthesizer.Point{
		X: r.X + int16(r.Width/2),
		Y: r.Y + int16(r.Height/2),
	}
}

func (r Rect) Contains(p synthesizer.Point) bool {
	return p.X >= r.X && p.Y >= r.Y &&
		int(p.X) < int(r.X)+int(r.Width) &&
		int(p.Y) < int(r.Y)+int(r.Height)
}

// CornerRect places a square of the given size in a corner of a screen.
func CornerRect(corner config.Corner, size, screenWidth, screenHeight uint16) Rect {
	if size > screenWidth {
		size = screenWidth
	}
	if size > screenHeight {
		size = screenHeight
	}
	r := Rect{Width: size, Height: size}
	switch corner {
	case config.CornerTopRight:
		r.X = int16(screenWidth - size)
	case config.CornerBottomLeft:
		r.Y = int16(screenHeight - size)
	case config.CornerBottomRight:
		r.X = int16(screenWidth - size)
		r.Y = int16(screenHeight - size)
	}
	return r
}

// OperationMask is the set of drag operations a source allows.
type OperationMask uint32

const OperationNone OperationMask = 0

// State is what the surface has observed since the last ResetTracking.
type State struct {
	PointerDowns  int
	SessionActive bool
}

// Surface is the invisible window the synthetic gestures are aimed at. A
// press followed by motion turns it into a drag source that offers nothing,
// which is what puts the window manager into overview mode.
type Surface struct {
	xc   XClient
	win  x.Window
	rect Rect

	state      State
	pressed    bool
	pressPoint synthesizer.Point
	destroyed  bool
	quit       chan struct{}
}

func newSurface(xc XClient, rect Rect) (*Surface, error) {
	win, err := xc.CreateInputWindow(rect)
	if err != nil {
		return nil, xerrors.Errorf("create surface window: %w", err)
	}
	logger.Debugf("surface window %d at %+v", win, rect)
	return &Surface{
		xc:   xc,
		win:  win,
		rect: rect,
		quit: make(chan struct{}),
	}, nil
}

func (s *Surface) Window() x.Window {
	return s.win
}

func (s *Surface) Rect() Rect {
	return s.rect
}

func (s *Surface) Center() synthesizer.Point {
	return s.rect.Center()
}

func (s *Surface) State() State {
	return s.state
}

func (s *Surface) ResetTracking() {
	s.state.PointerDowns = 0
}

func (s *Surface) HasReceivedAnyPointerDowns() bool {
	return s.state.PointerDowns > 0
}

func (s *Surface) DraggingSourceOperationMask() OperationMask {
	return OperationNone
}

// DeliverPointerEvent implements synthesizer.Target.
func (s *Surface) DeliverPointerEvent(ev synthesizer.PointerEvent) {
	if s.destroyed {
		return
	}
	logger.Debugf("surface got %v at %+v internal: %v tag: %d",
		ev.Kind, ev.Point, ev.Internal, ev.Tag)

	switch ev.Kind {
	case synthesizer.KindDown:
		s.state.PointerDowns++
		s.pressed = true
		s.pressPoint = ev.Point

	case synthesizer.KindDragged:
		if !s.pressed || s.state.SessionActive || ev.Point == s.pressPoint {
			return
		}
		s.beginDragSession(ev.Internal)

	case synthesizer.KindUp:
		s.pressed = false
		if s.state.SessionActive {
			s.endDragSession()
		}
	}
}

func (s *Surface) beginDragSession(internal bool) {
	err := s.xc.OwnDragSelection(s.win)
	if err != nil {
		logger.Warning("failed to own drag selection:", err)
		return
	}
	s.state.SessionActive = true
	logger.Debug("drag session begin, operation mask:", s.DraggingSourceOperationMask())

	// a replayed gesture has no physical button behind it, nothing to grab
	if internal {
		return
	}
	err = s.xc.GrabPointer(s.win)
	if err != nil {
		logger.Warning("failed to grab pointer:", err)
	}
}

func (s *Surface) endDragSession() {
	s.state.SessionActive = false
	err := s.xc.UngrabPointer()
	if err != nil {
		logger.Debug("failed to ungrab pointer:", err)
	}
	err = s.xc.DisownDragSelection()
	if err != nil {
		logger.Warning("failed to disown drag selection:", err)
	}
	logger.Debug("drag session end")
}

func (s *Surface) destroy() error {
	if s.destroyed {
		return nil
	}
	s.destroyed = true
	close(s.quit)
	if s.state.SessionActive {
		s.endDragSession()
	}
	err := s.xc.DestroyWindow(s.win)
	if err != nil {
		return xerrors.Errorf("destroy surface window: %w", err)
	}
	return nil
}
