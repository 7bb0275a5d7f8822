// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package synthesizer

import "fmt"

type ButtonPhase int

const (
	PhaseDown ButtonPhase = iota
	PhaseUp
)

func (p ButtonPhase) String() string {
	switch p {
	case PhaseDown:
		return "down"
	case PhaseUp:
		return "up"
	}
	return fmt.Sprintf("ButtonPhase(%d)", int(p))
}

// Point is a position in root window coordinates, origin top-left.
type Point struct {
	X, Y int16
}

func (p Point) Offset(dx, dy int16) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

type EventKind int

const (
	KindDown EventKind = iota
	KindDragged
	KindUp
)

func (k EventKind) String() string {
	switch k {
	case KindDown:
		return "down"
	case KindDragged:
		return "dragged"
	case KindUp:
		return "up"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// PointerEvent is a left button pointer event as seen by a surface, either
// routed by the X server or handed over directly.
type PointerEvent struct {
	Kind  EventKind
	Point Point
	// Internal is set for events that did not go through the X server.
	Internal bool
	Tag      uint64
}

// Target receives pointer events without X hit-testing.
type Target interface {
	DeliverPointerEvent(ev PointerEvent)
}
