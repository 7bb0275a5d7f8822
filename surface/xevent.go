// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package surface

import (
	"github.com/linuxdeepin/dde-multitask-trigger/common/config"
	"github.com/linuxdeepin/dde-multitask-trigger/common/scale"
	"github.com/linuxdeepin/dde-multitask-trigger/synthesizer"
	x "github.com/linuxdeepin/go-x11-client"
)

const buttonLeft = 1

// NewFactory returns a Factory that creates the surface on conn. Pointer
// events for the surface window are wrapped and handed to post, which must
// run them on the goroutine that owns the surface.
func NewFactory(conn *x.Conn, cfg *config.Config, post func(func())) Factory {
	return func() (*Surface, error) {
		xc := NewXClient(conn)
		width, height := xc.ScreenSize()
		size := scale.Size(cfg.SurfaceSize, scale.Factor(conn))
		s, err := newSurface(xc, CornerRect(cfg.Corner, size, width, height))
		if err != nil {
			return nil, err
		}

		eventChan := make(chan x.GenericEvent, 100)
		conn.AddEventChan(eventChan)
		go s.eventHandleLoop(eventChan, post, func() {
			conn.RemoveEventChan(eventChan)
		})
		return s, nil
	}
}

// eventHandleLoop returns once the surface is destroyed and detach, which
// unregisters eventChan from the connection, has returned.
func (s *Surface) eventHandleLoop(eventChan <-chan x.GenericEvent, post func(func()), detach func()) {
	for {
		select {
		case <-s.quit:
			detached := make(chan struct{})
			go func() {
				detach()
				close(detached)
			}()
			// the connection may be blocked sending to eventChan
			for {
				select {
				case <-eventChan:
				case <-detached:
					logger.Debug("surface event loop quit")
					return
				}
			}

		case ev := <-eventChan:
			pe, ok := s.pointerEventFromX(ev)
			if !ok {
				continue
			}
			post(func() {
				s.DeliverPointerEvent(pe)
			})
		}
	}
}

func (s *Surface) pointerEventFromX(ev x.GenericEvent) (synthesizer.PointerEvent, bool) {
	var pe synthesizer.PointerEvent
	switch ev.GetEventCode() {
	case x.ButtonPressEventCode:
		event, _ := x.NewButtonPressEvent(ev)
		if event == nil || event.Event != s.win || event.Detail != buttonLeft {
			return pe, false
		}
		pe.Kind = synthesizer.KindDown
		pe.Point = synthesizer.Point{X: event.RootX, Y: event.RootY}

	case x.ButtonReleaseEventCode:
		event, _ := x.NewButtonReleaseEvent(ev)
		if event == nil || event.Event != s.win || event.Detail != buttonLeft {
			return pe, false
		}
		pe.Kind = synthesizer.KindUp
		pe.Point = synthesizer.Point{X: event.RootX, Y: event.RootY}

	case x.MotionNotifyEventCode:
		event, _ := x.NewMotionNotifyEvent(ev)
		if event == nil || event.Event != s.win {
			return pe, false
		}
		pe.Kind = synthesizer.KindDragged
		pe.Point = synthesizer.Point{X: event.RootX, Y: event.RootY}

	default:
		return pe, false
	}
	return pe, true
}
