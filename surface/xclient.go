// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package surface

import (
	"os"

	x "github.com/linuxdeepin/go-x11-client"
	"github.com/linuxdeepin/go-x11-client/util/mousebind"
	"github.com/linuxdeepin/go-x11-client/util/wm/ewmh"
)

// XClient is the part of the X connection the surface needs.
type XClient interface {
	ScreenSize() (width, height uint16)
	CreateInputWindow(r Rect) (x.Window, error)
	DestroyWindow(win x.Window) error
	OwnDragSelection(win x.Window) error
	DisownDragSelection() error
	GrabPointer(win x.Window) error
	UngrabPointer() error
}

const (
	surfaceEventMask = x.EventMaskButtonPress | x.EventMaskButtonRelease |
		x.EventMaskPointerMotion
	grabEventMask = x.EventMaskButtonRelease | x.EventMaskPointerMotion

	atomNameDndSelection  = "XdndSelection"
	atomNameDndActionList = "XdndActionList"
	atomNameDndTypeList   = "XdndTypeList"
)

type xClient struct {
	conn *x.Conn
}

func NewXClient(conn *x.Conn) XClient {
	return &xClient{conn: conn}
}

func (xc *xClient) ScreenSize() (uint16, uint16) {
	screen := xc.conn.GetDefaultScreen()
	return screen.WidthInPixels, screen.HeightInPixels
}

// CreateInputWindow maps an InputOnly, override-redirect window: it has no
// pixels, takes no focus and is not managed by the window manager.
func (xc *xClient) CreateInputWindow(r Rect) (x.Window, error) {
	xid, err := xc.conn.AllocID()
	if err != nil {
		return 0, err
	}
	wid := x.Window(xid)

	root := xc.conn.GetDefaultScreen().Root
	err = x.CreateWindowChecked(xc.conn, 0, wid, root,
		r.X, r.Y, r.Width, r.Height, 0,
		x.WindowClassInputOnly, x.CopyFromParent,
		x.CWOverrideRedirect|x.CWEventMask,
		[]uint32{1, surfaceEventMask}).Check(xc.conn)
	if err != nil {
		return 0, err
	}

	err = ewmh.SetWMPidChecked(xc.conn, wid, uint32(os.Getpid())).Check(xc.conn)
	if err != nil {
		logger.Warning("failed to set wm pid:", err)
	}

	err = x.MapWindowChecked(xc.conn, wid).Check(xc.conn)
	if err != nil {
		_ = xc.DestroyWindow(wid)
		return 0, err
	}
	return wid, nil
}

func (xc *xClient) DestroyWindow(win x.Window) error {
	return x.DestroyWindowChecked(xc.conn, win).Check(xc.conn)
}

// OwnDragSelection makes win the XDND drag source. The action and type lists
// are published empty, the drop target is offered nothing.
func (xc *xClient) OwnDragSelection(win x.Window) error {
	for _, name := range []string{atomNameDndActionList, atomNameDndTypeList} {
		atom, err := xc.conn.GetAtom(name)
		if err != nil {
			return err
		}
		err = x.ChangePropertyChecked(xc.conn, x.PropModeReplace, win,
			atom, x.AtomAtom, 32, nil).Check(xc.conn)
		if err != nil {
			return err
		}
	}

	selection, err := xc.conn.GetAtom(atomNameDndSelection)
	if err != nil {
		return err
	}
	return x.SetSelectionOwnerChecked(xc.conn, win, selection,
		x.CurrentTime).Check(xc.conn)
}

func (xc *xClient) DisownDragSelection() error {
	selection, err := xc.conn.GetAtom(atomNameDndSelection)
	if err != nil {
		return err
	}
	return x.SetSelectionOwnerChecked(xc.conn, x.None, selection,
		x.CurrentTime).Check(xc.conn)
}

func (xc *xClient) GrabPointer(win x.Window) error {
	return mousebind.GrabPointer(xc.conn, win, grabEventMask, x.None, x.None)
}

func (xc *xClient) UngrabPointer() error {
	return mousebind.UngrabPointer(xc.conn)
}
