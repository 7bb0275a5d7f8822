// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package synthesizer

import (
	x "github.com/linuxdeepin/go-x11-client"
	"github.com/linuxdeepin/go-x11-client/ext/test"
)

// XClient is the part of the X connection the synthesizer needs.
type XClient interface {
	FakeInput(evType, detail uint8, rootX, rootY int16) error
	QueryPointer() (Point, error)
	ScreenHeight() uint16
	SetRootTag(prop string, tag uint64) error
}

type xClient struct {
	conn *x.Conn
}

func NewXClient(conn *x.Conn) XClient {
	return &xClient{conn: conn}
}

func (xc *xClient) root() x.Window {
	return xc.conn.GetDefaultScreen().Root
}

func (xc *xClient) FakeInput(evType, detail uint8, rootX, rootY int16) error {
	return test.FakeInputChecked(xc.conn, evType, detail, x.TimeCurrentTime,
		xc.root(), rootX, rootY, 0).Check(xc.conn)
}

func (xc *xClient) QueryPointer() (Point, error) {
	reply, err := x.QueryPointer(xc.conn, xc.root()).Reply(xc.conn)
	if err != nil {
		return Point{}, err
	}
	return Point{X: reply.RootX, Y: reply.RootY}, nil
}

func (xc *xClient) ScreenHeight() uint16 {
	return xc.conn.GetDefaultScreen().HeightInPixels
}

func (xc *xClient) SetRootTag(prop string, tag uint64) error {
	atom, err := xc.conn.GetAtom(prop)
	if err != nil {
		return err
	}
	w := x.NewWriter()
	w.Write4b(uint32(tag >> 32))
	w.Write4b(uint32(tag))
	return x.ChangePropertyChecked(xc.conn, x.PropModeReplace, xc.root(),
		atom, x.AtomInteger, 32, w.Bytes()).Check(xc.conn)
}
