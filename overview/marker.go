// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package overview

import (
	"strings"

	x "github.com/linuxdeepin/go-x11-client"
	"github.com/linuxdeepin/go-x11-client/util/wm/ewmh"
	"github.com/linuxdeepin/go-x11-client/util/wm/icccm"
	"golang.org/x/xerrors"
)

type wmClass struct {
	Class    string
	Instance string
}

type markerDetector struct {
	listClasses func() ([]wmClass, error)
	classes     map[string]struct{}
}

// NewMarkerDetector looks for a managed window whose WM_CLASS is one of
// classes. Such windows exist only while the multitask view is presented.
func NewMarkerDetector(conn *x.Conn, classes []string) Detector {
	return newMarkerDetector(func() ([]wmClass, error) {
		return listClientClasses(conn)
	}, classes)
}

func newMarkerDetector(listClasses func() ([]wmClass, error), classes []string) *markerDetector {
	d := &markerDetector{
		listClasses: listClasses,
		classes:     make(map[string]struct{}, len(classes)),
	}
	for _, class := range classes {
		d.classes[strings.ToLower(class)] = struct{}{}
	}
	return d
}

func (d *markerDetector) DetermineIfInMultitaskView() (bool, error) {
	if len(d.classes) == 0 {
		return false, xerrors.New("no marker classes configured")
	}
	list, err := d.listClasses()
	if err != nil {
		return false, xerrors.Errorf("list client windows: %w", err)
	}
	for _, c := range list {
		if d.match(c.Class) || d.match(c.Instance) {
			logger.Debugf("found marker window [%s|%s]", c.Class, c.Instance)
			return true, nil
		}
	}
	return false, nil
}

func (d *markerDetector) match(name string) bool {
	_, ok := d.classes[strings.ToLower(name)]
	return ok
}

func listClientClasses(conn *x.Conn) ([]wmClass, error) {
	clientList, err := ewmh.GetClientList(conn).Reply(conn)
	if err != nil {
		return nil, err
	}

	result := make([]wmClass, 0, len(clientList))
	for _, win := range clientList {
		class, err := icccm.GetWMClass(conn, win).Reply(conn)
		if err != nil {
			// the window may be gone already
			continue
		}
		result = append(result, wmClass{Class: class.Class, Instance: class.Instance})
	}
	return result, nil
}
