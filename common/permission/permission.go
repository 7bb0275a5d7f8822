// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package permission

import (
	"os"
	"strings"

	x "github.com/linuxdeepin/go-x11-client"
	"github.com/linuxdeepin/go-x11-client/ext/test"
)

// Gate reports whether the process may post synthetic input and query the
// window server. It is polled, callers must not cache the answer.
type Gate interface {
	CapabilityGranted() bool
}

// GateFunc adapts a plain function to Gate.
type GateFunc func() bool

func (f GateFunc) CapabilityGranted() bool {
	return f()
}

type xtestGate struct {
	lookupEnv        func(string) (string, bool)
	extensionPresent func() bool
}

// NewXTestGate returns a gate that is open while the session is an X11
// session and the server offers the XTEST extension.
func NewXTestGate(conn *x.Conn) Gate {
	return &xtestGate{
		lookupEnv: os.LookupEnv,
		extensionPresent: func() bool {
			if conn == nil {
				return false
			}
			reply := conn.GetExtensionData(test.Ext())
			return reply != nil && reply.Present
		},
	}
}

func (g *xtestGate) CapabilityGranted() bool {
	if isWaylandSession(g.lookupEnv) {
		return false
	}
	return g.extensionPresent()
}

func isWaylandSession(lookup func(string) (string, bool)) bool {
	if v, ok := lookup("WAYLAND_DISPLAY"); ok && v != "" {
		return true
	}
	sessionType, _ := lookup("XDG_SESSION_TYPE")
	return strings.Contains(sessionType, "wayland")
}
