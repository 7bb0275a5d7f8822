// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newEnv(kv map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := kv[key]
		return v, ok
	}
}

func Test_xtestGate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		present bool
		want    bool
	}{
		{"x11 with xtest", map[string]string{"XDG_SESSION_TYPE": "x11"}, true, true},
		{"x11 without xtest", map[string]string{"XDG_SESSION_TYPE": "x11"}, false, false},
		{"wayland session type", map[string]string{"XDG_SESSION_TYPE": "wayland"}, true, false},
		{"wayland display", map[string]string{"WAYLAND_DISPLAY": "wayland-0"}, true, false},
		{"unknown session", map[string]string{}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			present := tt.present
			g := &xtestGate{
				lookupEnv:        newEnv(tt.env),
				extensionPresent: func() bool { return present },
			}
			assert.Equal(t, tt.want, g.CapabilityGranted())
		})
	}
}

func Test_xtestGateRechecks(t *testing.T) {
	present := true
	g := &xtestGate{
		lookupEnv:        newEnv(nil),
		extensionPresent: func() bool { return present },
	}
	assert.True(t, g.CapabilityGranted())
	present = false
	assert.False(t, g.CapabilityGranted())
}

func Test_GateFunc(t *testing.T) {
	var g Gate = GateFunc(func() bool { return true })
	assert.True(t, g.CapabilityGranted())
}
