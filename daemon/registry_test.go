// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package daemon

import (
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"golang.org/x/xerrors"
)

func Test_checkRequestNameReply(t *testing.T) {
	busErr := errors.New("connection closed")

	tests := []struct {
		name     string
		reply    dbus.RequestNameReply
		err      error
		wantErr  bool
		conflict bool
	}{
		{"primary owner", dbus.RequestNameReplyPrimaryOwner, nil, false, false},
		{"already owner", dbus.RequestNameReplyAlreadyOwner, nil, false, false},
		{"exists", dbus.RequestNameReplyExists, nil, true, true},
		{"in queue", dbus.RequestNameReplyInQueue, nil, true, true},
		{"transport error", 0, busErr, true, false},
		{"unknown reply", dbus.RequestNameReply(9), nil, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkRequestNameReply(tt.reply, tt.err)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Equal(t, tt.conflict, xerrors.Is(err, ErrMarkerConflict))
		})
	}

	err := checkRequestNameReply(0, busErr)
	assert.True(t, xerrors.Is(err, busErr))
}
