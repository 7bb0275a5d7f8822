// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package daemon

import (
	"github.com/godbus/dbus/v5"
	"github.com/linuxdeepin/go-lib/dbusutil"
)

const (
	kwinServiceName = "org.kde.KWin"
	kwinPath        = "/KWin"
	kwinInterface   = "org.kde.KWin"
	kwinSignalName  = "MultitaskStateChanged"
)

// listenMultitaskState logs every state change of the multitask view the
// window manager reports, which confirms synthesized toggles.
func listenMultitaskState(conn *dbus.Conn, sigLoop *dbusutil.SignalLoop) error {
	err := conn.Object(kwinServiceName,
		kwinPath).AddMatchSignal(kwinInterface, kwinSignalName).Err
	if err != nil {
		return err
	}

	sigLoop.AddHandler(&dbusutil.SignalRule{
		Name: kwinInterface + "." + kwinSignalName,
	}, func(sig *dbus.Signal) {
		if len(sig.Body) == 0 {
			return
		}
		shown, ok := sig.Body[0].(bool)
		if !ok {
			return
		}
		logger.Info("multitask view shown:", shown)
	})
	return nil
}
