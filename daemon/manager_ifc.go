// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package daemon

import (
	"github.com/godbus/dbus/v5"
	"github.com/linuxdeepin/go-lib/dbusutil"
	"github.com/linuxdeepin/go-lib/log"
	"github.com/linuxdeepin/go-lib/procfs"
	"golang.org/x/xerrors"
)

//go:generate dbusutil-gen em -type Manager

// Manager is the object exported at the marker name. Calls are only
// forwarded to the loop of the daemon.
type Manager struct {
	d       *Daemon
	service *dbusutil.Service
}

func (m *Manager) GetInterfaceName() string {
	return dbusInterface
}

func (m *Manager) Trigger(sender dbus.Sender, kind uint32) *dbus.Error {
	sig := TriggerSignal(kind)
	if !sig.valid() {
		return dbusutil.ToError(xerrors.Errorf("invalid trigger kind %d", kind))
	}
	m.logCaller(sender, sig)
	if !m.d.Deliver(sig) {
		return dbusutil.ToError(xerrors.New("daemon is finishing"))
	}
	return nil
}

func (m *Manager) Stop(sender dbus.Sender) *dbus.Error {
	logger.Info("stop requested by", sender)
	m.d.loop.Post(m.d.CleanUpAndFinish)
	return nil
}

func (m *Manager) logCaller(sender dbus.Sender, sig TriggerSignal) {
	if m.service == nil || logger.GetLogLevel() != log.LevelDebug {
		return
	}
	pid, err := m.service.GetConnPID(string(sender))
	if err != nil {
		logger.Debug(err)
		return
	}
	exe, err := procfs.Process(pid).Exe()
	if err != nil {
		logger.Debug(err)
		return
	}
	logger.Debugf("%v from %s (pid %d)", sig, exe, pid)
}
