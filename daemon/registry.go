// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package daemon

import (
	"github.com/godbus/dbus/v5"
	"github.com/linuxdeepin/go-lib/dbusutil"
	"golang.org/x/xerrors"
)

const (
	dbusServiceName = "org.deepin.dde.MultitaskTrigger1"
	dbusPath        = "/org/deepin/dde/MultitaskTrigger1"
	dbusInterface   = dbusServiceName
)

// Registry holds the liveness marker. Acquire succeeds for exactly one
// process at a time.
type Registry interface {
	Acquire(m *Manager) error
	Release() error
}

// Messenger reaches whichever process holds the marker.
type Messenger interface {
	Trigger(sig TriggerSignal) error
	Stop() error
}

type busRegistry struct {
	service  *dbusutil.Service
	exported *Manager
}

func NewBusRegistry(service *dbusutil.Service) Registry {
	return &busRegistry{service: service}
}

func (r *busRegistry) Acquire(m *Manager) error {
	err := r.service.Export(dbusPath, m)
	if err != nil {
		return xerrors.Errorf("export %s: %w", dbusPath, err)
	}

	reply, err := r.service.Conn().RequestName(dbusServiceName, dbus.NameFlagDoNotQueue)
	err = checkRequestNameReply(reply, err)
	if err != nil {
		stopErr := r.service.StopExport(m)
		if stopErr != nil {
			logger.Warning(stopErr)
		}
		return err
	}
	r.exported = m
	return nil
}

// checkRequestNameReply reports ErrMarkerConflict only when the bus gave
// the name to someone else. Other failures are returned as they are.
func checkRequestNameReply(reply dbus.RequestNameReply, err error) error {
	if err != nil {
		return xerrors.Errorf("request name %s: %w", dbusServiceName, err)
	}
	switch reply {
	case dbus.RequestNameReplyPrimaryOwner, dbus.RequestNameReplyAlreadyOwner:
		return nil
	case dbus.RequestNameReplyExists, dbus.RequestNameReplyInQueue:
		return xerrors.Errorf("name %s has an owner: %w", dbusServiceName, ErrMarkerConflict)
	default:
		return xerrors.Errorf("request name %s: unexpected reply %d", dbusServiceName, reply)
	}
}

func (r *busRegistry) Release() error {
	if r.exported == nil {
		return nil
	}
	m := r.exported
	r.exported = nil

	_, err := r.service.Conn().ReleaseName(dbusServiceName)
	if err != nil {
		return xerrors.Errorf("release name %s: %w", dbusServiceName, err)
	}
	return r.service.StopExport(m)
}

type busMessenger struct {
	service *dbusutil.Service
}

func NewBusMessenger(service *dbusutil.Service) Messenger {
	return &busMessenger{service: service}
}

func (b *busMessenger) call(method string, args ...interface{}) error {
	has, err := b.service.NameHasOwner(dbusServiceName)
	if err != nil {
		return err
	}
	if !has {
		return ErrNoDaemon
	}
	obj := b.service.Conn().Object(dbusServiceName, dbusPath)
	return obj.Call(dbusInterface+"."+method, dbus.FlagNoAutoStart, args...).Err
}

func (b *busMessenger) Trigger(sig TriggerSignal) error {
	return b.call("Trigger", uint32(sig))
}

func (b *busMessenger) Stop() error {
	return b.call("Stop")
}
