// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package daemon

import (
	"time"

	"github.com/linuxdeepin/dde-multitask-trigger/common/config"
	"github.com/linuxdeepin/dde-multitask-trigger/common/permission"
	"github.com/linuxdeepin/dde-multitask-trigger/overview"
	"github.com/linuxdeepin/dde-multitask-trigger/surface"
	"github.com/linuxdeepin/dde-multitask-trigger/synthesizer"
	"github.com/linuxdeepin/dde-multitask-trigger/trigger"
	wm "github.com/linuxdeepin/go-dbus-factory/session/com.deepin.wm"
	notifications "github.com/linuxdeepin/go-dbus-factory/session/org.freedesktop.notifications"
	"github.com/linuxdeepin/go-lib/dbusutil"
	x "github.com/linuxdeepin/go-x11-client"
	"golang.org/x/xerrors"
)

type RunOptions struct {
	Config     *config.Config
	ConfigFile string
	// Initial is handled once the daemon is set up. When another daemon
	// won the race it is sent there instead.
	Initial TriggerSignal
	// IdleTimeout overrides the value of the config file, also on reload.
	IdleTimeout time.Duration
}

// RunDaemon is the body of the background instance. It returns after the
// daemon finished, or at once if another process is the daemon.
func RunDaemon(opts RunOptions) error {
	service, err := dbusutil.NewSessionService()
	if err != nil {
		return xerrors.Errorf("connect session bus: %v: %w", err, ErrFatalSetup)
	}

	xConn, err := x.NewConn()
	if err != nil {
		return xerrors.Errorf("connect X server: %v: %w", err, ErrFatalSetup)
	}

	cfg := opts.Config
	if opts.IdleTimeout > 0 {
		cfg.IdleTimeout = opts.IdleTimeout
	}
	loop := trigger.NewLoop()
	holder := surface.NewHolder(surface.NewFactory(xConn, cfg, func(fn func()) {
		loop.Post(fn)
	}))
	sessionConn := service.Conn()

	d := New(Params{
		Loop:      loop,
		Config:    cfg,
		Registry:  NewBusRegistry(service),
		Messenger: NewBusMessenger(service),
		Surfaces:  holder,
		Notifier:  newPermissionNotifier(notifications.NewNotifications(sessionConn)),
		Trigger: trigger.Options{
			Gate: permission.NewXTestGate(xConn),
			Detector: overview.Chain(
				overview.NewWMDetector(wm.NewWm(sessionConn)),
				overview.NewMarkerDetector(xConn, cfg.MarkerClasses),
			),
			Synthesizer: synthesizer.NewWithConn(xConn),
			Surface: func() (trigger.Surface, error) {
				s, err := holder.Get()
				if err != nil {
					return nil, err
				}
				return s, nil
			},
		},
	})
	d.manager.service = service
	d.AddCleanupHook(func() error {
		xConn.Close()
		return nil
	})

	isDaemon, err := d.SetupOrHandOff(opts.Initial, handOffTimeout)
	if !isDaemon {
		xConn.Close()
		return err
	}

	sigLoop := dbusutil.NewSignalLoop(sessionConn, 10)
	sigLoop.Start()
	d.AddCleanupHook(func() error {
		sigLoop.Stop()
		return nil
	})
	err = listenMultitaskState(sessionConn, sigLoop)
	if err != nil {
		logger.Warning("failed to listen multitask state:", err)
	}

	if opts.ConfigFile != "" {
		watcher, err := config.Watch(opts.ConfigFile, func(c *config.Config) {
			if opts.IdleTimeout > 0 {
				c.IdleTimeout = opts.IdleTimeout
			}
			d.ApplyConfig(c)
		})
		if err != nil {
			logger.Warning("failed to watch config file:", err)
		} else {
			d.AddCleanupHook(watcher.Close)
		}
	}

	if opts.Initial != 0 {
		d.Deliver(opts.Initial)
	}
	d.Run()
	return nil
}
