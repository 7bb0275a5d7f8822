// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package daemon

import (
	"sync"
	"time"

	"github.com/linuxdeepin/dde-multitask-trigger/common/clock"
	"github.com/linuxdeepin/dde-multitask-trigger/common/config"
	"github.com/linuxdeepin/dde-multitask-trigger/trigger"
	"github.com/linuxdeepin/go-lib/log"
	"github.com/linuxdeepin/go-lib/multierr"
	"golang.org/x/xerrors"
)

var logger = log.NewLogger("daemon/multitask-trigger")

func GetLogger() *log.Logger {
	return logger
}

type Role int

const (
	RoleClient Role = iota
	RoleAttemptingDaemon
	RoleFallingBackToClient
	RoleDaemon
)

func (r Role) String() string {
	switch r {
	case RoleAttemptingDaemon:
		return "attempting-daemon"
	case RoleFallingBackToClient:
		return "falling-back-to-client"
	case RoleDaemon:
		return "daemon"
	default:
		return "client"
	}
}

// SurfaceHolder owns the lazily created surface.
type SurfaceHolder interface {
	Exists() bool
	Release() error
}

type Toggler interface {
	Toggle() bool
	Busy() bool
	SetTimings(t trigger.Timings)
}

type Notifier interface {
	NotifyPermissionNeeded()
}

type Params struct {
	Loop      *trigger.Loop
	Config    *config.Config
	Registry  Registry
	Messenger Messenger
	Surfaces  SurfaceHolder
	Notifier  Notifier
	Clock     clock.Clock
	// Trigger configures the toggle controller. Timings and OnFinished
	// are filled in from the daemon.
	Trigger trigger.Options
}

type Daemon struct {
	loop      *trigger.Loop
	cfg       *config.Config
	registry  Registry
	messenger Messenger
	surfaces  SurfaceHolder
	notifier  Notifier
	clock     clock.Clock
	toggler   Toggler
	manager   *Manager
	idleTimer *IdleTimer

	role     Role
	notified bool

	// mu guards closing and pending, which Deliver touches from bus
	// goroutines.
	mu      sync.Mutex
	closing bool
	pending int

	cleanupOnce  sync.Once
	cleanupHooks []func() error
}

func New(p Params) *Daemon {
	if p.Clock == nil {
		p.Clock = clock.New()
	}
	d := &Daemon{
		loop:      p.Loop,
		cfg:       p.Config,
		registry:  p.Registry,
		messenger: p.Messenger,
		surfaces:  p.Surfaces,
		notifier:  p.Notifier,
		clock:     p.Clock,
		role:      RoleAttemptingDaemon,
	}
	d.manager = &Manager{d: d}
	d.idleTimer = newIdleTimer(p.Loop, p.Clock, d.stopIfIdle)

	opts := p.Trigger
	opts.Clock = p.Clock
	opts.Timings = timingsOf(p.Config)
	opts.OnFinished = d.onToggleFinished
	d.toggler = trigger.NewController(p.Loop, opts)
	return d
}

func timingsOf(cfg *config.Config) trigger.Timings {
	return trigger.Timings{
		HoldDuration:    cfg.HoldDuration,
		DeliveryTimeout: cfg.DeliveryTimeout,
		DragDistance:    cfg.DragDistance,
	}
}

func (d *Daemon) Role() Role {
	return d.role
}

// AddCleanupHook registers fn to run on CleanUpAndFinish, after the surface
// and the marker are released.
func (d *Daemon) AddCleanupHook(fn func() error) {
	d.cleanupHooks = append(d.cleanupHooks, fn)
}

// SetupDaemon makes this process the daemon. It fails with
// ErrMarkerConflict when another process won the race.
func (d *Daemon) SetupDaemon() error {
	if d.role != RoleAttemptingDaemon {
		return xerrors.Errorf("setup daemon in role %v", d.role)
	}

	err := d.registry.Acquire(d.manager)
	if err != nil {
		return err
	}
	d.role = RoleDaemon
	logger.Info("became daemon, idle timeout:", d.cfg.IdleTimeout)

	d.installTerminationHandler()
	d.EnsureAppStopsAfterDuration(d.cfg.IdleTimeout)
	return nil
}

// Deliver queues sig for the loop. It returns false once the daemon is
// finishing; a signal it accepted is always handled before the daemon
// finishes.
func (d *Daemon) Deliver(sig TriggerSignal) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closing {
		return false
	}
	ok := d.loop.Post(func() {
		d.handleSignal(sig)
	})
	if ok {
		d.pending++
	}
	return ok
}

func (d *Daemon) handleSignal(sig TriggerSignal) {
	d.mu.Lock()
	d.pending--
	closing := d.closing
	d.mu.Unlock()

	logger.Debugf("received %v, %d us after the previous signal", sig, d.clock.MicrosSinceLastCall())
	switch sig {
	case SignalPressed:
		d.handleMultitask()
	case SignalReleased:
		// only keeps the daemon alive
		if !closing && !d.toggler.Busy() {
			d.EnsureAppStopsAfterDuration(d.cfg.IdleTimeout)
		}
	default:
		logger.Warning("unknown trigger signal:", sig)
	}

	if closing {
		d.finishIfDrained()
	}
}

func (d *Daemon) handleMultitask() {
	d.RemoveAppStopTimer()
	if !d.toggler.Toggle() {
		// the attempt in flight re-arms the idle timer when it finishes
		logger.Debug("coalesced into the running attempt")
	}
}

func (d *Daemon) onToggleFinished(res trigger.Result) {
	if xerrors.Is(res.Err, trigger.ErrPermissionDenied) && !d.notified {
		d.notified = true
		if d.notifier != nil {
			d.notifier.NotifyPermissionNeeded()
		}
	}
	if d.isClosing() {
		d.finishIfDrained()
		return
	}
	d.EnsureAppStopsAfterDuration(d.cfg.IdleTimeout)
}

// ApplyConfig takes over timings from a reloaded config file.
func (d *Daemon) ApplyConfig(cfg *config.Config) {
	d.loop.Post(func() {
		logger.Info("config changed:", cfg)
		d.cfg.IdleTimeout = cfg.IdleTimeout
		d.cfg.HoldDuration = cfg.HoldDuration
		d.cfg.DeliveryTimeout = cfg.DeliveryTimeout
		d.cfg.DragDistance = cfg.DragDistance
		d.toggler.SetTimings(timingsOf(d.cfg))
		if d.idleTimer.Armed() {
			d.EnsureAppStopsAfterDuration(d.cfg.IdleTimeout)
		}
	})
}

func (d *Daemon) EnsureAppStopsAfterDuration(duration time.Duration) {
	d.idleTimer.Arm(duration)
}

func (d *Daemon) RemoveAppStopTimer() {
	d.idleTimer.Disarm()
}

func (d *Daemon) isClosing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closing
}

// drained reports whether every accepted signal was handled and no toggle
// attempt is in flight.
func (d *Daemon) drained() bool {
	d.mu.Lock()
	pending := d.pending
	d.mu.Unlock()
	return pending == 0 && !d.toggler.Busy()
}

// stopIfIdle runs when the idle timeout expired. A signal accepted in the
// meantime keeps the daemon running.
func (d *Daemon) stopIfIdle() {
	if !d.drained() {
		logger.Debug("idle timeout expired with work pending, keep running")
		return
	}
	d.CleanUpAndFinish()
}

func (d *Daemon) finishIfDrained() {
	if d.drained() {
		d.finish()
	}
}

// CleanUpAndFinish stops accepting signals, then tears the daemon down and
// stops the loop once the accepted ones are handled. It runs on the loop.
func (d *Daemon) CleanUpAndFinish() {
	d.mu.Lock()
	d.closing = true
	d.mu.Unlock()

	if !d.drained() {
		logger.Debug("finish after the accepted signals are handled")
		return
	}
	d.finish()
}

// finish releases everything. Only the first call has an effect.
func (d *Daemon) finish() {
	d.cleanupOnce.Do(func() {
		d.idleTimer.Disarm()

		var err error
		if d.surfaces != nil && d.surfaces.Exists() {
			err = multierr.Append(err, d.surfaces.Release())
		}
		if d.role == RoleDaemon {
			err = multierr.Append(err, d.registry.Release())
		}
		for _, fn := range d.cleanupHooks {
			err = multierr.Append(err, fn())
		}
		if err != nil {
			logger.Warning("clean up:", err)
		}

		logger.Info("finish")
		d.loop.Quit()
	})
}

// Run blocks until the daemon finished.
func (d *Daemon) Run() {
	d.loop.Run()
}
