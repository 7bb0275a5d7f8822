// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package daemon

import (
	"os"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/xerrors"
)

// DaemonFlag marks the re-executed background instance.
const DaemonFlag = "-daemon"

const (
	handOffTimeout       = 2 * time.Second
	handOffRetryInterval = 50 * time.Millisecond
)

// SignalDaemon sends sig to the running daemon. It reports whether a live
// daemon acknowledged it.
func SignalDaemon(m Messenger, sig TriggerSignal) bool {
	err := m.Trigger(sig)
	if err != nil {
		if !xerrors.Is(err, ErrNoDaemon) {
			logger.Warningf("failed to send %v: %v", sig, err)
		}
		return false
	}
	logger.Debug("sent", sig)
	return true
}

// ForkDaemon starts this executable again as the daemon, detached from the
// caller's session. args are forwarded after DaemonFlag.
func ForkDaemon(args []string) error {
	exe, err := os.Executable()
	if err != nil {
		return xerrors.Errorf("get executable path: %w", err)
	}

	cmd := exec.Command(exe, append([]string{DaemonFlag}, args...)...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}

	err = cmd.Start()
	if err != nil {
		return xerrors.Errorf("fork daemon: %w", err)
	}
	logger.Debug("forked daemon, pid:", cmd.Process.Pid)

	err = cmd.Process.Release()
	if err != nil {
		return xerrors.Errorf("release daemon process: %w", err)
	}
	return nil
}

// GiveUpAndReexec abandons the attempt to become the daemon after losing
// the race for the marker, and hands sig to the winner instead.
func (d *Daemon) GiveUpAndReexec(sig TriggerSignal) error {
	if d.role != RoleAttemptingDaemon {
		return xerrors.Errorf("give up in role %v", d.role)
	}
	d.role = RoleFallingBackToClient
	logger.Info("another daemon is running, fall back to client")

	if !SignalDaemon(d.messenger, sig) {
		return ErrFatalSetup
	}
	return nil
}

// SetupOrHandOff makes this process the daemon, or hands sig to the daemon
// that holds the marker. A finishing daemon refuses signals while it still
// holds the marker, so both steps are retried until it is gone or timeout
// ran out. It reports whether this process became the daemon.
func (d *Daemon) SetupOrHandOff(sig TriggerSignal, timeout time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		err := d.SetupDaemon()
		if err == nil {
			return true, nil
		}
		if !xerrors.Is(err, ErrMarkerConflict) {
			return false, xerrors.Errorf("setup daemon: %v: %w", err, ErrFatalSetup)
		}
		logger.Debug(err)

		err = d.GiveUpAndReexec(sig)
		if err == nil {
			return false, nil
		}
		if !time.Now().Before(deadline) {
			return false, err
		}
		logger.Debug("the daemon is finishing, retry")
		d.role = RoleAttemptingDaemon
		time.Sleep(handOffRetryInterval)
	}
}
