// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package daemon

import "errors"

var (
	// ErrMarkerConflict means another process already is the daemon.
	ErrMarkerConflict = errors.New("daemon name is owned by another process")
	// ErrFatalSetup ends the process with a non-zero status.
	ErrFatalSetup = errors.New("can neither become nor reach the daemon")
	ErrNoDaemon   = errors.New("no daemon is running")
)
