// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package overview

import (
	"errors"

	"github.com/godbus/dbus/v5"
	"github.com/linuxdeepin/go-lib/log"
	"golang.org/x/xerrors"
)

var logger = log.NewLogger("daemon/multitask-trigger/overview")

func GetLogger() *log.Logger {
	return logger
}

var ErrDetect = errors.New("failed to detect multitask view state")

type State int

const (
	StateUnknown State = iota
	StateInactive
	StateActive
)

func (s State) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

type Detector interface {
	DetermineIfInMultitaskView() (bool, error)
}

// Detect never fails, an undeterminable state is StateUnknown.
func Detect(d Detector) State {
	shown, err := d.DetermineIfInMultitaskView()
	if err != nil {
		logger.Warning(err)
		return StateUnknown
	}
	if shown {
		return StateActive
	}
	return StateInactive
}

type multitaskingStatusGetter interface {
	GetMultiTaskingStatus(flags dbus.Flags) (bool, error)
}

type wmDetector struct {
	wm multitaskingStatusGetter
}

// NewWMDetector asks the window manager over D-Bus. wm is normally a
// com.deepin.wm proxy.
func NewWMDetector(wm multitaskingStatusGetter) Detector {
	return &wmDetector{wm: wm}
}

func (d *wmDetector) DetermineIfInMultitaskView() (bool, error) {
	shown, err := d.wm.GetMultiTaskingStatus(0)
	if err != nil {
		return false, xerrors.Errorf("get multitasking status: %w", err)
	}
	return shown, nil
}

type chain []Detector

// Chain asks each detector in turn; the first answer without error wins.
func Chain(detectors ...Detector) Detector {
	return chain(detectors)
}

func (c chain) DetermineIfInMultitaskView() (bool, error) {
	for _, d := range c {
		shown, err := d.DetermineIfInMultitaskView()
		if err == nil {
			return shown, nil
		}
		logger.Debug(err)
	}
	return false, ErrDetect
}
