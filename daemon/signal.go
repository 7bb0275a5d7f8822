// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package daemon

import "fmt"

// TriggerSignal is what a client sends to the running daemon.
type TriggerSignal uint32

const (
	SignalPressed  TriggerSignal = 1
	SignalReleased TriggerSignal = 2
)

func (s TriggerSignal) String() string {
	switch s {
	case SignalPressed:
		return "pressed"
	case SignalReleased:
		return "released"
	default:
		return fmt.Sprintf("TriggerSignal(%d)", uint32(s))
	}
}

func (s TriggerSignal) valid() bool {
	return s == SignalPressed || s == SignalReleased
}
