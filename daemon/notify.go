// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package daemon

import (
	notifications "github.com/linuxdeepin/go-dbus-factory/session/org.freedesktop.notifications"
	"github.com/linuxdeepin/go-lib/gettext"
)

const (
	notifyIconPermission = "preferences-system"
	notifyExpireTimeout  = -1
)

type permissionNotifier struct {
	notify notifications.Notifications
}

func newPermissionNotifier(notify notifications.Notifications) Notifier {
	return &permissionNotifier{notify: notify}
}

func (n *permissionNotifier) NotifyPermissionNeeded() {
	_, err := n.notify.Notify(0,
		gettext.Tr("dde-control-center"),
		0,
		notifyIconPermission,
		gettext.Tr("Multitasking View"),
		gettext.Tr("Synthetic input is not available, the multitasking view cannot be opened from this trigger"),
		nil,
		nil,
		notifyExpireTimeout)
	if err != nil {
		logger.Warning("failed to send notify:", err)
	}
}
