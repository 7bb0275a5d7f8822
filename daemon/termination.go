// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package daemon

import (
	"os"
	"os/signal"
	"syscall"
)

func (d *Daemon) installTerminationHandler() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal:", sig)
			d.loop.Post(d.CleanUpAndFinish)
		case <-d.loop.Done():
		}
		signal.Stop(sigCh)
	}()
}
