// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a config file whenever it is written or created, and
// passes the result to the callback. Removing or moving the file away keeps
// the last loaded values.
type Watcher struct {
	watcher  *fsnotify.Watcher
	filename string
	cb       func(*Config)
	end      chan struct{}
}

// Watch watches the directory of filename, so that a file created after the
// daemon started is picked up too.
func Watch(filename string, cb func(*Config)) (*Watcher, error) {
	dir := filepath.Dir(filename)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	err = fsWatcher.Add(dir)
	if err != nil {
		_ = fsWatcher.Close()
		return nil, err
	}

	w := &Watcher{
		watcher:  fsWatcher,
		filename: filepath.Clean(filename),
		cb:       cb,
		end:      make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.end:
			logger.Debug("[Fsnotify] quit watch")
			return
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warning("Receive file watcher error:", err)
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.filename {
		return
	}
	// a file renamed into place shows up as Create
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}
	_, err := os.Stat(w.filename)
	if err != nil {
		logger.Debug("skip reload:", err)
		return
	}
	cfg, err := Load(w.filename)
	if err != nil {
		logger.Warning("failed to reload config:", err)
		return
	}
	logger.Debug("config reloaded:", cfg)
	w.cb(cfg)
}

func (w *Watcher) Close() error {
	close(w.end)
	return w.watcher.Close()
}
