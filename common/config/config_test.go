// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	filename := filepath.Join(dir, "dde-multitask-trigger.conf")
	err := os.WriteFile(filename, []byte(content), 0644)
	require.NoError(t, err)
	return filename
}

func Test_LoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.conf"))
	assert.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func Test_Load(t *testing.T) {
	filename := writeConfig(t, t.TempDir(), `[Trigger]
IdleTimeout=90s
HoldDuration=40ms
DeliveryTimeout=200ms
DragDistance=12
SurfaceSize=32
Corner=bottom-right
MarkerClasses=Foo;bar;
`)
	cfg, err := Load(filename)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.IdleTimeout)
	assert.Equal(t, 40*time.Millisecond, cfg.HoldDuration)
	assert.Equal(t, 200*time.Millisecond, cfg.DeliveryTimeout)
	assert.Equal(t, int16(12), cfg.DragDistance)
	assert.Equal(t, uint16(32), cfg.SurfaceSize)
	assert.Equal(t, CornerBottomRight, cfg.Corner)
	assert.Equal(t, []string{"foo", "bar"}, cfg.MarkerClasses)
}

func Test_LoadInvalidValues(t *testing.T) {
	filename := writeConfig(t, t.TempDir(), `[Trigger]
IdleTimeout=soon
DeliveryTimeout=-1s
DragDistance=1000
SurfaceSize=abc
Corner=middle
`)
	cfg, err := Load(filename)
	require.NoError(t, err)
	def := Default()
	assert.Equal(t, def.IdleTimeout, cfg.IdleTimeout)
	assert.Equal(t, def.DeliveryTimeout, cfg.DeliveryTimeout)
	assert.Equal(t, def.DragDistance, cfg.DragDistance)
	assert.Equal(t, def.SurfaceSize, cfg.SurfaceSize)
	assert.Equal(t, def.Corner, cfg.Corner)
}

func Test_Watch(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "dde-multitask-trigger.conf")

	ch := make(chan *Config, 4)
	w, err := Watch(filename, func(cfg *Config) {
		select {
		case ch <- cfg:
		default:
		}
	})
	require.NoError(t, err)
	defer w.Close()

	writeConfig(t, dir, "[Trigger]\nIdleTimeout=3s\n")

	// the create event may be seen before the content is written
	timeout := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-ch:
			if cfg.IdleTimeout == 3*time.Second {
				return
			}
		case <-timeout:
			t.Fatal("config change not observed")
		}
	}
}

func Test_WatcherHandleEvent(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "dde-multitask-trigger.conf")
	var got []*Config
	w := &Watcher{
		filename: filename,
		cb: func(cfg *Config) {
			got = append(got, cfg)
		},
	}

	tests := []struct {
		name string
		op   fsnotify.Op
	}{
		{"rename away", fsnotify.Rename},
		{"remove", fsnotify.Remove},
		{"write after remove", fsnotify.Write},
		{"create then removed", fsnotify.Create},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w.handleEvent(fsnotify.Event{Name: filename, Op: tt.op})
			assert.Empty(t, got)
		})
	}

	writeConfig(t, dir, "[Trigger]\nIdleTimeout=3s\n")
	w.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "other.conf"), Op: fsnotify.Write})
	assert.Empty(t, got)
	w.handleEvent(fsnotify.Event{Name: filename, Op: fsnotify.Chmod})
	assert.Empty(t, got)

	w.handleEvent(fsnotify.Event{Name: filename, Op: fsnotify.Write})
	require.Len(t, got, 1)
	assert.Equal(t, 3*time.Second, got[0].IdleTimeout)
}
