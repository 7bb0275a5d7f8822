// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/linuxdeepin/go-lib/keyfile"
	"github.com/linuxdeepin/go-lib/log"
	"github.com/linuxdeepin/go-lib/xdg/basedir"
)

var logger = log.NewLogger("daemon/multitask-trigger/config")

func GetLogger() *log.Logger {
	return logger
}

const (
	kfGroupTrigger = "Trigger"

	kfKeyIdleTimeout     = "IdleTimeout"
	kfKeyHoldDuration    = "HoldDuration"
	kfKeyDeliveryTimeout = "DeliveryTimeout"
	kfKeyDragDistance    = "DragDistance"
	kfKeySurfaceSize     = "SurfaceSize"
	kfKeyCorner          = "Corner"
	kfKeyMarkerClasses   = "MarkerClasses"
)

type Corner string

const (
	CornerTopLeft     Corner = "top-left"
	CornerTopRight    Corner = "top-right"
	CornerBottomLeft  Corner = "bottom-left"
	CornerBottomRight Corner = "bottom-right"
)

func (c Corner) valid() bool {
	switch c {
	case CornerTopLeft, CornerTopRight, CornerBottomLeft, CornerBottomRight:
		return true
	}
	return false
}

type Config struct {
	IdleTimeout     time.Duration
	HoldDuration    time.Duration
	DeliveryTimeout time.Duration
	DragDistance    int16
	SurfaceSize     uint16
	Corner          Corner
	MarkerClasses   []string
}

func Default() *Config {
	return &Config{
		IdleTimeout:     5 * time.Minute,
		HoldDuration:    30 * time.Millisecond,
		DeliveryTimeout: 150 * time.Millisecond,
		DragDistance:    10,
		SurfaceSize:     50,
		Corner:          CornerTopLeft,
		MarkerClasses:   []string{"deepin-multitasking-view", "multitaskingview"},
	}
}

func DefaultFile() string {
	return filepath.Join(basedir.GetUserConfigDir(), "deepin/dde-multitask-trigger.conf")
}

// Load reads filename on top of the defaults. A missing file is not an
// error; keys that are absent or malformed keep their default value.
func Load(filename string) (*Config, error) {
	cfg := Default()
	kf := keyfile.NewKeyFile()
	err := kf.LoadFromFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	cfg.IdleTimeout = getDuration(kf, kfKeyIdleTimeout, cfg.IdleTimeout)
	cfg.HoldDuration = getDuration(kf, kfKeyHoldDuration, cfg.HoldDuration)
	cfg.DeliveryTimeout = getDuration(kf, kfKeyDeliveryTimeout, cfg.DeliveryTimeout)

	if v, ok := getInt(kf, kfKeyDragDistance, 1, 200); ok {
		cfg.DragDistance = int16(v)
	}
	if v, ok := getInt(kf, kfKeySurfaceSize, 1, 500); ok {
		cfg.SurfaceSize = uint16(v)
	}

	if str, err := kf.GetString(kfGroupTrigger, kfKeyCorner); err == nil {
		corner := Corner(strings.TrimSpace(str))
		if corner.valid() {
			cfg.Corner = corner
		} else {
			logger.Warningf("invalid %s %q, keep %s", kfKeyCorner, str, cfg.Corner)
		}
	}

	if classes, err := kf.GetStringList(kfGroupTrigger, kfKeyMarkerClasses); err == nil {
		var result []string
		for _, class := range classes {
			class = strings.TrimSpace(class)
			if class != "" {
				result = append(result, strings.ToLower(class))
			}
		}
		if len(result) > 0 {
			cfg.MarkerClasses = result
		}
	}

	return cfg, nil
}

func getDuration(kf *keyfile.KeyFile, key string, def time.Duration) time.Duration {
	str, err := kf.GetString(kfGroupTrigger, key)
	if err != nil {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(str))
	if err != nil || d <= 0 {
		logger.Warningf("invalid %s %q, keep %v", key, str, def)
		return def
	}
	return d
}

func getInt(kf *keyfile.KeyFile, key string, min, max int) (int, bool) {
	str, err := kf.GetString(kfGroupTrigger, key)
	if err != nil {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(str))
	if err != nil || v < min || v > max {
		logger.Warningf("invalid %s %q, must be in [%d, %d]", key, str, min, max)
		return 0, false
	}
	return v, true
}

func (c *Config) String() string {
	return fmt.Sprintf("idle=%v hold=%v delivery=%v drag=%d size=%d corner=%s",
		c.IdleTimeout, c.HoldDuration, c.DeliveryTimeout, c.DragDistance,
		c.SurfaceSize, c.Corner)
}
