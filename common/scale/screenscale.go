// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scale works out the display scale factor, so that on-screen
// sizes given in logical pixels stay the same physical size on HiDPI
// outputs.
package scale

import (
	"math"
	"path/filepath"

	"github.com/linuxdeepin/go-lib/keyfile"
	"github.com/linuxdeepin/go-lib/log"
	"github.com/linuxdeepin/go-lib/xdg/basedir"
	x "github.com/linuxdeepin/go-x11-client"
	"github.com/linuxdeepin/go-x11-client/ext/randr"
	"golang.org/x/xerrors"
)

var logger = log.NewLogger("daemon/multitask-trigger/scale")

func GetLogger() *log.Logger {
	return logger
}

const (
	minFactor  = 1.0
	maxFactor  = 3.0
	factorStep = 0.25

	kfGroupForce = "ForceScaleFactor"
	kfKeyScale   = "scale"
)

type monitor struct {
	width, height     uint16
	mmWidth, mmHeight uint32
}

// Factor returns the factor forced by the user, or else the smallest
// recommended factor over all connected outputs. Any failure yields 1.
func Factor(conn *x.Conn) float64 {
	f, err := forcedFactor(forcedFactorFile())
	if err == nil {
		return f
	}

	monitors, err := connectedMonitors(conn)
	if err != nil {
		logger.Debug("failed to list monitors:", err)
		return minFactor
	}
	return smallestFactor(monitors)
}

func forcedFactorFile() string {
	return filepath.Join(basedir.GetUserConfigDir(), "deepin/force-scale-factor.ini")
}

func forcedFactor(filename string) (float64, error) {
	kf := keyfile.NewKeyFile()
	err := kf.LoadFromFile(filename)
	if err != nil {
		return 0, err
	}
	f, err := kf.GetFloat64(kfGroupForce, kfKeyScale)
	if err != nil {
		return 0, err
	}
	if f < minFactor || f > maxFactor {
		return 0, xerrors.Errorf("forced scale factor %v out of range", f)
	}
	return f, nil
}

func connectedMonitors(conn *x.Conn) ([]monitor, error) {
	version, err := randr.QueryVersion(conn, randr.MajorVersion, randr.MinorVersion).Reply(conn)
	if err != nil {
		return nil, err
	}
	if version.ServerMajorVersion < 1 ||
		(version.ServerMajorVersion == 1 && version.ServerMinorVersion < 2) {
		return nil, xerrors.Errorf("randr %d.%d is older than 1.2",
			version.ServerMajorVersion, version.ServerMinorVersion)
	}

	root := conn.GetDefaultScreen().Root
	resources, err := randr.GetScreenResources(conn, root).Reply(conn)
	if err != nil {
		return nil, err
	}
	ts := resources.ConfigTimestamp

	var monitors []monitor
	for _, output := range resources.Outputs {
		outputInfo, err := randr.GetOutputInfo(conn, output, ts).Reply(conn)
		if err != nil {
			return nil, xerrors.Errorf("get output %v info: %w", output, err)
		}
		if outputInfo.Connection != randr.ConnectionConnected || outputInfo.Crtc == 0 {
			continue
		}
		crtcInfo, err := randr.GetCrtcInfo(conn, outputInfo.Crtc, ts).Reply(conn)
		if err != nil {
			return nil, xerrors.Errorf("get crtc %v info: %w", outputInfo.Crtc, err)
		}
		monitors = append(monitors, monitor{
			width:    crtcInfo.Width,
			height:   crtcInfo.Height,
			mmWidth:  outputInfo.MmWidth,
			mmHeight: outputInfo.MmHeight,
		})
	}
	return monitors, nil
}

func smallestFactor(monitors []monitor) float64 {
	if len(monitors) == 0 {
		return minFactor
	}
	result := maxFactor
	for _, m := range monitors {
		f := recommendedFactor(float64(m.width), float64(m.height),
			float64(m.mmWidth), float64(m.mmHeight))
		result = math.Min(result, f)
	}
	return result
}

// recommendedFactor compares the pixel density along the diagonal with a
// 1920x1080 panel of 477mm x 268mm, corrected for the size of the panel.
func recommendedFactor(widthPx, heightPx, widthMm, heightMm float64) float64 {
	if widthMm == 0 || heightMm == 0 {
		return minFactor
	}

	diagPx := math.Hypot(widthPx, heightPx)
	diagMm := math.Hypot(widthMm, heightMm)
	stdDiagPx := math.Hypot(1920, 1080)
	stdDiagMm := math.Hypot(477, 268)

	const sizeCorrection = 0.00158
	fix := (diagMm - stdDiagMm) * (diagPx / stdDiagPx) * sizeCorrection
	return roundToStep((diagPx/diagMm)/(stdDiagPx/stdDiagMm) + fix)
}

// roundToStep clamps f to [minFactor, maxFactor] and rounds it to the
// nearest multiple of factorStep, halves rounding up.
func roundToStep(f float64) float64 {
	if f <= minFactor {
		return minFactor
	}
	if f >= maxFactor {
		return maxFactor
	}
	lower := minFactor + math.Floor((f-minFactor)/factorStep)*factorStep
	if f-lower >= factorStep/2 {
		return lower + factorStep
	}
	return lower
}

// Size scales a length in logical pixels, never returning less than size.
func Size(size uint16, factor float64) uint16 {
	if factor <= minFactor {
		return size
	}
	return uint16(math.Round(float64(size) * factor))
}
