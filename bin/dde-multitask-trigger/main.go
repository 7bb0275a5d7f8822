// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/linuxdeepin/dde-multitask-trigger/common/config"
	"github.com/linuxdeepin/dde-multitask-trigger/common/scale"
	"github.com/linuxdeepin/dde-multitask-trigger/daemon"
	"github.com/linuxdeepin/dde-multitask-trigger/overview"
	"github.com/linuxdeepin/dde-multitask-trigger/surface"
	"github.com/linuxdeepin/dde-multitask-trigger/synthesizer"
	"github.com/linuxdeepin/dde-multitask-trigger/trigger"
	"github.com/linuxdeepin/go-lib/dbusutil"
	"github.com/linuxdeepin/go-lib/gettext"
	"github.com/linuxdeepin/go-lib/log"
	"golang.org/x/xerrors"
)

var logger = log.NewLogger("daemon/dde-multitask-trigger")

var _options struct {
	verbose    bool
	logLevel   string
	daemon     bool
	released   bool
	stop       bool
	timeout    time.Duration
	configFile string
}

// flags that select the role of this invocation, never forwarded to the
// forked daemon
var roleFlags = map[string]bool{
	"daemon":   true,
	"released": true,
	"stop":     true,
}

func toLogLevel(name string) (log.Priority, error) {
	name = strings.ToLower(name)
	logLevel := log.LevelInfo
	var err error
	switch name {
	case "":
		logLevel = log.LevelInfo
	case "error":
		logLevel = log.LevelError
	case "warn":
		logLevel = log.LevelWarning
	case "info":
		logLevel = log.LevelInfo
	case "debug":
		logLevel = log.LevelDebug
	case "no":
		logLevel = log.LevelDisable
	default:
		err = fmt.Errorf("%s is not support", name)
	}
	return logLevel, err
}

func setLogLevel(level log.Priority) {
	loggers := []*log.Logger{
		logger,
		config.GetLogger(),
		scale.GetLogger(),
		synthesizer.GetLogger(),
		surface.GetLogger(),
		overview.GetLogger(),
		trigger.GetLogger(),
		daemon.GetLogger(),
	}
	for _, l := range loggers {
		l.SetLogLevel(level)
	}
}

func init() {
	// -v | -verbose
	const verboseUsage = "Show much more message, shorthand for --loglevel debug."
	flag.BoolVar(&_options.verbose, "v", false, verboseUsage)
	flag.BoolVar(&_options.verbose, "verbose", false, verboseUsage)

	// -l | -loglevel
	const logLevelUsage = "Set log level, possible value is error/warn/info/debug/no, info is default"
	flag.StringVar(&_options.logLevel, "l", "", logLevelUsage)
	flag.StringVar(&_options.logLevel, "loglevel", "", logLevelUsage)

	flag.BoolVar(&_options.daemon, "daemon", false, "Run as the background daemon.")
	flag.BoolVar(&_options.released, "released", false, "Send the released signal to the running daemon.")
	flag.BoolVar(&_options.stop, "stop", false, "Stop the running daemon.")
	flag.DurationVar(&_options.timeout, "timeout", 0, "Quit the daemon after being idle for this long, overrides the config file.")
	flag.StringVar(&_options.configFile, "config", config.DefaultFile(), "Path of the config file.")
}

// forwardArgs returns the flags set on the command line that the forked
// daemon has to see as well.
func forwardArgs(fs *flag.FlagSet) []string {
	var args []string
	fs.Visit(func(f *flag.Flag) {
		if roleFlags[f.Name] {
			return
		}
		args = append(args, fmt.Sprintf("-%s=%s", f.Name, f.Value.String()))
	})
	return args
}

func runClient() error {
	service, err := dbusutil.NewSessionService()
	if err != nil {
		return err
	}
	messenger := daemon.NewBusMessenger(service)

	switch {
	case _options.stop:
		err = messenger.Stop()
		if xerrors.Is(err, daemon.ErrNoDaemon) {
			logger.Info("no daemon is running")
			return nil
		}
		return err

	case _options.released:
		if !daemon.SignalDaemon(messenger, daemon.SignalReleased) {
			logger.Info("no daemon is running, ignore released")
		}
		return nil
	}

	if daemon.SignalDaemon(messenger, daemon.SignalPressed) {
		return nil
	}
	logger.Debug("no daemon is running, fork one")
	return daemon.ForkDaemon(forwardArgs(flag.CommandLine))
}

func main() {
	logger.SetLogLevel(log.LevelInfo)
	flag.Parse()

	gettext.InitI18n()
	gettext.Textdomain("dde-multitask-trigger")

	if _options.verbose {
		_options.logLevel = "debug"
	}
	logLevel, err := toLogLevel(_options.logLevel)
	if err != nil {
		logger.Warning("failed to parse loglevel:", err)
		os.Exit(1)
	}
	setLogLevel(logLevel)

	if !_options.daemon {
		err = runClient()
		if err != nil {
			logger.Warning(err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(_options.configFile)
	if err != nil {
		logger.Warning("failed to load config:", err)
		cfg = config.Default()
	}
	logger.Debug("config:", cfg)

	err = daemon.RunDaemon(daemon.RunOptions{
		Config:      cfg,
		ConfigFile:  _options.configFile,
		Initial:     daemon.SignalPressed,
		IdleTimeout: _options.timeout,
	})
	if err != nil {
		logger.Warning(err)
		if xerrors.Is(err, daemon.ErrFatalSetup) {
			os.Exit(1)
		}
	}
}
