package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"runtime/debug"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for LOG_FILE.
const (
	logFileMaxSizeMB  = 50
	logFileMaxBackups = 5
	logFileMaxAgeDays = 14
)

// logOptions is what the environment asks of the default logger.
type logOptions struct {
	level slog.Level
	file  string
}

func logOptionsFromEnv() (logOptions, error) {
	opts := logOptions{level: slog.LevelInfo, file: os.Getenv("LOG_FILE")}
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if err := opts.level.UnmarshalText([]byte(raw)); err != nil {
			return opts, fmt.Errorf("invalid LOG_LEVEL %q: %w", raw, err)
		}
	}
	return opts, nil
}

// setupLogging installs the default logger before any command runs.
func setupLogging(stderr io.Writer) error {
	opts, err := logOptionsFromEnv()
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(newLogHandler(opts, os.Stdout, stderr)))
	slog.Debug("logger configured", "level", opts.level.String(), "file", opts.file)
	return nil
}

// newLogHandler picks colored text with source locations for debug runs and
// JSON otherwise. JSON also goes to a rotated LOG_FILE when one is set.
func newLogHandler(opts logOptions, stdout, stderr io.Writer) slog.Handler {
	if opts.level <= slog.LevelDebug {
		return tint.NewHandler(stdout, &tint.Options{
			Level:       opts.level,
			TimeFormat:  time.TimeOnly,
			AddSource:   true,
			ReplaceAttr: debugAttrs(moduleDir()),
		})
	}

	out := stderr
	if opts.file != "" {
		out = io.MultiWriter(stderr, &lumberjack.Logger{
			Filename:   opts.file,
			MaxSize:    logFileMaxSizeMB,
			MaxBackups: logFileMaxBackups,
			MaxAge:     logFileMaxAgeDays,
			Compress:   true,
		})
	}
	return slog.NewJSONHandler(out, &slog.HandlerOptions{Level: opts.level})
}

// debugAttrs shortens source paths to be relative to the module directory
// and highlights errors.
func debugAttrs(dir string) func([]string, slog.Attr) slog.Attr {
	return func(_ []string, a slog.Attr) slog.Attr {
		if src, ok := a.Value.Any().(*slog.Source); ok && a.Key == slog.SourceKey {
			src.File = trimSource(src.File, dir)
			return a
		}
		if err, ok := a.Value.Any().(error); ok {
			colored := tint.Err(err)
			colored.Key = a.Key
			return colored
		}
		return a
	}
}

// moduleDir is the last element of the main module path wrapped in
// slashes, e.g. "/colink-venture/".
func moduleDir() string {
	name := "colink-venture"
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Path != "" {
		name = path.Base(info.Main.Path)
	} else if wd, err := os.Getwd(); err == nil {
		name = path.Base(wd)
	}
	return "/" + name + "/"
}

func trimSource(file, dir string) string {
	if _, rel, ok := strings.Cut(file, dir); ok {
		return rel
	}
	for _, marker := range []string{"/go/src/", "/src/"} {
		if i := strings.LastIndex(file, marker); i >= 0 {
			return file[i+len(marker):]
		}
	}
	return file
}
