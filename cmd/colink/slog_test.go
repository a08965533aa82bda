package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/lmittmann/tint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrimSource(t *testing.T) {
	tests := []struct {
		name string
		file string
		want string
	}{
		{"module dir", "/home/dev/colink-venture/service/pages.go", "service/pages.go"},
		{"gopath", "/root/go/src/example.com/pkg/file.go", "example.com/pkg/file.go"},
		{"src dir", "/usr/local/src/thing/file.go", "thing/file.go"},
		{"unknown", "/opt/file.go", "/opt/file.go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, trimSource(tt.file, "/colink-venture/"))
		})
	}
}

func TestLogOptionsFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FILE", "")
	opts, err := logOptionsFromEnv()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, opts.level)
	assert.Empty(t, opts.file)

	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FILE", "/var/log/colink.log")
	opts, err = logOptionsFromEnv()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, opts.level)
	assert.Equal(t, "/var/log/colink.log", opts.file)

	t.Setenv("LOG_LEVEL", "loud")
	_, err = logOptionsFromEnv()
	assert.ErrorContains(t, err, "invalid LOG_LEVEL")
}

func TestNewLogHandler_JSONHonoursLevel(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := slog.New(newLogHandler(logOptions{level: slog.LevelWarn}, &stdout, &stderr))

	logger.Info("dropped")
	logger.Warn("kept", "tab", "t1")

	assert.Empty(t, stdout.String())
	var line map[string]any
	require.NoError(t, json.Unmarshal(stderr.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "t1", line["tab"])
}

func TestNewLogHandler_WritesLogFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "colink.log")
	var stdout, stderr bytes.Buffer
	logger := slog.New(newLogHandler(logOptions{level: slog.LevelInfo, file: file}, &stdout, &stderr))

	logger.Info("to both")

	assert.Contains(t, stderr.String(), "to both")
	assert.FileExists(t, file)
}

func TestNewLogHandler_DebugIsText(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := slog.New(newLogHandler(logOptions{level: slog.LevelDebug}, &stdout, &stderr))

	logger.Debug("visible", "error", errors.New("boom"))

	assert.Contains(t, stdout.String(), "visible")
	assert.Contains(t, stdout.String(), "boom")
	assert.Empty(t, stderr.String())
}

func TestDebugAttrs(t *testing.T) {
	replace := debugAttrs("/colink-venture/")

	src := &slog.Source{File: "/home/dev/colink-venture/cmd/colink/main.go", Line: 3}
	replace(nil, slog.Any(slog.SourceKey, src))
	assert.Equal(t, "cmd/colink/main.go", src.File)

	got := replace(nil, slog.Any("cause", errors.New("boom")))
	assert.Equal(t, "cause", got.Key)
	assert.Equal(t, tint.Err(errors.New("boom")).Value.String(), got.Value.String())

	plain := slog.String("k", "v")
	assert.Equal(t, plain, replace(nil, plain))
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	assert.True(t, names["serve"])
	assert.True(t, names["migrate"])
	assert.True(t, names["prune-tabs"])
	assert.NotNil(t, rootCmd.PersistentPreRunE, "logging is configured before every command")
}
