package logger

import (
	"bytes"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Saifkhan77806/LoveTown/internal/config"
)

// capture swaps os.Stdout for a pipe while f runs.
func capture(t *testing.T, f func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	stdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = stdout }()

	f()
	require.NoError(t, w.Close())

	var buf bytes.Buffer
	_, err = buf.ReadFrom(r)
	require.NoError(t, err)
	_ = r.Close()
	return buf.String()
}

func logCfg(l config.LogConfig) *config.Config {
	return &config.Config{Log: l}
}

func TestTextFormat(t *testing.T) {
	out := capture(t, func() {
		InitFromConfig(logCfg(config.LogConfig{Level: "debug", Format: "text", Component: "hub"}))
		Info("room joined", "room", "a-b")
	})

	assert.Contains(t, out, "room joined")
	assert.Contains(t, out, "component=hub")
	assert.Contains(t, out, "room=a-b")
	assert.Regexp(t, `time="?\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}`, out)
}

func TestJSONFormat(t *testing.T) {
	out := capture(t, func() {
		InitFromConfig(logCfg(config.LogConfig{Level: "info", Format: "JSON", Component: "scheduler"}))
		Info("job fired", "job", "unfreeze:a")
	})

	assert.Contains(t, out, `"msg":"job fired"`)
	assert.Contains(t, out, `"component":"scheduler"`)
	assert.Contains(t, out, `"job":"unfreeze:a"`)
}

func TestLevelFilter(t *testing.T) {
	out := capture(t, func() {
		InitFromConfig(logCfg(config.LogConfig{Level: "error", Format: "text"}))
		Info("dropped")
		Error("kept")
	})

	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept")
}

func TestNilConfigKeepsPrevious(t *testing.T) {
	out := capture(t, func() {
		InitFromConfig(logCfg(config.LogConfig{Level: "warn", Format: "text"}))
		InitFromConfig(nil)
		Info("hidden at warn")
		Warn("visible")
	})

	assert.NotContains(t, out, "hidden at warn")
	assert.Contains(t, out, "visible")
}

func TestDomainHelpers(t *testing.T) {
	out := capture(t, func() {
		InitFromConfig(logCfg(config.LogConfig{Level: "debug", Format: "text"}))
		ForUser(nil, "a@example.com").Info("unpinned")
		ForRoom(nil, "a@example.com-b@example.com").Info("joined")
	})

	assert.Contains(t, out, "user=a@example.com")
	assert.Contains(t, out, "room=a@example.com-b@example.com")
}

func TestForUserKeepsBase(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil)).With("component", "match")

	ForUser(base, "a@example.com").Info("scan")

	assert.Contains(t, buf.String(), `"component":"match"`)
	assert.Contains(t, buf.String(), `"user":"a@example.com"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, parseLevel(" Warning "))
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}
