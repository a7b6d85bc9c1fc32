// Package logger holds the process-wide slog logger and the attribute
// helpers services use to tag lines with a user or a chat room.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Saifkhan77806/LoveTown/internal/config"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

const textTimeLayout = "2006-01-02 15:04:05"

type Config struct {
	Level      string
	Format     Format
	Component  string
	WithSource bool
}

var (
	current atomic.Pointer[slog.Logger]

	settingsMu sync.Mutex
	settings   = Config{Level: "info", Format: FormatText}
)

// InitFromConfig initializes global logger from app config.
func InitFromConfig(c *config.Config) {
	if c == nil {
		Init(nil)
		return
	}
	Init(&Config{
		Level:      c.Log.Level,
		Format:     Format(strings.ToLower(c.Log.Format)),
		Component:  c.Log.Component,
		WithSource: c.Log.Source,
	})
}

// Init rebuilds the global logger. A nil config reuses the last settings,
// picking up a swapped os.Stdout.
func Init(c *Config) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	if c != nil {
		settings = *c
	}
	current.Store(build(settings, os.Stdout))
}

func build(c Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(c.Level), AddSource: c.WithSource}

	var h slog.Handler
	if c.Format == FormatJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		opts.ReplaceAttr = shortTime
		h = slog.NewTextHandler(w, opts)
	}

	l := slog.New(h)
	if c.Component != "" {
		l = l.With("component", c.Component)
	}
	return l
}

func shortTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
		return slog.String(slog.TimeKey, a.Value.Time().Format(textTimeLayout))
	}
	return a
}

// L returns the global logger, building the default one on first use.
func L() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	Init(nil)
	return current.Load()
}

func With(args ...any) *slog.Logger { return L().With(args...) }

// ForUser tags base (the global logger when nil) with the user identity.
func ForUser(base *slog.Logger, email string) *slog.Logger {
	return orGlobal(base).With("user", email)
}

// ForRoom tags base (the global logger when nil) with a chat room id.
func ForRoom(base *slog.Logger, roomID string) *slog.Logger {
	return orGlobal(base).With("room", roomID)
}

func orGlobal(l *slog.Logger) *slog.Logger {
	if l == nil {
		return L()
	}
	return l
}

// Discard drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func Debug(msg string, args ...any) { L().Debug(msg, args...) }
func Info(msg string, args ...any)  { L().Info(msg, args...) }
func Warn(msg string, args ...any)  { L().Warn(msg, args...) }
func Error(msg string, args ...any) { L().Error(msg, args...) }

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
