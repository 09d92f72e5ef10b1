package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	slogmulti "github.com/samber/slog-multi"
)

// Options selects the log level and destinations.
type Options struct {
	Level string
	// Dir, when set, receives a timestamped JSON log file in addition to the console.
	Dir string
	// Console defaults to os.Stderr; stdout is reserved for command output.
	Console io.Writer
}

// Setup installs the default slog logger described by opts. The returned
// func closes the log file, if one was opened.
func Setup(opts Options) (func() error, error) {
	level := ParseLevel(opts.Level)

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	consoleHandler := tint.NewHandler(console, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    console != os.Stderr && console != os.Stdout,
	})

	if opts.Dir == "" {
		slog.SetDefault(slog.New(consoleHandler))
		return func() error { return nil }, nil
	}

	logFile, err := openLogFile(os.ExpandEnv(opts.Dir), time.Now())
	if err != nil {
		return nil, err
	}

	fileHandler := slog.NewJSONHandler(logFile, &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	})
	slog.SetDefault(slog.New(slogmulti.Fanout(consoleHandler, fileHandler)))

	slog.Debug("logging to file", "path", logFile.Name())
	return logFile.Close, nil
}

func openLogFile(dir string, now time.Time) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log output directory: %w", err)
	}

	name := fmt.Sprintf("wadlumper_%s.log", now.Format("20060102_150405"))
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	return f, nil
}

// ParseLevel maps a configured level name to a slog.Level. Besides slog's
// own names (including offsets like "warn+2") it accepts "trace" and
// "fatal"; anything unrecognized is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return slog.LevelDebug
	case "fatal":
		return slog.LevelError
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
