package logger

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Init installs the process-wide JSON logger (called once from main).
func Init() {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// With returns a structured logger carrying the given attributes.
func With(args ...any) *slog.Logger {
	return slog.Default().With(args...)
}

func Infof(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...))
}

func Warnf(format string, v ...any) {
	slog.Warn(fmt.Sprintf(format, v...))
}

func Errorf(format string, v ...any) {
	slog.Error(fmt.Sprintf(format, v...))
}

func Debugf(format string, v ...any) {
	slog.Debug(fmt.Sprintf(format, v...))
}

func Fatalf(format string, v ...any) {
	slog.Error(fmt.Sprintf(format, v...), "fatal", true)
	os.Exit(1)
}
