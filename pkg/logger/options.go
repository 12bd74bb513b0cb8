package logger

import (
	"log/slog"
	"strings"
	"time"

	"github.com/fatih/color"
)

var DefaultOptions = &Options{
	Level:      slog.LevelDebug,
	TimeFormat: time.DateTime,
	AddSource:  true,
	MsgPrefix:  color.HiWhiteString("| "),
	NoColor:    false,
}

type Options struct {
	// Level reports the minimum level to log.
	// If nil, the Handler uses [slog.LevelInfo].
	Level slog.Leveler

	// TimeFormat is the time format.
	TimeFormat string

	// AddSource prints file:line of the log call.
	AddSource bool

	// MsgPrefix to show prefix before message, default: white colored "| ".
	MsgPrefix string

	// NoColor disables color, default: false.
	NoColor bool
}

// NewOptions builds Options from the textual level used in configuration.
// Unknown levels fall back to info.
func NewOptions(level string, noColor bool) *Options {
	opts := *DefaultOptions
	opts.NoColor = noColor

	switch strings.ToLower(level) {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn", "warning":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	return &opts
}
