// Package logger configures the process-wide zerolog logger and carries request loggers through contexts.
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is the process-wide logger. Init replaces it.
var Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Config controls level, output format and timestamps.
type Config struct {
	Level        string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format       string `json:"format" yaml:"format"` // json or console
	TimeFormat   string `json:"time_format" yaml:"time_format"`
	ReportCaller bool   `json:"report_caller" yaml:"report_caller"`
}

// Init builds the global logger from cfg and writes to os.Stderr.
func Init(cfg Config) {
	InitWithWriter(cfg, os.Stderr)
}

// InitWithWriter builds the global logger from cfg and writes to out.
func InitWithWriter(cfg Config, out io.Writer) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.TimeFormat == "" {
		zerolog.TimeFieldFormat = time.RFC3339
	} else {
		zerolog.TimeFieldFormat = cfg.TimeFormat
	}

	if cfg.Format == "console" || cfg.Format == "pretty" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: zerolog.TimeFieldFormat}
	}

	builder := zerolog.New(out).Level(level).With().Timestamp()
	if cfg.ReportCaller {
		builder = builder.Caller()
	}

	Logger = builder.Logger()
	log.Logger = Logger
}

// Debug starts a debug event on the global logger.
func Debug() *zerolog.Event { return Logger.Debug() }

// Info starts an info event on the global logger.
func Info() *zerolog.Event { return Logger.Info() }

// Warn starts a warn event on the global logger.
func Warn() *zerolog.Event { return Logger.Warn() }

// Error starts an error event on the global logger.
func Error() *zerolog.Event { return Logger.Error() }

// WithContext stores l in ctx.
func WithContext(ctx context.Context, l zerolog.Logger) context.Context {
	return l.WithContext(ctx)
}

// FromContext returns the logger stored in ctx, or the global logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
			return l
		}
	}
	return &Logger
}
