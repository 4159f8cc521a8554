package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the process-wide root logger. Components derive child loggers
// from it instead of configuring their own outputs.
var Logger zerolog.Logger

// Config holds logging configuration
type Config struct {
	// Level is the minimum severity emitted: debug, info, warn, or error.
	// Unrecognized or empty values fall back to info.
	Level string

	// Debug forces debug level regardless of Level and annotates every
	// line with its call site. Wired to the service's debug flag.
	Debug bool

	// JSON emits one JSON object per line for log aggregation; otherwise a
	// human-readable console format is used.
	JSON bool

	// Output defaults to stdout
	Output io.Writer
}

// Init initializes the global logger. Components created before Init log
// nowhere, so the service calls it first thing in main.
func Init(cfg Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if cfg.Debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}
	if !cfg.JSON {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	ctx := zerolog.New(output).With().Timestamp()
	if cfg.Debug {
		ctx = ctx.Caller()
	}
	Logger = ctx.Logger()
}

// WithComponent creates a child logger carrying a component field, one per
// service component (api, executor, sandbox, runtime, supervisor)
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// WithJobID creates a child logger carrying the job_id field so one job's
// lifecycle can be traced across components
func WithJobID(jobID string) zerolog.Logger {
	return Logger.With().Str("job_id", jobID).Logger()
}

// WithRuntime creates a child logger carrying language and version fields
func WithRuntime(language, version string) zerolog.Logger {
	return Logger.With().Str("language", language).Str("version", version).Logger()
}

// Helper functions for common logging patterns
func Info(msg string) {
	Logger.Info().Msg(msg)
}

func Debug(msg string) {
	Logger.Debug().Msg(msg)
}

func Warn(msg string) {
	Logger.Warn().Msg(msg)
}

func Error(msg string) {
	Logger.Error().Msg(msg)
}

func Fatal(msg string) {
	Logger.Fatal().Msg(msg)
}
