package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// levels maps the -v count to a level; anything past the end is trace.
var levels = []zerolog.Level{zerolog.WarnLevel, zerolog.InfoLevel, zerolog.DebugLevel}

// SetupLogger installs the global logger for a memscope run. Records go to
// stderr, keeping stdout for renderer output, and are appended to the log
// file when it can be opened.
func SetupLogger(verbosity int) {
	level := zerolog.TraceLevel
	if verbosity >= 0 && verbosity < len(levels) {
		level = levels[verbosity]
	}
	zerolog.SetGlobalLevel(level)

	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
		NoColor:    os.Getenv("NO_COLOR") != "",
	}}

	logFile := LogFilePath()
	file, err := openLogFile(logFile)
	if err == nil {
		writers = append(writers, file)
	}

	ctx := zerolog.New(io.MultiWriter(writers...)).With().Timestamp()
	if verbosity >= 2 {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()

	if err != nil {
		log.Warn().Err(err).Str("path", logFile).Msg("Log file unavailable, logging to stderr only")
	}
	log.Debug().Int("verbosity", verbosity).Str("logFile", logFile).Msg("Logger initialized")
}

// GetLogger returns a contextualized logger with the given name
func GetLogger(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// PluginLogger returns the logger of a plugin run against image.
func PluginLogger(plugin, image string) zerolog.Logger {
	return log.With().
		Str("component", "plugin."+plugin).
		Str("image", image).
		Logger()
}

// LogFilePath is MEMSCOPE_LOG_FILE when set, otherwise memscope.log under the
// XDG state directory.
func LogFilePath() string {
	if override := os.Getenv("MEMSCOPE_LOG_FILE"); override != "" {
		return override
	}
	return filepath.Join(xdg.StateHome, "memscope", "memscope.log")
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("cannot create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("cannot open log file: %w", err)
	}
	return file, nil
}

// MustEmbedded panics when an asset compiled into the binary cannot be read.
// That only happens when the embed patterns and the code disagree.
func MustEmbedded(err error, asset string) {
	if err != nil {
		log.Error().Err(err).Str("asset", asset).Msg("Embedded asset missing")
		panic(fmt.Sprintf("embedded %s: %v", asset, err))
	}
}

// LogInvocation records the command line a run was started with.
func LogInvocation(commandPath string, args []string) {
	log.Debug().
		Str("command", commandPath).
		Strs("args", args).
		Str("logFile", LogFilePath()).
		Msg("memscope invoked")
}

// LogOperationStart logs the start of an operation and returns the function
// that logs its completion with the elapsed time.
func LogOperationStart(logger zerolog.Logger, operation string) func() {
	start := time.Now()
	logger.Debug().Str("operation", operation).Msg("Operation started")

	return func() {
		logger.Debug().
			Str("operation", operation).
			Dur("duration", time.Since(start)).
			Msg("Operation completed")
	}
}
