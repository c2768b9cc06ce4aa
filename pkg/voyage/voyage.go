// Package voyage is a trip-planning client built around a typed back stack.
//
// The screens a user visits are described by immutable configurations
// (package screen). A navigator (package router) keeps them in a stack and
// builds one component (package screens) per entry, bound to a lifecycle
// scope that is torn down when the entry leaves the stack. The root
// controller (package app) maps navigation intents onto the stack and is
// what a host shell drives.
package voyage

import (
	"log/slog"
	"os"

	"github.com/BrandonKowalski/voyage/pkg/voyage/config"
	"github.com/BrandonKowalski/voyage/pkg/voyage/internal"
	"github.com/BrandonKowalski/voyage/pkg/voyage/services"
	"github.com/BrandonKowalski/voyage/pkg/voyage/services/httpapi"
	"github.com/BrandonKowalski/voyage/pkg/voyage/services/memory"
)

// DebugEnvVar forces debug logging for both loggers when set.
const DebugEnvVar = "VOYAGE_DEBUG"

// Options configures logging.
type Options struct {
	LogPath          string // Full path of the log file; parent directories are created
	LogLevel         string // Application logger level (debug, info, warn, error)
	InternalLogLevel string // Navigation core logger level (default: error)
	FileOnly         bool   // Do not log to stdout, for hosts that own the terminal
}

// OptionsFromConfig takes the logging settings from a loaded config.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		LogPath:          cfg.LogPath,
		LogLevel:         cfg.LogLevel,
		InternalLogLevel: cfg.InternalLogLevel,
	}
}

// Init sets up logging. Call it before anything else logs.
func Init(options Options) {
	if options.LogPath != "" {
		internal.SetLogPath(options.LogPath)
	}
	internal.SetFileOnly(options.FileOnly)

	if os.Getenv(DebugEnvVar) != "" {
		internal.SetLogLevel(slog.LevelDebug)
		internal.SetInternalLogLevel(slog.LevelDebug)
		return
	}

	internal.SetRawLogLevel(options.LogLevel)
	if options.InternalLogLevel != "" {
		internal.SetInternalLogLevel(internal.ParseLevel(options.InternalLogLevel))
	} else {
		internal.SetInternalLogLevel(slog.LevelError)
	}
}

// Close flushes and closes the log file.
func Close() {
	internal.CloseLogger()
}

// NewBackend returns the HTTP backend when an API URL is configured and the
// in-memory demo backend otherwise. Federated sign-in always uses the demo
// provider.
func NewBackend(cfg config.Config) services.Backend {
	demo := memory.New()
	demo.Latency = cfg.DemoLatency

	if cfg.APIURL == "" {
		internal.GetLogger().Info("using demo backend", "latency", cfg.DemoLatency)
		return demo.Services()
	}
	internal.GetLogger().Info("using travel API", "url", cfg.APIURL)
	return httpapi.New(cfg.APIURL, cfg.RequestTimeout).Backend(demo.Services().Federated)
}

// GetLogger returns the application logger for structured logging.
func GetLogger() *slog.Logger {
	return internal.GetLogger()
}

// SetLogLevel sets the minimum level of the application logger.
func SetLogLevel(level slog.Level) {
	internal.SetLogLevel(level)
}

// SetRawLogLevel parses and sets the log level from a string (e.g. "debug").
func SetRawLogLevel(level string) {
	internal.SetRawLogLevel(level)
}
