package logger

import (
	"log/slog"
	"strings"
)

// Config represents logger configuration
type Config struct {
	Level       string // "debug", "info", "warn", "error"
	Format      string // "json", "text"
	ServiceName string
	Version     string
	Environment string
	AddSource   bool
}

// ForEnvironment returns the defaults for a deployment environment. Production
// and staging log JSON at info, tests log warnings only, anything else is
// treated as a developer machine.
func ForEnvironment(env string) Config {
	c := Config{
		ServiceName: DefaultServiceName,
		Version:     DefaultVersion,
		Environment: env,
	}
	switch strings.ToLower(env) {
	case EnvironmentProduction, "production", EnvironmentStaging:
		c.Level, c.Format = LogLevelInfo, LogFormatJSON
	case EnvironmentTest:
		c.Level, c.Format = LogLevelWarn, LogFormatText
	default:
		c.Level, c.Format, c.AddSource = LogLevelDebug, LogFormatText, true
	}
	return c
}

// Override replaces level and format with explicit settings; empty values
// keep the current ones
func (c Config) Override(level, format string) Config {
	if level != "" {
		c.Level = level
	}
	if format != "" {
		c.Format = format
	}
	return c
}

// LogLevel converts string level to slog.Level
func (c Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn, LogLevelWarning:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsJSON returns true if format is JSON
func (c Config) IsJSON() bool {
	return strings.ToLower(c.Format) == LogFormatJSON
}

// BaseAttributes returns common attributes to add to all logs
func (c Config) BaseAttributes() []slog.Attr {
	return []slog.Attr{
		slog.String(AttrKeyService, c.ServiceName),
		slog.String(AttrKeyVersion, c.Version),
		slog.String(AttrKeyEnvironment, c.Environment),
	}
}
