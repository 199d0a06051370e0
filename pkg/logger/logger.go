// Package logger builds the structured loggers used throughout Ignite. Every
// subsystem — engine, storage, index, compaction, server — takes a
// *zap.SugaredLogger rather than reaching for a package-level global, so
// tests can swap in an observable core and production code gets consistent
// JSON logging out of the box.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production-configured SugaredLogger tagged with the given
// service name. The service name shows up on every log line as the
// "service" field, which lets a single process running both the server and
// an embedded client tell their log lines apart.
func New(service string) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	base, err := cfg.Build()
	if err != nil {
		// zap's production config is validated at compile time; the only way
		// Build fails is an invalid OutputPaths entry, which we don't set.
		base = zap.NewNop()
	}

	return base.With(zap.String("service", service)).Sugar()
}

// NewDevelopment builds a human-readable, colorized logger suitable for the
// CLI binaries and local development. Unlike New, it logs at debug level and
// never writes JSON.
func NewDevelopment(service string) *zap.SugaredLogger {
	base, err := zap.NewDevelopment()
	if err != nil {
		base = zap.NewNop()
	}
	return base.With(zap.String("service", service)).Sugar()
}

// Nop returns a logger that discards everything it's given, for tests that
// don't care about log output but still need to satisfy a *zap.SugaredLogger
// dependency.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
