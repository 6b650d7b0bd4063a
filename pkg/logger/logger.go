// Package logger builds the structured logger used throughout minidb. It
// wraps zap's production configuration with a "service" field so log lines
// from an embedding application can be told apart from minidb's own.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a *zap.SugaredLogger for the given service name. Every entry
// carries a "service" field so that log lines from multiple minidb
// instances embedded in the same process can be told apart.
func New(service string) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	log, err := cfg.Build()
	if err != nil {
		// Fall back to a no-op logger rather than failing database
		// construction over a logging misconfiguration.
		log = zap.NewNop()
	}

	return log.Sugar().With("service", service)
}

// Noop returns a logger that discards everything. Useful for tests that
// don't want log output cluttering `go test -v`.
func Noop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
