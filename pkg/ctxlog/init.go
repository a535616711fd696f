// Package ctxlog provides a zap logger that carries request-scoped values
// taken from a context.Context.
package ctxlog

import (
	"context"
	"os"
	"path"

	"go.uber.org/zap"
)

type correlationIDType int

const (
	requestIDKey correlationIDType = iota
	digestKey
)

var logger *zap.Logger

// Config defines logger configuration parameters.
type Config struct {
	Level            string   `json:"level"`
	Format           string   `json:"encoding"`
	OutputPaths      []string `json:"outputPaths"`
	ErrorOutputPaths []string `json:"errorOutputPaths"`
}

// BuildLogger builds the `logger` with the given configurations.
func BuildLogger(c Config) (err error) {

	cfg := zap.NewProductionConfig()
	if c.Format != "" {
		cfg.Encoding = c.Format
	}
	if len(c.OutputPaths) > 0 {
		cfg.OutputPaths = c.OutputPaths
	}
	if len(c.ErrorOutputPaths) > 0 {
		cfg.ErrorOutputPaths = c.ErrorOutputPaths
	}

	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if c.Level != "" {
		lvl, perr := zap.ParseAtomicLevel(c.Level)
		if perr != nil {
			return perr
		}
		cfg.Level = lvl
	}

	l, err := cfg.Build(
		zap.Fields(zap.Int("pid", os.Getpid()), zap.String("exe", path.Base(os.Args[0]))),
	)
	if err != nil {
		return
	}
	logger = l
	return
}

func init() {
	// a fallback/root logger for events without context
	logger, _ = zap.NewProduction(
		zap.Fields(zap.Int("pid", os.Getpid()), zap.String("exe", path.Base(os.Args[0]))),
	)
}

// WithRqID returns a context which knows its request ID
func WithRqID(ctx context.Context, rqID string) context.Context {
	return context.WithValue(ctx, requestIDKey, rqID)
}

// WithDigest returns a context which knows the digest of the viewer
// configuration being served.
func WithDigest(ctx context.Context, digest string) context.Context {
	return context.WithValue(ctx, digestKey, digest)
}

// RqID returns the request ID carried by `ctx`, or an empty string.
func RqID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Logger returns a zap logger with as much context as possible
func Logger(ctx context.Context) *zap.Logger {
	newLogger := logger
	if ctx != nil {
		if ctxRqID, ok := ctx.Value(requestIDKey).(string); ok {
			newLogger = newLogger.With(zap.String("requestID", ctxRqID))
		}
		if ctxDigest, ok := ctx.Value(digestKey).(string); ok {
			newLogger = newLogger.With(zap.String("digest", ctxDigest))
		}
	}
	return newLogger
}
