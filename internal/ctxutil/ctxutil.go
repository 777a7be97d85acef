// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
)

// LoggerKey is the context key for the request logger.
type LoggerKey struct{}

var discard = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

// WithLogger returns a context carrying the logger.
func WithLogger(ctx context.Context, log logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, LoggerKey{}, log)
}

// Logger returns the logger from context, or a discarding logger if none was set.
func Logger(ctx context.Context) logrus.FieldLogger {
	if v, ok := ctx.Value(LoggerKey{}).(logrus.FieldLogger); ok && v != nil {
		return v
	}
	return discard
}
