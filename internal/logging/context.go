// Package logging provides named logging contexts for mason.
//
// Every piece of work in a build runs on behalf of some task, possibly on
// a goroutine the task spawned. A Context carries the name of that work
// plus a zerolog logger tagged with it, so log output is attributed to
// the right task even when several tasks run concurrently.
//
// Contexts travel through context.Context rather than being recovered
// from thread identity: the code that starts a goroutine attaches the
// Context, and resolution never fails — FromContext falls back to a
// shared placeholder so logging is safe from any goroutine at any time.
//
// Import rules:
//   - CAN import: std lib, zerolog
//   - MUST NOT import: other internal packages
package logging

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// PlaceholderName is the name of the context returned when no context
// is registered for the calling goroutine.
const PlaceholderName = "?"

// Context is a named logging sink. The name identifies the task (or
// spawned worker) the calling code runs on behalf of, and every message
// logged through the context carries it as a structured field.
type Context struct {
	name   string
	logger zerolog.Logger
}

// New creates a context named after a task. All events logged through it
// carry a "task" field with the given name.
func New(name string, logger zerolog.Logger) *Context {
	return &Context{
		name:   name,
		logger: logger.With().Str("task", name).Logger(),
	}
}

// Thread derives a context for a worker goroutine spawned by the task
// that owns c. The derived context is identified by the worker's name
// and additionally carries it as a "thread" field, so output from
// parallel workers remains distinguishable from the task's own output.
func (c *Context) Thread(name string) *Context {
	return &Context{
		name:   name,
		logger: c.logger.With().Str("thread", name).Logger(),
	}
}

// Name returns the context's identity, as passed to New or Thread.
func (c *Context) Name() string {
	return c.name
}

// Logger returns the underlying zerolog logger with the context's
// fields applied.
func (c *Context) Logger() zerolog.Logger {
	return c.logger
}

// Trace starts a trace-level event.
func (c *Context) Trace() *zerolog.Event { return c.logger.Trace() }

// Debug starts a debug-level event.
func (c *Context) Debug() *zerolog.Event { return c.logger.Debug() }

// Info starts an info-level event.
func (c *Context) Info() *zerolog.Event { return c.logger.Info() }

// Warn starts a warn-level event.
func (c *Context) Warn() *zerolog.Event { return c.logger.Warn() }

// Error starts an error-level event.
func (c *Context) Error() *zerolog.Event { return c.logger.Error() }

// Placeholder returns a usable context for goroutines nothing registered
// a context for. It logs through the global zerolog logger under the
// name "?", so output is never lost, just unattributed.
func Placeholder() *Context {
	return New(PlaceholderName, log.Logger)
}

type contextKey struct{}

// WithContext returns a copy of ctx carrying cx. Work started with the
// returned context logs through cx when it resolves via FromContext.
func WithContext(ctx context.Context, cx *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, cx)
}

// Lookup returns the context attached to ctx, if any.
func Lookup(ctx context.Context) (*Context, bool) {
	cx, ok := ctx.Value(contextKey{}).(*Context)
	return cx, ok && cx != nil
}

// FromContext resolves the logging context for the calling goroutine.
// It never fails: if nothing was attached, it returns the shared
// placeholder.
func FromContext(ctx context.Context) *Context {
	if cx, ok := Lookup(ctx); ok {
		return cx
	}
	return Placeholder()
}
