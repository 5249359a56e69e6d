// Package signal turns Ctrl-C into a cooperative build interruption.
//
// The handler cancels its context and runs a caller-supplied callback
// (the build command wires it to the coordinator's interrupt-all) on
// the first SIGINT or SIGTERM. Further signals are drained but have no
// additional effect.
//
// Import rules:
//   - CAN import: std lib only
//   - MUST NOT import: internal packages (to avoid circular dependencies)
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler listens for interrupt signals and translates the first one
// into a context cancellation plus an optional callback.
type Handler struct {
	ctx      context.Context //nolint:containedctx // intentional: handler manages context lifecycle
	cancel   context.CancelFunc
	onFirst  func()
	done     chan struct{}
	once     sync.Once
	stopOnce sync.Once
	sigChan  chan os.Signal
}

// NewHandler starts listening for SIGINT and SIGTERM. onInterrupt runs
// exactly once, from the listener goroutine, when the first signal
// arrives; it may be nil. Always call Stop when done.
func NewHandler(parent context.Context, onInterrupt func()) *Handler {
	ctx, cancel := context.WithCancel(parent)
	h := &Handler{
		ctx:     ctx,
		cancel:  cancel,
		onFirst: onInterrupt,
		done:    make(chan struct{}),
		// Buffer of 1 so signal.Notify never drops a signal while the
		// listener is busy.
		sigChan: make(chan os.Signal, 1),
	}

	signal.Notify(h.sigChan, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()

	return h
}

// Context returns the cancellable context. All interruptible work in
// the command runs under it.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Stop unregisters the handler and cancels its context.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigChan)
		close(h.done)
		h.cancel()
	})
}

// handleSignal reacts to one received signal. Split out so tests can
// drive the handler without delivering real OS signals.
func (h *Handler) handleSignal() {
	h.once.Do(func() {
		if h.onFirst != nil {
			h.onFirst()
		}
		h.cancel()
	})
}

func (h *Handler) listen() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case <-h.done:
			return
		case <-h.sigChan:
			// Only the first signal has effect; later ones are drained
			// so delivery never blocks.
			h.handleSignal()
		}
	}
}
