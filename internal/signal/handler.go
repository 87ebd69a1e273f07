// Package signal turns SIGINT and SIGTERM into context cancellation for the
// semantic-diff CLI.
//
// Notify installs the handler and returns a context that is cancelled with
// ErrInterrupted as its cause when a signal arrives. Interrupted tells a
// signal apart from ordinary cancellation so the caller can pick exit code 130.
package signal

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
)

// ErrInterrupted is the cancellation cause recorded when a signal is received.
var ErrInterrupted = errors.New("interrupted by signal")

// Notify registers SIGINT and SIGTERM handlers bound to a child of parent.
// When a signal is received, onInterrupt (if non-nil) is called with it, then
// the context is cancelled. Call the returned stop function to release the
// handler; it is safe to call more than once.
//
// Example usage:
//
//	ctx, stop := signal.Notify(context.Background(), func(s os.Signal) {
//	    logging.Warn("Received " + s.String() + ", stopping")
//	})
//	defer stop()
func Notify(parent context.Context, onInterrupt func(os.Signal)) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case s := <-sigCh:
			if onInterrupt != nil {
				onInterrupt(s)
			}
			cancel(ErrInterrupted)
		case <-ctx.Done():
		}
	}()

	return ctx, func() { cancel(context.Canceled) }
}

// Interrupted reports whether ctx was cancelled by a signal.
func Interrupted(ctx context.Context) bool {
	return errors.Is(context.Cause(ctx), ErrInterrupted)
}
