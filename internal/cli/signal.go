package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
)

// InterruptHandler cancels a running command on SIGINT or SIGTERM.
// The command returns context.Canceled, which maps to exit code 130.
type InterruptHandler struct {
	cancel      context.CancelFunc
	sigChan     chan os.Signal
	done        chan struct{}
	stopOnce    sync.Once
	output      io.Writer
	interrupted atomic.Bool
}

// NewInterruptHandler creates a new interrupt handler
func NewInterruptHandler(cancel context.CancelFunc, output io.Writer) *InterruptHandler {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	return &InterruptHandler{
		cancel:  cancel,
		sigChan: sigChan,
		done:    make(chan struct{}),
		output:  output,
	}
}

// Start starts the interrupt handler in a goroutine
func (h *InterruptHandler) Start() {
	go h.handleSignals()
}

func (h *InterruptHandler) handleSignals() {
	select {
	case <-h.sigChan:
		h.interrupted.Store(true)
		fmt.Fprintln(h.output, "\n\n⚠️  Received interrupt signal, stopping...")
		h.cancel()
	case <-h.done:
	}
}

// IsInterrupted returns whether the handler has been interrupted
func (h *InterruptHandler) IsInterrupted() bool {
	return h.interrupted.Load()
}

// Stop stops the signal handling. It is safe to call more than once.
func (h *InterruptHandler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigChan)
		close(h.done)
	})
}
