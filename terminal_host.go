package main

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/term"
)

// TerminalHost reads raw stdin and feeds key presses into terminalKeys.
// Ctrl+C arrives as a byte in raw mode and is reported on Interrupt.
type TerminalHost struct {
	keys         *terminalKeys
	stopCh       chan struct{}
	interrupt    chan struct{}
	stopped      sync.Once
	interrupted  sync.Once
	fd           int
	oldTermState *term.State
}

func NewTerminalHost(keys *terminalKeys) *TerminalHost {
	return &TerminalHost{
		keys:      keys,
		stopCh:    make(chan struct{}),
		interrupt: make(chan struct{}),
	}
}

// Start puts stdin in raw mode and begins reading in a goroutine.
// Call Stop() to restore the terminal.
func (h *TerminalHost) Start() error {
	h.fd = int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(h.fd)
	if err != nil {
		return fmt.Errorf("terminal_host: failed to set raw mode: %w", err)
	}
	h.oldTermState = oldState

	go func() {
		buf := make([]byte, 64)
		for {
			n, err := os.Stdin.Read(buf)
			select {
			case <-h.stopCh:
				return
			default:
			}
			if n > 0 {
				h.feed(buf[:n])
			}
			if err != nil {
				return
			}
		}
	}()
	return nil
}

func (h *TerminalHost) feed(b []byte) {
	for _, c := range b {
		if c == 0x03 {
			h.interrupted.Do(func() { close(h.interrupt) })
			return
		}
	}
	for _, name := range parseTerminalKeys(b) {
		h.keys.Press(name)
	}
}

// Interrupt is closed when Ctrl+C is typed.
func (h *TerminalHost) Interrupt() <-chan struct{} {
	return h.interrupt
}

// Stop ends key delivery and restores the terminal state.
func (h *TerminalHost) Stop() {
	h.stopped.Do(func() {
		close(h.stopCh)
	})
	if h.oldTermState != nil {
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
	}
}
