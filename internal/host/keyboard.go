package host

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// Keyboard reads raw key presses from a terminal and hands each byte to a
// handler. Only used interactively.
type Keyboard struct {
	in       io.Reader
	fd       int
	oldState *term.State
	keys     chan byte
	stopped  sync.Once
	stopCh   chan struct{}
}

// NewKeyboard creates a keyboard reading stdin.
func NewKeyboard() *Keyboard {
	return newKeyboard(os.Stdin, int(os.Stdin.Fd()))
}

func newKeyboard(in io.Reader, fd int) *Keyboard {
	return &Keyboard{
		in:     in,
		fd:     fd,
		keys:   make(chan byte, 16),
		stopCh: make(chan struct{}),
	}
}

// Start switches the terminal to raw mode when it is one and begins
// reading. Keys arrive on the channel returned by Keys.
func (k *Keyboard) Start() error {
	if term.IsTerminal(k.fd) {
		oldState, err := term.MakeRaw(k.fd)
		if err != nil {
			return fmt.Errorf("host: failed to set raw mode: %w", err)
		}
		k.oldState = oldState
	}

	go func() {
		defer close(k.keys)
		buf := make([]byte, 1)
		for {
			n, err := k.in.Read(buf)
			if n > 0 {
				select {
				case k.keys <- buf[0]:
				case <-k.stopCh:
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()
	return nil
}

// Keys returns the key channel. It is closed when the input ends.
func (k *Keyboard) Keys() <-chan byte { return k.keys }

// Stop restores the terminal. A read blocked on stdin is abandoned.
func (k *Keyboard) Stop() {
	k.stopped.Do(func() {
		close(k.stopCh)
		if k.oldState != nil {
			_ = term.Restore(k.fd, k.oldState)
			k.oldState = nil
		}
	})
}
