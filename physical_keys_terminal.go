// physical_keys_terminal.go - Host keys for terminals that only report presses

package main

import (
	"sync"
	"time"
)

// defaultKeyHold covers the initial key-repeat delay of common terminals.
const defaultKeyHold = 550 * time.Millisecond

// terminalKeys emulates held keys for a terminal. A key counts as held from
// its first press event until no repeat has arrived for the hold timeout.
// Press is called from the input goroutine; Advance and the queries run on
// the cycle goroutine.
type terminalKeys struct {
	hold time.Duration
	now  func() time.Time

	mu   sync.Mutex
	last map[string]time.Time

	held     map[string]bool
	prevHeld map[string]bool
}

func newTerminalKeys(hold time.Duration) *terminalKeys {
	if hold <= 0 {
		hold = defaultKeyHold
	}
	return &terminalKeys{
		hold:     hold,
		now:      time.Now,
		last:     make(map[string]time.Time),
		held:     make(map[string]bool),
		prevHeld: make(map[string]bool),
	}
}

func (k *terminalKeys) Press(name string) {
	name = canonicalKeyName(name)
	if name == "" {
		return
	}
	k.mu.Lock()
	k.last[name] = k.now()
	k.mu.Unlock()
}

// Advance moves the key state on by one cycle.
func (k *terminalKeys) Advance() {
	now := k.now()
	k.prevHeld, k.held = k.held, k.prevHeld
	clear(k.held)

	k.mu.Lock()
	defer k.mu.Unlock()
	for name, at := range k.last {
		if now.Sub(at) <= k.hold {
			k.held[name] = true
		} else {
			delete(k.last, name)
		}
	}
}

func (k *terminalKeys) KeyHeld(name string) bool {
	return k.held[canonicalKeyName(name)]
}

func (k *terminalKeys) KeyPressed(name string) bool {
	name = canonicalKeyName(name)
	return k.held[name] && !k.prevHeld[name]
}

func (k *terminalKeys) KeyReleased(name string) bool {
	name = canonicalKeyName(name)
	return !k.held[name] && k.prevHeld[name]
}

// parseTerminalKeys splits raw terminal input into key names. Arrow keys
// arrive as ESC [ A..D sequences.
func parseTerminalKeys(buf []byte) []string {
	var names []string
	for i := 0; i < len(buf); i++ {
		b := buf[i]
		if b == 0x1B && i+2 < len(buf) && buf[i+1] == '[' {
			if name, ok := csiKeyNames[buf[i+2]]; ok {
				names = append(names, name)
				i += 2
				continue
			}
		}
		if name := terminalByteName(b); name != "" {
			names = append(names, name)
		}
	}
	return names
}

var csiKeyNames = map[byte]string{
	'A': "arrowup",
	'B': "arrowdown",
	'C': "arrowright",
	'D': "arrowleft",
	'H': "home",
	'F': "end",
}

func terminalByteName(b byte) string {
	switch {
	case b == ' ':
		return "space"
	case b == '\r' || b == '\n':
		return "enter"
	case b == '\t':
		return "tab"
	case b == 0x1B:
		return "escape"
	case b == 0x7F || b == 0x08:
		return "backspace"
	case b > ' ' && b < 0x7F:
		return canonicalKeyName(string(b))
	}
	return ""
}
